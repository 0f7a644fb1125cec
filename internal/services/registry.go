package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"metrology-portal/internal/dto"
	"metrology-portal/internal/repositories"
	"metrology-portal/pkg/config"

	"go.uber.org/zap"
)

// RegistryServiceInterface — прокси к госреестру средств измерений
// (ФГИС "Аршин"). Реестр нестабилен, поэтому любые его сбои деградируют
// до пустого списка, а удачные ответы кешируются в Redis.
type RegistryServiceInterface interface {
	Search(ctx context.Context, query string) ([]dto.RegistryItemDTO, error)
}

type RegistryService struct {
	httpClient *http.Client
	cacheRepo  repositories.CacheRepositoryInterface
	cfg        config.RegistryConfig
	logger     *zap.Logger
}

func NewRegistryService(
	cacheRepo repositories.CacheRepositoryInterface,
	cfg config.RegistryConfig,
	logger *zap.Logger,
) RegistryServiceInterface {
	return &RegistryService{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cacheRepo:  cacheRepo,
		cfg:        cfg,
		logger:     logger,
	}
}

// Ответ эндпоинта /mit/list ФГИС "Аршин".
type registrySearchResponse struct {
	Result struct {
		Count int `json:"count"`
		Items []struct {
			Number       string `json:"number"`
			Title        string `json:"title"`
			Manufacturer string `json:"manufacturer,omitempty"`
			Interval     string `json:"interval,omitempty"`
		} `json:"items"`
	} `json:"result"`
}

func (s *RegistryService) Search(ctx context.Context, query string) ([]dto.RegistryItemDTO, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []dto.RegistryItemDTO{}, nil
	}

	cacheKey := fmt.Sprintf("registry:search:%s", strings.ToLower(query))
	if cached, err := s.cacheRepo.Get(ctx, cacheKey); err == nil && cached != "" {
		var items []dto.RegistryItemDTO
		if err := json.Unmarshal([]byte(cached), &items); err == nil {
			return items, nil
		}
	}

	items := s.fetch(ctx, query)

	if len(items) > 0 {
		if payload, err := json.Marshal(items); err == nil {
			if err := s.cacheRepo.Set(ctx, cacheKey, string(payload), s.cfg.CacheTTL); err != nil {
				s.logger.Warn("Не удалось закешировать ответ госреестра", zap.Error(err))
			}
		}
	}

	return items, nil
}

// fetch ходит в реестр и никогда не возвращает ошибку: таймаут, не-200
// и нечитаемый ответ равнозначны пустому результату.
func (s *RegistryService) fetch(ctx context.Context, query string) []dto.RegistryItemDTO {
	endpoint := fmt.Sprintf("%s/mit/list?search=%s&rows=20", s.cfg.BaseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		s.logger.Warn("Не удалось сформировать запрос к госреестру", zap.Error(err))
		return []dto.RegistryItemDTO{}
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Warn("Госреестр недоступен", zap.String("query", query), zap.Error(err))
		return []dto.RegistryItemDTO{}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.logger.Warn("Госреестр вернул неожиданный статус",
			zap.String("query", query), zap.Int("status", resp.StatusCode))
		return []dto.RegistryItemDTO{}
	}

	var parsed registrySearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		s.logger.Warn("Не удалось разобрать ответ госреестра", zap.Error(err))
		return []dto.RegistryItemDTO{}
	}

	items := make([]dto.RegistryItemDTO, 0, len(parsed.Result.Items))
	for _, item := range parsed.Result.Items {
		items = append(items, dto.RegistryItemDTO{
			RegistryNumber: item.Number,
			Title:          item.Title,
			Manufacturer:   item.Manufacturer,
			IntervalMonths: parseIntervalMonths(item.Interval),
		})
	}
	return items
}

// parseIntervalMonths превращает текстовый интервал реестра ("1 год",
// "2 года", "6 месяцев") в число месяцев; нераспознанное — 0.
func parseIntervalMonths(raw string) int {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return 0
	}

	var n int
	if _, err := fmt.Sscanf(raw, "%d", &n); err != nil || n <= 0 {
		return 0
	}

	if strings.Contains(raw, "мес") {
		return n
	}
	if strings.Contains(raw, "год") || strings.Contains(raw, "лет") {
		return n * 12
	}
	return 0
}
