package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"metrology-portal/internal/dto"
	"metrology-portal/internal/entities"
	"metrology-portal/internal/repositories"
	"metrology-portal/pkg/constants"
	apperrors "metrology-portal/pkg/errors"

	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

type EquipmentImporterInterface interface {
	Import(ctx context.Context, ownerID uint64, file io.Reader) (*dto.ImportResultDTO, error)
}

type EquipmentImporter struct {
	equipmentRepo repositories.EquipmentRepositoryInterface
	txManager     repositories.TxManagerInterface
	logger        *zap.Logger
}

func NewEquipmentImporter(
	equipmentRepo repositories.EquipmentRepositoryInterface,
	txManager repositories.TxManagerInterface,
	logger *zap.Logger,
) EquipmentImporterInterface {
	return &EquipmentImporter{
		equipmentRepo: equipmentRepo,
		txManager:     txManager,
		logger:        logger,
	}
}

// Индексы колонок, найденные в шапке файла. -1 — колонки нет.
type importColumns struct {
	name     int
	typ      int
	serial   int
	registry int
	verified int
	next     int
	interval int
}

// Import разбирает xlsx-файл клиента и заливает оборудование одним
// пакетом. Мусорные строки (нумерация, "итого") пропускаются на этапе
// разбора; запись в базу идёт одной транзакцией.
func (s *EquipmentImporter) Import(ctx context.Context, ownerID uint64, file io.Reader) (*dto.ImportResultDTO, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, apperrors.NewHttpError(http.StatusBadRequest, "Не удалось открыть файл, ожидается xlsx", err, nil)
	}
	defer f.Close()

	rows, headerRow, cols, err := s.findHeader(f)
	if err != nil {
		return nil, err
	}

	result := &dto.ImportResultDTO{}
	now := time.Now()

	parsed := make([]*entities.Equipment, 0, len(rows))
	for i := headerRow + 1; i < len(rows); i++ {
		row := rows[i]
		if len(row) < 1 {
			continue
		}

		name := safeGet(row, cols.name)
		if name == "" || isTrashRow(name) {
			continue
		}

		equipment := &entities.Equipment{
			UserID:         ownerID,
			Name:           name,
			Type:           nullableCell(row, cols.typ),
			SerialNumber:   nullableCell(row, cols.serial),
			RegistryNumber: nullableCell(row, cols.registry),
			Category:       constants.CategoryVerification,
			IntervalMonths: constants.DefaultVerificationIntervalMonths,
		}

		if raw := safeGet(row, cols.interval); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil && n > 0 {
				equipment.IntervalMonths = n
			}
		}

		if raw := safeGet(row, cols.verified); raw != "" {
			parsedDate, err := parseCellDate(raw)
			if err != nil {
				s.logger.Warn("Импорт: нечитаемая дата поверки, строка пропущена",
					zap.Int("row", i+1), zap.String("value", raw))
				result.Errors++
				continue
			}
			equipment.VerificationDate = null.TimeFrom(parsedDate)
		}

		if raw := safeGet(row, cols.next); raw != "" {
			parsedDate, err := parseCellDate(raw)
			if err != nil {
				s.logger.Warn("Импорт: нечитаемая дата следующей поверки, строка пропущена",
					zap.Int("row", i+1), zap.String("value", raw))
				result.Errors++
				continue
			}
			equipment.NextVerification = null.TimeFrom(parsedDate)
		} else if equipment.VerificationDate.Valid {
			equipment.NextVerification = null.TimeFrom(
				equipment.VerificationDate.Time.AddDate(0, equipment.IntervalMonths, 0))
		}

		equipment.Status = ClassifyStatus(equipment.NextVerification.Ptr(), now)
		parsed = append(parsed, equipment)
	}

	if len(parsed) == 0 {
		return result, nil
	}

	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		for _, equipment := range parsed {
			isInsert, err := s.equipmentRepo.UpsertImported(ctx, tx, equipment)
			if err != nil {
				return fmt.Errorf("строка '%s': %w", equipment.Name, err)
			}
			if isInsert {
				result.Created++
			} else {
				result.Updated++
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Импорт оборудования не удался, транзакция откатилась", zap.Error(err))
		return nil, err
	}

	s.logger.Info("Импорт оборудования завершен",
		zap.Uint64("userID", ownerID),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("errors", result.Errors),
	)
	return result, nil
}

// findHeader ищет шапку таблицы по всем листам: нужна строка, где есть
// "наименование" и хотя бы одна из колонок с номером или датой.
func (s *EquipmentImporter) findHeader(f *excelize.File) ([][]string, int, importColumns, error) {
	cols := importColumns{name: -1, typ: -1, serial: -1, registry: -1, verified: -1, next: -1, interval: -1}

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			continue
		}
		for rIdx, row := range rows {
			rowStr := strings.ToLower(strings.Join(row, "|"))

			hasName := strings.Contains(rowStr, "наименование") || strings.Contains(rowStr, "название")
			hasDetail := strings.Contains(rowStr, "номер") || strings.Contains(rowStr, "№") || strings.Contains(rowStr, "поверк")
			if !hasName || !hasDetail {
				continue
			}

			for cIdx, colName := range row {
				cLower := strings.ToLower(strings.TrimSpace(colName))
				switch {
				case strings.Contains(cLower, "наименование") || strings.Contains(cLower, "название"):
					cols.name = cIdx
				case strings.Contains(cLower, "тип") || strings.Contains(cLower, "модификация"):
					cols.typ = cIdx
				case strings.Contains(cLower, "заводск") || strings.Contains(cLower, "серийн"):
					cols.serial = cIdx
				case strings.Contains(cLower, "госреестр") || strings.Contains(cLower, "реестр"):
					cols.registry = cIdx
				case strings.Contains(cLower, "следующ") || strings.Contains(cLower, "очередн"):
					cols.next = cIdx
				case strings.Contains(cLower, "дата поверки") || strings.Contains(cLower, "поверен"):
					cols.verified = cIdx
				case strings.Contains(cLower, "интервал") || strings.Contains(cLower, "мпи"):
					cols.interval = cIdx
				}
			}

			if cols.name != -1 {
				return rows, rIdx, cols, nil
			}
		}
	}

	return nil, -1, cols, apperrors.NewHttpError(http.StatusBadRequest,
		"Не найдена шапка таблицы: нужны колонки 'Наименование' и '№/дата поверки'", nil, nil)
}

func safeGet(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func nullableCell(row []string, idx int) null.String {
	v := safeGet(row, idx)
	if v == "" {
		return null.String{}
	}
	return null.StringFrom(v)
}

func isTrashRow(val string) bool {
	v := strings.ToLower(strings.TrimSpace(val))
	if v == "" {
		return true
	}
	if strings.Contains(v, "итого") || strings.Contains(v, "всего") {
		return true
	}
	// Чистая нумерация вида "1", "2." — не оборудование.
	if _, err := strconv.Atoi(strings.TrimSuffix(v, ".")); err == nil {
		return true
	}
	return false
}

var cellDateLayouts = []string{"02.01.2006", "2006-01-02", "02/01/2006", "01-02-06"}

func parseCellDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range cellDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("нераспознанный формат даты: %q", raw)
}
