package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"metrology-portal/internal/services"
	"metrology-portal/pkg/config"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeNotifier struct {
	runs   int
	result services.DispatchResult
}

func (f *fakeNotifier) RunDispatch(ctx context.Context) (services.DispatchResult, error) {
	f.runs++
	return f.result, nil
}

func newCronRequest(secret string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/notifications/cron", nil)
	if secret != "" {
		req.Header.Set("x-cron-secret", secret)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestRunCron_SecretNotConfigured(t *testing.T) {
	notifier := &fakeNotifier{}
	ctrl := NewNotificationController(notifier, config.NotifyConfig{CronSecret: ""}, zap.NewNop())

	ctx, rec := newCronRequest("whatever")
	require.NoError(t, ctrl.RunCron(ctx))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, 0, notifier.runs)
}

func TestRunCron_WrongSecretHasNoSideEffects(t *testing.T) {
	notifier := &fakeNotifier{}
	ctrl := NewNotificationController(notifier, config.NotifyConfig{CronSecret: "top-secret"}, zap.NewNop())

	ctx, rec := newCronRequest("wrong")
	require.NoError(t, ctrl.RunCron(ctx))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, 0, notifier.runs)
}

func TestRunCron_MissingSecretHeader(t *testing.T) {
	notifier := &fakeNotifier{}
	ctrl := NewNotificationController(notifier, config.NotifyConfig{CronSecret: "top-secret"}, zap.NewNop())

	ctx, rec := newCronRequest("")
	require.NoError(t, ctrl.RunCron(ctx))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, 0, notifier.runs)
}

func TestRunCron_Success(t *testing.T) {
	notifier := &fakeNotifier{result: services.DispatchResult{Sent: 2, EquipmentNotified: 5}}
	ctrl := NewNotificationController(notifier, config.NotifyConfig{CronSecret: "top-secret"}, zap.NewNop())

	ctx, rec := newCronRequest("top-secret")
	require.NoError(t, ctrl.RunCron(ctx))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, notifier.runs)

	var body map[string]int
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body["sent"])
	assert.Equal(t, 5, body["equipmentNotified"])
}
