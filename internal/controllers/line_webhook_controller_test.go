package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"line-helpdesk/internal/dto"
	"line-helpdesk/internal/entities"
	"line-helpdesk/internal/services"
	apperrors "line-helpdesk/pkg/errors"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubWebhookSettings struct {
	services.SettingsServiceInterface
	enabled bool
}

func (s *stubWebhookSettings) WebhookEnabled(context.Context) bool { return s.enabled }

type stubChannelResolver struct {
	channel *entities.Channel
	err     error
}

func (s *stubChannelResolver) ResolveBySignature(context.Context, []byte, string) (*entities.Channel, error) {
	return s.channel, s.err
}

type spyWebhookService struct {
	calls    int
	payloads []dto.LineWebhookDTO
}

func (s *spyWebhookService) ProcessPayload(_ context.Context, _ services.RequestCtx, _ *entities.Channel, payload dto.LineWebhookDTO, _ []byte) {
	s.calls++
	s.payloads = append(s.payloads, payload)
}

func performWebhook(ctrl *LineWebhookController, body string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/line/webhook/otd", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("X-Line-Signature", "sig")
	rec := httptest.NewRecorder()
	_ = ctrl.Handle(e.NewContext(req, rec))
	return rec
}

func TestLineWebhookController_Handle(t *testing.T) {
	validBody := `{"destination":"x","events":[{"type":"message","source":{"type":"user","userId":"U1"},"message":{"id":"m1","type":"text","text":"привет"}}]}`

	t.Run("выключенный вебхук отвечает 404", func(t *testing.T) {
		spy := &spyWebhookService{}
		ctrl := NewLineWebhookController(spy, &stubChannelResolver{}, &stubWebhookSettings{enabled: false}, zap.NewNop())

		rec := performWebhook(ctrl, validBody)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Zero(t, spy.calls)
	})

	t.Run("неизвестная подпись отвечает 403", func(t *testing.T) {
		spy := &spyWebhookService{}
		resolver := &stubChannelResolver{err: apperrors.ErrSignatureInvalid}
		ctrl := NewLineWebhookController(spy, resolver, &stubWebhookSettings{enabled: true}, zap.NewNop())

		rec := performWebhook(ctrl, validBody)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Zero(t, spy.calls)
	})

	t.Run("нечитаемое тело отвечает 400", func(t *testing.T) {
		spy := &spyWebhookService{}
		resolver := &stubChannelResolver{channel: &entities.Channel{ID: 1}}
		ctrl := NewLineWebhookController(spy, resolver, &stubWebhookSettings{enabled: true}, zap.NewNop())

		rec := performWebhook(ctrl, `{"events": [`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Zero(t, spy.calls)
	})

	t.Run("валидный запрос отвечает 200 OK и передаёт события", func(t *testing.T) {
		spy := &spyWebhookService{}
		resolver := &stubChannelResolver{channel: &entities.Channel{ID: 1}}
		ctrl := NewLineWebhookController(spy, resolver, &stubWebhookSettings{enabled: true}, zap.NewNop())

		rec := performWebhook(ctrl, validBody)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "OK", rec.Body.String())
		require.Equal(t, 1, spy.calls)
		require.Len(t, spy.payloads[0].Events, 1)
		assert.Equal(t, "U1", spy.payloads[0].Events[0].Source.UserID)
	})

	t.Run("пустой список событий — всё равно 200", func(t *testing.T) {
		spy := &spyWebhookService{}
		resolver := &stubChannelResolver{channel: &entities.Channel{ID: 1}}
		ctrl := NewLineWebhookController(spy, resolver, &stubWebhookSettings{enabled: true}, zap.NewNop())

		rec := performWebhook(ctrl, `{"destination":"x","events":[]}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 1, spy.calls)
	})
}
