package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/preetsinghmakkar/meetingsync/internal/apperr"
	"github.com/preetsinghmakkar/meetingsync/internal/dtos"
	"github.com/preetsinghmakkar/meetingsync/internal/events"
	"github.com/preetsinghmakkar/meetingsync/internal/metrics"
	"github.com/preetsinghmakkar/meetingsync/internal/middlewares"
	"github.com/preetsinghmakkar/meetingsync/internal/services"
)

type EventHandler interface {
	Handle(ctx context.Context, ev events.Event) (services.Outcome, error)
}

type WebhookHandler struct {
	lifecycle EventHandler
	log       zerolog.Logger
}

func NewWebhookHandler(lifecycle EventHandler, log zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{
		lifecycle: lifecycle,
		log:       log.With().Str("component", "webhook").Logger(),
	}
}

// HandleWebhook acknowledges one provider delivery.
// MUST be behind WebhookSignatureMiddleware
func (h *WebhookHandler) HandleWebhook(c *gin.Context) {
	start := time.Now()
	log := h.log.With().Str("request_id", middlewares.GetRequestID(c)).Logger()

	body, err := middlewares.GetWebhookBody(c)
	if err != nil {
		log.Error().Err(err).Msg("webhook reached handler without verified body")
		h.respond(c, "unverified", start, http.StatusInternalServerError, "internal server error")
		return
	}

	ev, err := events.Decode(body)
	if err != nil {
		log.Warn().Err(err).Str("kind", apperr.KindOf(err).String()).Msg("rejected webhook payload")
		h.respond(c, "malformed", start, apperr.KindOf(err).HTTPStatus(), err.Error())
		return
	}

	eventType := string(ev.Type())
	log = log.With().Str("event", eventType).Str("meeting_id", ev.Meeting()).Logger()

	// an accepted delivery runs to completion even if the provider hangs up;
	// outbound calls are still bounded by the upstream timeout
	ctx := context.WithoutCancel(c.Request.Context())

	outcome, err := h.lifecycle.Handle(ctx, ev)
	if err != nil {
		kind := apperr.KindOf(err)
		status := kind.HTTPStatus()

		msg := err.Error()
		if kind == apperr.Internal {
			log.Error().Err(err).Str("kind", kind.String()).Msg("webhook handling failed")
			msg = "internal server error"
		} else {
			log.Warn().Err(err).Str("kind", kind.String()).Msg("webhook event rejected")
		}

		h.respond(c, eventType, start, status, msg)
		return
	}

	if outcome.Upstream != nil {
		// local state is committed; the provider or queue side is now out of step
		log.Error().
			Err(outcome.Upstream).
			Str("kind", apperr.KindOf(outcome.Upstream).String()).
			Msg("upstream call failed after local transition")
	}

	log.Debug().Bool("applied", outcome.Applied).Msg("webhook handled")
	h.respond(c, eventType, start, http.StatusOK, "")
}

func (h *WebhookHandler) respond(c *gin.Context, eventType string, start time.Time, status int, errMsg string) {
	metrics.WebhookEventsTotal.WithLabelValues(eventType, strconv.Itoa(status)).Inc()
	metrics.WebhookDuration.WithLabelValues(eventType).Observe(time.Since(start).Seconds())

	if status == http.StatusOK {
		c.JSON(status, dtos.WebhookOKResponse{Status: "ok"})
		return
	}
	c.JSON(status, dtos.ErrorResponse{Error: errMsg})
}
