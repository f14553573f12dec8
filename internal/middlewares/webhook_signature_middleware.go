package middlewares

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/preetsinghmakkar/meetingsync/internal/metrics"
	"github.com/preetsinghmakkar/meetingsync/internal/utils"
)

const (
	SignatureHeader = "X-Signature"
	APIKeyHeader    = "X-Api-Key"

	rawBodyKey = "webhook_raw_body"
)

// WebhookVerifier checks a provider signature over the exact request bytes.
type WebhookVerifier interface {
	APIKey() string
	VerifyWebhook(body []byte, signature string) bool
}

// WebhookSignatureMiddleware authenticates provider webhooks.
// Missing credentials are a 400, wrong ones a 401. The body is never parsed here;
// the verified bytes are stored for the handler.
func WebhookSignatureMiddleware(verifier WebhookVerifier, maxBodyBytes int64, log zerolog.Logger) gin.HandlerFunc {
	log = log.With().Str("component", "webhook_auth").Logger()

	return func(c *gin.Context) {
		signature := c.GetHeader(SignatureHeader)
		apiKey := c.GetHeader(APIKeyHeader)
		if signature == "" || apiKey == "" {
			reject(c, log, http.StatusBadRequest, "missing signature or API key")
			return
		}

		if !utils.SecretEquals(apiKey, verifier.APIKey()) {
			reject(c, log, http.StatusUnauthorized, "invalid API key")
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				reject(c, log, http.StatusBadRequest, "request body too large")
				return
			}
			reject(c, log, http.StatusBadRequest, "failed to read request body")
			return
		}

		if !verifier.VerifyWebhook(body, signature) {
			reject(c, log, http.StatusUnauthorized, "invalid signature")
			return
		}

		c.Set(rawBodyKey, body)
		c.Next()
	}
}

// GetWebhookBody returns the verified raw body stored by WebhookSignatureMiddleware.
func GetWebhookBody(c *gin.Context) ([]byte, error) {
	val, ok := c.Get(rawBodyKey)
	if !ok {
		return nil, errors.New("webhook body not found in context")
	}

	body, ok := val.([]byte)
	if !ok {
		return nil, errors.New("invalid webhook body type")
	}

	return body, nil
}

func reject(c *gin.Context, log zerolog.Logger, status int, msg string) {
	metrics.WebhookEventsTotal.WithLabelValues("unverified", strconv.Itoa(status)).Inc()
	log.Warn().Int("status", status).Str("client_ip", c.ClientIP()).Msg(msg)
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
