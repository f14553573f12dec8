package middlewares

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/preetsinghmakkar/meetingsync/internal/utils"
)

const (
	testAPIKey = "stream-key"
	testSecret = "stream-secret"
)

type hmacVerifier struct{}

func (hmacVerifier) APIKey() string { return testAPIKey }

func (hmacVerifier) VerifyWebhook(body []byte, signature string) bool {
	return utils.VerifySignature(body, signature, testSecret)
}

func newWebhookRouter(maxBody int64, reached *[]byte) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/webhook", WebhookSignatureMiddleware(hmacVerifier{}, maxBody, zerolog.Nop()), func(c *gin.Context) {
		body, err := GetWebhookBody(c)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		*reached = body
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return r
}

func TestWebhookSignatureMiddleware(t *testing.T) {
	body := []byte(`{"type":"call.session_started","call":{"custom":{"meetingId":"m1"}}}`)
	valid := utils.SignBody(body, testSecret)

	tests := []struct {
		name      string
		signature string
		apiKey    string
		body      []byte
		want      int
		reached   bool
	}{
		{name: "valid", signature: valid, apiKey: testAPIKey, body: body, want: http.StatusOK, reached: true},
		{name: "missing signature", apiKey: testAPIKey, body: body, want: http.StatusBadRequest},
		{name: "missing api key", signature: valid, body: body, want: http.StatusBadRequest},
		{name: "wrong api key", signature: valid, apiKey: "other", body: body, want: http.StatusUnauthorized},
		{name: "wrong signature", signature: utils.SignBody(body, "nope"), apiKey: testAPIKey, body: body, want: http.StatusUnauthorized},
		{name: "tampered body", signature: valid, apiKey: testAPIKey, body: append([]byte(" "), body...), want: http.StatusUnauthorized},
		{name: "signature not hex", signature: "zz", apiKey: testAPIKey, body: body, want: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var reached []byte
			r := newWebhookRouter(1<<20, &reached)

			req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(tt.body))
			if tt.signature != "" {
				req.Header.Set(SignatureHeader, tt.signature)
			}
			if tt.apiKey != "" {
				req.Header.Set(APIKeyHeader, tt.apiKey)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
			if tt.reached {
				assert.Equal(t, tt.body, reached)
			} else {
				assert.Nil(t, reached)
				assert.Contains(t, w.Body.String(), `"error"`)
			}
		})
	}
}

func TestWebhookSignatureMiddleware_BodyTooLarge(t *testing.T) {
	var reached []byte
	r := newWebhookRouter(16, &reached)

	body := []byte(strings.Repeat("x", 64))
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body))
	req.Header.Set(SignatureHeader, utils.SignBody(body, testSecret))
	req.Header.Set(APIKeyHeader, testAPIKey)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, reached)
}

func TestGetWebhookBodyOutsideMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, err := GetWebhookBody(c)
	assert.Error(t, err)
}

func TestRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	r := gin.New()
	r.Use(RequestLogger(zerolog.New(&buf)))
	r.GET("/ping", func(c *gin.Context) {
		assert.NotEmpty(t, GetRequestID(c))
		c.String(http.StatusOK, "pong")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	require.Equal(t, http.StatusOK, w.Code)
	reqID := w.Header().Get("X-Request-ID")
	require.NotEmpty(t, reqID)
	assert.Contains(t, buf.String(), `"rid":"`+reqID+`"`)
	assert.Contains(t, buf.String(), `"path":"/ping"`)
}

func TestRequestLoggerKeepsInboundID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestLogger(zerolog.Nop()))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "provider-retry-7")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "provider-retry-7", w.Header().Get("X-Request-ID"))
}
