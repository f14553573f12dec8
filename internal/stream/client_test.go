package stream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/preetsinghmakkar/meetingsync/internal/utils"
	ws "github.com/preetsinghmakkar/meetingsync/internal/websocket"
)

const (
	testKey    = "key"
	testSecret = "secret"
)

func newTestClient(t *testing.T, baseURL, realtimeURL string) *Client {
	t.Helper()
	c, err := NewClient(Config{
		APIKey:      testKey,
		APISecret:   testSecret,
		BaseURL:     baseURL,
		RealtimeURL: realtimeURL,
		Timeout:     2 * time.Second,
	}, zerolog.Nop())
	require.NoError(t, err)
	return c
}

func parseClaims(t *testing.T, token string) jwt.MapClaims {
	t.Helper()
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return []byte(testSecret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	require.NoError(t, err)
	return claims
}

func TestNewClientRequiresCredentials(t *testing.T) {
	_, err := NewClient(Config{APIKey: testKey}, zerolog.Nop())
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestVerifyWebhook(t *testing.T) {
	c := newTestClient(t, "http://unused", "ws://unused")
	body := []byte(`{"type":"call.session_started"}`)

	assert.True(t, c.VerifyWebhook(body, utils.SignBody(body, testSecret)))
	assert.False(t, c.VerifyWebhook(body, utils.SignBody(body, "other")))
}

func TestCallEnd(t *testing.T) {
	var gotPath, gotKey, gotAuth, gotAuthType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("api_key")
		gotAuth = r.Header.Get("Authorization")
		gotAuthType = r.Header.Get("Stream-Auth-Type")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"duration":"1ms"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, "ws://unused")
	call := c.Call("default", "m1")
	require.NoError(t, call.End(context.Background()))

	assert.Equal(t, "default:m1", call.CID())
	assert.Equal(t, "/video/call/default/m1/mark_ended", gotPath)
	assert.Equal(t, testKey, gotKey)
	assert.Equal(t, "jwt", gotAuthType)
	assert.Equal(t, true, parseClaims(t, gotAuth)["server"])
}

func TestCallEndSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"code":16,"message":"call not found"}`))
	}))
	defer srv.Close()

	err := newTestClient(t, srv.URL, "ws://unused").Call("default", "missing").End(context.Background())

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "call not found", apiErr.Message)
}

func TestConnectAgent(t *testing.T) {
	type handshake struct {
		callType, callID, apiKey, auth, openAIKey string
	}
	seen := make(chan handshake, 1)
	messages := make(chan ws.Message, 1)

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		seen <- handshake{
			callType:  q.Get("call_type"),
			callID:    q.Get("call_id"),
			apiKey:    q.Get("api_key"),
			auth:      r.Header.Get("Authorization"),
			openAIKey: r.Header.Get("X-OpenAI-Api-Key"),
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		var msg ws.Message
		if err := conn.ReadJSON(&msg); err == nil {
			messages <- msg
		}
	}))
	defer srv.Close()

	realtimeURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/video/connect_agent"
	c := newTestClient(t, "http://unused", realtimeURL)

	session, err := c.ConnectAgent(context.Background(), c.Call("default", "m1"), AgentCredentials{
		AgentUserID:  "a1",
		OpenAIAPIKey: "sk-test",
	})
	require.NoError(t, err)
	defer session.Close()

	h := <-seen
	assert.Equal(t, "default", h.callType)
	assert.Equal(t, "m1", h.callID)
	assert.Equal(t, testKey, h.apiKey)
	assert.Equal(t, "sk-test", h.openAIKey)
	assert.Equal(t, "a1", parseClaims(t, h.auth)["user_id"])

	require.NoError(t, session.UpdateInstructions("Summarise decisions."))
	select {
	case msg := <-messages:
		assert.Equal(t, ws.MessageTypeSessionUpdate, msg.Type)
		assert.Equal(t, "Summarise decisions.", msg.Session.Instructions)
	case <-time.After(2 * time.Second):
		t.Fatal("instructions not delivered")
	}
}

func TestConnectAgentRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	c := newTestClient(t, "http://unused", "ws"+strings.TrimPrefix(srv.URL, "http"))
	_, err := c.ConnectAgent(context.Background(), c.Call("default", "m1"), AgentCredentials{AgentUserID: "a1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
