// Package stream talks to the video provider's server-side API: webhook verification,
// call control and realtime agent connections.
package stream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/preetsinghmakkar/meetingsync/internal/utils"
	ws "github.com/preetsinghmakkar/meetingsync/internal/websocket"
)

const (
	headerStreamAuthType = "Stream-Auth-Type"
	headerOpenAIKey      = "X-OpenAI-Api-Key"

	userTokenTTL = time.Hour
)

var ErrMissingCredentials = errors.New("stream api key and secret are required")

type Config struct {
	APIKey      string
	APISecret   string
	BaseURL     string
	RealtimeURL string
	Timeout     time.Duration
}

type Client struct {
	apiKey      string
	apiSecret   string
	baseURL     string
	realtimeURL string
	httpClient  *http.Client
	dialer      *websocket.Dialer
	log         zerolog.Logger
}

// APIError is a non-2xx answer from the provider.
type APIError struct {
	StatusCode int
	Code       int    `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("stream api: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("stream api: HTTP %d: %s", e.StatusCode, e.Message)
}

func NewClient(cfg Config, log zerolog.Logger) (*Client, error) {
	if cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, ErrMissingCredentials
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		apiKey:      cfg.APIKey,
		apiSecret:   cfg.APISecret,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		realtimeURL: cfg.RealtimeURL,
		httpClient:  &http.Client{Timeout: timeout},
		dialer: &websocket.Dialer{
			HandshakeTimeout: timeout,
			Proxy:            http.ProxyFromEnvironment,
		},
		log: log.With().Str("component", "stream").Logger(),
	}, nil
}

func (c *Client) APIKey() string {
	return c.apiKey
}

// VerifyWebhook reports whether signature authenticates the exact raw body.
func (c *Client) VerifyWebhook(body []byte, signature string) bool {
	return utils.VerifySignature(body, signature, c.apiSecret)
}

// ServerToken signs a token granting server-side access.
func (c *Client) ServerToken() (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"server": true,
	}).SignedString([]byte(c.apiSecret))
}

// UserToken signs a short-lived token acting as userID.
func (c *Client) UserToken(userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	return jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"iat":     now.Add(-5 * time.Second).Unix(),
		"exp":     now.Add(ttl).Unix(),
	}).SignedString([]byte(c.apiSecret))
}

// Call is a handle on one provider call. It does not contact the provider.
type Call struct {
	client *Client
	Type   string
	ID     string
}

func (c *Client) Call(callType, id string) *Call {
	return &Call{client: c, Type: callType, ID: id}
}

func (call *Call) CID() string {
	return utils.CallCID(call.Type, call.ID)
}

// End marks the call as ended for every participant.
func (call *Call) End(ctx context.Context) error {
	path := fmt.Sprintf("/video/call/%s/%s/mark_ended", url.PathEscape(call.Type), url.PathEscape(call.ID))
	return call.client.do(ctx, http.MethodPost, path, struct{}{}, nil)
}

// AgentCredentials identify the agent joining a call and the model account it speaks through
type AgentCredentials struct {
	AgentUserID  string
	OpenAIAPIKey string
}

// ConnectAgent opens a realtime session that joins the agent to call.
// The returned session owns the connection.
func (c *Client) ConnectAgent(ctx context.Context, call *Call, creds AgentCredentials) (*ws.Session, error) {
	token, err := c.UserToken(creds.AgentUserID, userTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("sign agent token: %w", err)
	}

	u, err := url.Parse(c.realtimeURL)
	if err != nil {
		return nil, fmt.Errorf("realtime url: %w", err)
	}
	q := u.Query()
	q.Set("api_key", c.apiKey)
	q.Set("call_type", call.Type)
	q.Set("call_id", call.ID)
	q.Set("agent_user_id", creds.AgentUserID)
	u.RawQuery = q.Encode()

	header := http.Header{}
	header.Set("Authorization", token)
	header.Set(headerStreamAuthType, "jwt")
	if creds.OpenAIAPIKey != "" {
		header.Set(headerOpenAIKey, creds.OpenAIAPIKey)
	}

	conn, resp, err := c.dialer.DialContext(ctx, u.String(), header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("connect agent: HTTP %d: %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("connect agent: %w", err)
	}

	c.log.Info().Str("call_cid", call.CID()).Str("agent_id", creds.AgentUserID).Msg("agent connected")
	return ws.NewSession(call.ID, creds.AgentUserID, conn, c.log), nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	token, err := c.ServerToken()
	if err != nil {
		return fmt.Errorf("sign server token: %w", err)
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	endpoint := c.baseURL + path + "?api_key=" + url.QueryEscape(c.apiKey)
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", token)
	req.Header.Set(headerStreamAuthType, "jwt")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("stream api %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("reading stream response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		_ = json.Unmarshal(respBody, apiErr)
		return apiErr
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("parsing stream response: %w", err)
		}
	}
	return nil
}
