// Package ig provides a client for the IG trading REST gateway: session
// authentication, open positions, and per-market detail snapshots.
package ig

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantshed/optiongreeks/internal/domain"
)

// APIError reports a failed call against the IG gateway
type APIError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("ig %s failed: %s (HTTP %d)", e.Op, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("ig %s failed: %s", e.Op, e.Message)
}

// Client for the IG REST gateway
type Client struct {
	baseURL  string
	apiKey   string
	username string
	password string
	client   *http.Client
	log      zerolog.Logger

	mu          sync.RWMutex // guards session state below
	accountID   string
	accessToken string
}

// NewClient creates a new IG gateway client. Credentials are validated by
// the gateway at Login time, not here.
func NewClient(baseURL, apiKey, username, password string, log zerolog.Logger) *Client {
	return &Client{
		baseURL:  baseURL,
		apiKey:   apiKey,
		username: username,
		password: password,
		client:   &http.Client{Timeout: 15 * time.Second},
		log:      log.With().Str("client", "ig").Logger(),
	}
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type loginResponse struct {
	AccountID  string `json:"accountId"`
	OAuthToken struct {
		AccessToken string `json:"access_token"`
	} `json:"oauthToken"`
}

// Login authenticates with the gateway and stores the session token used
// by the other calls.
func (c *Client) Login(ctx context.Context) error {
	body, err := json.Marshal(loginRequest{Identifier: c.username, Password: c.password})
	if err != nil {
		return fmt.Errorf("failed to encode login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/session", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build login request: %w", err)
	}
	c.setCommonHeaders(req, "3")

	resp, err := c.client.Do(req)
	if err != nil {
		return &APIError{Op: "login", Message: fmt.Sprintf("network error: %v", err)}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var session loginResponse
		if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
			return &APIError{Op: "login", Message: fmt.Sprintf("invalid response: %v", err)}
		}

		c.mu.Lock()
		c.accountID = session.AccountID
		c.accessToken = session.OAuthToken.AccessToken
		c.mu.Unlock()

		c.log.Info().Str("account_id", session.AccountID).Msg("Authenticated with IG gateway")
		return nil

	case http.StatusUnauthorized:
		return &APIError{Op: "login", StatusCode: resp.StatusCode, Message: "invalid credentials"}

	default:
		return &APIError{Op: "login", StatusCode: resp.StatusCode, Message: "authentication failed"}
	}
}

// Authenticated reports whether a session token is held
func (c *Client) Authenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessToken != ""
}

// GetPositions fetches the account's open positions
func (c *Client) GetPositions(ctx context.Context) (*domain.PositionsBatch, error) {
	var batch domain.PositionsBatch
	if err := c.get(ctx, "positions", "/positions", "1", &batch); err != nil {
		return nil, err
	}
	return &batch, nil
}

// GetMarketDetails fetches details for one market by its epic code
func (c *Client) GetMarketDetails(ctx context.Context, epic string) (*domain.MarketDetails, error) {
	var details domain.MarketDetails
	if err := c.get(ctx, "market details", "/markets/"+epic, "3", &details); err != nil {
		return nil, err
	}
	return &details, nil
}

// get performs an authenticated GET against the gateway and decodes the
// JSON response into out.
func (c *Client) get(ctx context.Context, op, path, version string, out interface{}) error {
	c.mu.RLock()
	accountID, token := c.accountID, c.accessToken
	c.mu.RUnlock()

	if token == "" {
		return &APIError{Op: op, Message: "not authenticated - please log in first"}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", op, err)
	}
	c.setCommonHeaders(req, version)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("IG-ACCOUNT-ID", accountID)

	resp, err := c.client.Do(req)
	if err != nil {
		return &APIError{Op: op, Message: fmt.Sprintf("network error: %v", err)}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &APIError{Op: op, Message: fmt.Sprintf("invalid response: %v", err)}
		}
		return nil

	case http.StatusUnauthorized:
		return &APIError{Op: op, StatusCode: resp.StatusCode, Message: "session expired - please log in again"}

	default:
		return &APIError{Op: op, StatusCode: resp.StatusCode, Message: "request failed"}
	}
}

func (c *Client) setCommonHeaders(req *http.Request, version string) {
	req.Header.Set("X-IG-API-KEY", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json; charset=UTF-8")
	req.Header.Set("Version", version)
}
