package nudge

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/m-mizutani/goerr/v2"
	"github.com/stylemail-dev/stylemail/pkg/domain/model"
	"github.com/stylemail-dev/stylemail/pkg/domain/types"
	"github.com/stylemail-dev/stylemail/pkg/utils/safe"
)

// Client talks to the external nudge data provider. Authentication is
// credential-based and the issued token is opaque; callers pass it back
// for data fetches within the same request.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option is a functional option for Client configuration
type Option func(*Client)

// WithHTTPClient overrides the HTTP client, mainly for tests.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// New creates a nudge provider client for the given base URL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, goerr.New("nudge provider base URL is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, goerr.Wrap(err, "invalid nudge provider base URL", goerr.V("baseURL", baseURL))
	}

	c := &Client{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

type authRequest struct {
	Email    string `json:"email"`
	Password string `json:"password" masq:"secret"`
}

type authResponse struct {
	Token string `json:"token" masq:"secret"`
}

type nudgeDataResponse struct {
	Data []model.NudgeRecord `json:"data"`
}

// Authenticate exchanges credentials for an opaque access token.
func (c *Client) Authenticate(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", goerr.Wrap(types.ErrValidation, "email and password are required")
	}

	body, err := json.Marshal(authRequest{Email: email, Password: password})
	if err != nil {
		return "", goerr.Wrap(err, "failed to encode auth request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/login", bytes.NewReader(body))
	if err != nil {
		return "", goerr.Wrap(err, "failed to create auth request")
	}
	req.Header.Set("Content-Type", "application/json")

	var authResp authResponse
	if err := c.do(ctx, req, &authResp); err != nil {
		return "", goerr.Wrap(err, "authentication against nudge provider failed")
	}
	if authResp.Token == "" {
		return "", goerr.New("nudge provider returned empty token")
	}

	return authResp.Token, nil
}

// FetchNudges retrieves the employee's current nudge records in the
// provider's nested shape. An employee with no nudges yields an empty
// slice.
func (c *Client) FetchNudges(ctx context.Context, token string, employeeID types.EmployeeID) ([]model.NudgeRecord, error) {
	if err := employeeID.Validate(); err != nil {
		return nil, goerr.Wrap(types.ErrValidation, "invalid employee ID", goerr.V("employeeID", employeeID))
	}

	endpoint := c.baseURL + "/nudges?employee_id=" + url.QueryEscape(string(employeeID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create nudge fetch request")
	}
	req.Header.Set("Authorization", "Bearer "+token)

	var dataResp nudgeDataResponse
	if err := c.do(ctx, req, &dataResp); err != nil {
		return nil, goerr.Wrap(err, "failed to fetch nudge data", goerr.V("employeeID", employeeID))
	}
	if dataResp.Data == nil {
		return []model.NudgeRecord{}, nil
	}

	return dataResp.Data, nil
}

func (c *Client) do(ctx context.Context, req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return goerr.Wrap(err, "request failed", goerr.V("url", req.URL.String()))
	}
	defer safe.Close(ctx, resp.Body)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return goerr.Wrap(err, "failed to read response body")
	}

	if resp.StatusCode != http.StatusOK {
		return goerr.New("unexpected response from nudge provider",
			goerr.V("status", resp.StatusCode),
			goerr.V("url", req.URL.String()),
		)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return goerr.Wrap(err, "failed to parse response body")
	}

	return nil
}
