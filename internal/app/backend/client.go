/*
Package backend is the typed HTTP client for the SkillSwap backend service.

Each method maps to one endpoint and decodes only the fields the views render.
Missing lists decode to empty slices and missing numbers to zero; anything the
client cannot read is reported as ErrInvalidResponse so the caller can fall back.
*/
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"skillswap/internal/pkg/auth/jwt"
	"skillswap/internal/pkg/logx"
	"skillswap/internal/pkg/metrics"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 4 << 20

var (
	// ErrUnavailable means the request never got an answer.
	ErrUnavailable = errors.New("backend unavailable")

	// ErrStatus means the backend answered with a non-2xx status.
	ErrStatus = errors.New("backend returned an error status")

	// ErrInvalidResponse means the answer could not be decoded.
	ErrInvalidResponse = errors.New("backend returned an invalid response")
)

// Client calls the backend rooted at BaseURL.
type Client struct {
	baseURL    string
	httpClient *http.Client
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

// NewClient returns a client for baseURL (no trailing slash) whose calls time out after timeout.
func NewClient(baseURL string, timeout time.Duration, m *metrics.Metrics) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		metrics:    m,
		logger:     logx.Component("backend"),
	}
}

// BaseURL returns the backend root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SearchMentors asks POST /match for mentors teaching any of skills.
func (c *Client) SearchMentors(ctx context.Context, skills []string) ([]Mentor, error) {
	if skills == nil {
		skills = []string{}
	}

	var body struct {
		Results []Mentor `json:"results"`
	}
	if err := c.do(ctx, "match", http.MethodPost, "/match", map[string]any{"skills_wanted": skills}, "", &body); err != nil {
		return []Mentor{}, err
	}

	results := make([]Mentor, 0, len(body.Results))
	for _, m := range body.Results {
		results = append(results, m.normalized())
	}
	return results, nil
}

// CreateProfile creates a user through POST /users and returns its id.
func (c *Client) CreateProfile(ctx context.Context, profile NewProfile) (string, error) {
	if profile.SkillsTeach == nil {
		profile.SkillsTeach = []string{}
	}
	if profile.SkillsLearn == nil {
		profile.SkillsLearn = []string{}
	}

	var body struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, "users", http.MethodPost, "/users", profile, "", &body); err != nil {
		return "", err
	}
	return body.ID, nil
}

// Dashboard loads GET /dashboard/{identityID}. On failure it returns EmptyDashboard and the error.
func (c *Client) Dashboard(ctx context.Context, identityID string) (Dashboard, error) {
	var body *Dashboard
	if err := c.do(ctx, "dashboard", http.MethodGet, "/dashboard/"+url.PathEscape(identityID), nil, "", &body); err != nil {
		return EmptyDashboard(), err
	}
	if body == nil {
		return EmptyDashboard(), nil
	}
	return body.normalized(), nil
}

// ListSessions loads GET /sessions.
func (c *Client) ListSessions(ctx context.Context) ([]Session, error) {
	var body []Session
	if err := c.do(ctx, "sessions", http.MethodGet, "/sessions", nil, "", &body); err != nil {
		return []Session{}, err
	}
	if body == nil {
		return []Session{}, nil
	}
	return body, nil
}

// AdminUsers loads GET /admin/users, sending bearerToken when it is not empty.
func (c *Client) AdminUsers(ctx context.Context, bearerToken string) ([]AdminUser, error) {
	var body []AdminUser
	if err := c.do(ctx, "admin_users", http.MethodGet, "/admin/users", nil, bearerToken, &body); err != nil {
		return []AdminUser{}, err
	}
	if body == nil {
		return []AdminUser{}, nil
	}
	return body, nil
}

// do performs one request and decodes a 2xx JSON body into out.
func (c *Client) do(ctx context.Context, endpoint, method, path string, in any, bearerToken string, out any) error {
	started := time.Now()
	outcome := metrics.OutcomeOK
	defer func() {
		c.metrics.ObserveBackend(endpoint, outcome, time.Since(started))
	}()

	var reqBody io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			outcome = metrics.OutcomeUnavailable
			return fmt.Errorf("%s: encode request: %w", endpoint, err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		outcome = metrics.OutcomeUnavailable
		return fmt.Errorf("%s: build request: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearerToken != "" {
		req.Header.Set(jwt.AuthorizationHeader, jwt.HeaderValue(bearerToken))
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		outcome = metrics.OutcomeNetwork
		c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("Backend request failed")
		return fmt.Errorf("%s: %w: %v", endpoint, ErrUnavailable, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		outcome = metrics.OutcomeStatus
		_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, maxResponseBytes))
		c.logger.Warn().Int("status", res.StatusCode).Str("endpoint", endpoint).Msg("Backend answered with error status")
		return fmt.Errorf("%s: %w: HTTP %d", endpoint, ErrStatus, res.StatusCode)
	}

	if err := json.NewDecoder(io.LimitReader(res.Body, maxResponseBytes)).Decode(out); err != nil {
		outcome = metrics.OutcomeDecode
		c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("Backend response could not be decoded")
		return fmt.Errorf("%s: %w: %v", endpoint, ErrInvalidResponse, err)
	}

	c.logger.Debug().Str("endpoint", endpoint).Dur("latency", time.Since(started)).Msg("Backend request completed")
	return nil
}
