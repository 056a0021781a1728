package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"github.com/vamshidandi/jobportal/internal/correlation"
	"github.com/vamshidandi/jobportal/internal/domain"
	"github.com/vamshidandi/jobportal/internal/errors"
	"github.com/vamshidandi/jobportal/internal/metrics"
	"github.com/vamshidandi/jobportal/internal/retry"
)

const defaultTimeout = 10 * time.Second

// Client talks to the job service. Safe for concurrent use.
type Client struct {
	baseURL   string
	http      *http.Client
	breaker   *gobreaker.CircuitBreaker
	getPolicy retry.Policy
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		breaker: newBreaker(),
		getPolicy: retry.Policy{
			MaxAttempts:    3,
			InitialBackoff: 200 * time.Millisecond,
		},
	}
}

var _ domain.AuthGateway = (*Client)(nil)
var _ domain.JobGateway = (*Client)(nil)

// Login exchanges credentials for a token pair and the embedded identity.
// The upstream rejection message is surfaced verbatim.
func (c *Client) Login(ctx context.Context, username, password string) (*domain.LoginResult, error) {
	payload, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return nil, errors.Internal("failed to encode login request", err)
	}

	resp, body, err := c.postJSON(ctx, "login", "/login/", payload)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode >= 500:
		// The service (or an intermediary) failed; not a credential verdict.
		return nil, errors.Network(fmt.Sprintf("login returned status %d", resp.StatusCode), nil)
	default:
		return nil, errors.InvalidCredentials(messageOf(body, "Login failed"))
	}

	var decoded struct {
		Message  string `json:"message"`
		UserID   int64  `json:"user_id"`
		Username string `json:"username"`
		Email    string `json:"email"`
		Access   string `json:"access"`
		Refresh  string `json:"refresh"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, errors.Network("failed to decode login response", err)
	}
	if decoded.Access == "" || decoded.Refresh == "" {
		return nil, errors.Network("login response missing tokens", nil)
	}

	return &domain.LoginResult{
		Tokens: domain.TokenPair{Access: decoded.Access, Refresh: decoded.Refresh},
		Identity: domain.Identity{
			UserID:   decoded.UserID,
			Username: decoded.Username,
			Email:    decoded.Email,
		},
		Message: decoded.Message,
	}, nil
}

// Register submits a registration and returns the server message. Field
// errors come back as a validation error.
func (c *Client) Register(ctx context.Context, reg domain.Registration) (string, error) {
	payload, err := json.Marshal(reg)
	if err != nil {
		return "", errors.Internal("failed to encode registration request", err)
	}

	resp, body, err := c.postJSON(ctx, "register", "/register/", payload)
	if err != nil {
		return "", err
	}

	switch {
	case resp.StatusCode == http.StatusCreated, resp.StatusCode == http.StatusOK:
	case resp.StatusCode >= 500:
		return "", errors.Network(fmt.Sprintf("register returned status %d", resp.StatusCode), nil)
	default:
		return "", errors.Validation(messageOf(body, "Registration failed"), fieldErrorsOf(body))
	}

	return messageOf(body, "User registered successfully"), nil
}

// Logout notifies the server that the session ended. Best effort: callers
// clear local state regardless of the outcome.
func (c *Client) Logout(ctx context.Context) error {
	resp, _, err := c.postJSON(ctx, "logout", "/logout/", []byte("{}"))
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return errors.Network(fmt.Sprintf("logout returned status %d", resp.StatusCode), nil)
	}
	return nil
}

// CurrentUser exchanges the access token for the authenticated identity.
func (c *Client) CurrentUser(ctx context.Context, accessToken string) (*domain.Identity, error) {
	body, err := c.getJSON(ctx, "user", "/user/", accessToken)
	if err != nil {
		return nil, err
	}

	var identity domain.Identity
	if err := json.Unmarshal(body, &identity); err != nil {
		return nil, errors.Network("failed to decode identity response", err)
	}
	return &identity, nil
}

// ListJobs fetches all postings. The service wraps the list in a data
// envelope on this endpoint only.
func (c *Client) ListJobs(ctx context.Context) ([]domain.JobSummary, error) {
	body, err := c.getJSON(ctx, "jobs", "/jobs/", "")
	if err != nil {
		return nil, err
	}

	var decoded struct {
		Data []domain.JobSummary `json:"data"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, errors.Network("failed to decode job list", err)
	}
	return decoded.Data, nil
}

// GetJob fetches a single posting.
func (c *Client) GetJob(ctx context.Context, accessToken string, jobID int64) (*domain.JobSummary, error) {
	body, err := c.getJSON(ctx, "job_detail", fmt.Sprintf("/jobs/%d/", jobID), accessToken)
	if err != nil {
		return nil, err
	}

	var job domain.JobSummary
	if err := json.Unmarshal(body, &job); err != nil {
		return nil, errors.Network("failed to decode job", err)
	}
	return &job, nil
}

// ListApplications fetches the user's full application history. The service
// offers no per-job filter, so the reconciler scans the whole list.
func (c *Client) ListApplications(ctx context.Context, accessToken string, userID int64) ([]domain.ApplicationRecord, error) {
	body, err := c.getJSON(ctx, "applications", fmt.Sprintf("/applications/%d/", userID), accessToken)
	if err != nil {
		return nil, err
	}

	var records []domain.ApplicationRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, errors.Network("failed to decode application history", err)
	}
	return records, nil
}

// Apply submits an application as multipart form data, streaming the resume
// through when one is attached.
func (c *Client) Apply(ctx context.Context, accessToken string, userID int64, draft domain.ApplicationDraft) (string, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	fields := map[string]string{
		"job":          strconv.FormatInt(draft.JobID, 10),
		"applicant":    strconv.FormatInt(userID, 10),
		"cover_letter": draft.CoverLetter,
		"phone":        draft.Phone,
		"linkedin":     draft.LinkedIn,
	}
	for name, value := range fields {
		if value == "" && name != "job" && name != "applicant" {
			continue
		}
		if err := form.WriteField(name, value); err != nil {
			return "", errors.Internal("failed to encode application form", err)
		}
	}

	if len(draft.ResumeContent) > 0 {
		part, err := form.CreateFormFile("resume", draft.ResumeName)
		if err != nil {
			return "", errors.Internal("failed to encode resume", err)
		}
		if _, err := part.Write(draft.ResumeContent); err != nil {
			return "", errors.Internal("failed to encode resume", err)
		}
	}

	if err := form.Close(); err != nil {
		return "", errors.Internal("failed to finalize application form", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/apply/", &buf)
	if err != nil {
		return "", errors.Internal("failed to create apply request", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, body, err := c.send(ctx, "apply", req)
	if err != nil {
		return "", err
	}

	switch {
	case resp.StatusCode == http.StatusCreated || resp.StatusCode == http.StatusOK:
		return messageOf(body, "Application submitted successfully"), nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", errors.Unauthorized(messageOf(body, "authorization rejected"))
	case resp.StatusCode == http.StatusNotFound:
		return "", errors.NotFound(messageOf(body, "not found"))
	case resp.StatusCode == http.StatusBadRequest:
		// Includes the duplicate-application rejection.
		return "", errors.Conflict(messageOf(body, "Application failed"))
	default:
		return "", errors.Internal(fmt.Sprintf("apply returned status %d", resp.StatusCode), nil)
	}
}

// --- transport helpers ---

// postJSON issues a POST without retries: credential and application
// submissions are not idempotent.
func (c *Client) postJSON(ctx context.Context, endpoint, path string, payload []byte) (*http.Response, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, nil, errors.Internal("failed to create request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.send(ctx, endpoint, req)
}

// getJSON issues a GET with retry on transient failures, mapping any non-2xx
// status to its error kind.
func (c *Client) getJSON(ctx context.Context, endpoint, path, accessToken string) ([]byte, error) {
	return retry.Do(ctx, c.getPolicy, classifyForRetry, func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return nil, errors.Internal("failed to create request", err)
		}
		if accessToken != "" {
			req.Header.Set("Authorization", "Bearer "+accessToken)
		}

		resp, body, err := c.send(ctx, endpoint, req)
		if err != nil {
			return nil, err
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return body, nil
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return nil, errors.Unauthorized(messageOf(body, "authorization rejected"))
		case resp.StatusCode == http.StatusNotFound:
			return nil, errors.NotFound(messageOf(body, "not found"))
		case resp.StatusCode >= 500:
			return nil, errors.Network(fmt.Sprintf("%s returned status %d", endpoint, resp.StatusCode), nil)
		default:
			return nil, errors.Internal(fmt.Sprintf("%s returned status %d", endpoint, resp.StatusCode), nil)
		}
	})
}

func classifyForRetry(err error) retry.Action {
	if stderrors.Is(err, gobreaker.ErrOpenState) || stderrors.Is(err, gobreaker.ErrTooManyRequests) {
		// Backing off won't outlast the breaker window; fail fast.
		return retry.Stop
	}
	if errors.IsKind(err, errors.KindNetwork) {
		return retry.Retry
	}
	return retry.Stop
}

// send executes the request through the circuit breaker, records metrics,
// forwards the correlation ID, and drains the body.
func (c *Client) send(ctx context.Context, endpoint string, req *http.Request) (*http.Response, []byte, error) {
	req.Header.Set("Accept", "application/json")
	if id, ok := correlation.ID(ctx); ok {
		req.Header.Set(correlation.Header, id)
	}

	start := time.Now()
	result, err := c.breaker.Execute(func() (any, error) {
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, errors.Network("job service unreachable", err)
		}
		return resp, nil
	})
	metrics.UpstreamRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(endpoint, "network").Inc()
		if stderrors.Is(err, gobreaker.ErrOpenState) || stderrors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, nil, errors.Network("job service temporarily unavailable", err)
		}
		return nil, nil, errors.AsStructured(err)
	}

	resp := result.(*http.Response)
	defer resp.Body.Close()
	metrics.UpstreamRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, errors.Network("failed to read response body", err)
	}
	return resp, body, nil
}

// messageOf extracts the {"message": ...} field most responses carry,
// falling back when the body is empty or malformed.
func messageOf(body []byte, fallback string) string {
	var decoded struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil || decoded.Message == "" {
		return fallback
	}
	return decoded.Message
}

// fieldErrorsOf extracts per-field validation messages. The service sends
// them as field -> list of strings; the declared contract is field ->
// string, so both shapes are accepted and the first message wins.
func fieldErrorsOf(body []byte) map[string]string {
	var decoded struct {
		Errors map[string]json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil || len(decoded.Errors) == 0 {
		return nil
	}

	fields := make(map[string]string, len(decoded.Errors))
	for name, raw := range decoded.Errors {
		var list []string
		if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
			fields[name] = list[0]
			continue
		}
		var single string
		if err := json.Unmarshal(raw, &single); err == nil {
			fields[name] = single
		}
	}
	return fields
}
