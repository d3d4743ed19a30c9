// Package apiclient is the Panel Peace API client used by the CLI. It keeps
// the login session, caches read responses, and checks every read against
// the embedded JSON Schemas before decoding it.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/panel-peace/internal/schemas"
	"github.com/jonathan/panel-peace/internal/types"
	"github.com/jonathan/panel-peace/internal/views"
)

const defaultTimeout = 30 * time.Second

// Client talks to a Panel Peace server.
type Client struct {
	baseURL string
	http    *http.Client
	session *Session
	cache   *Cache
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a client for baseURL that keeps its login in session.
func New(baseURL string, session *Session, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		session: session,
		cache:   NewCache(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session returns the client's session.
func (c *Client) Session() *Session {
	return c.session
}

// ProjectList is the response of the project list endpoint.
type ProjectList struct {
	Projects []views.ProjectCard `json:"projects"`
	Stats    views.ProjectStats  `json:"stats"`
}

// ProjectDetail is a project with its ordered workflow steps.
type ProjectDetail struct {
	Project views.ProjectCard `json:"project"`
	Steps   []views.StepRow   `json:"steps"`
}

// ProgressResult is the response of a step progress update.
type ProgressResult struct {
	Step            views.StepRow `json:"step"`
	Completed       int           `json:"completed"`
	Total           int           `json:"total"`
	ProjectProgress int           `json:"project_progress"`
}

// -----------------------------------------------------------------------------
// Session
// -----------------------------------------------------------------------------

// Login exchanges credentials for a token and stores the session.
func (c *Client) Login(ctx context.Context, email, password string) (*types.User, error) {
	body, err := c.send(ctx, http.MethodPost, "/auth/login", false,
		types.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, wrap(OpSave, "session", err)
	}
	if err := schemas.Validate(schemas.Login, body); err != nil {
		return nil, wrap(OpSave, "session", err)
	}

	var resp types.LoginResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, wrap(OpSave, "session", err)
	}
	if err := c.session.Set(ctx, &resp); err != nil {
		return nil, wrap(OpSave, "session", err)
	}
	c.cache.Invalidate("")
	return resp.User, nil
}

// Logout forgets the session and every cached response.
func (c *Client) Logout(ctx context.Context) error {
	c.cache.Invalidate("")
	if err := c.session.Clear(ctx); err != nil {
		return wrap(OpSave, "session", err)
	}
	return nil
}

// -----------------------------------------------------------------------------
// Reads
// -----------------------------------------------------------------------------

// Projects lists projects, optionally filtered by status.
func (c *Client) Projects(ctx context.Context, status string) (*ProjectList, error) {
	path := "/projects"
	if status != "" {
		path += "?" + url.Values{"status": {status}}.Encode()
	}
	var out ProjectList
	if err := c.read(ctx, path, "projects", &out, schemas.ProjectList); err != nil {
		return nil, err
	}
	return &out, nil
}

// Project loads one project with its steps.
func (c *Client) Project(ctx context.Context, id uuid.UUID) (*ProjectDetail, error) {
	path := "/projects/" + id.String()
	body, err := c.cached(ctx, path)
	if err != nil {
		return nil, wrap(OpLoad, "project", err)
	}

	var raw struct {
		Project json.RawMessage `json:"project"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, wrap(OpLoad, "project", err)
	}
	if err := schemas.Validate(schemas.Project, raw.Project); err != nil {
		return nil, wrap(OpLoad, "project", err)
	}
	if err := schemas.Validate(schemas.StepList, body); err != nil {
		return nil, wrap(OpLoad, "project", err)
	}

	var out ProjectDetail
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, wrap(OpLoad, "project", err)
	}
	return &out, nil
}

// Steps lists a project's steps in workflow order.
func (c *Client) Steps(ctx context.Context, projectID uuid.UUID) ([]views.StepRow, error) {
	var out struct {
		Steps []views.StepRow `json:"steps"`
	}
	if err := c.read(ctx, "/projects/"+projectID.String()+"/steps", "steps", &out, schemas.StepList); err != nil {
		return nil, err
	}
	return out.Steps, nil
}

// UpcomingDeadlines lists pending deadlines due within days. Zero uses the
// server's default window.
func (c *Client) UpcomingDeadlines(ctx context.Context, days int) ([]views.DeadlineRow, error) {
	path := "/deadlines/upcoming"
	if days > 0 {
		path += "?days=" + strconv.Itoa(days)
	}
	var out struct {
		Deadlines []views.DeadlineRow `json:"deadlines"`
	}
	if err := c.read(ctx, path, "deadlines", &out, schemas.DeadlineList); err != nil {
		return nil, err
	}
	return out.Deadlines, nil
}

// Dashboard loads the landing summary.
func (c *Client) Dashboard(ctx context.Context) (*views.Dashboard, error) {
	var out views.Dashboard
	if err := c.read(ctx, "/dashboard", "dashboard", &out, schemas.Dashboard); err != nil {
		return nil, err
	}
	return &out, nil
}

// -----------------------------------------------------------------------------
// Mutations
// -----------------------------------------------------------------------------

// UpdateProjectStatus sets a project's status.
func (c *Client) UpdateProjectStatus(ctx context.Context, id uuid.UUID, status string) (*views.ProjectCard, error) {
	var out views.ProjectCard
	err := c.write(ctx, http.MethodPut, "/projects/"+id.String()+"/status", "project",
		types.UpdateStatusRequest{Status: status}, &out)
	if err != nil {
		return nil, err
	}
	c.cache.Invalidate("/projects", "/dashboard")
	return &out, nil
}

// UpdateStepStatus moves a step through its workflow.
func (c *Client) UpdateStepStatus(ctx context.Context, id uuid.UUID, status string) (*views.StepRow, error) {
	var out views.StepRow
	err := c.write(ctx, http.MethodPut, "/steps/"+id.String()+"/status", "step",
		types.UpdateStatusRequest{Status: status}, &out)
	if err != nil {
		return nil, err
	}
	c.cache.Invalidate("/projects/" + out.ProjectID.String())
	return &out, nil
}

// UpdateStepProgress records step progress. The project's aggregate progress
// changes with it, so project lists and the dashboard are dropped too.
func (c *Client) UpdateStepProgress(ctx context.Context, id uuid.UUID, req types.UpdateProgressRequest) (*ProgressResult, error) {
	var out ProgressResult
	if err := c.write(ctx, http.MethodPut, "/steps/"+id.String()+"/progress", "step progress", req, &out); err != nil {
		return nil, err
	}
	c.cache.Invalidate("/projects", "/dashboard")
	return &out, nil
}

// CreateDeadline adds a deadline to a project.
func (c *Client) CreateDeadline(ctx context.Context, projectID uuid.UUID, req types.CreateDeadlineRequest) (*views.DeadlineRow, error) {
	var out views.DeadlineRow
	if err := c.write(ctx, http.MethodPost, "/projects/"+projectID.String()+"/deadlines", "deadline", req, &out); err != nil {
		return nil, err
	}
	c.cache.Invalidate("/projects/"+projectID.String(), "/deadlines", "/dashboard")
	return &out, nil
}

// -----------------------------------------------------------------------------
// Transport
// -----------------------------------------------------------------------------

func (c *Client) read(ctx context.Context, path, resource string, out any, schema string) error {
	body, err := c.cached(ctx, path)
	if err != nil {
		return wrap(OpLoad, resource, err)
	}
	if err := schemas.Validate(schema, body); err != nil {
		return wrap(OpLoad, resource, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return wrap(OpLoad, resource, err)
	}
	return nil
}

func (c *Client) cached(ctx context.Context, path string) ([]byte, error) {
	return c.cache.Get(ctx, path, func(ctx context.Context) ([]byte, error) {
		return c.send(ctx, http.MethodGet, path, true, nil)
	})
}

func (c *Client) write(ctx context.Context, method, path, resource string, in, out any) error {
	body, err := c.send(ctx, method, path, true, in)
	if err != nil {
		return wrap(OpSave, resource, err)
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return wrap(OpSave, resource, err)
	}
	return nil
}

// send performs one request and returns the body of a 2xx response.
func (c *Client) send(ctx context.Context, method, path string, auth bool, in any) ([]byte, error) {
	var reqBody io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		token, err := c.session.Token(ctx)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &statusError{status: resp.StatusCode, message: errorMessage(body, resp.Status)}
	}
	return body, nil
}

type statusError struct {
	status  int
	message string
}

func (e *statusError) Error() string {
	return e.message
}

func errorMessage(body []byte, fallback string) string {
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
		return payload.Error
	}
	return fallback
}

func wrap(op Op, resource string, err error) error {
	e := &Error{Op: op, Resource: resource, Err: err}
	if se, ok := err.(*statusError); ok {
		e.Status = se.status
		e.Message = se.message
	}
	return e
}
