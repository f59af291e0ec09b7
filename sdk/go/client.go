package fleetsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is a minimal Fleetline HTTP API client.
type Client struct {
	BaseURL     string
	BasePath    string
	BearerToken string
	HTTPClient  *http.Client
	Timeout     time.Duration
}

// New creates a client with sane defaults.
func New(baseURL string) *Client {
	return &Client{
		BaseURL:  baseURL,
		BasePath: "/v0",
		Timeout:  10 * time.Second,
	}
}

// User is the signed-in identity.
type User struct {
	ID    string `json:"id"`
	Role  string `json:"role"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Ship represents the API ship model.
type Ship struct {
	ID        string  `json:"id,omitempty"`
	Name      string  `json:"name"`
	IMO       string  `json:"imo,omitempty"`
	Flag      string  `json:"flag,omitempty"`
	Status    string  `json:"status"`
	Type      string  `json:"type,omitempty"`
	YearBuilt int     `json:"yearBuilt,omitempty"`
	Length    float64 `json:"length,omitempty"`
	Owner     string  `json:"owner,omitempty"`
}

// Component represents the API component model (partial).
type Component struct {
	ID                  string `json:"id"`
	ShipID              string `json:"shipId"`
	Name                string `json:"name"`
	SerialNumber        string `json:"serialNumber"`
	NextMaintenanceDate string `json:"nextMaintenanceDate"`
	Status              string `json:"status"`
}

// Job represents a maintenance job.
type Job struct {
	ID                 string  `json:"id,omitempty"`
	ComponentID        string  `json:"componentId"`
	ShipID             string  `json:"shipId"`
	Type               string  `json:"type"`
	Priority           string  `json:"priority"`
	Status             string  `json:"status,omitempty"`
	AssignedEngineerID string  `json:"assignedEngineerId,omitempty"`
	ScheduledDate      string  `json:"scheduledDate,omitempty"`
	CompletedDate      *string `json:"completedDate,omitempty"`
	Title              string  `json:"title"`
	Description        string  `json:"description,omitempty"`
	EstimatedHours     float64 `json:"estimatedHours,omitempty"`
}

// JobUpdate carries the fields to change; nil fields are left alone.
type JobUpdate struct {
	Status        *string `json:"status,omitempty"`
	Priority      *string `json:"priority,omitempty"`
	ScheduledDate *string `json:"scheduledDate,omitempty"`
	CompletedDate *string `json:"completedDate,omitempty"`
	Title         *string `json:"title,omitempty"`
	Description   *string `json:"description,omitempty"`
}

// Notification represents an inbox entry.
type Notification struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"createdAt"`
}

// APIError wraps non-2xx responses.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error: status=%d code=%s message=%s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("api error: status=%d body=%s", e.StatusCode, e.Body)
}

// Login exchanges roster credentials for a bearer token and keeps it on the client.
func (c *Client) Login(ctx context.Context, email, password string) (User, error) {
	var resp struct {
		Token string `json:"token"`
		User  User   `json:"user"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "auth/login", body, &resp); err != nil {
		return User{}, err
	}
	c.BearerToken = resp.Token
	return resp.User, nil
}

// Ships lists ships matching search, which may be empty.
func (c *Client) Ships(ctx context.Context, search string) ([]Ship, error) {
	endpoint := "ships"
	if search != "" {
		endpoint += "?search=" + url.QueryEscape(search)
	}
	var resp struct {
		Items []Ship `json:"items"`
	}
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp.Items, err
}

// CreateShip adds a ship. Admin only.
func (c *Client) CreateShip(ctx context.Context, s Ship) (Ship, error) {
	var resp Ship
	err := c.do(ctx, http.MethodPost, "ships", s, &resp)
	return resp, err
}

// Components lists the components of a ship, or all when shipID is empty.
func (c *Client) Components(ctx context.Context, shipID string) ([]Component, error) {
	endpoint := "components"
	if shipID != "" {
		endpoint += "?ship_id=" + url.QueryEscape(shipID)
	}
	var resp struct {
		Items []Component `json:"items"`
	}
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp.Items, err
}

// Jobs lists jobs, optionally filtered by status.
func (c *Client) Jobs(ctx context.Context, status string) ([]Job, error) {
	endpoint := "jobs"
	if status != "" {
		endpoint += "?status=" + url.QueryEscape(status)
	}
	var resp struct {
		Items []Job `json:"items"`
	}
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp.Items, err
}

// CreateJob schedules a job.
func (c *Client) CreateJob(ctx context.Context, j Job) (Job, error) {
	var resp Job
	err := c.do(ctx, http.MethodPost, "jobs", j, &resp)
	return resp, err
}

// UpdateJob changes a job. found is false when the id does not exist.
func (c *Client) UpdateJob(ctx context.Context, id string, u JobUpdate) (found bool, err error) {
	var resp struct {
		Found bool `json:"found"`
	}
	err = c.do(ctx, http.MethodPatch, "jobs/"+url.PathEscape(id), u, &resp)
	return resp.Found, err
}

// Notifications returns the inbox, newest first, with the unread count.
func (c *Client) Notifications(ctx context.Context, unreadOnly bool) ([]Notification, int, error) {
	endpoint := "notifications"
	if unreadOnly {
		endpoint += "?unread=true"
	}
	var resp struct {
		Items  []Notification `json:"items"`
		Unread int            `json:"unread"`
	}
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp.Items, resp.Unread, err
}

// MarkRead marks one notification read.
func (c *Client) MarkRead(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "notifications/"+url.PathEscape(id)+"/read", nil, nil)
}

// MarkAllRead marks the whole inbox read and returns how many changed.
func (c *Client) MarkAllRead(ctx context.Context) (int, error) {
	var resp struct {
		Updated int `json:"updated"`
	}
	err := c.do(ctx, http.MethodPost, "notifications/read-all", nil, &resp)
	return resp.Updated, err
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	url := c.base() + "/" + strings.TrimLeft(endpoint, "/")
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.BearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.BearerToken)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(b)}
		var env struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(b, &env) == nil {
			apiErr.Code, apiErr.Message = env.Error.Code, env.Error.Message
		}
		return apiErr
	}
	if out != nil && resp.StatusCode != http.StatusNoContent {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) base() string {
	base := strings.TrimRight(c.BaseURL, "/")
	if p := strings.Trim(c.BasePath, "/"); p != "" {
		base += "/" + p
	}
	return base
}
