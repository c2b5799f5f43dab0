package messenger

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

	"github.com/ahmetcoskunkizilkaya/advocate-bot/internal/dto"
)

// Gateway is the outbound side of the messaging platform.
type Gateway interface {
	Send(ctx context.Context, req dto.SendRequest) (*dto.SendResponse, error)
	Profile(ctx context.Context, userID string) (*dto.Profile, error)
}

// APIError is returned for non-2xx Graph API responses.
type APIError struct {
	Status  int
	Code    int
	Message string
	TraceID string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("graph api http %d", e.Status)
	}
	return fmt.Sprintf("graph api http %d (code %d): %s", e.Status, e.Code, e.Message)
}

// Client calls the Graph API with a page access token. It never retries.
type Client struct {
	http    *http.Client
	baseURL string
	token   string
}

func NewClient(httpClient *http.Client, baseURL, pageAccessToken string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   pageAccessToken,
	}
}

func (c *Client) Send(ctx context.Context, req dto.SendRequest) (*dto.SendResponse, error) {
	if req.Recipient.ID == "" {
		return nil, fmt.Errorf("recipient id is required")
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal send request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/me/messages", nil), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	var out dto.SendResponse
	if err := c.do(httpReq, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Profile(ctx context.Context, userID string) (*dto.Profile, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}
	q := url.Values{"fields": {"first_name,last_name,profile_pic"}}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/"+url.PathEscape(userID), q), nil)
	if err != nil {
		return nil, err
	}

	var out dto.Profile
	if err := c.do(httpReq, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) endpoint(path string, q url.Values) string {
	if q == nil {
		q = url.Values{}
	}
	q.Set("access_token", c.token)
	return c.baseURL + path + "?" + q.Encode()
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("graph api request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read graph api response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		var ge dto.GraphError
		if json.Unmarshal(raw, &ge) == nil {
			apiErr.Code = ge.Error.Code
			apiErr.Message = ge.Error.Message
			apiErr.TraceID = ge.Error.FBTraceID
		}
		return apiErr
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode graph api response: %w", err)
	}
	return nil
}
