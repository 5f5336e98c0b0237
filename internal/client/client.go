package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"notehub/internal/model"
)

// APIError is a non-2xx response decoded from the server's error body.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d (%s): %s", e.StatusCode, e.Code, e.Message)
}

// NotePayload is the body for note creation.
type NotePayload struct {
	Title      string             `json:"title"`
	Content    string             `json:"content"`
	IsFavorite bool               `json:"is_favorite"`
	Images     []model.Attachment `json:"images,omitempty"`
	Audio      *model.Attachment  `json:"audio,omitempty"`
}

// NotePatch is a partial update body; nil fields are omitted.
type NotePatch struct {
	Title      *string             `json:"title,omitempty"`
	Content    *string             `json:"content,omitempty"`
	IsFavorite *bool               `json:"is_favorite,omitempty"`
	Images     *[]model.Attachment `json:"images,omitempty"`
	Audio      *model.Attachment   `json:"audio,omitempty"`
}

// Client talks to the notes API.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

// New creates a client for the given base URL (scheme://host:port).
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// SetToken sets the bearer token used on subsequent requests.
func (c *Client) SetToken(token string) {
	c.token = token
}

// Login authenticates and remembers the returned access token.
func (c *Client) Login(ctx context.Context, email, password string) error {
	body := map[string]string{"email": email, "password": password}
	var resp struct {
		AccessToken string `json:"access_token"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &resp); err != nil {
		return err
	}
	c.token = resp.AccessToken
	return nil
}

// CreateNote creates a note and returns the server-assigned entity.
func (c *Client) CreateNote(ctx context.Context, payload NotePayload) (*model.Note, error) {
	var note model.Note
	if err := c.do(ctx, http.MethodPost, "/api/notes", payload, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

// ListNotes fetches the caller's notes, optionally filtered.
func (c *Client) ListNotes(ctx context.Context, search string, favoritesOnly bool) ([]model.Note, error) {
	q := url.Values{}
	if search != "" {
		q.Set("search", search)
	}
	if favoritesOnly {
		q.Set("favorites", "true")
	}
	path := "/api/notes"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var notes []model.Note
	if err := c.do(ctx, http.MethodGet, path, nil, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// GetNote fetches a single note by id.
func (c *Client) GetNote(ctx context.Context, id uuid.UUID) (*model.Note, error) {
	var note model.Note
	if err := c.do(ctx, http.MethodGet, "/api/notes/"+id.String(), nil, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

// UpdateNote applies a partial patch and returns the updated entity.
func (c *Client) UpdateNote(ctx context.Context, id uuid.UUID, patch NotePatch) (*model.Note, error) {
	var note model.Note
	if err := c.do(ctx, http.MethodPut, "/api/notes/"+id.String(), patch, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

// DeleteNote deletes a note by id.
func (c *Client) DeleteNote(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/notes/"+id.String(), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var errBody struct {
			Error string `json:"error"`
			Code  string `json:"code"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errBody); err == nil {
			apiErr.Code = errBody.Code
			apiErr.Message = errBody.Error
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
