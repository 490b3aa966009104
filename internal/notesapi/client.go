// Package notesapi implements storage.Provider against a remote notes REST
// API (the /api/notes routes served by revue itself).
package notesapi

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/starford/revue/internal/models"
	"github.com/starford/revue/internal/storage"
)

// ErrMoveUnsupported is returned by Move; the remote API has no rename route.
var ErrMoveUnsupported = errors.New("notesapi: move not supported")

const pageSize = 200

// Config configures a Client.
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// Client talks to a remote notes API.
type Client struct {
	http *resty.Client
}

var _ storage.Provider = (*Client)(nil)

type noteDetail struct {
	Path     string `json:"path"`
	Content  string `json:"content"`
	Checksum string `json:"checksum"`
}

type noteList struct {
	Notes []models.NoteMetadata `json:"notes"`
	Total int                   `json:"total"`
}

type errorBody struct {
	Error string `json:"error"`
}

// New creates a Client. An empty BaseURL defaults to localhost:8080.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8080"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	cli := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json").
		SetError(&errorBody{})
	if cfg.Token != "" {
		cli.SetAuthToken(cfg.Token)
	}
	return &Client{http: cli}
}

// List pages through /api/notes and returns every note under dir.
func (c *Client) List(dir string) ([]models.NoteMetadata, error) {
	prefix := strings.Trim(dir, "/")
	var out []models.NoteMetadata
	for offset := 0; ; offset += pageSize {
		var page noteList
		resp, err := c.http.R().
			SetQueryParam("limit", fmt.Sprint(pageSize)).
			SetQueryParam("offset", fmt.Sprint(offset)).
			SetResult(&page).
			Get("/api/notes")
		if err != nil {
			return nil, fmt.Errorf("notesapi: list: %w", err)
		}
		if err := mapError(resp, "list"); err != nil {
			return nil, err
		}
		for _, n := range page.Notes {
			if prefix == "" || strings.HasPrefix(n.Path, prefix+"/") {
				out = append(out, n)
			}
		}
		if len(page.Notes) == 0 || offset+len(page.Notes) >= page.Total {
			return out, nil
		}
	}
}

// Read fetches a note's raw content.
func (c *Client) Read(path string) ([]byte, error) {
	var note noteDetail
	resp, err := c.http.R().SetResult(&note).Get(notePath(path))
	if err != nil {
		return nil, fmt.Errorf("notesapi: read %s: %w", path, err)
	}
	if err := mapError(resp, "read "+path); err != nil {
		return nil, err
	}
	return []byte(note.Content), nil
}

// Write updates the note, creating it when the server reports it missing.
func (c *Client) Write(path string, content []byte) error {
	resp, err := c.http.R().
		SetBody(map[string]string{"content": string(content)}).
		Put(notePath(path))
	if err != nil {
		return fmt.Errorf("notesapi: write %s: %w", path, err)
	}
	if resp.StatusCode() != http.StatusNotFound {
		return mapError(resp, "write "+path)
	}

	resp, err = c.http.R().
		SetBody(map[string]string{"path": path, "content": string(content)}).
		Post("/api/notes")
	if err != nil {
		return fmt.Errorf("notesapi: create %s: %w", path, err)
	}
	return mapError(resp, "create "+path)
}

// Delete removes a note.
func (c *Client) Delete(path string) error {
	resp, err := c.http.R().Delete(notePath(path))
	if err != nil {
		return fmt.Errorf("notesapi: delete %s: %w", path, err)
	}
	return mapError(resp, "delete "+path)
}

// Move is not offered by the remote API.
func (c *Client) Move(_, _ string) error {
	return ErrMoveUnsupported
}

func notePath(p string) string {
	parts := strings.Split(strings.Trim(p, "/"), "/")
	for i, s := range parts {
		parts[i] = url.PathEscape(s)
	}
	return "/api/notes/" + strings.Join(parts, "/")
}

// mapError turns a non-2xx response into an error. 404 wraps os.ErrNotExist
// so callers can treat remote and local stores alike.
func mapError(resp *resty.Response, op string) error {
	if !resp.IsError() {
		return nil
	}
	msg := strings.TrimSpace(string(resp.Body()))
	if e, ok := resp.Error().(*errorBody); ok && e.Error != "" {
		msg = e.Error
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode())
	}
	if resp.StatusCode() == http.StatusNotFound {
		return fmt.Errorf("notesapi: %s: %w", op, os.ErrNotExist)
	}
	return fmt.Errorf("notesapi: %s: http %d: %s", op, resp.StatusCode(), msg)
}
