// Package client talks to the folder tree API and keeps optimistic local
// copies of the trees it edits.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"assetdesk/internal/domain"
	"assetdesk/internal/domain/models/foldertree"
	svc "assetdesk/internal/domain/services"
)

// Client calls the HTTP API on behalf of one user.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a client for the server at baseURL. token is sent as a bearer
// token when non-empty.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError is a problem details response from the server.
type APIError struct {
	StatusCode   int    `json:"-"`
	Title        string `json:"title"`
	Detail       string `json:"detail"`
	ResourceType string `json:"resource_type"`
	ResourceID   string `json:"resource_id"`
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%d %s: %s", e.StatusCode, e.Title, e.Detail)
	}
	return fmt.Sprintf("%d %s", e.StatusCode, e.Title)
}

// Unwrap maps the status back to a domain error, so callers can use errors.Is.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusBadRequest:
		return domain.ErrValidation
	case http.StatusUnauthorized:
		return domain.ErrUnauthorized
	case http.StatusForbidden:
		return domain.ErrForbidden
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusRequestEntityTooLarge:
		return domain.ErrTooLarge
	case http.StatusConflict:
		if e.ResourceType == "tree" {
			return domain.ErrVersionConflict
		}
		return domain.ErrConflict
	default:
		return nil
	}
}

func (c *Client) treeURL(assetID string, kind foldertree.Kind) string {
	return fmt.Sprintf("%s/api/assets/%s/%s", c.baseURL, url.PathEscape(assetID), kind)
}

// GetTree fetches the flat tree and its version
func (c *Client) GetTree(ctx context.Context, assetID string, kind foldertree.Kind) (*foldertree.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.treeURL(assetID, kind), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var snap foldertree.Snapshot
	if err := c.do(req, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// PutTree replaces the tree. version is the version tree was derived from.
func (c *Client) PutTree(ctx context.Context, assetID string, kind foldertree.Kind, tree foldertree.Tree, version int64) (*foldertree.Snapshot, error) {
	payload, err := json.Marshal(map[string]foldertree.Tree{"tree": tree})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tree: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.treeURL(assetID, kind), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("If-Match", strconv.Quote(strconv.FormatInt(version, 10)))

	var snap foldertree.Snapshot
	if err := c.do(req, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// GetNestedTree fetches the nested view with folder paths
func (c *Client) GetNestedTree(ctx context.Context, assetID string, kind foldertree.Kind) (*foldertree.Node, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.treeURL(assetID, kind)+"/tree", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var node foldertree.Node
	if err := c.do(req, &node); err != nil {
		return nil, err
	}
	return &node, nil
}

// Upload sends content as a multipart form. The server places the file in
// folderID (nil = root) and returns it with the new tree version.
func (c *Client) Upload(ctx context.Context, assetID string, kind foldertree.Kind, folderID *string, name string, content io.Reader) (*svc.FileResult, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		err := func() error {
			if folderID != nil {
				if err := mw.WriteField("folder_id", *folderID); err != nil {
					return err
				}
			}
			part, err := mw.CreateFormFile("file", name)
			if err != nil {
				return err
			}
			if _, err := io.Copy(part, content); err != nil {
				return err
			}
			return mw.Close()
		}()
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.treeURL(assetID, kind)+"/files", pr)
	if err != nil {
		pr.Close()
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var result svc.FileResult
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// do sends req and decodes a JSON response into dest, or a problem response into an *APIError.
func (c *Client) do(req *http.Request, dest interface{}) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Title: http.StatusText(resp.StatusCode)}
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if len(body) > 0 && json.Unmarshal(body, apiErr) != nil {
			apiErr.Detail = strings.TrimSpace(string(body))
		}
		return apiErr
	}

	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
