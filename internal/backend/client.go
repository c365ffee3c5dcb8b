package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/lcamargo/docchat/internal/model"
	"go.uber.org/zap"
)

// Client talks to the question-answering backend over HTTP/JSON. Every
// call is fire-once: no retry, no backoff, no timeout beyond the one on
// the underlying http.Client. Methods taking a token attach it as a bearer
// credential when non-empty; callers decide whether a collection is
// private and therefore whether a token travels at all.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// New creates a client for the backend at baseURL.
func New(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Health probes the backend.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", "", nil, nil)
}

// ListCollections fetches one page of the collection listing.
func (c *Client) ListCollections(ctx context.Context, page, pageSize int) (*model.CollectionPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("page_size", strconv.Itoa(pageSize))
	var out model.CollectionPage
	if err := c.do(ctx, http.MethodGet, "/collections?"+q.Encode(), "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateCollection creates a collection. The backend expects the access
// code in the body when the collection is private.
func (c *Client) CreateCollection(ctx context.Context, req model.CreateCollectionRequest) (*model.Collection, error) {
	var out model.Collection
	if err := c.do(ctx, http.MethodPost, "/collections", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteCollection removes a collection.
func (c *Client) DeleteCollection(ctx context.Context, id, token string) error {
	return c.do(ctx, http.MethodDelete, "/collections/"+url.PathEscape(id), token, nil, nil)
}

// Unlock exchanges a private collection's access code for a bearer token.
func (c *Client) Unlock(ctx context.Context, id, code string) (*model.UnlockResult, error) {
	body := map[string]string{"code": code}
	var out model.UnlockResult
	if err := c.do(ctx, http.MethodPost, "/collections/"+url.PathEscape(id)+"/unlock", "", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListDocuments fetches a collection's document rows.
func (c *Client) ListDocuments(ctx context.Context, id, token string) ([]model.FileEntry, error) {
	var out []model.FileEntry
	if err := c.do(ctx, http.MethodGet, "/collections/"+url.PathEscape(id)+"/documents", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListMessages fetches a collection's chat history.
func (c *Client) ListMessages(ctx context.Context, id, token string) ([]model.ChatMessage, error) {
	var out []model.ChatMessage
	if err := c.do(ctx, http.MethodGet, "/collections/"+url.PathEscape(id)+"/messages", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteDocument removes a single document from a collection.
func (c *Client) DeleteDocument(ctx context.Context, id, docID, token string) error {
	path := "/collections/" + url.PathEscape(id) + "/documents/" + url.PathEscape(docID)
	return c.do(ctx, http.MethodDelete, path, token, nil, nil)
}

// Ask submits a question against a collection.
func (c *Client) Ask(ctx context.Context, id, question string, k int, token string) (*model.Answer, error) {
	body := map[string]any{"question": question, "k": k}
	var out model.Answer
	if err := c.do(ctx, http.MethodPost, "/collections/"+url.PathEscape(id)+"/ask", token, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AskSession submits a question in the no-collection fallback mode,
// carrying the durable chat session id.
func (c *Client) AskSession(ctx context.Context, question, sessionID string) (*model.Answer, error) {
	body := map[string]any{"question": question}
	if sessionID != "" {
		body["session_id"] = sessionID
	}
	var out model.Answer
	if err := c.do(ctx, http.MethodPost, "/ask", "", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Upload sends files as one multipart batch to a collection.
func (c *Client) Upload(ctx context.Context, id string, files []model.LocalFile, token string) (*model.UploadResult, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, lf := range files {
		part, err := w.CreateFormFile("files", lf.Filename)
		if err != nil {
			return nil, fmt.Errorf("create form file: %w", err)
		}
		f, err := os.Open(lf.Path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", lf.Path, err)
		}
		_, err = io.Copy(part, f)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", lf.Path, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finish multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload/"+url.PathEscape(id), &buf)
	if err != nil {
		return nil, fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	var out model.UploadResult
	if err := c.send(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug("backend call",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Message: readErrorMessage(resp.Body)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// readErrorMessage pulls a human-readable message out of an error body,
// tolerating the common {detail}, {error} and {message} envelopes.
func readErrorMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(data) == 0 {
		return ""
	}
	var envelope struct {
		Detail  string `json:"detail"`
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &envelope) == nil {
		for _, s := range []string{envelope.Detail, envelope.Error, envelope.Message} {
			if s != "" {
				return s
			}
		}
	}
	return string(data)
}
