package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lcamargo/docchat/internal/model"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, 5*time.Second, nil)
}

func TestListCollections(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collections" {
			t.Errorf("path = %q, want /collections", r.URL.Path)
		}
		if got := r.URL.Query().Get("page"); got != "2" {
			t.Errorf("page = %q, want 2", got)
		}
		if got := r.URL.Query().Get("page_size"); got != "20" {
			t.Errorf("page_size = %q, want 20", got)
		}
		_ = json.NewEncoder(w).Encode(model.CollectionPage{
			Items:      []model.Collection{{ID: "c1", Name: "Taxes", DocumentCount: 3}},
			Pagination: model.PaginationMeta{Page: 2, PageSize: 20, Total: 21, TotalPages: 2},
		})
	})

	page, err := c.ListCollections(context.Background(), 2, 20)
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Items) != 1 || page.Items[0].Name != "Taxes" {
		t.Errorf("items = %+v, want one Taxes collection", page.Items)
	}
	if page.Pagination.TotalPages != 2 {
		t.Errorf("total_pages = %d, want 2", page.Pagination.TotalPages)
	}
}

func TestBearerTokenAttachedWhenGiven(t *testing.T) {
	var gotAuth string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte("[]"))
	})

	if _, err := c.ListDocuments(context.Background(), "c1", "secret"); err != nil {
		t.Fatal(err)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("Authorization = %q, want Bearer secret", gotAuth)
	}

	if _, err := c.ListDocuments(context.Background(), "c1", ""); err != nil {
		t.Fatal(err)
	}
	if gotAuth != "" {
		t.Errorf("Authorization = %q, want empty for tokenless call", gotAuth)
	}
}

func TestUnauthorizedError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"invalid code"}`))
	})

	_, err := c.Unlock(context.Background(), "c1", "0000")
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsUnauthorized(err) {
		t.Errorf("IsUnauthorized = false for %v", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "invalid code" {
		t.Errorf("error = %v, want APIError with detail message", err)
	}
}

func TestGenericServerErrorIsNotUnauthorized(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	err := c.DeleteCollection(context.Background(), "c1", "")
	if err == nil {
		t.Fatal("expected error")
	}
	if IsUnauthorized(err) {
		t.Error("500 reported as unauthorized")
	}
}

func TestTransportFailureIsNotAPIError(t *testing.T) {
	c := New("http://127.0.0.1:1", time.Second, nil)
	err := c.Health(context.Background())
	if err == nil {
		t.Fatal("expected transport error")
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		t.Error("transport failure classified as APIError")
	}
}

func TestUploadMultipart(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("hello"), 0600); err != nil {
		t.Fatal(err)
	}

	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/upload/c1" {
			t.Errorf("path = %q, want /upload/c1", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		parts := r.MultipartForm.File["files"]
		if len(parts) != 1 || parts[0].Filename != "notes.txt" {
			t.Errorf("files = %+v, want one notes.txt", parts)
		}
		_ = json.NewEncoder(w).Encode(model.UploadResult{
			FilesUploaded:    []model.FileEntry{{ID: "d1", Filename: "notes.txt", Size: 5}},
			DocumentsIndexed: 1,
		})
	})

	res, err := c.Upload(context.Background(), "c1", []model.LocalFile{{Filename: "notes.txt", Path: path, Size: 5}}, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.FilesUploaded) != 1 || res.FilesUploaded[0].ID != "d1" {
		t.Errorf("result = %+v", res)
	}
}

func TestAskBody(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatal(err)
		}
		if body["question"] != "what is this?" {
			t.Errorf("question = %v", body["question"])
		}
		if body["k"] != float64(4) {
			t.Errorf("k = %v, want 4", body["k"])
		}
		_ = json.NewEncoder(w).Encode(model.Answer{Answer: "a document"})
	})

	ans, err := c.Ask(context.Background(), "c1", "what is this?", 4, "")
	if err != nil {
		t.Fatal(err)
	}
	if ans.Text() != "a document" {
		t.Errorf("answer = %q", ans.Text())
	}
}

func TestAnswerFallbackChain(t *testing.T) {
	cases := []struct {
		name string
		ans  model.Answer
		want string
	}{
		{"answer field", model.Answer{Answer: "a", Content: "b"}, "a"},
		{"content field", model.Answer{Content: "b", Response: "c"}, "b"},
		{"response field", model.Answer{Response: "c"}, "c"},
		{"all absent", model.Answer{}, model.NoAnswerFallback},
	}
	for _, tc := range cases {
		if got := tc.ans.Text(); got != tc.want {
			t.Errorf("%s: Text() = %q, want %q", tc.name, got, tc.want)
		}
	}
}
