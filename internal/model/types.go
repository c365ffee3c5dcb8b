package model

// Collection is a named grouping of uploaded documents with its own chat
// thread. Files and Messages stay nil until detail is fetched; nil means
// "not loaded yet" while an empty slice means "loaded and empty".
type Collection struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Description   string        `json:"description,omitempty"`
	IsPublic      bool          `json:"is_public"`
	DocumentCount int           `json:"document_count"`
	MessageCount  int           `json:"message_count,omitempty"`
	Files         []FileEntry   `json:"files,omitempty"`
	Messages      []ChatMessage `json:"messages,omitempty"`
	CreatedAt     string        `json:"created_at,omitempty"`
}

// Clone returns a deep copy so the store can do whole-record replacement
// without aliasing slices between old and new snapshots.
func (c *Collection) Clone() *Collection {
	cp := *c
	if c.Files != nil {
		cp.Files = make([]FileEntry, len(c.Files))
		copy(cp.Files, c.Files)
	}
	if c.Messages != nil {
		cp.Messages = make([]ChatMessage, len(c.Messages))
		copy(cp.Messages, c.Messages)
	}
	return &cp
}

// FileEntry is a document row in a collection. Pending marks a locally
// synthesized placeholder the backend has not acknowledged yet; LocalPath
// points at the file on disk for such rows.
type FileEntry struct {
	ID         string `json:"id"`
	Filename   string `json:"filename"`
	Size       int64  `json:"size,omitempty"`
	Type       string `json:"type,omitempty"`
	ChunkCount int    `json:"chunk_count,omitempty"`
	CreatedAt  string `json:"created_at,omitempty"`
	Pending    bool   `json:"-"`
	LocalPath  string `json:"-"`
}

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one entry in a chat thread. IDs are client-synthesized
// and only unique within a session; ordering is append-only.
type ChatMessage struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedAt int64  `json:"created_at"`
}

// PaginationMeta describes one page of the collection listing.
type PaginationMeta struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// CollectionPage is the response of the collection listing endpoint.
type CollectionPage struct {
	Items      []Collection   `json:"items"`
	Pagination PaginationMeta `json:"pagination"`
}

// CreateCollectionRequest is the body for creating a collection. Code is
// required by the backend when IsPublic is false.
type CreateCollectionRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsPublic    bool   `json:"is_public"`
	Code        string `json:"code,omitempty"`
}

// LocalFile identifies a file on disk selected for upload.
type LocalFile struct {
	Filename string
	Path     string
	Size     int64
}

// FailedFile reports a per-file failure inside an upload batch.
type FailedFile struct {
	Filename string `json:"filename"`
	Error    string `json:"error"`
}

// UploadResult is the backend's answer to a multipart upload.
type UploadResult struct {
	FilesUploaded    []FileEntry  `json:"files_uploaded"`
	FailedFiles      []FailedFile `json:"failed_files"`
	DocumentsIndexed int          `json:"documents_indexed"`
}

// UnlockResult is the backend's answer to a private-code unlock.
type UnlockResult struct {
	Unlocked    bool   `json:"unlocked"`
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// Answer is the backend's answer to an ask call. Backends disagree on the
// field carrying the text, hence the fallback accessor.
type Answer struct {
	Question    string   `json:"question"`
	Answer      string   `json:"answer"`
	Content     string   `json:"content"`
	Response    string   `json:"response"`
	Results     []string `json:"results"`
	ContextUsed []string `json:"context_used"`
	SessionID   string   `json:"session_id"`
}

// NoAnswerFallback is shown when no known response field carries text.
const NoAnswerFallback = "No response from backend"

// Text returns the answer body, falling back through the known response
// fields in order.
func (a *Answer) Text() string {
	for _, s := range []string{a.Answer, a.Content, a.Response} {
		if s != "" {
			return s
		}
	}
	return NoAnswerFallback
}
