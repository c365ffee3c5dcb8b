// Package reconcile applies user actions optimistically: a locally
// synthesized placeholder lands in the view-state first, then the
// backend's answer either promotes it to authoritative state or rolls it
// back. Every call is fire-once, no retry.
package reconcile

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lcamargo/docchat/internal/model"
	"github.com/lcamargo/docchat/internal/store"
	"go.uber.org/zap"
)

// Backend is the slice of the backend client the reconciler consumes.
type Backend interface {
	Upload(ctx context.Context, id string, files []model.LocalFile, token string) (*model.UploadResult, error)
	Ask(ctx context.Context, id, question string, k int, token string) (*model.Answer, error)
	AskSession(ctx context.Context, question, sessionID string) (*model.Answer, error)
}

// Reconciler drives optimistic uploads and asks against the store.
type Reconciler struct {
	store  *store.Store
	api    Backend
	logger *zap.Logger
	askK   int
}

// New creates a reconciler. askK is the retrieval depth sent with every
// collection question.
func New(s *store.Store, api Backend, askK int, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if askK <= 0 {
		askK = 4
	}
	return &Reconciler{store: s, api: api, logger: logger, askK: askK}
}

// Upload sends files to a collection as one batch. Placeholder rows show
// up immediately; on success they are replaced by the backend's
// authoritative rows, on failure they vanish and only previously
// confirmed entries remain.
func (r *Reconciler) Upload(ctx context.Context, collectionID string, files []model.LocalFile) error {
	if len(files) == 0 {
		return nil
	}
	c := r.store.Collection(collectionID)
	if c == nil {
		return fmt.Errorf("upload: unknown collection %s", collectionID)
	}

	placeholders := make([]model.FileEntry, 0, len(files))
	for _, lf := range files {
		placeholders = append(placeholders, model.FileEntry{
			ID:        uuid.New().String(),
			Filename:  lf.Filename,
			Size:      lf.Size,
			Type:      strings.TrimPrefix(filepath.Ext(lf.Filename), "."),
			Pending:   true,
			LocalPath: lf.Path,
		})
	}
	r.store.AddPendingFiles(collectionID, placeholders)

	res, err := r.api.Upload(ctx, collectionID, files, r.store.Token(c))
	if err != nil {
		r.store.RollbackUploads(collectionID)
		r.logger.Error("upload failed", zap.String("collection", collectionID), zap.Int("files", len(files)), zap.Error(err))
		return fmt.Errorf("upload: %w", err)
	}

	r.store.PromoteUploads(collectionID, res.FilesUploaded)
	if len(res.FailedFiles) > 0 {
		r.logger.Warn("upload partially failed",
			zap.String("collection", collectionID),
			zap.Int("uploaded", len(res.FilesUploaded)),
			zap.Int("failed", len(res.FailedFiles)))
	}
	return nil
}

// Ask submits a question against the active collection, or the session
// fallback chat when none is selected. An empty question, or one sent
// while a call is outstanding, never reaches the backend. Failures become
// a visible assistant message rather than an error return.
func (r *Reconciler) Ask(ctx context.Context, question string) error {
	q := strings.TrimSpace(question)
	if q == "" || r.store.Loading() {
		return nil
	}

	active := r.store.Active()
	userMsg := model.ChatMessage{
		ID:        "user-" + uuid.New().String(),
		Role:      model.RoleUser,
		Content:   q,
		CreatedAt: time.Now().UnixMilli(),
	}
	r.appendMessage(active, userMsg)
	r.store.SetLoading(true)
	defer r.store.SetLoading(false)

	var (
		ans *model.Answer
		err error
	)
	if active != nil {
		ans, err = r.api.Ask(ctx, active.ID, q, r.askK, r.store.Token(active))
	} else {
		ans, err = r.api.AskSession(ctx, q, r.store.SessionID())
	}

	content := ""
	if err != nil {
		content = fmt.Sprintf("Sorry, something went wrong talking to the backend:\n\n%s", err)
		r.logger.Error("ask failed", zap.Error(err))
	} else {
		content = ans.Text()
	}

	r.appendMessage(active, model.ChatMessage{
		ID:        "assistant-" + uuid.New().String(),
		Role:      model.RoleAssistant,
		Content:   content,
		CreatedAt: time.Now().UnixMilli(),
	})
	return nil
}

func (r *Reconciler) appendMessage(active *model.Collection, m model.ChatMessage) {
	if active != nil {
		r.store.AppendMessage(active.ID, m)
		return
	}
	r.store.AppendSessionMessage(m)
}
