package bus

import (
	"time"

	"github.com/lcamargo/docchat/internal/model"
)

// Event kinds published by the client state machinery. Subscribers filter
// by prefix, e.g. "collection." catches every collection event.
const (
	KindCollectionsLoaded  = "collection.list_loaded"
	KindCollectionReplaced = "collection.replaced"
	KindCollectionCreated  = "collection.created"
	KindCollectionDeleted  = "collection.deleted"
	KindCollectionActive   = "collection.activated"
	KindDetailLoaded       = "collection.detail_loaded"
	KindFilesChanged       = "upload.files_changed"
	KindMessageAppended    = "chat.message_appended"
	KindLoadingChanged     = "chat.loading_changed"
	KindGateChanged        = "gate.state_changed"
)

// Event is a domain event delivered to subscribers.
type Event struct {
	Kind      string
	Timestamp time.Time
	Payload   any
}

// MessageAppended is the payload for chat.message_appended. CollectionID
// is empty for the session fallback chat.
type MessageAppended struct {
	CollectionID string
	Message      model.ChatMessage
}

// DetailLoaded is the payload for collection.detail_loaded, carrying the
// authoritative thread so the history cache can mirror it.
type DetailLoaded struct {
	CollectionID string
	Messages     []model.ChatMessage
}
