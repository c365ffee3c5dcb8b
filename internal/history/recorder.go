package history

import (
	"context"

	"github.com/lcamargo/docchat/internal/bus"
	"go.uber.org/zap"
)

// Recorder mirrors chat activity from the bus into the cache: appended
// messages, authoritative threads from detail loads, and purges when a
// collection is deleted.
type Recorder struct {
	db     *DB
	bus    *bus.Bus
	logger *zap.Logger
	cancel context.CancelFunc
}

// NewRecorder creates a recorder over the history database.
func NewRecorder(db *DB, b *bus.Bus, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{db: db, bus: b, logger: logger}
}

// Start subscribes to chat and collection events on the bus.
func (r *Recorder) Start(ctx context.Context) {
	ctx, r.cancel = context.WithCancel(ctx)
	chatCh, unsubChat := r.bus.Subscribe("chat.", 256)
	colCh, unsubCol := r.bus.Subscribe("collection.", 256)

	go func() {
		defer unsubChat()
		defer unsubCol()
		for {
			select {
			case evt := <-chatCh:
				r.handle(evt)
			case evt := <-colCh:
				r.handle(evt)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the recorder.
func (r *Recorder) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
}

func (r *Recorder) handle(evt bus.Event) {
	switch evt.Kind {
	case bus.KindMessageAppended:
		p, ok := evt.Payload.(bus.MessageAppended)
		if !ok {
			return
		}
		if err := r.db.InsertMessage(p.CollectionID, p.Message); err != nil {
			r.logger.Error("cache message", zap.Error(err), zap.String("msg_id", p.Message.ID))
		}
	case bus.KindDetailLoaded:
		p, ok := evt.Payload.(bus.DetailLoaded)
		if !ok {
			return
		}
		for _, m := range p.Messages {
			if err := r.db.InsertMessage(p.CollectionID, m); err != nil {
				r.logger.Error("cache thread", zap.Error(err), zap.String("collection", p.CollectionID))
				return
			}
		}
	case bus.KindCollectionDeleted:
		id, ok := evt.Payload.(string)
		if !ok {
			return
		}
		if err := r.db.PurgeCollection(id); err != nil {
			r.logger.Error("purge thread", zap.Error(err), zap.String("collection", id))
		}
	}
}
