package bus

import (
	"context"

	"github.com/pasturelink/pasturelink-backend/internal/sse"
)

// Bus fans cut-sheet change messages out across server instances so an SSE
// subscriber connected to one replica still sees edits made through another.
type Bus interface {
	Publish(ctx context.Context, msg sse.Message) error
	StartForwarder(ctx context.Context, onMsg func(m sse.Message)) error
	Close() error
}
