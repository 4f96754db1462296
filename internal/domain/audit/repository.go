package audit

import (
	"context"
	"time"
)

type Repository interface {
	Insert(ctx context.Context, entry Entry) error

	// ListUnpublished returns entries not yet relayed to the event bus,
	// oldest first.
	ListUnpublished(ctx context.Context, limit int) ([]Entry, error)
	MarkPublished(ctx context.Context, ids []string, at time.Time) error
}
