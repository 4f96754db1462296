package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-leave-ledger/internal/domain/audit"
)

const defaultRelayBatchSize = 100

// Relay forwards unpublished audit entries to a Publisher and marks them as
// published. Entries are delivered at least once.
type Relay struct {
	repo      audit.Repository
	publisher audit.Publisher
	batchSize int
	now       func() time.Time
}

func NewRelay(repo audit.Repository, publisher audit.Publisher, batchSize int) *Relay {
	if batchSize <= 0 {
		batchSize = defaultRelayBatchSize
	}
	return &Relay{repo: repo, publisher: publisher, batchSize: batchSize, now: time.Now}
}

// RunOnce relays one batch and reports how many entries were published.
func (r *Relay) RunOnce(ctx context.Context) (int, error) {
	entries, err := r.repo.ListUnpublished(ctx, r.batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list unpublished audit logs: %w", err)
	}
	if len(entries) == 0 {
		return 0, nil
	}

	if err := r.publisher.Publish(ctx, entries); err != nil {
		return 0, fmt.Errorf("failed to publish audit logs: %w", err)
	}

	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	if err := r.repo.MarkPublished(ctx, ids, r.now().UTC()); err != nil {
		return 0, fmt.Errorf("failed to mark audit logs published: %w", err)
	}

	slog.Info("Relayed audit logs", "count", len(entries))
	return len(entries), nil
}
