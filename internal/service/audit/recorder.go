package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-leave-ledger/internal/domain/audit"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/domain/user"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/pkg/requestctx"
)

type RecorderImpl struct {
	repo audit.Repository
	now  func() time.Time
}

func NewRecorder(repo audit.Repository) audit.Recorder {
	return &RecorderImpl{repo: repo, now: time.Now}
}

// Record implements audit.Recorder. The entry is enriched with the actor and
// request found on ctx. Failures are logged, never returned.
func (r *RecorderImpl) Record(ctx context.Context, event audit.Event) {
	entry, err := r.buildEntry(ctx, event)
	if err != nil {
		slog.Error("Failed to encode audit log",
			"action", event.Action,
			"entity_type", event.EntityType,
			"entity_id", event.EntityID,
			"error", err)
		return
	}

	// The request may already be finished; the audit write should not be.
	if err := r.repo.Insert(context.WithoutCancel(ctx), entry); err != nil {
		slog.Error("Failed to record audit log",
			"action", event.Action,
			"entity_type", event.EntityType,
			"entity_id", event.EntityID,
			"request_id", entry.RequestID,
			"error", err)
	}
}

func (r *RecorderImpl) buildEntry(ctx context.Context, event audit.Event) (audit.Entry, error) {
	changes, err := json.Marshal(changeSet(event))
	if err != nil {
		return audit.Entry{}, err
	}

	var metadata json.RawMessage
	if len(event.Metadata) > 0 {
		if metadata, err = json.Marshal(event.Metadata); err != nil {
			return audit.Entry{}, err
		}
	}

	entry := audit.Entry{
		Action:     event.Action,
		EntityType: event.EntityType,
		EntityID:   event.EntityID,
		Changes:    changes,
		Metadata:   metadata,
		RequestID:  requestctx.GetRequestID(ctx),
		Status:     audit.StatusSuccess,
		CreatedAt:  r.now().UTC(),
	}

	if actor, ok := user.ActorFromContext(ctx); ok {
		entry.ActorID = actor.EmployeeID
		entry.ActorRole = string(actor.Role)
		entry.ActorEmail = actor.Email
	}

	client := requestctx.GetClient(ctx)
	entry.IPAddress = client.IP
	entry.UserAgent = client.UserAgent

	return entry, nil
}

func changeSet(event audit.Event) map[string]any {
	switch {
	case event.Created != nil:
		return map[string]any{"created": event.Created}
	case event.Deleted != nil:
		return map[string]any{"deleted": event.Deleted}
	default:
		return map[string]any{"before": event.Before, "after": event.After}
	}
}
