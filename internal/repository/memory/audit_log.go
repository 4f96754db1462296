package memory

import (
	"context"
	"slices"
	"time"

	"github.com/cmlabs-hris/hris-leave-ledger/internal/domain/audit"
)

type auditLogRepository struct {
	s *Store
}

func (r *auditLogRepository) Insert(ctx context.Context, e audit.Entry) error {
	defer r.s.lock(ctx)()

	if e.ID == "" {
		e.ID = newID()
	}
	r.s.audits = append(r.s.audits, e)
	return nil
}

func (r *auditLogRepository) ListUnpublished(ctx context.Context, limit int) ([]audit.Entry, error) {
	defer r.s.lock(ctx)()

	entries := []audit.Entry{}
	for _, e := range r.s.audits {
		if e.PublishedAt != nil {
			continue
		}
		entries = append(entries, e)
		if limit > 0 && len(entries) == limit {
			break
		}
	}
	return entries, nil
}

func (r *auditLogRepository) MarkPublished(ctx context.Context, ids []string, at time.Time) error {
	defer r.s.lock(ctx)()

	for i := range r.s.audits {
		if slices.Contains(ids, r.s.audits[i].ID) {
			published := at
			r.s.audits[i].PublishedAt = &published
		}
	}
	return nil
}

// AuditEntries returns a copy of every recorded entry, oldest first.
func (s *Store) AuditEntries() []audit.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]audit.Entry(nil), s.audits...)
}
