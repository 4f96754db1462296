package cron

import (
	"context"
	"time"
)

// AuditRelay is satisfied by the audit outbox relay.
type AuditRelay interface {
	RunOnce(ctx context.Context) (int, error)
}

type AuditJobs struct {
	relay    AuditRelay
	interval time.Duration
}

func NewAuditJobs(relay AuditRelay, interval time.Duration) *AuditJobs {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &AuditJobs{relay: relay, interval: interval}
}

func (j *AuditJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("relay_audit_logs", j.interval, j.RelayAuditLogs)
}

// RelayAuditLogs drains the outbox batch by batch until it is empty or ctx ends.
func (j *AuditJobs) RelayAuditLogs(ctx context.Context) error {
	for ctx.Err() == nil {
		n, err := j.relay.RunOnce(ctx)
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
	}
	return nil
}
