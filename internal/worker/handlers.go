// Package worker holds the asynq task handlers run by `admatch worker`.
package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	log "github.com/sirupsen/logrus"

	"admatch/internal/models"
	"admatch/internal/tasks"
)

// AuditRunner executes coverage audits.
type AuditRunner interface {
	Run(ctx context.Context, auditID string, categories []string) (*models.CoverageAudit, error)
}

// Deps are the services the handlers need.
type Deps struct {
	Audits AuditRunner
}

// RegisterHandlers wires every task type onto mux.
func RegisterHandlers(mux *asynq.ServeMux, deps Deps) {
	log.Infof("Registering %s handler", tasks.TypeCoverageAudit)
	mux.HandleFunc(tasks.TypeCoverageAudit, HandleCoverageAudit(deps.Audits))
}

// HandleCoverageAudit runs the audit named in the task payload. Payload
// errors and a missing inventory are not retried.
func HandleCoverageAudit(runner AuditRunner) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		p, err := tasks.ParseCoverageAuditPayload(t)
		if err != nil {
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		entry := log.WithFields(log.Fields{"task_type": t.Type(), "audit_id": p.AuditID})
		entry.Info("running coverage audit")

		audit, err := runner.Run(ctx, p.AuditID, p.Categories)
		if err != nil {
			if errors.Is(err, models.ErrInventoryUnavailable) {
				return fmt.Errorf("coverage audit %s: %v: %w", p.AuditID, err, asynq.SkipRetry)
			}
			return fmt.Errorf("coverage audit %s: %w", p.AuditID, err)
		}
		entry.WithFields(log.Fields{
			"ads_scanned":         audit.AdsScanned,
			"ads_skipped":         audit.AdsSkipped,
			"uncovered_interests": audit.UncoveredInterests,
		}).Info("coverage audit stored")
		return nil
	}
}
