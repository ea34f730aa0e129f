package tasks

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/hibiken/asynq"
)

// Defines constants for task types used in Asynq.

const (
	// TypeCoverageAudit validates every inventory ad's interests against the
	// inventory category set and stores the resulting report.
	TypeCoverageAudit = "coverage:audit"

	// QueueAudits is the queue coverage audits are enqueued on.
	QueueAudits = "audits"
)

// CoverageAuditPayload is the body of a TypeCoverageAudit task.
type CoverageAuditPayload struct {
	AuditID string `json:"audit_id"`
	// Categories overrides the inventory category set when non-empty.
	Categories []string `json:"categories,omitempty"`
}

// NewCoverageAuditTask builds a coverage audit task.
func NewCoverageAuditTask(p CoverageAuditPayload) (*asynq.Task, error) {
	if strings.TrimSpace(p.AuditID) == "" {
		return nil, errors.New("coverage audit task requires an audit id")
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal coverage audit payload: %w", err)
	}
	return asynq.NewTask(TypeCoverageAudit, b), nil
}

// ParseCoverageAuditPayload decodes the payload of a coverage audit task.
func ParseCoverageAuditPayload(t *asynq.Task) (CoverageAuditPayload, error) {
	var p CoverageAuditPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return p, fmt.Errorf("unmarshal coverage audit payload: %w", err)
	}
	if strings.TrimSpace(p.AuditID) == "" {
		return p, errors.New("coverage audit payload has no audit id")
	}
	return p, nil
}
