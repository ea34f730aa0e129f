package tasks

import (
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoverageAuditTaskRoundTrip(t *testing.T) {
	task, err := NewCoverageAuditTask(CoverageAuditPayload{AuditID: "a-1", Categories: []string{"ai", "travel"}})
	require.NoError(t, err)
	assert.Equal(t, TypeCoverageAudit, task.Type())

	p, err := ParseCoverageAuditPayload(task)
	require.NoError(t, err)
	assert.Equal(t, "a-1", p.AuditID)
	assert.Equal(t, []string{"ai", "travel"}, p.Categories)
}

func TestCoverageAuditTaskRejectsMissingID(t *testing.T) {
	_, err := NewCoverageAuditTask(CoverageAuditPayload{AuditID: "  "})
	assert.Error(t, err)

	_, err = ParseCoverageAuditPayload(asynq.NewTask(TypeCoverageAudit, []byte(`{}`)))
	assert.Error(t, err)

	_, err = ParseCoverageAuditPayload(asynq.NewTask(TypeCoverageAudit, []byte(`not json`)))
	assert.Error(t, err)
}
