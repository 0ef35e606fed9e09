package data

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sergejparity/e-invoice/internal/domain/model"
)

func TestFileAuditLogRecordAndReadAll(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	log := NewFileAuditLog(path, nil)

	e1 := model.NewAuditEvent(model.EventJobEnqueued, "job-1", model.JobStateQueued).
		WithHash("abc123").
		WithParties("sender", "receiver")
	e2 := model.NewAuditEvent(model.EventInvoiceSubmitted, "job-1", model.JobStateSent).
		WithTransmissionID("tx-1")
	e3 := model.NewAuditEvent(model.EventJobEnqueued, "job-2", model.JobStateQueued)

	require.NoError(t, log.Record(ctx, e1))
	require.NoError(t, log.Record(ctx, e2))
	require.NoError(t, log.Record(ctx, e3))

	events, err := log.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, events, 3)

	assert.Equal(t, model.EventJobEnqueued, events[0].EventType)
	require.NotNil(t, events[0].InvoiceHash)
	assert.Equal(t, "abc123", *events[0].InvoiceHash)
	require.NotNil(t, events[0].Sender)
	assert.Equal(t, "sender", *events[0].Sender)

	assert.Equal(t, model.EventInvoiceSubmitted, events[1].EventType)
	require.NotNil(t, events[1].TransmissionID)
	assert.Equal(t, "tx-1", *events[1].TransmissionID)

	assert.Equal(t, "job-2", events[2].JobID)
}

func TestFileAuditLogIsAppendOnly(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	log := NewFileAuditLog(path, nil)

	require.NoError(t, log.Record(ctx, model.NewAuditEvent(model.EventJobEnqueued, "job-1", model.JobStateQueued)))
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, log.Record(ctx, model.NewAuditEvent(model.EventInvoiceSubmitted, "job-1", model.JobStateSent)))
	second, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(string(second), string(first)),
		"existing lines must never be rewritten")
	assert.Equal(t, 2, strings.Count(string(second), "\n"))
}

func TestFileAuditLogReadAllMissingFile(t *testing.T) {
	log := NewFileAuditLog(filepath.Join(t.TempDir(), "never-written.jsonl"), nil)

	events, err := log.ReadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestFileAuditLogReadByJob(t *testing.T) {
	ctx := context.Background()
	log := NewFileAuditLog(filepath.Join(t.TempDir(), "audit.jsonl"), nil)

	require.NoError(t, log.Record(ctx, model.NewAuditEvent(model.EventJobEnqueued, "job-1", model.JobStateQueued)))
	require.NoError(t, log.Record(ctx, model.NewAuditEvent(model.EventJobEnqueued, "job-2", model.JobStateQueued)))
	require.NoError(t, log.Record(ctx, model.NewAuditEvent(model.EventInvoiceSubmitted, "job-1", model.JobStateSent)))

	events, err := log.ReadByJob(ctx, "job-1")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, model.EventJobEnqueued, events[0].EventType)
	assert.Equal(t, model.EventInvoiceSubmitted, events[1].EventType)
}
