package audit

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jwalitptl/ed-orders/internal/model"
	"github.com/jwalitptl/ed-orders/pkg/logger"
)

func TestRecord_WritesOverride(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	svc := NewService(zap.New(core))

	ctx := logger.ContextWithRequestID(context.Background(), "req-7")
	svc.Record(ctx, model.AuditEntry{
		Action:        model.AuditActionDuplicateOverride,
		ClinicianID:   "dr-chen",
		PatientMRN:    "MRN-1001",
		DraftID:       "draft-1",
		OrderID:       "ord-1",
		Duplicates:    []string{"CBC"},
		Justification: "repeat after transfusion",
	})

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, model.AuditActionDuplicateOverride, entry.Message)
	assert.Equal(t, "audit", entry.LoggerName)

	fields := entry.ContextMap()
	assert.Equal(t, "dr-chen", fields["clinician_id"])
	assert.Equal(t, "ord-1", fields["order_id"])
	assert.Equal(t, "repeat after transfusion", fields["justification"])
	assert.Equal(t, "req-7", fields["request_id"])
	assert.Equal(t, []interface{}{"CBC"}, fields["duplicates"])
}

func TestRecord_OmitsEmptyFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	svc := NewService(zap.New(core))
	svc.now = func() time.Time { return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC) }

	svc.Record(context.Background(), model.AuditEntry{
		Action:      model.AuditActionDraftCancelled,
		ClinicianID: "dr-chen",
		PatientMRN:  "MRN-1001",
	})

	fields := logs.All()[0].ContextMap()
	assert.NotContains(t, fields, "justification")
	assert.NotContains(t, fields, "request_id")
	assert.Equal(t, time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC), fields["at"])
}

func TestNewSink_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")

	log, err := NewSink(path)
	require.NoError(t, err)

	svc := NewService(log)
	svc.Record(context.Background(), model.AuditEntry{Action: model.AuditActionOrderStatus, ClinicianID: "dr-patel"})
	assert.NoError(t, svc.Sync())
	assert.FileExists(t, path)
}

func TestNilLoggerIsNop(t *testing.T) {
	svc := NewService(nil)
	assert.NotPanics(t, func() {
		svc.Record(context.Background(), model.AuditEntry{Action: model.AuditActionDraftRedirected})
	})
}
