// Package audit writes the clinician decision trail: duplicate overrides,
// redirects, cancellations and order status changes. It is a separate JSON
// stream from the application log so it can be shipped and retained on its
// own.
package audit

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jwalitptl/ed-orders/internal/model"
	"github.com/jwalitptl/ed-orders/pkg/logger"
)

type Service struct {
	log *zap.Logger
	now func() time.Time
}

func NewService(log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{log: log.Named("audit"), now: time.Now}
}

// NewSink builds a JSON zap logger writing to output ("stdout", "stderr" or
// a file path).
func NewSink(output string) (*zap.Logger, error) {
	if output == "" {
		output = "stdout"
	}
	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapcore.InfoLevel),
		Encoding:         "json",
		OutputPaths:      []string{output},
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "ts",
			LevelKey:       "level",
			NameKey:        "stream",
			MessageKey:     "action",
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
		},
	}
	log, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build audit sink: %w", err)
	}
	return log, nil
}

// Record writes one entry. The action becomes the message so the stream
// can be filtered on it directly.
func (s *Service) Record(ctx context.Context, entry model.AuditEntry) {
	if entry.At.IsZero() {
		entry.At = s.now()
	}

	fields := []zap.Field{
		zap.String("clinician_id", entry.ClinicianID),
		zap.String("patient_mrn", entry.PatientMRN),
		zap.Time("at", entry.At),
	}
	if entry.DraftID != "" {
		fields = append(fields, zap.String("draft_id", entry.DraftID))
	}
	if entry.OrderID != "" {
		fields = append(fields, zap.String("order_id", entry.OrderID))
	}
	if len(entry.Duplicates) > 0 {
		fields = append(fields, zap.Strings("duplicates", entry.Duplicates))
	}
	if entry.Justification != "" {
		fields = append(fields, zap.String("justification", entry.Justification))
	}
	if entry.Detail != "" {
		fields = append(fields, zap.String("detail", entry.Detail))
	}
	if rid := logger.RequestIDFromContext(ctx); rid != "" {
		fields = append(fields, zap.String("request_id", rid))
	}

	s.log.Info(entry.Action, fields...)
}

// Sync flushes buffered entries.
func (s *Service) Sync() error {
	return s.log.Sync()
}
