package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jwalitptl/ed-orders/pkg/logger"
)

// LogBroker stands in when no broker is configured: published messages are
// written to the log and subscriptions never deliver.
type LogBroker struct {
	logger *logger.Logger
}

func NewLogBroker(log *logger.Logger) *LogBroker {
	if log == nil {
		log = logger.Nop()
	}
	return &LogBroker{logger: log.WithComponent("broker")}
}

func (b *LogBroker) Publish(_ context.Context, channel string, message interface{}) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	b.logger.Info("event published", "channel", channel, "message", string(payload))
	return nil
}

func (b *LogBroker) Subscribe(ctx context.Context, _ string) (<-chan []byte, error) {
	ch := make(chan []byte)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch, nil
}

func (b *LogBroker) Close() error {
	return nil
}
