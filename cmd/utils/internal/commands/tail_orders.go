package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/events"

	"github.com/appetiteclub/miniapp/pkg"
	"github.com/appetiteclub/miniapp/pkg/event"
)

// TailOrders prints every order handed to the chat host until ctx is cancelled.
func TailOrders(ctx context.Context, config *apt.Config, logger apt.Logger, out io.Writer) error {
	natsURL := config.GetStringOrDef("nats.url", "nats://localhost:4222")
	topic := config.GetStringOrDef("hostbridge.topic", event.WebAppDataTopic)

	sub, err := pkg.NewNATSSubscriber(natsURL, "miniapp-utils", func(topic string, err error) {
		logger.Error("cannot print message", "topic", topic, "error", err)
	})
	if err != nil {
		return fmt.Errorf("connect to NATS: %w", err)
	}
	defer sub.Close()

	if err := sub.Subscribe(ctx, topic, OrderPrinter(out)); err != nil {
		return fmt.Errorf("subscribe to %s: %w", topic, err)
	}

	logger.Info("Waiting for orders, press Ctrl+C to stop", "topic", topic)
	<-ctx.Done()
	return nil
}

// OrderPrinter returns a handler writing each payload to out, indented when it is JSON.
func OrderPrinter(out io.Writer) events.HandlerFunc {
	var mu sync.Mutex
	return func(_ context.Context, msg []byte) error {
		var buf bytes.Buffer
		if err := json.Indent(&buf, msg, "", "  "); err != nil {
			buf.Reset()
			buf.Write(msg)
		}
		buf.WriteByte('\n')

		mu.Lock()
		defer mu.Unlock()
		_, err := out.Write(buf.Bytes())
		return err
	}
}
