package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/iliyamo/monkey-ranch/internal/logger"
)

// Consumer reads the proofs.attached queue and appends one line per proof to
// <LogDir>/proofs.log, giving staff a plain-text trail to reconcile payments
// against.
type Consumer struct {
	URL    string
	LogDir string
}

// Run connects, declares the queue and consumes until ctx is cancelled. It
// reconnects with exponential backoff (capped at 30s) when the broker drops.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			logger.Warn("proof consumer: dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.Warn("proof consumer: consume loop ended; reconnecting", zap.Error(err))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		logger.Warn("proof consumer: set QoS failed", zap.Error(err))
	}
	if _, err := ch.QueueDeclare(ProofAttachedQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(ProofAttachedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.HandleMessage(d.Body); err != nil {
				logger.Warn("proof consumer: handle message failed", zap.Error(err))
				_ = d.Nack(false, false) // do not requeue; a bad payload would loop forever
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// HandleMessage decodes one ProofAttachedEvent and appends it to the log file.
func (c *Consumer) HandleMessage(body []byte) error {
	var ev ProofAttachedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if err := os.MkdirAll(c.LogDir, 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(c.LogDir, "proofs.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	linked := "sin vincular"
	if ev.Linked {
		linked = fmt.Sprintf("compra_id=%d", ev.PurchaseID)
	}
	line := fmt.Sprintf("[%s] Comprobante recibido | categoria=%s | %s | nombre=%q | email=%s | total=%s | url=%s\n",
		ev.ReceivedAt, ev.Category, linked, ev.Nombre, ev.Email, ev.Total, ev.URL)
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}
