package service

import (
	"context"
	"encoding/json"
	"fmt"

	"communityapp/internal/logger"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// QueueConsumer is the subset of the RabbitMQ client the worker needs.
type QueueConsumer interface {
	DeclareDirectQueue(exchange, queue, routingKey string) error
	Consume(queue, consumer string) (<-chan amqp.Delivery, *amqp.Channel, error)
}

// NotificationWorker consumes notification messages from RabbitMQ and pushes
// them to the realtime hub.
type NotificationWorker struct {
	broker   QueueConsumer
	realtime Realtime
}

func NewNotificationWorker(broker QueueConsumer, realtime Realtime) *NotificationWorker {
	return &NotificationWorker{
		broker:   broker,
		realtime: realtime,
	}
}

// Start declares the queue and consumes until ctx is cancelled or the
// delivery channel closes.
func (w *NotificationWorker) Start(ctx context.Context) error {
	if w.broker == nil {
		return nil
	}

	if err := w.broker.DeclareDirectQueue(NotificationExchange, NotificationQueueName, NotificationRoutingKey); err != nil {
		return err
	}

	msgs, ch, err := w.broker.Consume(NotificationQueueName, "notification_worker")
	if err != nil {
		return err
	}

	go func() {
		defer ch.Close()
		logger.Info("notification worker started")
		for {
			select {
			case <-ctx.Done():
				logger.Info("notification worker stopped")
				return
			case msg, ok := <-msgs:
				if !ok {
					logger.Warn("notification queue closed")
					return
				}
				if err := w.Handle(msg.Body); err != nil {
					logger.Error("failed to process notification message", zap.Error(err))
					// Malformed payloads never become valid, so drop them.
					_ = msg.Nack(false, false)
					continue
				}
				_ = msg.Ack(false)
			}
		}
	}()

	return nil
}

// Handle decodes one broker payload and pushes it to its recipient.
func (w *NotificationWorker) Handle(body []byte) error {
	var msg NotificationMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return fmt.Errorf("decode notification: %w", err)
	}
	if msg.UserID == 0 {
		return fmt.Errorf("notification without recipient")
	}

	if w.realtime != nil {
		w.realtime.SendToUser(msg.UserID, EventNotification, msg)
		logger.Debug("notification pushed",
			zap.Uint("user_id", msg.UserID), zap.String("type", msg.Type))
	}
	return nil
}
