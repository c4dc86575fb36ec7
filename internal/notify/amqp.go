package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Publisher pushes confirmations to a durable RabbitMQ queue. The
// connection is opened lazily and reopened after a failure.
type Publisher struct {
	url   string
	queue string
	log   *zap.Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewPublisher(url, queue string, log *zap.Logger) *Publisher {
	if queue == "" {
		queue = QueueBookingConfirmed
	}
	return &Publisher{
		url:   url,
		queue: queue,
		log:   log.With(zap.String("sink", "amqp")),
	}
}

func (p *Publisher) Notify(ctx context.Context, event BookingConfirmed) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.BookingID.String(),
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
		p.reset()
		return fmt.Errorf("publish to %s: %w", p.queue, err)
	}

	p.log.Debug("Booking event published",
		zap.String("booking_id", event.BookingID.String()),
		zap.String("queue", p.queue),
	)
	return nil
}

// channel returns an open channel, dialing when needed. Caller holds p.mu.
func (p *Publisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	p.reset()

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return nil, fmt.Errorf("dial broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", p.queue, err)
	}

	p.conn, p.ch = conn, ch
	return ch, nil
}

func (p *Publisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
	return nil
}

// Consumer drains the confirmation queue into a Sink, reconnecting with
// exponential backoff until its context is cancelled.
type Consumer struct {
	url        string
	queue      string
	sink       Sink
	timeout    time.Duration
	maxBackoff time.Duration
	log        *zap.Logger
}

func NewConsumer(url, queue string, sink Sink, timeout time.Duration, log *zap.Logger) *Consumer {
	if queue == "" {
		queue = QueueBookingConfirmed
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Consumer{
		url:        url,
		queue:      queue,
		sink:       sink,
		timeout:    timeout,
		maxBackoff: 30 * time.Second,
		log:        log.With(zap.String("component", "notify_consumer")),
	}
}

// Run blocks until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.log.Warn("Failed to dial broker, retrying",
				zap.Error(err),
				zap.Duration("backoff", backoff),
			)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			if backoff < c.maxBackoff {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Warn("Consume loop ended, reconnecting", zap.Error(err))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.log.Warn("Failed to set QoS", zap.Error(err))
	}

	if _, err := ch.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", c.queue, err)
	}

	msgs, err := ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", c.queue, err)
	}

	c.log.Info("Consuming booking confirmations", zap.String("queue", c.queue))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			c.process(ctx, d)
		}
	}
}

// process acks delivered events and rejects, without requeue, anything that
// cannot be decoded or delivered so a poison message cannot loop forever.
func (c *Consumer) process(ctx context.Context, d amqp.Delivery) {
	var event BookingConfirmed
	if err := json.Unmarshal(d.Body, &event); err != nil {
		c.log.Error("Malformed booking event", zap.Error(err))
		_ = d.Nack(false, false)
		return
	}

	sinkCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.sink.Notify(sinkCtx, event); err != nil {
		c.log.Error("Failed to handle booking event",
			zap.Error(err),
			zap.String("booking_id", event.BookingID.String()),
		)
		_ = d.Nack(false, false)
		return
	}
	_ = d.Ack(false)
}
