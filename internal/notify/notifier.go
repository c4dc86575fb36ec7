package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// LogSink writes confirmations to the application log. It is the fallback
// when neither SMTP nor RabbitMQ is configured.
type LogSink struct {
	log *zap.Logger
}

func NewLogSink(log *zap.Logger) *LogSink {
	return &LogSink{log: log.With(zap.String("sink", "log"))}
}

func (s *LogSink) Notify(_ context.Context, event BookingConfirmed) error {
	s.log.Info("Booking confirmed",
		zap.String("ref", event.Ref),
		zap.String("booking_id", event.BookingID.String()),
		zap.String("user_id", event.UserID.String()),
		zap.String("trip", event.TripName),
		zap.String("trip_date", event.TripDate),
		zap.String("seat_number", event.SeatNumber),
		zap.Time("booked_at", event.BookedAt),
	)
	return nil
}

// Dispatcher runs a fixed pool of workers over a bounded queue. Dispatch
// never blocks the caller: when the queue is full the event is dropped.
type Dispatcher struct {
	sink    Sink
	queue   chan BookingConfirmed
	timeout time.Duration
	log     *zap.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(sink Sink, workers, queueSize int, timeout time.Duration, log *zap.Logger) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 100
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	d := &Dispatcher{
		sink:    sink,
		queue:   make(chan BookingConfirmed, queueSize),
		timeout: timeout,
		log:     log.With(zap.String("component", "notify_dispatcher")),
	}

	d.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go d.worker(i)
	}

	d.log.Info("Notification dispatcher started",
		zap.Int("workers", workers),
		zap.Int("queue_size", queueSize),
		zap.Duration("timeout", timeout),
	)
	return d
}

// Dispatch queues the event and reports whether it was accepted.
func (d *Dispatcher) Dispatch(event BookingConfirmed) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.log.Warn("Dispatcher closed, notification dropped",
			zap.String("booking_id", event.BookingID.String()),
		)
		return false
	}

	select {
	case d.queue <- event:
		return true
	default:
		d.log.Warn("Notification queue full, notification dropped",
			zap.String("booking_id", event.BookingID.String()),
			zap.Int("queue_size", cap(d.queue)),
		)
		return false
	}
}

// Close stops accepting events and waits for queued ones to be delivered,
// or for ctx to expire.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.log.Info("Notification dispatcher drained")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("drain notification queue: %w", ctx.Err())
	}
}

func (d *Dispatcher) worker(id int) {
	defer d.wg.Done()
	for event := range d.queue {
		d.deliver(id, event)
	}
}

func (d *Dispatcher) deliver(id int, event BookingConfirmed) {
	// detached from any request: the booking is already committed
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			d.log.Error("Notification sink panicked",
				zap.Any("panic", r),
				zap.String("booking_id", event.BookingID.String()),
			)
		}
	}()

	if err := d.sink.Notify(ctx, event); err != nil {
		d.log.Error("Failed to deliver booking notification",
			zap.Error(err),
			zap.Int("worker", id),
			zap.String("booking_id", event.BookingID.String()),
			zap.String("seat_number", event.SeatNumber),
		)
	}
}
