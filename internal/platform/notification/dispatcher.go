package notification

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var (
	notificationsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hms_notifications_sent_total",
		Help: "Notifications delivered to the mail transport.",
	})
	notificationsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hms_notifications_failed_total",
		Help: "Notifications whose single delivery attempt failed.",
	})
	notificationsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hms_notifications_dropped_total",
		Help: "Notifications dropped because the queue was full.",
	})
)

const sendTimeout = 15 * time.Second

// QueueDispatcher renders notifications and hands them to a fixed worker pool
// through a bounded channel. When the channel is full the message is dropped
// and counted; callers are never blocked or failed.
type QueueDispatcher struct {
	queue     chan Message
	sender    EmailSender
	templates *TemplateEngine
	logger    zerolog.Logger
	workers   int
	wg        sync.WaitGroup
}

// NewQueueDispatcher creates a dispatcher with the given queue capacity and
// worker count. Start must be called before messages are delivered.
func NewQueueDispatcher(sender EmailSender, templates *TemplateEngine, logger zerolog.Logger, queueSize, workers int) *QueueDispatcher {
	if queueSize <= 0 {
		queueSize = 256
	}
	if workers <= 0 {
		workers = 4
	}
	return &QueueDispatcher{
		queue:     make(chan Message, queueSize),
		sender:    sender,
		templates: templates,
		logger:    logger,
		workers:   workers,
	}
}

// Start launches the worker pool. Workers exit when ctx is cancelled;
// messages still in the queue at that point are abandoned.
func (d *QueueDispatcher) Start(ctx context.Context) {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.work(ctx)
	}
}

// Wait blocks until all workers have exited.
func (d *QueueDispatcher) Wait() {
	d.wg.Wait()
}

func (d *QueueDispatcher) work(ctx context.Context) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-d.queue:
			d.deliver(msg)
		}
	}
}

func (d *QueueDispatcher) deliver(msg Message) {
	// The originating request is long gone; sends get their own deadline.
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	if err := d.sender.SendEmail(ctx, msg.Recipient, msg.Subject, msg.Body); err != nil {
		notificationsFailed.Inc()
		d.logger.Warn().
			Err(err).
			Str("message_id", msg.ID).
			Str("recipient", msg.Recipient).
			Msg("notification delivery failed")
		return
	}
	notificationsSent.Inc()
	d.logger.Debug().
		Str("message_id", msg.ID).
		Str("recipient", msg.Recipient).
		Msg("notification delivered")
}

// Dispatch renders the template and enqueues the message. A blank or
// malformed recipient is a silent no-op; a full queue drops the message with
// a warning. Dispatch never blocks.
func (d *QueueDispatcher) Dispatch(templateID, recipient string, data map[string]string) {
	if recipient == "" {
		d.logger.Debug().Str("template", templateID).Msg("notification skipped: no recipient")
		return
	}
	if !strings.Contains(recipient, "@") {
		d.logger.Debug().
			Str("template", templateID).
			Str("recipient", recipient).
			Msg("notification skipped: recipient is not an email address")
		return
	}

	subject, body, err := d.templates.Render(templateID, data)
	if err != nil {
		d.logger.Warn().Err(err).Str("template", templateID).Msg("notification render failed")
		return
	}

	msg := Message{
		ID:        uuid.New().String(),
		Recipient: recipient,
		Subject:   subject,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}

	select {
	case d.queue <- msg:
	default:
		notificationsDropped.Inc()
		d.logger.Warn().
			Str("message_id", msg.ID).
			Str("template", templateID).
			Msg("notification dropped: queue full")
	}
}
