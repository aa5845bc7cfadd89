package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/kirillkom/pdf-highlights/internal/core/domain"
	"github.com/kirillkom/pdf-highlights/internal/infrastructure/resilience"
)

const workerGroup = "workers"

// Queue carries job ids on subject and per-job events on
// "<subject>.events.<jobID>".
type Queue struct {
	conn     *nats.Conn
	subject  string
	executor *resilience.Executor
	logger   *slog.Logger
}

type Options struct {
	ConnectTimeout       time.Duration
	ReconnectWait        time.Duration
	MaxReconnects        int
	RetryOnFailedConnect *bool
	Executor             *resilience.Executor
	Logger               *slog.Logger
}

func New(url, subject string) (*Queue, error) {
	return NewWithOptions(url, subject, Options{})
}

func NewWithOptions(url, subject string, options Options) (*Queue, error) {
	connectTimeout := options.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 2 * time.Second
	}
	reconnectWait := options.ReconnectWait
	if reconnectWait <= 0 {
		reconnectWait = 2 * time.Second
	}
	maxReconnects := options.MaxReconnects
	if maxReconnects <= 0 {
		maxReconnects = 60
	}
	retryOnFailedConnect := true
	if options.RetryOnFailedConnect != nil {
		retryOnFailedConnect = *options.RetryOnFailedConnect
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := nats.Connect(
		url,
		nats.Name("pdf-highlights"),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.RetryOnFailedConnect(retryOnFailedConnect),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("nats_disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats_reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Queue{
		conn:     conn,
		subject:  subject,
		executor: options.Executor,
		logger:   logger,
	}, nil
}

func (q *Queue) Close() {
	if q.conn != nil {
		q.conn.Close()
	}
}

func (q *Queue) PublishJobQueued(ctx context.Context, jobID string) error {
	return q.publish(ctx, "nats.publish_job", q.subject, []byte(jobID))
}

// SubscribeJobQueued hands every queued job id to handler, load-balanced over
// the worker group, until ctx is done. The subscription is drained on exit.
func (q *Queue) SubscribeJobQueued(ctx context.Context, handler func(context.Context, string) error) error {
	sub, err := q.conn.QueueSubscribe(q.subject, workerGroup, func(msg *nats.Msg) {
		if errors.Is(ctx.Err(), context.Canceled) {
			return
		}

		handlerCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		jobID := string(msg.Data)
		if err := handler(handlerCtx, jobID); err != nil {
			q.logger.Error("job_handler_failed", "job_id", jobID, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("nats subscribe: %w", err)
	}

	if err := q.conn.Flush(); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}

	<-ctx.Done()
	if err := sub.Drain(); err != nil {
		return fmt.Errorf("nats drain subscription: %w", err)
	}
	if err := q.conn.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("nats flush after drain: %w", err)
	}
	return nil
}

func (q *Queue) PublishJobEvent(ctx context.Context, jobID string, event domain.ExtractionEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal job event: %w", err)
	}
	return q.publish(ctx, "nats.publish_event", q.eventSubject(jobID), payload)
}

// SubscribeJobEvents delivers the events of one job, in publish order, until
// the returned stop function is called.
func (q *Queue) SubscribeJobEvents(_ context.Context, jobID string, handler func(domain.ExtractionEvent)) (func(), error) {
	sub, err := q.conn.Subscribe(q.eventSubject(jobID), func(msg *nats.Msg) {
		var event domain.ExtractionEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			q.logger.Warn("job_event_malformed", "job_id", jobID, "error", err)
			return
		}
		handler(event)
	})
	if err != nil {
		return nil, fmt.Errorf("nats subscribe events: %w", err)
	}
	if err := q.conn.Flush(); err != nil {
		_ = sub.Unsubscribe()
		return nil, wrapTemporaryIfNeeded(fmt.Errorf("nats flush: %w", err))
	}
	return func() {
		if err := sub.Unsubscribe(); err != nil && !errors.Is(err, nats.ErrConnectionClosed) {
			q.logger.Warn("job_event_unsubscribe_failed", "job_id", jobID, "error", err)
		}
	}, nil
}

func (q *Queue) eventSubject(jobID string) string {
	return q.subject + ".events." + jobID
}

func (q *Queue) publish(ctx context.Context, operation, subject string, payload []byte) error {
	call := func(_ context.Context) error {
		if err := q.conn.Publish(subject, payload); err != nil {
			return fmt.Errorf("nats publish: %w", err)
		}
		return nil
	}

	var err error
	if q.executor != nil {
		err = q.executor.Do(ctx, operation, call, classifyNATSError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return wrapTemporaryIfNeeded(err)
	}
	return nil
}
