package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const TypeDispatch = "notification:dispatch"

// Queue names, weighted by the worker.
const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

// QueueWeights is the asynq queue priority map used by the worker.
var QueueWeights = map[string]int{
	QueueCritical: 6,
	QueueDefault:  3,
	QueueLow:      1,
}

// QueueFor maps an event priority to a queue.
func QueueFor(p Priority) string {
	switch p.OrDefault() {
	case PriorityUrgent, PriorityHigh:
		return QueueCritical
	case PriorityLow:
		return QueueLow
	default:
		return QueueDefault
	}
}

// NewDispatchTask builds the asynq task carrying ev.
func NewDispatchTask(ev Event) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(ev)
	if err != nil {
		return nil, nil, err
	}
	opts := []asynq.Option{
		asynq.Queue(QueueFor(ev.Priority)),
		asynq.MaxRetry(3),
		asynq.Timeout(2 * time.Minute),
	}
	return asynq.NewTask(TypeDispatch, b), opts, nil
}

type taskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// AsynqQueue hands events to the worker through Redis.
type AsynqQueue struct {
	client taskEnqueuer
	log    *zap.Logger
}

func NewAsynqQueue(client *asynq.Client, log *zap.Logger) *AsynqQueue {
	if log == nil {
		log = zap.NewNop()
	}
	return &AsynqQueue{client: client, log: log.Named("notification_queue")}
}

// Enqueue validates ev and queues it for immediate processing.
func (q *AsynqQueue) Enqueue(ctx context.Context, ev Event) error {
	return q.enqueue(ctx, ev)
}

// EnqueueAt queues ev for delivery at a later time.
func (q *AsynqQueue) EnqueueAt(ctx context.Context, ev Event, at time.Time) error {
	return q.enqueue(ctx, ev, asynq.ProcessAt(at))
}

func (q *AsynqQueue) enqueue(ctx context.Context, ev Event, extra ...asynq.Option) error {
	if err := ev.Validate(); err != nil {
		return err
	}

	task, opts, err := NewDispatchTask(ev)
	if err != nil {
		return fmt.Errorf("build dispatch task: %w", err)
	}

	info, err := q.client.EnqueueContext(ctx, task, append(opts, extra...)...)
	if err != nil {
		return fmt.Errorf("enqueue dispatch task: %w", err)
	}

	q.log.Debug("notification queued",
		zap.String("task_id", info.ID),
		zap.String("queue", info.Queue),
		zap.String("user_id", ev.UserID),
		zap.String("type", string(ev.Type)),
	)
	return nil
}

// Submit queues ev and only logs failures, for callers that must not block
// or fail on notification problems.
func (q *AsynqQueue) Submit(ctx context.Context, ev Event) {
	if err := q.Enqueue(context.WithoutCancel(ctx), ev); err != nil {
		q.log.Error("failed to queue notification",
			zap.String("user_id", ev.UserID),
			zap.String("type", string(ev.Type)),
			zap.Error(err),
		)
	}
}

// Sender is what the worker needs from the dispatcher.
type Sender interface {
	Send(ctx context.Context, ev Event) *DispatchResult
}

// HandleDispatchTask returns the asynq handler for TypeDispatch. Delivery
// failures are recorded in the notification log and never retried by the
// queue; only undecodable payloads fail the task.
func HandleDispatchTask(sender Sender, log *zap.Logger) asynq.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(ctx context.Context, task *asynq.Task) error {
		var ev Event
		if err := json.Unmarshal(task.Payload(), &ev); err != nil {
			log.Error("invalid dispatch payload", zap.Error(err))
			return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
		}
		if err := ev.Validate(); err != nil {
			log.Error("invalid dispatch event", zap.Error(err))
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}

		res := sender.Send(ctx, ev)

		failed := 0
		for _, o := range res.Outcomes {
			if o.Status == LogStatusFailed {
				failed++
			}
		}
		log.Info("notification task processed",
			zap.String("user_id", ev.UserID),
			zap.String("type", string(ev.Type)),
			zap.Bool("suppressed", res.Suppressed),
			zap.Int("channels", len(res.Outcomes)),
			zap.Int("failed", failed),
		)
		return nil
	}
}
