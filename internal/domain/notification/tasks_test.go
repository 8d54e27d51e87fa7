package notification

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTaskClient struct {
	tasks []*asynq.Task
	opts  [][]asynq.Option
	err   error
}

func (f *fakeTaskClient) EnqueueContext(_ context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	f.opts = append(f.opts, opts)
	return &asynq.TaskInfo{ID: "t1", Queue: QueueDefault}, nil
}

type fakeSender struct {
	got []Event
}

func (f *fakeSender) Send(_ context.Context, ev Event) *DispatchResult {
	f.got = append(f.got, ev)
	return &DispatchResult{UserID: ev.UserID, Type: ev.Type, Outcomes: []ChannelOutcome{
		{Channel: ChannelEmail, Status: LogStatusFailed},
	}}
}

func TestQueueFor(t *testing.T) {
	assert.Equal(t, QueueCritical, QueueFor(PriorityUrgent))
	assert.Equal(t, QueueCritical, QueueFor(PriorityHigh))
	assert.Equal(t, QueueDefault, QueueFor(PriorityNormal))
	assert.Equal(t, QueueDefault, QueueFor(""))
	assert.Equal(t, QueueLow, QueueFor(PriorityLow))
}

func TestNewDispatchTask(t *testing.T) {
	ev := Event{UserID: "u1", Type: TypeEventReminder, Title: "Soon", Priority: PriorityUrgent}

	task, opts, err := NewDispatchTask(ev)
	require.NoError(t, err)
	assert.Equal(t, TypeDispatch, task.Type())

	var decoded Event
	require.NoError(t, json.Unmarshal(task.Payload(), &decoded))
	assert.Equal(t, ev, decoded)
	assert.Contains(t, opts, asynq.Queue(QueueCritical))
}

func TestAsynqQueue_Enqueue(t *testing.T) {
	client := &fakeTaskClient{}
	q := &AsynqQueue{client: client, log: testLogger()}

	require.NoError(t, q.Enqueue(context.Background(), Event{UserID: "u1", Type: TypeMessageReceived, Title: "Hi"}))
	require.Len(t, client.tasks, 1)

	at := time.Now().Add(time.Hour)
	require.NoError(t, q.EnqueueAt(context.Background(), Event{UserID: "u1", Type: TypeEventReminder, Title: "Soon"}, at))
	assert.Contains(t, client.opts[1], asynq.ProcessAt(at))

	err := q.Enqueue(context.Background(), Event{UserID: "u1", Type: "nope", Title: "x"})
	assert.ErrorIs(t, err, ErrInvalidEvent)
	assert.Len(t, client.tasks, 2)

	client.err = errors.New("redis down")
	err = q.Enqueue(context.Background(), Event{UserID: "u1", Type: TypeMessageReceived, Title: "Hi"})
	assert.ErrorContains(t, err, "redis down")
	assert.NotPanics(t, func() {
		q.Submit(context.Background(), Event{UserID: "u1", Type: TypeMessageReceived, Title: "Hi"})
	})
}

func TestHandleDispatchTask(t *testing.T) {
	sender := &fakeSender{}
	handler := HandleDispatchTask(sender, nil)

	task, _, err := NewDispatchTask(Event{UserID: "u1", Type: TypeBookingConfirmed, Title: "Booking Confirmed"})
	require.NoError(t, err)

	// channel failures are not task failures
	assert.NoError(t, handler.ProcessTask(context.Background(), task))
	require.Len(t, sender.got, 1)
	assert.Equal(t, "u1", sender.got[0].UserID)

	err = handler.ProcessTask(context.Background(), asynq.NewTask(TypeDispatch, []byte("{not json")))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	bad, _ := json.Marshal(Event{UserID: "u1", Type: "nope", Title: "x"})
	err = handler.ProcessTask(context.Background(), asynq.NewTask(TypeDispatch, bad))
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.Len(t, sender.got, 1)
}
