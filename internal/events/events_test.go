package events

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/models"
)

type memoryOutbox struct {
	events     []models.RoundEvent
	dispatched map[int64]time.Time
	listErr    error
}

func (m *memoryOutbox) ListPendingRoundEvents(_ context.Context, limit int) ([]models.RoundEvent, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []models.RoundEvent
	for _, e := range m.events {
		if _, done := m.dispatched[e.ID]; done {
			continue
		}
		out = append(out, e)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *memoryOutbox) MarkRoundEventDispatched(_ context.Context, id int64, at time.Time) error {
	if m.dispatched == nil {
		m.dispatched = make(map[int64]time.Time)
	}
	m.dispatched[id] = at
	return nil
}

func newOutbox(n int) *memoryOutbox {
	out := &memoryOutbox{}
	for i := 1; i <= n; i++ {
		out.events = append(out.events, models.RoundEvent{ID: int64(i), ZoneID: 7, Round: i})
	}
	return out
}

func TestDispatcherDeliversInOrder(t *testing.T) {
	outbox := newOutbox(3)
	var got []int
	pub := PublisherFunc(func(_ context.Context, ev RoundFinished) error {
		got = append(got, ev.Round)
		return nil
	})

	d := NewDispatcher(outbox, pub, 2)
	n, err := d.DispatchPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = d.DispatchPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = d.DispatchPending(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	assert.Equal(t, []int{1, 2, 3}, got)
}

func TestDispatcherStopsAtFirstFailure(t *testing.T) {
	outbox := newOutbox(3)
	attempts := 0
	pub := PublisherFunc(func(_ context.Context, ev RoundFinished) error {
		attempts++
		if ev.Round == 2 {
			return errors.New("broker unavailable")
		}
		return nil
	})

	d := NewDispatcher(outbox, pub, 10)
	n, err := d.DispatchPending(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 2, attempts)
	assert.Len(t, outbox.dispatched, 1)

	// The failed event is retried on the next run.
	pending, err := outbox.ListPendingRoundEvents(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, 2, pending[0].Round)
}

func TestDispatcherListError(t *testing.T) {
	outbox := &memoryOutbox{listErr: errors.New("database is locked")}
	d := NewDispatcher(outbox, Multi{}, 0)
	_, err := d.DispatchPending(context.Background())
	require.Error(t, err)
}

func TestMultiPublishesToAll(t *testing.T) {
	var first, second int
	m := Multi{
		PublisherFunc(func(context.Context, RoundFinished) error { first++; return errors.New("down") }),
		nil,
		PublisherFunc(func(context.Context, RoundFinished) error { second++; return nil }),
	}

	err := m.Publish(context.Background(), RoundFinished{ZoneID: 1, Round: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "down")
	assert.Equal(t, 1, first)
	assert.Equal(t, 1, second)
}

func TestAMQPPublisher(t *testing.T) {
	url := os.Getenv("AMQP_TEST_URL")
	if url == "" {
		t.Skip("AMQP_TEST_URL not set")
	}
	p, err := DialAMQP(url, "fixture.events.test")
	require.NoError(t, err)
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, p.Publish(ctx, RoundFinished{EventID: 1, ZoneID: 1, Round: 1, FinishedAt: time.Now()}))
}
