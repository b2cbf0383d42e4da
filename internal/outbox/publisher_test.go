package outbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memStore simula a tabela outbox_events com a mesma máquina de estados
type memStore struct {
	events []Event
}

func (s *memStore) ClaimDeliverable(_ context.Context, limit int) (Claim, error) {
	var ids []int64
	for _, e := range s.events {
		if e.Status == StatusPending && e.RetryCount < MaxRetries {
			ids = append(ids, e.ID)
			if len(ids) == limit {
				break
			}
		}
	}
	return &memClaim{store: s, ids: ids}, nil
}

type memClaim struct {
	store *memStore
	ids   []int64
}

func (c *memClaim) Events() []Event {
	var evs []Event
	for _, id := range c.ids {
		evs = append(evs, *c.store.find(id))
	}
	return evs
}

func (c *memClaim) MarkPublished(_ context.Context, id int64) error {
	e := c.store.find(id)
	e.Status = StatusPublished
	now := time.Now()
	e.PublishedAt = &now
	e.ErrorMessage = ""
	return nil
}

func (c *memClaim) MarkFailed(_ context.Context, id int64, reason string) error {
	e := c.store.find(id)
	e.RetryCount++
	e.ErrorMessage = reason
	if e.RetryCount >= MaxRetries {
		e.Status = StatusFailed
	}
	return nil
}

func (c *memClaim) Close() error { return nil }

func (s *memStore) find(id int64) *Event {
	for i := range s.events {
		if s.events[i].ID == id {
			return &s.events[i]
		}
	}
	return nil
}

type fakeBroker struct {
	failKeys map[string]error
	sent     []string // chaves na ordem de envio
}

func (b *fakeBroker) Send(_ context.Context, key string, _ []byte) error {
	if err, ok := b.failKeys[key]; ok {
		return err
	}
	b.sent = append(b.sent, key)
	return nil
}

func pendingEvent(id int64, aggregateID string, createdAt time.Time) Event {
	return Event{
		ID:            id,
		AggregateType: "Bet",
		AggregateID:   aggregateID,
		EventType:     "BetPlaced",
		Payload:       []byte(`{"betId":"` + aggregateID + `"}`),
		Status:        StatusPending,
		CreatedAt:     createdAt,
	}
}

func newTestPublisher(store Store, broker Broker) *Publisher {
	return NewPublisher(zap.NewNop(), store, broker, time.Second, 10)
}

func TestRunOncePublishesPendingInOrder(t *testing.T) {
	base := time.Now()
	store := &memStore{events: []Event{
		pendingEvent(1, "bet-a", base),
		pendingEvent(2, "bet-b", base.Add(time.Second)),
	}}
	broker := &fakeBroker{}
	p := newTestPublisher(store, broker)

	require.NoError(t, p.RunOnce(context.Background()))

	assert.Equal(t, []string{"bet-a", "bet-b"}, broker.sent)
	for _, e := range store.events {
		assert.Equal(t, StatusPublished, e.Status)
		assert.NotNil(t, e.PublishedAt)
	}
}

func TestFailureDoesNotBlockOtherEvents(t *testing.T) {
	base := time.Now()
	store := &memStore{events: []Event{
		pendingEvent(1, "bet-a", base),
		pendingEvent(2, "bet-b", base.Add(time.Second)),
	}}
	broker := &fakeBroker{failKeys: map[string]error{"bet-a": errors.New("broker timeout")}}
	p := newTestPublisher(store, broker)

	require.NoError(t, p.RunOnce(context.Background()))

	failed := store.find(1)
	assert.Equal(t, StatusPending, failed.Status, "abaixo do teto continua PENDING")
	assert.Equal(t, 1, failed.RetryCount)
	assert.Equal(t, "broker timeout", failed.ErrorMessage)

	ok := store.find(2)
	assert.Equal(t, StatusPublished, ok.Status)
	assert.Equal(t, []string{"bet-b"}, broker.sent)
}

func TestThreeFailuresBecomeTerminalFailed(t *testing.T) {
	store := &memStore{events: []Event{pendingEvent(1, "bet-a", time.Now())}}
	broker := &fakeBroker{failKeys: map[string]error{"bet-a": errors.New("send: connection refused")}}
	p := newTestPublisher(store, broker)

	ctx := context.Background()
	for i := 0; i < MaxRetries; i++ {
		require.NoError(t, p.RunOnce(ctx))
	}

	e := store.find(1)
	assert.Equal(t, StatusFailed, e.Status)
	assert.Equal(t, MaxRetries, e.RetryCount)
	assert.Equal(t, "send: connection refused", e.ErrorMessage)

	// terminal: passadas seguintes não reofertam o evento
	require.NoError(t, p.RunOnce(ctx))
	assert.Equal(t, MaxRetries, e.RetryCount)
	assert.Empty(t, broker.sent)
}

func TestPublishedEventsAreNeverReoffered(t *testing.T) {
	now := time.Now()
	published := pendingEvent(1, "bet-a", now)
	published.Status = StatusPublished
	published.PublishedAt = &now

	store := &memStore{events: []Event{published, pendingEvent(2, "bet-b", now)}}
	broker := &fakeBroker{}
	p := newTestPublisher(store, broker)

	require.NoError(t, p.RunOnce(context.Background()))
	require.NoError(t, p.RunOnce(context.Background()))

	// o evento já publicado nunca volta pro broker
	assert.Equal(t, []string{"bet-b"}, broker.sent)
}

func TestRunOnceRespectsBatchLimit(t *testing.T) {
	base := time.Now()
	store := &memStore{}
	for i := int64(1); i <= 5; i++ {
		store.events = append(store.events, pendingEvent(i, "bet", base.Add(time.Duration(i)*time.Second)))
	}
	broker := &fakeBroker{}
	p := NewPublisher(zap.NewNop(), store, broker, time.Second, 2)

	require.NoError(t, p.RunOnce(context.Background()))
	assert.Len(t, broker.sent, 2)
}
