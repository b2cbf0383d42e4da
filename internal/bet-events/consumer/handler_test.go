package consumer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeDeduper struct {
	seen map[string]bool
	keys []string
}

func (f *fakeDeduper) FirstSeen(_ context.Context, key string) (bool, error) {
	f.keys = append(f.keys, key)
	if f.seen == nil {
		f.seen = map[string]bool{}
	}
	if f.seen[key] {
		return false, nil
	}
	f.seen[key] = true
	return true, nil
}

func TestHandleDeduplicatesByBetAndEventType(t *testing.T) {
	dedup := &fakeDeduper{}
	h := NewHandler(zap.NewNop(), dedup)

	msg := []byte(`{"betId":"bet-1","userId":"user-1","jackpotId":"jp-1","betAmount":"50.00"}`)

	// entrega pelo menos-uma-vez: a mesma mensagem pode chegar de novo
	require.NoError(t, h.Handle(context.Background(), msg))
	require.NoError(t, h.Handle(context.Background(), msg))

	require.Len(t, dedup.keys, 2)
	assert.Equal(t, "bet-1:BetPlaced", dedup.keys[0])
	assert.Equal(t, dedup.keys[0], dedup.keys[1])
}

func TestHandleRejectsMalformedPayload(t *testing.T) {
	h := NewHandler(zap.NewNop(), &fakeDeduper{})

	err := h.Handle(context.Background(), []byte(`{broken`))
	assert.Error(t, err)
}
