package live

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloud.google.com/go/firestore"
)

func newTestSubscription() *Subscription {
	return &Subscription{
		cancel: func() {},
		ready:  make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

func TestNextReturnsDeliveredDocs(t *testing.T) {
	sub := newTestSubscription()
	docs := []*firestore.DocumentSnapshot{nil, nil}
	sub.deliver(docs)

	got, ok := sub.Next(context.Background())
	require.True(t, ok)
	require.Len(t, got, 2)
}

func TestNextCoalescesToLatest(t *testing.T) {
	sub := newTestSubscription()
	sub.deliver([]*firestore.DocumentSnapshot{nil})
	sub.deliver([]*firestore.DocumentSnapshot{nil, nil, nil})

	got, ok := sub.Next(context.Background())
	require.True(t, ok)
	require.Len(t, got, 3)
}

func TestNextBlocksUntilDelivery(t *testing.T) {
	sub := newTestSubscription()

	go func() {
		time.Sleep(10 * time.Millisecond)
		sub.deliver([]*firestore.DocumentSnapshot{nil})
	}()

	got, ok := sub.Next(context.Background())
	require.True(t, ok)
	require.Len(t, got, 1)
}

func TestNextEndsOnFailure(t *testing.T) {
	sub := newTestSubscription()
	sub.fail(assert.AnError)

	_, ok := sub.Next(context.Background())
	require.False(t, ok)
	require.ErrorIs(t, sub.Err(), assert.AnError)
}

func TestNextEndsOnCallerCancel(t *testing.T) {
	sub := newTestSubscription()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok := sub.Next(ctx)
	require.False(t, ok)
	require.NoError(t, sub.Err())
}

func TestNextDrainsPendingAfterClose(t *testing.T) {
	sub := newTestSubscription()
	sub.deliver([]*firestore.DocumentSnapshot{nil})
	close(sub.done)

	_, ok := sub.Next(context.Background())
	require.True(t, ok)

	_, ok = sub.Next(context.Background())
	require.False(t, ok)
}
