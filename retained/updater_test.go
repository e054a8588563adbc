package retained

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agiangrant/strut/render"
)

type hand struct {
	fill
	ticks int
}

func TestUpdateDrawable(t *testing.T) {
	h := &hand{}
	root := NewWidget("clock").SetDrawable(h)
	root.AddHandler(UpdateDrawable(func(s *hand, _ FrameTick) {
		s.ticks++
		s.color = render.Red
	}))
	tree := newTestTree(t, root)
	root.dirty = false

	require.NoError(t, tree.Dispatcher().DispatchNow(ToSubTree(root.ID()), FrameTick{}))
	assert.Equal(t, 1, h.ticks)
	assert.Equal(t, render.Red, h.color)
	assert.True(t, root.Dirty())
}

func TestUpdateDrawableWrongState(t *testing.T) {
	root := NewWidget("root").SetDrawable(&fill{})
	root.AddHandler(UpdateDrawable(func(*hand, FrameTick) {}))
	tree := newTestTree(t, root)

	err := tree.Dispatcher().DispatchNow(ToWidget(root.ID()), FrameTick{})
	assert.ErrorContains(t, err, "update drawable")
}

// chanPusher forwards pushed events to a channel, dropping them when full.
type chanPusher chan Event

func (p chanPusher) Push(_ Target, ev Event) {
	select {
	case p <- ev:
	default:
	}
}

func TestEvery(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	events := make(chanPusher, 16)
	done := make(chan error, 1)
	go func() {
		done <- Every(ctx, time.Millisecond, events, Broadcast, func(now time.Time) Event {
			return FrameTick{Time: now}
		})
	}()

	for i := 0; i < 3; i++ {
		select {
		case ev := <-events:
			assert.False(t, ev.(FrameTick).Time.IsZero())
		case <-time.After(time.Second):
			t.Fatal("no tick")
		}
	}
	cancel()
	require.NoError(t, <-done)
}

func TestEveryRejectsBadInterval(t *testing.T) {
	assert.Error(t, Every(context.Background(), 0, make(chanPusher), Broadcast, nil))
}
