package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aisa-it/aiplan-editor/internal/editor/document"
)

// virtualClock - детерминированные часы для тестов склейки: таймеры
// срабатывают только при явном продвижении времени.
type virtualClock struct {
	now    time.Time
	timers []*virtualTimer
}

type virtualTimer struct {
	deadline time.Time
	f        func()
	stopped  bool
}

func (t *virtualTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

func newVirtualClock() *virtualClock {
	return &virtualClock{now: time.Unix(0, 0)}
}

func (c *virtualClock) Now() time.Time { return c.now }

func (c *virtualClock) AfterFunc(d time.Duration, f func()) Timer {
	t := &virtualTimer{deadline: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *virtualClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
	pending := c.timers
	c.timers = nil
	for _, t := range pending {
		if t.stopped {
			continue
		}
		if !t.deadline.After(c.now) {
			t.f()
		} else {
			c.timers = append(c.timers, t)
		}
	}
}

func docWithText(text string) *document.Node {
	return document.NewDoc(document.NewNode(document.KindParagraph, document.NewText(text)))
}

func firstText(doc *document.Node) string {
	return document.CollectTextNodes(doc)[0].Text
}

func TestPushUndoRedo(t *testing.T) {
	h := New(10, time.Second, newVirtualClock())
	sel := document.Selection{}

	h.Push(docWithText("v1"), sel)
	h.Push(docWithText("v2"), sel)
	require.Equal(t, 2, h.UndoLen())

	entry := h.Undo(docWithText("v3"), sel)
	require.NotNil(t, entry)
	assert.Equal(t, "v2", firstText(entry.Doc))
	assert.Equal(t, 1, h.UndoLen())
	assert.Equal(t, 1, h.RedoLen())

	entry = h.Redo(docWithText("v2"), sel)
	require.NotNil(t, entry)
	assert.Equal(t, "v3", firstText(entry.Doc))
	assert.Equal(t, 2, h.UndoLen())
	assert.Equal(t, 0, h.RedoLen())
}

func TestUndoEmpty(t *testing.T) {
	h := New(10, time.Second, newVirtualClock())
	assert.Nil(t, h.Undo(docWithText("x"), document.Selection{}))
	assert.Nil(t, h.Redo(docWithText("x"), document.Selection{}))
}

func TestPushClearsRedo(t *testing.T) {
	h := New(10, time.Second, newVirtualClock())
	sel := document.Selection{}

	h.Push(docWithText("v1"), sel)
	require.NotNil(t, h.Undo(docWithText("v2"), sel))
	require.Equal(t, 1, h.RedoLen())

	h.Push(docWithText("v1b"), sel)
	assert.Equal(t, 0, h.RedoLen())
}

func TestSnapshotIsolation(t *testing.T) {
	// снимок не должен меняться вместе с живым деревом
	h := New(10, time.Second, newVirtualClock())
	doc := docWithText("before")
	h.Push(doc, document.Selection{})
	document.CollectTextNodes(doc)[0].Text = "after"

	entry := h.Undo(doc, document.Selection{})
	require.NotNil(t, entry)
	assert.Equal(t, "before", firstText(entry.Doc))
}

func TestBoundedStack(t *testing.T) {
	h := New(100, time.Second, newVirtualClock())
	sel := document.Selection{}
	for i := 0; i < 150; i++ {
		h.Push(docWithText(string(rune('a'+i%26))), sel)
	}
	assert.Equal(t, 100, h.UndoLen())
}

func TestDebounce(t *testing.T) {
	t.Run("burst collapses into one entry keeping first snapshot", func(t *testing.T) {
		clock := newVirtualClock()
		h := New(10, 300*time.Millisecond, clock)
		sel := document.Selection{}

		h.PushDebounced(docWithText(""), sel)
		clock.Advance(100 * time.Millisecond)
		h.PushDebounced(docWithText("H"), sel)
		clock.Advance(100 * time.Millisecond)
		h.PushDebounced(docWithText("Hi"), sel)
		require.Equal(t, 1, h.UndoLen())

		clock.Advance(300 * time.Millisecond)
		require.Equal(t, 1, h.UndoLen())

		// откат возвращает состояние до всей серии
		entry := h.Undo(docWithText("Hi!"), sel)
		require.NotNil(t, entry)
		assert.Equal(t, "", firstText(entry.Doc))
	})

	t.Run("pause between bursts yields separate entries", func(t *testing.T) {
		clock := newVirtualClock()
		h := New(10, 300*time.Millisecond, clock)
		sel := document.Selection{}

		h.PushDebounced(docWithText(""), sel)
		clock.Advance(400 * time.Millisecond)
		h.PushDebounced(docWithText("Hello "), sel)
		clock.Advance(400 * time.Millisecond)

		assert.Equal(t, 2, h.UndoLen())
	})

	t.Run("direct push flushes pending first", func(t *testing.T) {
		clock := newVirtualClock()
		h := New(10, 300*time.Millisecond, clock)
		sel := document.Selection{}

		h.PushDebounced(docWithText("typing"), sel)
		h.Push(docWithText("structural"), sel)

		assert.Equal(t, 2, h.UndoLen())
		entry := h.Undo(docWithText("now"), sel)
		require.NotNil(t, entry)
		assert.Equal(t, "structural", firstText(entry.Doc))
		entry = h.Undo(docWithText("structural"), sel)
		require.NotNil(t, entry)
		assert.Equal(t, "typing", firstText(entry.Doc))
	})

	t.Run("undo flushes pending so the burst is undoable", func(t *testing.T) {
		clock := newVirtualClock()
		h := New(10, 300*time.Millisecond, clock)
		sel := document.Selection{}

		h.PushDebounced(docWithText(""), sel)
		entry := h.Undo(docWithText("Hi"), sel)
		require.NotNil(t, entry)
		assert.Equal(t, "", firstText(entry.Doc))
	})

	t.Run("timer fires once even after stop race", func(t *testing.T) {
		clock := newVirtualClock()
		h := New(10, 300*time.Millisecond, clock)
		sel := document.Selection{}

		h.PushDebounced(docWithText("a"), sel)
		clock.Advance(300 * time.Millisecond)
		clock.Advance(300 * time.Millisecond)
		assert.Equal(t, 1, h.UndoLen())
	})
}
