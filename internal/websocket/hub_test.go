package websocket

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeHandle struct {
	once sync.Once
	done chan struct{}
}

func newFakeHandle() *fakeHandle {
	return &fakeHandle{done: make(chan struct{})}
}

func (f *fakeHandle) Close() { f.once.Do(func() { close(f.done) }) }
func (f *fakeHandle) Done() <-chan struct{} { return f.done }

func (f *fakeHandle) closed() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

func TestHub_AddReplacesAndClosesOldSession(t *testing.T) {
	hub := NewHub()
	first := newFakeHandle()
	second := newFakeHandle()

	assert.False(t, hub.Add("m1", first))
	assert.True(t, hub.Add("m1", second))

	assert.True(t, first.closed())
	assert.False(t, second.closed())
	assert.Equal(t, second, hub.Get("m1"))
	assert.Equal(t, 1, hub.Len())
}

func TestHub_DropsSessionOnceDone(t *testing.T) {
	hub := NewHub()
	h := newFakeHandle()
	hub.Add("m1", h)

	h.Close()

	assert.Eventually(t, func() bool { return hub.Get("m1") == nil }, time.Second, 5*time.Millisecond)
}

func TestHub_ReplacedSessionDoesNotEvictSuccessor(t *testing.T) {
	hub := NewHub()
	first := newFakeHandle()
	second := newFakeHandle()

	hub.Add("m1", first)
	hub.Add("m1", second)

	// give the watcher of the first session time to run
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, second, hub.Get("m1"))
}

func TestHub_RemoveAndCloseAll(t *testing.T) {
	hub := NewHub()
	a, b := newFakeHandle(), newFakeHandle()
	hub.Add("m1", a)
	hub.Add("m2", b)

	assert.True(t, hub.Remove("m1"))
	assert.False(t, hub.Remove("m1"))
	assert.True(t, a.closed())

	hub.CloseAll()
	assert.True(t, b.closed())
	assert.Equal(t, 0, hub.Len())
}
