package debounce

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	values []string
	fired  chan struct{}
}

func newRecorder() *recorder {
	return &recorder{fired: make(chan struct{}, 10)}
}

func (r *recorder) record(v string) {
	r.mu.Lock()
	r.values = append(r.values, v)
	r.mu.Unlock()
	r.fired <- struct{}{}
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.values...)
}

// TestDebouncer_OnlyLastValueRuns verifies that rapid triggers coalesce into one run.
func TestDebouncer_OnlyLastValueRuns(t *testing.T) {
	t.Parallel()

	rec := newRecorder()
	d := New(50*time.Millisecond, rec.record)

	for _, v := range []string{"c", "ca", "cat"} {
		d.Trigger(v)
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case <-rec.fired:
	case <-time.After(time.Second):
		t.Fatal("debounced function never ran")
	}

	// Give a wrongly scheduled extra run a chance to show up.
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, []string{"cat"}, rec.snapshot())
	assert.False(t, d.Pending())
}

// TestDebouncer_Stop verifies that a stopped debouncer never runs.
func TestDebouncer_Stop(t *testing.T) {
	t.Parallel()

	rec := newRecorder()
	d := New(30*time.Millisecond, rec.record)

	d.Trigger("dog")
	require.True(t, d.Pending())
	d.Stop()

	time.Sleep(80 * time.Millisecond)
	assert.Empty(t, rec.snapshot())
}

// TestDebouncer_SeparateBursts verifies that quiet periods produce separate runs.
func TestDebouncer_SeparateBursts(t *testing.T) {
	t.Parallel()

	rec := newRecorder()
	d := New(20*time.Millisecond, rec.record)

	d.Trigger("first")
	<-rec.fired
	d.Trigger("second")
	<-rec.fired

	assert.Equal(t, []string{"first", "second"}, rec.snapshot())
}
