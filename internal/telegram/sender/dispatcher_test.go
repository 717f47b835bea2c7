package sender

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherExecutesJobs(t *testing.T) {
	d := NewDispatcher(Options{QueueSize: 8, Workers: 2})
	defer d.Close()

	done := make(chan struct{})
	err := d.Enqueue(context.Background(), "send.text", "sendMessage", func() error {
		close(done)
		return nil
	})
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job was not executed")
	}
}

func TestDispatcherCountsFailures(t *testing.T) {
	d := NewDispatcher(Options{QueueSize: 8, Workers: 1})

	require.NoError(t, d.Enqueue(context.Background(), "send.text", "sendMessage", func() error {
		return errors.New("telegram: Bad Request (400)")
	}))
	d.Close()

	assert.Equal(t, uint64(1), d.ErrorCount())
}

func TestDispatcherQueueFull(t *testing.T) {
	d := NewDispatcher(Options{QueueSize: 1, Workers: 1})
	defer d.Close()

	release := make(chan struct{})
	started := make(chan struct{})

	// occupy the single worker
	require.NoError(t, d.Enqueue(context.Background(), "a", "", func() error {
		close(started)
		<-release
		return nil
	}))
	<-started

	// fill the queue slot
	require.NoError(t, d.Enqueue(context.Background(), "b", "", func() error { return nil }))

	err := d.Enqueue(context.Background(), "c", "", func() error { return nil })
	assert.ErrorIs(t, err, ErrQueueFull)

	close(release)
}

func TestDispatcherClosedQueue(t *testing.T) {
	d := NewDispatcher(Options{})
	d.Close()

	err := d.Enqueue(context.Background(), "send.text", "sendMessage", func() error { return nil })
	assert.ErrorIs(t, err, ErrQueueClosed)
}

func TestDispatcherNilRun(t *testing.T) {
	d := NewDispatcher(Options{})
	defer d.Close()

	assert.Error(t, d.Enqueue(context.Background(), "send.text", "sendMessage", nil))
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "deadline", err: context.DeadlineExceeded, want: "timeout"},
		{name: "unknown", err: errors.New("boom"), want: "unknown"},
		{name: "api 4xx in message", err: errors.New("telegram: bad request (400)"), want: "http_4xx"},
		{name: "api 5xx in message", err: errors.New("telegram: internal (502)"), want: "http_5xx"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyError(tt.err))
		})
	}
}

func TestSanitizeErrorMessage(t *testing.T) {
	err := errors.New(`Post "https://api.telegram.org/bot123456:AAH-secret_token/sendMessage": EOF`)
	got := sanitizeErrorMessage(err)
	assert.NotContains(t, got, "123456:AAH")
	assert.Contains(t, got, "bot<redacted>")
}
