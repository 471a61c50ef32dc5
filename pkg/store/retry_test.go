package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fastRetry keeps backoff short enough for unit tests.
var fastRetry = retryConfig{maxRetries: 3, baseDelay: time.Millisecond, maxDelay: 4 * time.Millisecond}

func TestIsTransientSQLiteErr(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"no error", nil, false},
		{"duplicate head row", errors.New("UNIQUE constraint failed: heads.conversation_id"), false},
		{"malformed clock column", errors.New("decode clock: unexpected end of JSON input"), false},
		{"validation failure", errors.New("payload.replyToEventId: must be a UUID"), false},
		{"ingest racing a watcher", errors.New("database is locked (5) (SQLITE_BUSY)"), true},
		{"two writers on heads", errors.New("database table is locked (6)"), true},
		{"WAL checkpoint short read", errors.New("disk I/O error (522)"), true},
		{"shared cache lock", errors.New("SQLITE_LOCKED: table events"), true},
		{"wrapped by ApplyEvent", errors.New("insert event x: SQLITE_BUSY"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isTransientSQLiteErr(tt.err); got != tt.want {
				t.Errorf("isTransientSQLiteErr(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestRetryOp(t *testing.T) {
	busy := errors.New("database is locked (5)")
	invalid := errors.New("invalid delivery state transition: read -> sent")

	tests := []struct {
		name      string
		cfg       retryConfig
		failures  int   // calls that fail before success
		failWith  error // error returned by failing calls
		wantCalls int
		wantErr   error
	}{
		{"first attempt commits", fastRetry, 0, nil, 1, nil},
		{"refused transition is final", fastRetry, 10, invalid, 1, invalid},
		{"busy twice then commits", fastRetry, 2, busy, 3, nil},
		{"busy past the budget", retryConfig{maxRetries: 2, baseDelay: time.Millisecond, maxDelay: time.Millisecond}, 10, busy, 3, busy},
		{"no retry budget", retryConfig{maxRetries: 0, baseDelay: time.Millisecond, maxDelay: time.Millisecond}, 10, busy, 1, busy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := retryOp(context.Background(), tt.cfg, func() error {
				calls++
				if calls <= tt.failures {
					return tt.failWith
				}
				return nil
			})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestRetryOpStopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := retryConfig{maxRetries: 5, baseDelay: time.Hour, maxDelay: time.Hour}
	busy := errors.New("SQLITE_BUSY")

	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- retryOp(ctx, cfg, func() error {
			calls++
			return busy
		})
	}()

	// The first attempt fails and retryOp parks in an hour-long backoff.
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, busy) {
			t.Errorf("err = %v, want the last busy error", err)
		}
		if calls != 1 {
			t.Errorf("calls = %d, want 1", calls)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("retryOp kept waiting after the context was cancelled")
	}
}

func TestRetryOpCancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := retryOp(ctx, fastRetry, func() error {
		calls++
		return errors.New("SQLITE_BUSY")
	})
	if err == nil {
		t.Fatal("expected the busy error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want a single attempt", calls)
	}
}

func TestBackoffDelay(t *testing.T) {
	cfg := retryConfig{baseDelay: 10 * time.Millisecond, maxDelay: 35 * time.Millisecond}

	tests := []struct {
		attempt int
		min     time.Duration
	}{
		{0, 10 * time.Millisecond},
		{1, 20 * time.Millisecond},
		{2, 35 * time.Millisecond}, // 40ms capped
		{8, 35 * time.Millisecond},
	}
	for _, tt := range tests {
		d := backoffDelay(cfg, tt.attempt)
		if d < tt.min || d >= tt.min+cfg.baseDelay {
			t.Errorf("attempt %d: delay %v not in [%v, %v)", tt.attempt, d, tt.min, tt.min+cfg.baseDelay)
		}
	}
}
