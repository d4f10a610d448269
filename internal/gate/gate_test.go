package gate

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// hammer runs n concurrent holders and reports the highest concurrency seen.
func hammer(t *testing.T, g *Gate, n int, hold time.Duration) int64 {
	t.Helper()
	var cur, peak atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := g.Do(context.Background(), func() error {
				c := cur.Add(1)
				for {
					p := peak.Load()
					if c <= p || peak.CompareAndSwap(p, c) {
						break
					}
				}
				time.Sleep(hold)
				cur.Add(-1)
				return nil
			})
			if err != nil {
				t.Errorf("Do: %v", err)
			}
		}()
	}
	wg.Wait()
	return peak.Load()
}

func TestGate_CapacityNeverExceeded(t *testing.T) {
	for _, capacity := range []int{1, 2} {
		g := New("t", capacity)
		peak := hammer(t, g, 12, 5*time.Millisecond)
		if peak > int64(capacity) {
			t.Fatalf("capacity %d exceeded: peak=%d", capacity, peak)
		}
		if peak != int64(capacity) {
			t.Fatalf("capacity %d never saturated: peak=%d", capacity, peak)
		}
		if g.Inflight() != 0 || g.Waiting() != 0 {
			t.Fatalf("gate not drained: inflight=%d waiting=%d", g.Inflight(), g.Waiting())
		}
	}
}

func TestGate_ReleasedAfterError(t *testing.T) {
	g := New("large", 1)
	boom := errors.New("boom")
	if err := g.Do(context.Background(), func() error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := g.Do(ctx, func() error { return nil }); err != nil {
		t.Fatalf("gate leaked after error: %v", err)
	}
}

func TestGate_ReleasedAfterPanic(t *testing.T) {
	g := New("large", 1)
	func() {
		defer func() { _ = recover() }()
		_ = g.Do(context.Background(), func() error { panic("kaboom") })
	}()
	if g.Inflight() != 0 {
		t.Fatalf("inflight=%d after panic", g.Inflight())
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	release, err := g.Acquire(ctx)
	if err != nil {
		t.Fatalf("gate leaked after panic: %v", err)
	}
	release()
}

func TestGate_SecondWaiterAdmittedAfterFirstReleases(t *testing.T) {
	g := New("large", 1)
	release, err := g.Acquire(context.Background())
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	admitted := make(chan struct{})
	go func() {
		r2, err := g.Acquire(context.Background())
		if err != nil {
			t.Errorf("second acquire: %v", err)
			close(admitted)
			return
		}
		close(admitted)
		r2()
	}()
	select {
	case <-admitted:
		t.Fatal("second caller admitted while first holds the slot")
	case <-time.After(30 * time.Millisecond):
	}
	if g.Waiting() != 1 {
		t.Fatalf("waiting=%d want 1", g.Waiting())
	}
	release()
	select {
	case <-admitted:
	case <-time.After(time.Second):
		t.Fatal("second caller not admitted after release")
	}
}

func TestGate_CanceledWaitDoesNotConsumeSlot(t *testing.T) {
	g := New("large", 1)
	release, _ := g.Acquire(context.Background())
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := g.Acquire(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	release()
	r2, err := g.Acquire(context.Background())
	if err != nil {
		t.Fatalf("acquire after canceled wait: %v", err)
	}
	r2()
}

func TestGate_ReleaseIsIdempotent(t *testing.T) {
	g := New("small", 2)
	r, _ := g.Acquire(context.Background())
	r()
	r()
	if g.Inflight() != 0 {
		t.Fatalf("inflight=%d", g.Inflight())
	}
}

func TestGate_OnChangeObservesCounts(t *testing.T) {
	g := New("small", 2)
	var seen []int
	g.OnChange(func(n int) { seen = append(seen, n) })
	r1, _ := g.Acquire(context.Background())
	r2, _ := g.Acquire(context.Background())
	r2()
	r1()
	want := []int{1, 2, 1, 0}
	if len(seen) != len(want) {
		t.Fatalf("seen=%v want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("seen=%v want %v", seen, want)
		}
	}
}

func TestNew_MinimumCapacity(t *testing.T) {
	if c := New("x", 0).Capacity(); c != 1 {
		t.Fatalf("capacity=%d", c)
	}
}
