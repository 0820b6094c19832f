package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestGetOrComputeCachesValue(t *testing.T) {
	c := New()
	ctx := context.Background()

	var computes atomic.Int32
	fn := func(context.Context) (any, error) {
		computes.Add(1)
		return 42, nil
	}

	for i := 0; i < 5; i++ {
		v, err := c.GetOrCompute(ctx, "k", time.Minute, fn)
		if err != nil {
			t.Fatalf("GetOrCompute: %v", err)
		}
		if v.(int) != 42 {
			t.Fatalf("value = %v, want 42", v)
		}
	}

	if got := computes.Load(); got != 1 {
		t.Errorf("computes = %d, want 1", got)
	}
}

func TestGetOrComputeSingleFlight(t *testing.T) {
	c := New()
	ctx := context.Background()

	var computes atomic.Int32
	gate := make(chan struct{})

	const callers = 20
	var wg sync.WaitGroup
	results := make([]any, callers)
	errs := make([]error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = c.GetOrCompute(ctx, "k", time.Minute, func(context.Context) (any, error) {
				computes.Add(1)
				<-gate // hold all callers in the in-flight window
				return "shared", nil
			})
		}(i)
	}

	// Give every goroutine time to join the flight, then release.
	time.Sleep(50 * time.Millisecond)
	close(gate)
	wg.Wait()

	if got := computes.Load(); got != 1 {
		t.Errorf("computes = %d, want exactly 1", got)
	}
	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d: %v", i, errs[i])
		}
		if results[i] != "shared" {
			t.Errorf("caller %d got %v, want %q", i, results[i], "shared")
		}
	}
}

func TestGetOrComputeDistinctKeysParallel(t *testing.T) {
	c := New()
	ctx := context.Background()

	// A stalled computation on one key must not block another key.
	stall := make(chan struct{})
	go func() {
		_, _ = c.GetOrCompute(ctx, "slow", time.Minute, func(context.Context) (any, error) {
			<-stall
			return nil, nil
		})
	}()

	done := make(chan error, 1)
	go func() {
		_, err := c.GetOrCompute(ctx, "fast", time.Minute, func(context.Context) (any, error) {
			return 1, nil
		})
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("fast key: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("distinct key blocked behind an unrelated in-flight computation")
	}
	close(stall)
}

func TestGetOrComputeExpiry(t *testing.T) {
	c := New()
	ctx := context.Background()

	var computes atomic.Int32
	fn := func(context.Context) (any, error) {
		return int(computes.Add(1)), nil
	}

	v1, err := c.GetOrCompute(ctx, "k", 20*time.Millisecond, fn)
	if err != nil {
		t.Fatal(err)
	}
	if v1.(int) != 1 {
		t.Fatalf("first value = %v, want 1", v1)
	}

	time.Sleep(30 * time.Millisecond)

	v2, err := c.GetOrCompute(ctx, "k", 20*time.Millisecond, fn)
	if err != nil {
		t.Fatal(err)
	}
	if v2.(int) != 2 {
		t.Errorf("value after expiry = %v, want recomputed 2", v2)
	}
}

func TestGetOrComputeErrorNotCached(t *testing.T) {
	c := New()
	ctx := context.Background()

	boom := errors.New("boom")
	var computes atomic.Int32

	_, err := c.GetOrCompute(ctx, "k", time.Minute, func(context.Context) (any, error) {
		computes.Add(1)
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}

	v, err := c.GetOrCompute(ctx, "k", time.Minute, func(context.Context) (any, error) {
		computes.Add(1)
		return "ok", nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if v != "ok" {
		t.Errorf("value = %v, want ok", v)
	}
	if computes.Load() != 2 {
		t.Errorf("computes = %d, want 2 (error must not be cached)", computes.Load())
	}
}

func TestGetOrComputeCallerTimeout(t *testing.T) {
	c := New()

	release := make(chan struct{})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.GetOrCompute(ctx, "k", time.Minute, func(context.Context) (any, error) {
		<-release
		return nil, nil
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want context.DeadlineExceeded", err)
	}
}

func TestTypedGet(t *testing.T) {
	c := New()
	ctx := context.Background()

	v, err := Get(ctx, c, "k", time.Minute, func(context.Context) (string, error) {
		return "typed", nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if v != "typed" {
		t.Errorf("v = %q, want %q", v, "typed")
	}

	_, err = Get(ctx, c, "err", time.Minute, func(context.Context) (string, error) {
		return "", errors.New("nope")
	})
	if err == nil {
		t.Error("want error")
	}
}

func TestSweep(t *testing.T) {
	c := New()
	ctx := context.Background()

	for _, key := range []string{"a", "b"} {
		if _, err := c.GetOrCompute(ctx, key, 10*time.Millisecond, func(context.Context) (any, error) {
			return key, nil
		}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := c.GetOrCompute(ctx, "keep", time.Hour, func(context.Context) (any, error) {
		return "keep", nil
	}); err != nil {
		t.Fatal(err)
	}

	time.Sleep(20 * time.Millisecond)

	if n := c.sweep(time.Now()); n != 2 {
		t.Errorf("sweep removed %d, want 2", n)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}
