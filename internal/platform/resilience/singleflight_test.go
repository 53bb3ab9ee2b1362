package resilience

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSingleFlight_CollapsesConcurrentCalls(t *testing.T) {
	var g SingleFlight
	var upstream atomic.Int32

	const callers = 16
	start := make(chan struct{})
	shared := make([]bool, callers)
	values := make([]any, callers)

	var wg sync.WaitGroup
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		i := i
		go func() {
			defer wg.Done()
			<-start
			val, err, piggybacked := g.Do("details:m-1", func() (any, error) {
				upstream.Add(1)
				time.Sleep(20 * time.Millisecond)
				return "record", nil
			})
			if err != nil {
				t.Errorf("caller %d failed: %v", i, err)
			}
			values[i] = val
			shared[i] = piggybacked
		}()
	}

	close(start)
	wg.Wait()

	if got := upstream.Load(); got != 1 {
		t.Fatalf("expected one upstream call, got %d", got)
	}

	owners := 0
	for i := range shared {
		if values[i] != "record" {
			t.Fatalf("caller %d got %v, want the shared result", i, values[i])
		}
		if !shared[i] {
			owners++
		}
	}
	if owners != 1 {
		t.Fatalf("exactly one caller must own the flight, got %d", owners)
	}
}

func TestSingleFlight_KeyIsReusableAfterCompletion(t *testing.T) {
	var g SingleFlight
	var upstream atomic.Int32

	for i := 0; i < 3; i++ {
		_, err, piggybacked := g.Do("history:alice#001", func() (any, error) {
			upstream.Add(1)
			return nil, nil
		})
		if err != nil {
			t.Fatalf("call %d failed: %v", i, err)
		}
		if piggybacked {
			t.Fatalf("sequential call %d must not report a shared flight", i)
		}
	}

	if got := upstream.Load(); got != 3 {
		t.Fatalf("sequential calls must each reach upstream, got %d", got)
	}
}

func TestSingleFlight_DistinctKeysDoNotBlockEachOther(t *testing.T) {
	var g SingleFlight
	var upstream atomic.Int32

	var wg sync.WaitGroup
	for _, key := range []string{"history:alice#001", "history:bob#001"} {
		key := key
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err, _ := g.Do(key, func() (any, error) {
				upstream.Add(1)
				time.Sleep(10 * time.Millisecond)
				return key, nil
			})
			if err != nil {
				t.Errorf("call for %s failed: %v", key, err)
			}
		}()
	}
	wg.Wait()

	if got := upstream.Load(); got != 2 {
		t.Fatalf("distinct keys must each fly, got %d upstream calls", got)
	}
}
