package client

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestContinue(t *testing.T) {

	r := Registry{}
	r.Initialize()

	// first request of a client is always a visit
	if !r.Continue("10.0.0.1", "question-1") {
		t.Errorf("first request should count as a visit")
	}

	// same client, same profile = page refresh
	if r.Continue("10.0.0.1", "question-1") {
		t.Errorf("refresh should not count as a visit")
	}

	// same client, different profile = visit
	if !r.Continue("10.0.0.1", "question-2") {
		t.Errorf("different profile should count as a visit")
	}

	// back to the first profile = visit again
	if !r.Continue("10.0.0.1", "question-1") {
		t.Errorf("returning to a profile should count as a visit")
	}

	// another client is tracked independently
	if !r.Continue("10.0.0.2", "question-1") {
		t.Errorf("clients must be tracked independently")
	}

	if r.Count() != 2 {
		t.Errorf("count = %d, want 2", r.Count())
	}
}

// concurrent requests of one client to the same profile must count as a
// single visit, no matter how they interleave
func TestContinueConcurrent(t *testing.T) {

	r := Registry{}
	r.Initialize()

	var visits int32
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if r.Continue("10.0.0.9", "question-7") {
				atomic.AddInt32(&visits, 1)
			}
		}()
	}
	wg.Wait()

	if visits != 1 {
		t.Errorf("concurrent refreshes counted %d visits, want 1", visits)
	}
}
