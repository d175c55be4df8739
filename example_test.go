// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

//go:build !race

// Concurrent producer/consumer examples trigger false positives with Go's
// race detector, because lock-free synchronization relies on acquire-release
// orderings the detector cannot observe. The examples are correct; they are
// excluded from race testing.

package ringq_test

import (
	"fmt"
	"sync"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"github.com/tanagra-labs/ringq"
)

// Example_workerPool demonstrates a worker pool built on Ring.
func Example_workerPool() {
	type Job struct {
		ID     int
		Input  int
		Result int
	}

	jobs := ringq.NewRing[Job](16)
	results := make([]int, 5)
	var wg sync.WaitGroup
	var completed atomix.Int32

	for range 3 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			backoff := iox.Backoff{}
			for completed.Load() < 5 {
				job, err := jobs.Poll()
				if err != nil {
					backoff.Wait()
					continue
				}
				backoff.Reset()
				job.Result = job.Input * job.Input
				results[job.ID] = job.Result
				completed.Add(1)
			}
		}()
	}

	backoff := iox.Backoff{}
	for i := range 5 {
		job := Job{ID: i, Input: i + 1}
		for jobs.Offer(&job) != nil {
			backoff.Wait()
		}
		backoff.Reset()
	}

	wg.Wait()

	for i, r := range results {
		fmt.Printf("Job %d: %d² = %d\n", i, i+1, r)
	}

	// Output:
	// Job 0: 1² = 1
	// Job 1: 2² = 4
	// Job 2: 3² = 9
	// Job 3: 4² = 16
	// Job 4: 5² = 25
}

// Example_pipeline demonstrates a multi-stage pipeline built on SPSC queues.
func Example_pipeline() {
	stage1to2 := ringq.NewSPSC[int](8)
	stage2to3 := ringq.NewSPSC[int](8)

	var wg sync.WaitGroup
	results := make([]int, 0, 5)
	var mu sync.Mutex

	wg.Add(1)
	go func() {
		defer wg.Done()
		backoff := iox.Backoff{}
		for i := 1; i <= 5; i++ {
			v := i
			for stage1to2.Offer(&v) != nil {
				backoff.Wait()
			}
			backoff.Reset()
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		backoffPoll := iox.Backoff{}
		backoffOffer := iox.Backoff{}
		processed := 0
		for processed < 5 {
			v, err := stage1to2.Poll()
			if err != nil {
				backoffPoll.Wait()
				continue
			}
			backoffPoll.Reset()
			doubled := v * 2
			for stage2to3.Offer(&doubled) != nil {
				backoffOffer.Wait()
			}
			backoffOffer.Reset()
			processed++
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		backoff := iox.Backoff{}
		for len(results) < 5 {
			v, err := stage2to3.Poll()
			if err != nil {
				backoff.Wait()
				continue
			}
			backoff.Reset()
			mu.Lock()
			results = append(results, v)
			mu.Unlock()
		}
	}()

	wg.Wait()

	for i, v := range results {
		fmt.Printf("Stage output %d: %d\n", i, v)
	}

	// Output:
	// Stage output 0: 2
	// Stage output 1: 4
	// Stage output 2: 6
	// Stage output 3: 8
	// Stage output 4: 10
}

// Example_eventAggregation demonstrates fan-in from many sensors into a
// single aggregator using the unbounded MPSC queue.
func Example_eventAggregation() {
	q := ringq.NewLinked[int]()

	var wg sync.WaitGroup
	for sensor := range 4 {
		wg.Add(1)
		go func(sensor int) {
			defer wg.Done()
			v := sensor
			if err := q.Offer(&v); err != nil {
				panic(err)
			}
		}(sensor)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	sum := 0
	received := 0
	for received < 4 {
		v, err := q.Poll()
		if err != nil {
			continue
		}
		sum += v
		received++
	}
	<-done

	fmt.Println("sum:", sum)

	// Output:
	// sum: 6
}
