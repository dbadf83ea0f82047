// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !race

// This file contains examples that use atomix concurrency primitives.
// These trigger false positives with Go's race detector because atomix
// atomic operations appear as regular memory accesses to the detector.
// The examples are correct; they're excluded from race testing.

package looqueue_test

import (
	"fmt"
	"slices"
	"sync"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"code.hybscloud.com/looqueue"
)

// ExampleNew demonstrates basic single-goroutine usage.
func ExampleNew() {
	q := looqueue.New[int]()

	for i := 1; i <= 5; i++ {
		v := i * 10
		q.Enqueue(&v)
	}

	for range 5 {
		v, _ := q.Dequeue()
		fmt.Println(v)
	}

	// Output:
	// 10
	// 20
	// 30
	// 40
	// 50
}

// ExampleQueue_Enqueue demonstrates many producers feeding one queue.
func ExampleQueue_Enqueue() {
	q := looqueue.New[string]()

	var wg sync.WaitGroup
	for p := range 3 {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			backoff := iox.Backoff{}
			msg := fmt.Sprintf("msg from producer %d", id)
			for q.Enqueue(&msg) != nil {
				backoff.Wait()
			}
		}(p)
	}
	wg.Wait()

	for {
		msg, err := q.Dequeue()
		if err != nil {
			break
		}
		fmt.Println(msg)
	}

	// Unordered output:
	// msg from producer 0
	// msg from producer 1
	// msg from producer 2
}

// ExampleBuild demonstrates constructing a queue through the builder.
func ExampleBuild() {
	q, err := looqueue.Build[int](looqueue.NewBuilder().
		WithExpectedProducers(8).
		WithExpectedConsumers(4))
	if err != nil {
		fmt.Println("build failed:", err)
		return
	}

	v := 1
	q.Enqueue(&v)
	got, _ := q.Dequeue()
	fmt.Println(got)

	// Output:
	// 1
}

// ExampleIsWouldBlock demonstrates the empty-queue error.
func ExampleIsWouldBlock() {
	q := looqueue.New[int]()

	_, err := q.Dequeue()
	if looqueue.IsWouldBlock(err) {
		fmt.Println("queue empty - no data available")
	}

	v := 5
	q.Enqueue(&v)
	q.Dequeue()

	_, err = q.Dequeue()
	if looqueue.IsWouldBlock(err) {
		fmt.Println("queue empty again - no data available")
	}

	// Output:
	// queue empty - no data available
	// queue empty again - no data available
}

// Example_eventAggregation demonstrates many producers feeding one
// consumer that aggregates results.
func Example_eventAggregation() {
	type event struct {
		source string
		value  int
	}

	q := looqueue.New[event]()

	var wg sync.WaitGroup
	var total atomix.Int64

	for source := range slices.Values([]string{"sensor-A", "sensor-B", "sensor-C"}) {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			backoff := iox.Backoff{}
			for i := 1; i <= 3; i++ {
				ev := event{source: name, value: i}
				for q.Enqueue(&ev) != nil {
					backoff.Wait()
				}
				backoff.Reset()
				total.Add(1)
			}
		}(source)
	}
	wg.Wait()

	var sum int
	for {
		ev, err := q.Dequeue()
		if err != nil {
			break
		}
		sum += ev.value
	}

	fmt.Printf("Total events: %d, Sum of values: %d\n", total.Load(), sum)

	// Output:
	// Total events: 9, Sum of values: 18
}

// Example_batchProcessing demonstrates collecting dequeued items into
// fixed-size batches.
func Example_batchProcessing() {
	q := looqueue.New[int]()

	for i := 1; i <= 9; i++ {
		v := i
		q.Enqueue(&v)
	}

	const batchSize = 4
	batch := make([]int, 0, batchSize)
	batchNum := 0

	for {
		for len(batch) < batchSize {
			v, err := q.Dequeue()
			if err != nil {
				break
			}
			batch = append(batch, v)
		}

		if len(batch) == 0 {
			break
		}

		batchNum++
		fmt.Printf("Batch %d: %v\n", batchNum, batch)
		batch = batch[:0]
	}

	// Output:
	// Batch 1: [1 2 3 4]
	// Batch 2: [5 6 7 8]
	// Batch 3: [9]
}
