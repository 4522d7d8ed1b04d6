package testing

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// RequestFunc issues one request against the target instance.
type RequestFunc func(ctx context.Context) error

// Runner drives a RequestFunc from a fixed number of workers for a
// fixed duration and aggregates latency figures.
type Runner struct {
	name        string
	concurrency int
	duration    time.Duration

	mu        sync.Mutex
	successes int64
	failures  int64
	latencies []time.Duration
}

func NewRunner(name string, concurrency int, duration time.Duration) *Runner {
	return &Runner{
		name:        name,
		concurrency: concurrency,
		duration:    duration,
	}
}

// Run blocks until the duration elapses and all workers drain.
func (r *Runner) Run(request RequestFunc) *Result {
	ctx, cancel := context.WithTimeout(context.Background(), r.duration)
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < r.concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ctx.Err() == nil {
				start := time.Now()
				err := request(ctx)
				if ctx.Err() != nil {
					return
				}
				r.record(time.Since(start), err)
			}
		}()
	}
	wg.Wait()

	return r.result()
}

func (r *Runner) record(latency time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.latencies = append(r.latencies, latency)
	if err != nil {
		r.failures++
	} else {
		r.successes++
	}
}

func (r *Runner) result() *Result {
	r.mu.Lock()
	defer r.mu.Unlock()

	total := r.successes + r.failures
	result := &Result{
		Name:        r.name,
		Concurrency: r.concurrency,
		Duration:    r.duration,
		Total:       total,
		Successes:   r.successes,
		Failures:    r.failures,
	}
	if r.duration > 0 {
		result.QPS = float64(total) / r.duration.Seconds()
	}
	if total > 0 {
		result.ErrorRate = float64(r.failures) / float64(total)
	}

	if len(r.latencies) > 0 {
		sorted := make([]time.Duration, len(r.latencies))
		copy(sorted, r.latencies)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

		result.P50 = percentile(sorted, 0.5)
		result.P95 = percentile(sorted, 0.95)
		result.P99 = percentile(sorted, 0.99)
	}
	return result
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	index := int(float64(len(sorted)) * p)
	if index >= len(sorted) {
		index = len(sorted) - 1
	}
	return sorted[index]
}

// Result is one run's aggregate.
type Result struct {
	Name        string
	Concurrency int
	Duration    time.Duration
	Total       int64
	Successes   int64
	Failures    int64
	QPS         float64
	ErrorRate   float64
	P50         time.Duration
	P95         time.Duration
	P99         time.Duration
}

func (r *Result) Print() {
	fmt.Printf("scenario: %s\n", r.Name)
	fmt.Printf("  concurrency: %d  duration: %v\n", r.Concurrency, r.Duration)
	fmt.Printf("  requests: %d  ok: %d  failed: %d  error rate: %.2f%%\n",
		r.Total, r.Successes, r.Failures, r.ErrorRate*100)
	fmt.Printf("  qps: %.2f  p50: %v  p95: %v  p99: %v\n", r.QPS, r.P50, r.P95, r.P99)
}
