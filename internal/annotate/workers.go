package annotate

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// run processes jobs with workerCount goroutines and returns the results in
// job order.
func run(ctx context.Context, logger *slog.Logger, deps Deps, jobs []Job, opts Options, workerCount int) []Result {
	if workerCount < 1 {
		workerCount = 1
	}
	if workerCount > len(jobs) {
		workerCount = len(jobs)
	}

	jobCh := make(chan Job, len(jobs))
	resultCh := make(chan Result, len(jobs))

	var wg sync.WaitGroup
	for w := 1; w <= workerCount; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			worker(ctx, id, logger, deps, opts, jobCh, resultCh)
		}(w)
	}

	for _, j := range jobs {
		jobCh <- j
	}
	close(jobCh)

	wg.Wait()
	close(resultCh)

	results := make([]Result, 0, len(jobs))
	for r := range resultCh {
		results = append(results, r)
	}
	sort.Slice(results, func(a, b int) bool { return results[a].Job.Index < results[b].Job.Index })
	return results
}

func worker(ctx context.Context, id int, logger *slog.Logger, deps Deps, opts Options, jobs <-chan Job, results chan<- Result) {
	for j := range jobs {
		if err := ctx.Err(); err != nil {
			results <- Result{Job: j, Error: err, ErrorType: ErrTypeFetch}
			continue
		}

		logger.Info("Worker started job", "worker_id", id, "source", j.Source())
		start := time.Now()
		r := Process(ctx, deps, j, opts)

		if r.Error != nil {
			level := slog.LevelError
			if r.Skipped() {
				level = slog.LevelInfo
			}
			logger.Log(ctx, level, "Worker finished job with error",
				"worker_id", id,
				"source", j.Source(),
				"error_type", r.ErrorType,
				"error", r.Error)
		} else {
			logger.Info("Worker finished job",
				"worker_id", id,
				"source", j.Source(),
				"annotated", r.Annotations.Annotated,
				"duration_ms", time.Since(start).Milliseconds())
		}
		results <- r
	}
}
