package repair

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/bsaid97/go-geojson-repair/geojson"
)

// BatchJob names one input file and where its repaired version goes.
type BatchJob struct {
	Input  string
	Output string
}

// BatchResult is the outcome of one batch job. Exactly one of Summary and
// Err is set.
type BatchResult struct {
	Job     BatchJob
	Summary *Summary
	Err     error
}

// RepairBatch repairs every job on a pool of workers and returns one result
// per job, in job order. Each file is an isolated single-threaded run; a
// failed file is reported in its result and does not stop the batch.
func RepairBatch(engine geojson.Engine, jobs []BatchJob, workers, precision int) []BatchResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}

	results := make([]BatchResult, len(jobs))
	jobCh := make(chan int, len(jobs))
	var done atomic.Int64

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range jobCh {
				r := &Repairer{Engine: engine, Precision: precision}
				summary, err := r.RepairFile(jobs[i].Input, jobs[i].Output)
				results[i] = BatchResult{Job: jobs[i], Summary: summary, Err: err}

				ev := log.Info()
				if err != nil {
					ev = log.Warn().Err(err)
				}
				ev.Str("input", jobs[i].Input).
					Int64("done", done.Add(1)).
					Int("total", len(jobs)).
					Msg("Batch file finished")
			}
		}()
	}

	for i := range jobs {
		jobCh <- i
	}
	close(jobCh)
	wg.Wait()

	return results
}
