package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/structeng/cfst-extractor/constants"
)

const DefaultWorkers = 4

// ProcessDir processes every PDF directly under dir with a bounded worker
// pool. Results come back in filename order regardless of which worker
// finished first. Cancellation stops dispatching; in-flight documents run
// to completion.
func (p *Processor) ProcessDir(ctx context.Context, dir string, workers int) ([]Result, error) {
	paths, err := listPDFs(dir)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, nil
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if workers > len(paths) {
		workers = len(paths)
	}

	p.logger.Info("pipeline.batch.start", "dir", dir, "documents", len(paths), "workers", workers)

	type job struct {
		index int
		path  string
	}
	jobs := make(chan job)
	results := make([]Result, len(paths))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				results[j.index] = p.ProcessFile(ctx, j.path)
			}
		}()
	}

dispatch:
	for i, path := range paths {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- job{index: i, path: path}:
		}
	}
	close(jobs)
	wg.Wait()

	// Anything never dispatched is reported as queued, not silently dropped.
	for i := range results {
		if results[i].Status == "" {
			results[i] = Result{
				Path:   paths[i],
				RefNo:  refNoFromPath(paths[i]),
				Status: constants.DocStatusQueued,
				Reason: "cancelled before processing",
			}
		}
	}

	p.logger.Info("pipeline.batch.done", "dir", dir, "documents", len(paths))
	return results, ctx.Err()
}

// listPDFs returns the PDFs directly under dir, sorted by name.
func listPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := constants.NormalizeExt(filepath.Ext(e.Name()))
		if _, ok := constants.AllowedExtensions[ext]; ok {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}
