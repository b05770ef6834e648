package workbook

import (
	"context"

	"github.com/soderasen-au/go-common/util"
	"golang.org/x/sync/errgroup"
)

// BuildAll renders independent documents in parallel, one goroutine per job.
// Jobs must not share an output path; templates are opened per job so a
// shared template file is safe. The first failing job cancels the rest.
func BuildAll(ctx context.Context, jobs []*Job) ([]*BuildResult, *util.Result) {
	g, ctx := errgroup.WithContext(ctx)
	results := make([]*BuildResult, len(jobs))

	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			r, res := Build(job)
			if res != nil {
				return res
			}
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, util.Error("BuildAll", err)
	}
	return results, nil
}
