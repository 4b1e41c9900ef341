package octree

import (
	"context"

	"github.com/golang/geo/r3"
	"golang.org/x/sync/errgroup"
)

// InsertParallel splits points into at most workers contiguous runs and inserts each run from
// its own goroutine. Unlike InsertAll it stops at the first error, which is returned. Points in
// a run are inserted in order, runs interleave arbitrarily.
func (locked *LockedOctree) InsertParallel(ctx context.Context, points []r3.Vector, workers int) error {
	if workers < 1 {
		workers = 1
	}
	g, ctx := errgroup.WithContext(ctx)
	chunk := (len(points) + workers - 1) / workers
	for start := 0; start < len(points); start += chunk {
		run := points[start:min(start+chunk, len(points))]
		g.Go(func() error {
			for _, p := range run {
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := locked.Insert(p); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}
