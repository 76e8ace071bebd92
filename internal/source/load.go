package source

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/dusk-indust/cppshadow/internal/cpptree"
)

const maxConcurrentReads = 8

// Load reads every path concurrently and returns the files in input order.
// The first failed read cancels the rest.
func Load(ctx context.Context, paths []string) ([]cpptree.SourceFile, error) {
	files := make([]cpptree.SourceFile, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentReads)
	for i, p := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(p)
			if err != nil {
				return fmt.Errorf("source: read %s: %w", p, err)
			}
			files[i] = cpptree.SourceFile{Path: p, Content: string(data)}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}
