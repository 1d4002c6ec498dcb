package linearize

import (
	"context"
	"fmt"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/gardar/docsift/pkg/blocks"
)

// LinearizeAll linearizes independent documents with at most workers running
// at once. Results are returned in input order. When SaveOutputPath is set,
// document i writes its pages under SaveOutputPath/doc_<i>.
// The first failure cancels documents that have not started yet.
func LinearizeAll(ctx context.Context, graphs []*blocks.Graph, opts Options, workers int) ([]*Result, error) {
	if workers < 1 {
		workers = 1
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	results := make([]*Result, len(graphs))
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)

	for i, graph := range graphs {
		i, graph := i, graph // per-iteration copies (go directive < 1.22)
		if gctx.Err() != nil {
			break
		}

		docOpts := opts
		if opts.SaveOutputPath != "" {
			docOpts.SaveOutputPath = filepath.Join(opts.SaveOutputPath, fmt.Sprintf("doc_%d", i))
		}

		eg.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := Linearize(graph, docOpts)
			if err != nil {
				return fmt.Errorf("document %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
