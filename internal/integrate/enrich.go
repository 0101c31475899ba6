package integrate

import (
	"context"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/genegraph/genegraph-backend/internal/platform/geneontology"
	"github.com/genegraph/genegraph-backend/internal/platform/logger"
)

// EnrichTerms resolves every distinct GO id to its label/definition, fanning
// the deduplicated id set out over partition workers. A failed lookup
// degrades that single id to an empty Term and never fails the batch, so the
// returned map always has one entry per distinct id.
func EnrichTerms(ctx context.Context, client geneontology.Client, log *logger.Logger, ids []string, partitions int) map[string]geneontology.Term {
	distinct := distinctSorted(ids)
	results := make([]geneontology.Term, len(distinct))
	if len(distinct) == 0 {
		return map[string]geneontology.Term{}
	}

	if partitions <= 0 {
		partitions = runtime.NumCPU()
	}
	if partitions > len(distinct) {
		partitions = len(distinct)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(partitions)

	chunk := (len(distinct) + partitions - 1) / partitions
	for start := 0; start < len(distinct); start += chunk {
		end := start + chunk
		if end > len(distinct) {
			end = len(distinct)
		}
		start, end := start, end
		g.Go(func() error {
			for i := start; i < end; i++ {
				term, err := client.LookupTerm(gctx, distinct[i])
				if err != nil {
					if log != nil {
						log.Warn("GO term lookup failed; degrading to empty term",
							"go_id", distinct[i],
							"error", err,
						)
					}
					continue
				}
				results[i] = term
			}
			return nil
		})
	}
	// Workers only write disjoint index ranges and never return errors.
	_ = g.Wait()

	out := make(map[string]geneontology.Term, len(distinct))
	for i, id := range distinct {
		out[id] = results[i]
	}
	return out
}

func distinctSorted(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
