// Package analyzer fans an inventory batch out across both engines and
// collects the merged records in input order.
package analyzer

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/Bolliboinapavansai/vmware-exit-intelligence-agent/internal/inventory"
	"github.com/Bolliboinapavansai/vmware-exit-intelligence-agent/internal/report"
	"github.com/Bolliboinapavansai/vmware-exit-intelligence-agent/internal/rules"
	"github.com/Bolliboinapavansai/vmware-exit-intelligence-agent/internal/scoring"
)

type Options struct {
	// Workers bounds the fan-out width; 0 means GOMAXPROCS.
	Workers int
}

// Analyze classifies and scores every VM. Records are independent, so
// the batch is evaluated concurrently; each result is written to its
// input index so output order always matches input order.
func Analyze(ctx context.Context, engine *rules.Engine, vms []inventory.VM, opts Options) ([]report.Record, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	records := make([]report.Record, len(vms))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range vms {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			vm := &vms[i]
			cls := engine.Classify(vm)
			sc := scoring.Score(vm)
			records[i] = report.Assemble(vm, cls, sc)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}
