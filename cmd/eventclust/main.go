// Command eventclust clusters an events file with the parameters of a YAML
// pipeline and writes the resulting lookup tables as msgpack.
//
//	eventclust -config pipeline.yaml -events events.msgpack -out result.msgpack
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"

	"github.com/katalvlaran/eventcluster/cache"
	"github.com/katalvlaran/eventcluster/config"
	"github.com/katalvlaran/eventcluster/events"
	"github.com/katalvlaran/eventcluster/internal/log"
	"github.com/katalvlaran/eventcluster/linkage"
	"github.com/katalvlaran/eventcluster/modules"
	"github.com/katalvlaran/eventcluster/similarity"
)

// Output is the msgpack document written by a run.
type Output struct {
	Lookup      map[int]int          `msgpack:"lookup"` // event id → cluster
	Barycenters []linkage.Barycenter `msgpack:"barycenters"`
	Internal    map[int]int          `msgpack:"internal,omitempty"` // two-step: event id → pooled barycenter
	Modules     map[int]int          `msgpack:"modules,omitempty"`  // event id → module
	Modularity  float64              `msgpack:"modularity,omitempty"`
}

func main() {
	if err := run(os.Args[1:], os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "eventclust: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("eventclust", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		cfgPath = fs.String("config", "", "Pipeline YAML file (defaults when empty or missing)")
		evPath  = fs.String("events", "", "Events msgpack file")
		outPath = fs.String("out", "result.msgpack", "Output msgpack file")
		debug   = fs.Bool("debug", false, "Enable debug logging")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *evPath == "" {
		return fmt.Errorf("-events is required")
	}

	if err := log.Init(*debug); err != nil {
		return err
	}
	defer log.Sync()
	logger := log.GetSugaredLogger()

	cfg, err := config.LoadOrDefault(*cfgPath)
	if err != nil {
		return err
	}
	evs, err := events.Load(*evPath)
	if err != nil {
		return err
	}
	logger.Infow("loaded events", "events", evs.Len(), "path", *evPath)

	out, err := cluster(cfg, evs, logger)
	if err != nil {
		return err
	}

	data, err := msgpack.Marshal(out)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	if err := os.WriteFile(*outPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	logger.Infow("wrote result", "path", *outPath, "clusters", len(out.Barycenters))

	return nil
}

// cluster runs the configured stages over evs.
func cluster(cfg *config.Pipeline, evs *events.Events, logger *zap.SugaredLogger) (*Output, error) {
	var store *cache.Store
	if cfg.CacheDir != "" {
		var err error
		if store, err = cache.New(cfg.CacheDir, cache.WithLogger(logger)); err != nil {
			return nil, err
		}
	}
	sim := similarity.New(similarity.WithLogger(logger), similarity.WithCache(store))
	l := linkage.New(linkage.WithLogger(logger), linkage.WithCache(store), linkage.WithSimilarity(sim))

	out := &Output{}
	if cfg.TwoStep.Enabled {
		res, err := l.TwoStep(evs, cfg.TwoStepOptions())
		if err != nil {
			return nil, err
		}
		out.Lookup = res.External.Map()
		out.Internal = res.Internal.Map()
		out.Barycenters = res.StepTwo
	} else {
		res, err := l.GetBarycenters(evs, cfg.Linkage.Cutoff, cfg.GetOptions())
		if err != nil {
			return nil, err
		}
		out.Lookup = res.Lookup.Map()
		out.Barycenters = res.Barycenters
	}

	if !cfg.Modules.Enabled {
		return out, nil
	}
	D, err := sim.Correlation(evs, cfg.Distance.Type, cfg.Distance.Params)
	if err != nil {
		return nil, err
	}
	defer D.Close()
	S := D
	if cfg.Distance.Type != similarity.Pearson {
		// DTW gives distances; the module bounds are on similarities.
		if S, _, err = sim.DistanceToSimilarity(D, cfg.Modules.Similarity); err != nil {
			return nil, err
		}
		defer S.Close()
	}

	g, err := modules.New(evs, modules.WithLogger(logger)).BuildGraph(S, cfg.Modules.Bounds, cfg.Modules.ExcludeCrossModule)
	if err != nil {
		return nil, err
	}
	out.Modules = g.Lookup.Map()
	out.Modularity = g.Modularity

	return out, nil
}
