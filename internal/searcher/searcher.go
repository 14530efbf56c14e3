// Package searcher drives the core reduction loop: spec.md §4.6's seed /
// build / enumerate / maintain-skip / iterate / finalize state machine.
package searcher

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dekarrin/ddreduce/internal/dedupe"
	"github.com/dekarrin/ddreduce/internal/oracle"
	"github.com/dekarrin/ddreduce/internal/rderrors"
	"github.com/dekarrin/ddreduce/internal/regen"
	"github.com/dekarrin/ddreduce/internal/report"
	"github.com/dekarrin/ddreduce/internal/srclang"
	"github.com/dekarrin/ddreduce/internal/syngraph"
	"github.com/dekarrin/ddreduce/internal/util"
)

// ConfirmFunc is the optional interactive hook consulted before an
// otherwise-accepted candidate is taken, matching --interactive: declining
// a candidate demotes its would-be acceptance to a rejection without
// touching the oracle's verdict.
type ConfirmFunc func(description string) bool

// Config configures one searcher run.
type Config struct {
	// ProjectDir is the build driver's working directory.
	ProjectDir string
	// Driver runs the external build tool.
	Driver oracle.Driver
	// Cache, if non-nil, is consulted before invoking the oracle and
	// updated with every verdict (internal/dedupe). Optional.
	Cache *dedupe.Cache
	// Confirm, if non-nil, is asked to ratify each would-be acceptance.
	// Optional.
	Confirm ConfirmFunc
}

// Run executes the reduction loop against cfg and returns a report of the
// outcome. A nil report with a nil error means the project had no build
// errors to reduce (spec §4.6 step 1): the caller should treat this as a
// successful no-op.
func Run(ctx context.Context, cfg Config) (*report.RunReport, error) {
	errs, err := oracle.CollectErrors(ctx, cfg.ProjectDir, cfg.Driver)
	if err != nil {
		return nil, err
	}
	if len(errs) == 0 {
		return nil, nil
	}

	master := errs[0]
	if master.SourceFile == "" {
		return nil, rderrors.New(rderrors.KindMissingErrorLocation, "master error has no --> location")
	}

	sourcePath := filepath.Join(cfg.ProjectDir, master.SourceFile)
	started := time.Now()

	text, err := os.ReadFile(sourcePath)
	if err != nil {
		return nil, rderrors.Wrap(rderrors.KindErrorSourceNotFound, err, "reading "+master.SourceFile)
	}

	file, err := srclang.Parse(string(text))
	if err != nil {
		return nil, err
	}

	masterGraph, err := syngraph.Build(file)
	if err != nil {
		return nil, err
	}

	frontier := masterGraph.BFSFromRoot()
	if len(frontier) > 0 {
		frontier = frontier[1:] // drop the root: it can never be removed
	}

	skip := util.NewKeySet[syngraph.VertexID]()
	var iterations, accepted, rejected int
	var removedKinds []string

	for _, v := range frontier {
		if skip.Has(v) {
			continue
		}

		vInfo, ok := masterGraph.Vertex(v)
		if !ok {
			// Already gone: an earlier acceptance removed an ancestor of v
			// and swept v away with it.
			skip.Add(v)
			continue
		}

		clone := masterGraph.Clone()
		removedSet, err := syngraph.Remove(clone, v)
		if err != nil {
			// v is never the root (the frontier excludes it), so this
			// should not happen; treat defensively as a rejection.
			rejected++
			skip.Add(v)
			continue
		}

		candidateText, err := regen.Generate(clone)
		if err != nil {
			if kind, ok := rderrors.KindOf(err); ok && kind.Recoverable() {
				rejected++
				skip.Add(v)
				continue
			}
			return nil, err
		}

		iterations++

		accept, err := judge(ctx, cfg, sourcePath, candidateText, master)
		if err != nil {
			return nil, err
		}

		if accept && cfg.Confirm != nil {
			desc := fmt.Sprintf("remove %s (vertex %d)?\n\n%s", vInfo.Kind, v, candidateText)
			if !cfg.Confirm(desc) {
				accept = false
			}
		}

		if accept {
			masterGraph = clone
			accepted++
			removedKinds = append(removedKinds, vInfo.Kind.String())
			for id := range removedSet {
				skip.Add(id)
			}
		} else {
			rejected++
		}
		skip.Add(v)
	}

	finalText, err := regen.Generate(masterGraph)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(sourcePath, []byte(finalText), 0644); err != nil {
		return nil, rderrors.Wrap(rderrors.KindErrorSourceNotFound, err, "writing "+master.SourceFile)
	}

	rpt := report.New(cfg.ProjectDir, master.SourceFile, master, started)
	rpt.Finished = time.Now()
	rpt.Iterations = iterations
	rpt.Accepted = accepted
	rpt.Rejected = rejected
	rpt.FinalSource = finalText
	rpt.RemovedKinds = removedKinds
	hash := sha256.Sum256([]byte(finalText))
	rpt.FinalSourceHash = hex.EncodeToString(hash[:])

	return rpt, nil
}

// judge consults the cache if one is configured and, on a cache miss,
// writes candidateText to disk and asks the oracle whether it still
// reproduces master. A cache hit writes nothing. The cache is updated with
// every fresh verdict.
func judge(ctx context.Context, cfg Config, sourcePath, candidateText string, master oracle.BuildError) (bool, error) {
	if cfg.Cache != nil {
		if verdict, known := cfg.Cache.Lookup(candidateText); known {
			return verdict.Accepted, nil
		}
	}

	if err := os.WriteFile(sourcePath, []byte(candidateText), 0644); err != nil {
		return false, rderrors.Wrap(rderrors.KindErrorSourceNotFound, err, "writing candidate source")
	}

	variantErrs, err := oracle.CollectErrors(ctx, cfg.ProjectDir, cfg.Driver)
	if err != nil {
		return false, err
	}

	accept := len(variantErrs) > 0 && oracle.SignaturesEqual(variantErrs[0], master)

	if cfg.Cache != nil {
		cfg.Cache.Record(candidateText, accept)
	}

	return accept, nil
}
