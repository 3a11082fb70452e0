package domain

import (
	"context"
	"math/rand"
	"time"

	"github.com/pkg/errors"

	"domgen/internal/config"
	"domgen/internal/dataset"
	"domgen/internal/util"
)

// Cell is one generated domain entry: the candidate values considered
// plausible for an (entity, attribute) pair.
type Cell struct {
	TID       int64
	CID       int64
	VID       int64 // -1 when the cell is not a random variable
	Attribute string
	Domain    []string
	InitValue string
	InitIndex int
	Fixed     bool
}

// NoVID marks a cell whose singleton domain carries no information for
// repair; it is excluded from inference.
const NoVID int64 = -1

// Counters accumulates per-run generation statistics.
type Counters struct {
	Rows            int `json:"rows"`
	Cells           int `json:"cells"`
	Variables       int `json:"variables"`
	Fixed           int `json:"fixed"`
	Singletons      int `json:"singletons"`
	SamplerDeclines int `json:"sampler_declines"`
	ShortCircuits   int `json:"short_circuits"`
}

// Sink persists a generated domain.
type Sink interface {
	Store(ctx context.Context, cells []Cell) error
}

// Engine generates the domain for every cell of the active attributes.
// All derived state (correlation matrix, candidate index, statistics) is
// built once in Setup and read-only afterwards; the whole pipeline is a
// sequential single-threaded pass.
type Engine struct {
	cfg      config.Config
	provider dataset.Provider

	rng     *rand.Rand
	sampler *Sampler

	setupComplete bool
	active        []string
	rows          []dataset.Row
	stats         dataset.Statistics
	corr          Matrix
	index         *Index

	counters Counters
}

// New constructs an engine over the given provider. Thresholds and the
// random seed come from cfg.
func New(cfg config.Config, provider dataset.Provider) *Engine {
	return &Engine{cfg: cfg, provider: provider}
}

// Setup seeds the run, resolves the active attributes, and builds the
// correlation matrix and pruned co-occurrence index. It must complete
// before Generate.
func (e *Engine) Setup(ctx context.Context) error {
	tic := time.Now()
	e.rng = rand.New(rand.NewSource(e.cfg.Seed))

	active, err := e.provider.ActiveAttributes(ctx)
	if err != nil {
		return errors.Wrap(err, "resolve active attributes")
	}
	e.active = active

	rows, err := e.provider.Rows(ctx)
	if err != nil {
		return errors.Wrap(err, "load raw rows")
	}
	e.rows = rows

	stats, err := e.provider.Statistics(ctx)
	if err != nil {
		return errors.Wrap(err, "load statistics")
	}
	e.stats = stats

	e.corr = AnalyzeCorrelations(rows, e.provider.Attributes())
	e.index = BuildIndex(stats, e.cfg.TopKFraction)
	e.sampler = NewSampler(e.rng, e.cfg.SamplingProb, e.cfg.MaxSampleSize, stats.Single)
	e.setupComplete = true

	util.Infof("setup done in %.2fs: %d rows, %d active attributes, %d observed pairs",
		time.Since(tic).Seconds(), len(rows), len(active), e.index.Pairs())
	return nil
}

// Generate iterates all rows and active attributes in a deterministic
// order, producing one domain entry per cell and assigning dense variable
// ids to every cell with more than one candidate.
func (e *Engine) Generate(ctx context.Context) ([]Cell, error) {
	if !e.setupComplete {
		return nil, errors.New("generate called before setup completed")
	}
	tic := time.Now()
	var cells []Cell
	var vid int64
	for _, row := range e.rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, attr := range e.active {
			init, dom, err := e.domainCell(row, attr)
			if err != nil {
				return nil, err
			}
			cell := Cell{
				TID:       row.TID,
				VID:       NoVID,
				Attribute: attr,
				Domain:    dom,
				InitValue: init,
				InitIndex: indexOf(dom, init),
			}
			e.counters.Cells++
			if len(dom) > 1 {
				cell.VID = vid
				vid++
				e.counters.Variables++
			} else {
				extra, err := e.sampler.Sample(attr, init)
				if err != nil {
					return nil, errors.Wrapf(err, "fallback sampling for attribute %q (entity %d)", attr, row.TID)
				}
				if len(extra) > 0 {
					cell.Domain = append(cell.Domain, extra...)
					cell.Fixed = true
					cell.VID = vid
					vid++
					e.counters.Variables++
					e.counters.Fixed++
				} else {
					e.counters.SamplerDeclines++
					e.counters.Singletons++
				}
			}
			cid, err := e.provider.CellID(row.TID, attr)
			if err != nil {
				return nil, errors.Wrapf(err, "cell id for attribute %q (entity %d)", attr, row.TID)
			}
			cell.CID = cid
			cells = append(cells, cell)
		}
	}
	e.counters.Rows = len(e.rows)
	if len(cells) == 0 {
		return nil, errors.New("generated domain is empty")
	}
	util.Infof("generated %d cells (%d variables, %d fixed, %d singletons) in %.2fs",
		e.counters.Cells, e.counters.Variables, e.counters.Fixed, e.counters.Singletons,
		time.Since(tic).Seconds())
	return cells, nil
}

// domainCell assembles the candidate set for one cell from the top-K
// co-occurrence values of every sufficiently correlated attribute.
func (e *Engine) domainCell(row dataset.Row, attr string) (string, []string, error) {
	init := row.Value(attr)
	dom := []string{init}
	seen := map[string]bool{init: true}

	for _, cond := range e.corr.Correlated(attr, e.cfg.CorrStrength) {
		if cond == attr || cond == e.cfg.EntityIDColumn || cond == "index" {
			continue
		}
		condVal := row.Value(cond)
		if condVal == dataset.NullValue {
			continue
		}
		table, observed := e.index.Lookup(cond, attr)
		if !observed {
			// The pair has no joint data at all; partial evidence from the
			// remaining correlated attributes is not worth more than none.
			e.counters.ShortCircuits++
			break
		}
		candidates, ok := table[condVal]
		if !ok {
			if init == dataset.NullValue {
				// A null current value is not guaranteed to have been
				// counted against this conditioning value.
				continue
			}
			return "", nil, errors.Errorf(
				"no co-occurrence entry for %s=%q against %s (entity %d): the current row guarantees a count of at least one",
				cond, condVal, attr, row.TID)
		}
		for _, c := range candidates {
			if !seen[c] {
				seen[c] = true
				dom = append(dom, c)
			}
		}
	}

	// A null pulled in as co-occurrence evidence must not pollute the
	// domain of a non-null cell.
	if init != dataset.NullValue {
		kept := dom[:0]
		for _, v := range dom {
			if v != dataset.NullValue {
				kept = append(kept, v)
			}
		}
		dom = kept
	}
	return init, dom, nil
}

// Run executes the full pipeline: setup, generation, and persistence.
func (e *Engine) Run(ctx context.Context, sink Sink) ([]Cell, error) {
	if err := e.Setup(ctx); err != nil {
		return nil, err
	}
	cells, err := e.Generate(ctx)
	if err != nil {
		return nil, err
	}
	tic := time.Now()
	if err := sink.Store(ctx, cells); err != nil {
		return nil, errors.Wrap(err, "store generated domain")
	}
	util.Infof("stored %d cells in %.2fs", len(cells), time.Since(tic).Seconds())
	return cells, nil
}

// Counters returns the accumulated run statistics.
func (e *Engine) Counters() Counters {
	return e.counters
}

func indexOf(values []string, v string) int {
	for i, candidate := range values {
		if candidate == v {
			return i
		}
	}
	return -1
}
