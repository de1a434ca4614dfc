// internal/app/app.go
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"fusionsite-core/engine"
	"fusionsite-core/fusion"
	"fusionsite-core/optimize"

	"fusionsite/internal/apiconv"
	"fusionsite/internal/catalog"
	"fusionsite/internal/config"
	"fusionsite/internal/store"
	"fusionsite/pkg/api"
)

// ErrNoStore is returned when a run should be saved but no store is configured.
var ErrNoStore = errors.New("run history is disabled (set store.path or --store)")

// Exit codes shared by every command.
const (
	ExitOK         = 0
	ExitInfeasible = 1
	ExitInput      = 2
	ExitOutput     = 3
	ExitCancelled  = 130
)

// App wires configuration, the engine, the catalog files and the optional
// run store. Commands and HTTP handlers share one App.
type App struct {
	Cfg    config.Config
	Engine *engine.Engine
	Store  *store.Store
	Log    *log.Logger
}

// New builds an App from cfg.
func New(cfg config.Config, logger *log.Logger) (*App, error) {
	ev, err := cfg.Evaluator()
	if err != nil {
		return nil, err
	}
	eng := engine.New(engine.Config{
		Evaluator:          ev,
		ScoreCache:         fusion.NewScoreCache(cfg.Cache.Scores),
		DomesticationCache: fusion.NewDomesticationCache(cfg.Cache.Domestication),
		Budget:             cfg.Budget(),
		Workers:            cfg.Search.Workers,
	})
	if err := catalog.Apply(eng, cfg.Catalogs, logger); err != nil {
		return nil, err
	}
	a := &App{Cfg: cfg, Engine: eng, Log: logger}
	if cfg.Store.Path != "" {
		st, err := store.Open(cfg.Store.Path, logger)
		if err != nil {
			return nil, err
		}
		a.Store = st
	}
	return a, nil
}

// Close releases the store.
func (a *App) Close() error {
	if a.Store == nil {
		return nil
	}
	return a.Store.Close()
}

// Defaults are the configured request defaults.
func (a *App) Defaults(circular bool) apiconv.Defaults {
	return apiconv.Defaults{
		Algorithm:    a.Cfg.Optimize.Algorithm,
		WeightPreset: a.Cfg.Optimize.WeightPreset,
		Constraints:  a.Cfg.Constraints(circular),
	}
}

// Optimize runs one request and saves it when asked to.
func (a *App) Optimize(ctx context.Context, req api.OptimizeRequestV1) (api.OptimizeResultV1, error) {
	if req.Save && a.Store == nil {
		return api.OptimizeResultV1{}, ErrNoStore
	}
	p, err := apiconv.Params(req, a.Defaults(req.Circular))
	if err != nil {
		return api.OptimizeResultV1{}, err
	}
	start := time.Now()
	res, err := a.Engine.Optimize(ctx, p)
	took := time.Since(start)
	if err != nil {
		a.Log.Debug("optimize failed", "enzyme", req.Enzyme, "err", err)
		return api.OptimizeResultV1{}, err
	}
	out := apiconv.ToAPIResult(res)
	a.Log.Info("optimized",
		"enzyme", out.Enzyme, "bp", out.SequenceLength, "algorithm", out.Algorithm,
		"junctions", len(out.Solution.Junctions), "feasible", out.Feasible,
		"fidelity", fmt.Sprintf("%.4f", out.Solution.SetFidelity), "nodes", out.NodesExplored,
		"took", took.Round(time.Millisecond))
	if !out.Feasible {
		for _, v := range out.Violations {
			a.Log.Warn("constraint violated", "kind", v.Kind, "msg", v.Message)
		}
	}
	if req.Save {
		id, err := a.Store.Save(ctx, req, out, took)
		if err != nil {
			return out, err
		}
		out.RunID = id
	}
	return out, nil
}

// Domestication answers a standalone domestication query.
func (a *App) Domestication(req api.DomesticationRequestV1) (api.DomesticationV1, error) {
	enz, err := a.Engine.Enzyme(req.Enzyme)
	if err != nil {
		return api.DomesticationV1{}, err
	}
	d, err := a.Engine.Domestication(req.Sequence, enz.Name)
	if err != nil {
		return api.DomesticationV1{}, err
	}
	return apiconv.ToAPIDomestication(enz.Name, d), nil
}

// Enzymes lists the catalog.
func (a *App) Enzymes() []api.EnzymeV1 {
	list := a.Engine.Enzymes()
	out := make([]api.EnzymeV1, 0, len(list))
	for _, e := range list {
		out = append(out, apiconv.ToAPIEnzyme(e))
	}
	return out
}

// Survey counts every enzyme's sites in seq.
func (a *App) Survey(seq string) ([]api.SiteCountV1, error) {
	counts, err := a.Engine.Survey(seq)
	if err != nil {
		return nil, err
	}
	return apiconv.ToAPISurvey(counts), nil
}

// ExitCode maps an error from the engine, store or app onto a process exit
// code. Output errors are mapped by the caller, which knows it was writing.
func ExitCode(err error) int {
	var incompatible *optimize.AlgorithmIncompatibleError
	switch {
	case err == nil:
		return ExitOK
	case optimize.IsCancelled(err), errors.Is(err, context.Canceled):
		return ExitCancelled
	case errors.Is(err, fusion.ErrInput), errors.As(err, &incompatible),
		errors.Is(err, ErrNoStore), errors.Is(err, store.ErrInvalidID), errors.Is(err, store.ErrNotFound):
		return ExitInput
	}
	return ExitOutput
}

// ErrorKind classifies err for wire error bodies.
func ErrorKind(err error) string {
	var incompatible *optimize.AlgorithmIncompatibleError
	switch {
	case optimize.IsCancelled(err), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	case errors.As(err, &incompatible):
		return "incompatible"
	case errors.Is(err, fusion.ErrInput):
		return "input"
	case errors.Is(err, store.ErrNotFound):
		return "not_found"
	case errors.Is(err, store.ErrInvalidID), errors.Is(err, ErrNoStore):
		return "input"
	}
	return "internal"
}

// InputField returns the offending field of an input error, if any.
func InputField(err error) string {
	var ie *fusion.InputError
	if errors.As(err, &ie) {
		return ie.Field
	}
	return ""
}
