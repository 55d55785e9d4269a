// Package orchestrator composes the pipeline stages (parse -> synthesize ->
// analyze -> simulate -> validate -> persist) behind a single entry point,
// tracking per-stage status and duration the way a caller would need for a
// progress report.
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/netforge-labs/topoforge/internal/analysis"
	domanalysis "github.com/netforge-labs/topoforge/internal/domain/analysis"
	domerrors "github.com/netforge-labs/topoforge/internal/domain/errors"
	domhistory "github.com/netforge-labs/topoforge/internal/domain/history"
	"github.com/netforge-labs/topoforge/internal/domain/intent"
	recommenddom "github.com/netforge-labs/topoforge/internal/domain/recommend"
	domsimulation "github.com/netforge-labs/topoforge/internal/domain/simulation"
	"github.com/netforge-labs/topoforge/internal/domain/topology"
	domvalidation "github.com/netforge-labs/topoforge/internal/domain/validation"
	"github.com/netforge-labs/topoforge/internal/history"
	"github.com/netforge-labs/topoforge/internal/metrics"
	"github.com/netforge-labs/topoforge/internal/recommend"
	"github.com/netforge-labs/topoforge/internal/simulate"
	"github.com/netforge-labs/topoforge/internal/synth"
	"github.com/netforge-labs/topoforge/internal/validate"
)

// Stage names, used for status reporting. Of the stage deadlines, only the
// synthesis one is applied, by comparing elapsed time once synthesis returns;
// the other stages run without a deadline.
const (
	StageRecommend = "recommend"
	StageOptimize  = "optimize"
	StageSynthesis = "synthesis"
	StageAnalysis  = "analysis"
	StageSimulate  = "simulate"
	StageValidate  = "validate"
	StagePersist   = "persist"
)

// largeSiteThreshold is the site count above which synthesis gets the
// longer deadline.
const largeSiteThreshold = 500

func stageDeadline(stage string, siteCount int) time.Duration {
	switch stage {
	case StageSynthesis:
		if siteCount <= largeSiteThreshold {
			return 30 * time.Second
		}
		return 60 * time.Second
	case StageAnalysis, StageSimulate, StageValidate:
		return 10 * time.Second
	default:
		return 10 * time.Second
	}
}

// StageResult reports one pipeline stage's outcome.
type StageResult struct {
	Stage      string `json:"stage"`
	Status     string `json:"status"` // "ok", "skipped", "failed"
	DurationMS int64  `json:"duration_ms"`
	Summary    string `json:"summary"`
	Err        error  `json:"-"`
}

// RunOptions controls which optional stages execute.
type RunOptions struct {
	Seed            *int64
	SkipSimulation  bool
	SkipValidation  bool
	SkipPersistence bool
	// Optimize lets the autonomous optimizer override a caller-pinned
	// pattern when history shows a materially better one.
	Optimize             bool
	RecordRecommendation bool
}

// RunResult is the full output of one pipeline execution.
type RunResult struct {
	Intent     intent.Intent
	Topology   topology.Topology
	Analysis   domanalysis.Result
	Simulation []domsimulation.Result
	Validation domvalidation.Result
	TopologyID string
	// Optimization is non-nil when the autonomous optimizer ran; its
	// decision applies whether or not it switched the pattern.
	Optimization   *recommenddom.OptimizationDecision
	OptimizationID string
	Stages         []StageResult
	// PartialSuccess is true when a non-fatal stage (analysis onward)
	// failed but synthesis itself produced a usable topology.
	PartialSuccess bool
}

// Orchestrator wires the ten pipeline components together. A failure of the
// recommend or synthesis stage is fatal to a run; every later stage failure
// degrades the result to PartialSuccess rather than aborting.
type Orchestrator struct {
	synthesizer *synth.Synthesizer
	analyzer    *analysis.Analyzer
	simulator   *simulate.Simulator
	validator   *validate.Validator
	recommender *recommend.Recommender
	store       history.Store
	metrics     *metrics.Registry
}

// New wires an Orchestrator against a history.Store. store may be nil, in
// which case persistence and history-backed recommendation are skipped.
func New(store history.Store) *Orchestrator {
	var recommender *recommend.Recommender
	if store != nil {
		recommender = recommend.New(store)
	}
	return &Orchestrator{
		synthesizer: synth.New(),
		analyzer:    analysis.New(),
		simulator:   simulate.New(),
		validator:   validate.New(),
		recommender: recommender,
		store:       store,
	}
}

// WithMetrics attaches a metrics.Registry that every subsequent RunPipeline
// call records stage durations and outcomes against. Returns o for chaining.
func (o *Orchestrator) WithMetrics(reg *metrics.Registry) *Orchestrator {
	o.metrics = reg
	return o
}

// RunPipeline executes C2(already parsed)->C3->C5->C6->C7->C9 for in. If
// in.Pattern is unset, it resolves a pattern via the recommender first
// (C8), recorded as its own stage.
func (o *Orchestrator) RunPipeline(ctx context.Context, in intent.Intent, opts RunOptions) (RunResult, error) {
	result := RunResult{Intent: in}

	if err := checkCancelled(ctx, StageRecommend); err != nil {
		return result, err
	}

	if !in.HasPattern() {
		stage, confidence, err := o.runRecommendStage(ctx, &in, opts)
		o.recordStage(stage)
		result.Stages = append(result.Stages, stage)
		if err != nil {
			o.recordRun("failed")
			return result, err
		}
		if o.metrics != nil {
			o.metrics.ObserveRecommendation(string(in.Pattern), confidence)
		}
		result.Intent = in
	}

	if opts.Optimize && in.HasPattern() && o.recommender != nil {
		stage := o.runOptimizeStage(ctx, &in, &result)
		o.recordStage(stage)
		result.Stages = append(result.Stages, stage)
		result.Intent = in
	}

	if err := checkCancelled(ctx, StageSynthesis); err != nil {
		o.recordRun("failed")
		return result, err
	}
	topo, stage, err := o.runSynthesisStage(in, opts.Seed)
	o.recordStage(stage)
	result.Stages = append(result.Stages, stage)
	if err != nil {
		o.recordRun("failed")
		return result, err
	}
	result.Topology = topo

	if err := checkCancelled(ctx, StageAnalysis); err != nil {
		result.PartialSuccess = true
		o.recordRun("partial_success")
		return result, nil
	}
	analysisResult, stage := o.runAnalysisStage(topo)
	o.recordStage(stage)
	result.Stages = append(result.Stages, stage)
	result.Analysis = analysisResult
	if stage.Status == "failed" {
		result.PartialSuccess = true
	} else if o.metrics != nil {
		o.metrics.ObserveSPOFCount(len(analysisResult.SPOFs))
	}

	if !opts.SkipSimulation {
		if err := checkCancelled(ctx, StageSimulate); err != nil {
			result.PartialSuccess = true
			o.recordRun("partial_success")
			return result, nil
		}
		simResults, stage := o.runSimulationStage(topo)
		o.recordStage(stage)
		result.Stages = append(result.Stages, stage)
		result.Simulation = simResults
		if stage.Status == "failed" {
			result.PartialSuccess = true
		} else if o.metrics != nil {
			for _, sim := range simResults {
				o.metrics.ObserveConnectivityLoss(string(sim.Scenario.Kind), sim.ConnectivityLoss)
			}
		}
	}

	if !opts.SkipValidation {
		if err := checkCancelled(ctx, StageValidate); err != nil {
			result.PartialSuccess = true
			o.recordRun("partial_success")
			return result, nil
		}
		validationResult, stage := o.runValidationStage(topo, in)
		o.recordStage(stage)
		result.Stages = append(result.Stages, stage)
		result.Validation = validationResult
		if stage.Status == "failed" {
			result.PartialSuccess = true
		}
	}

	if !opts.SkipPersistence && o.store != nil {
		stage, topologyID := o.runPersistStage(ctx, in, result)
		o.recordStage(stage)
		result.Stages = append(result.Stages, stage)
		result.TopologyID = topologyID
		if stage.Status == "failed" {
			result.PartialSuccess = true
		}

		// The optimizer predicted an improvement against the original
		// pattern's historical baseline; now that the validation score
		// for the switched topology is in, record what actually happened.
		if result.OptimizationID != "" && !opts.SkipValidation {
			improvement := result.Validation.OverallScore - result.Optimization.CurrentScore
			_ = o.store.RecordActualImprovement(ctx, result.OptimizationID, improvement)
		}
	}

	if result.PartialSuccess {
		o.recordRun("partial_success")
	} else {
		o.recordRun("ok")
	}
	return result, nil
}

func (o *Orchestrator) recordStage(stage StageResult) {
	if o.metrics == nil {
		return
	}
	o.metrics.ObserveStage(stage.Stage, stage.Status, float64(stage.DurationMS)/1000.0)
}

func (o *Orchestrator) recordRun(outcome string) {
	if o.metrics == nil {
		return
	}
	o.metrics.ObserveRun(outcome)
}

func checkCancelled(ctx context.Context, stage string) error {
	select {
	case <-ctx.Done():
		return &domerrors.CancelledError{Stage: stage}
	default:
		return nil
	}
}

func (o *Orchestrator) runRecommendStage(ctx context.Context, in *intent.Intent, opts RunOptions) (StageResult, float64, error) {
	start := time.Now()
	if o.recommender == nil {
		in.Pattern = intent.PatternFullMesh
		return StageResult{Stage: StageRecommend, Status: "skipped", DurationMS: time.Since(start).Milliseconds(), Summary: "no history store wired; defaulted to full-mesh"}, 0, nil
	}

	result, err := o.recommender.Recommend(ctx, *in)
	if err != nil {
		return StageResult{Stage: StageRecommend, Status: "failed", DurationMS: time.Since(start).Milliseconds(), Summary: err.Error(), Err: err}, 0, err
	}
	in.Pattern = result.Chosen

	if opts.RecordRecommendation {
		candidatesJSON, _ := json.Marshal(result.Candidates)
		_ = o.store.SaveRecommendation(ctx, domhistory.RecommendationRecord{
			ID:         uuid.NewString(),
			IntentHash: intentHash(*in),
			Candidates: string(candidatesJSON),
			Chosen:     string(result.Chosen),
		})
	}

	return StageResult{Stage: StageRecommend, Status: "ok", DurationMS: time.Since(start).Milliseconds(), Summary: result.Reason}, result.Candidates[0].Confidence, nil
}

// runOptimizeStage asks the autonomous optimizer whether history justifies
// overriding the caller's pinned pattern. A switch rewrites in.Pattern and
// persists an OptimizationRecord whose actual_improvement is back-filled
// once this run's validation score is known.
func (o *Orchestrator) runOptimizeStage(ctx context.Context, in *intent.Intent, result *RunResult) StageResult {
	start := time.Now()
	decision, err := o.recommender.Optimize(ctx, *in, in.Pattern)
	if err != nil {
		return StageResult{Stage: StageOptimize, Status: "failed", DurationMS: time.Since(start).Milliseconds(), Summary: err.Error(), Err: err}
	}
	result.Optimization = &decision

	if !decision.ShouldSwitch {
		return StageResult{Stage: StageOptimize, Status: "ok", DurationMS: time.Since(start).Milliseconds(), Summary: decision.Reason}
	}

	in.Pattern = decision.SuggestedPattern
	rec := domhistory.OptimizationRecord{
		ID:                  uuid.NewString(),
		CurrentPattern:      decision.CurrentPattern,
		SuggestedPattern:    decision.SuggestedPattern,
		ShouldSwitch:        true,
		Reason:              decision.Reason,
		ExpectedImprovement: decision.ExpectedImprovement,
	}
	if err := o.store.SaveOptimization(ctx, rec); err != nil {
		return StageResult{Stage: StageOptimize, Status: "failed", DurationMS: time.Since(start).Milliseconds(), Summary: err.Error(), Err: err}
	}
	result.OptimizationID = rec.ID
	if o.metrics != nil {
		o.metrics.ObserveOptimizerSwitch()
	}
	return StageResult{Stage: StageOptimize, Status: "ok", DurationMS: time.Since(start).Milliseconds(), Summary: decision.Reason}
}

func (o *Orchestrator) runSynthesisStage(in intent.Intent, seed *int64) (topology.Topology, StageResult, error) {
	start := time.Now()
	topo, err := o.synthesizer.Synthesize(in, seed)
	elapsed := time.Since(start)
	if elapsed > stageDeadline(StageSynthesis, in.SiteCount) {
		timeoutErr := &domerrors.StageTimeoutError{Stage: StageSynthesis, Elapsed: elapsed.String()}
		return topology.Topology{}, StageResult{Stage: StageSynthesis, Status: "failed", DurationMS: elapsed.Milliseconds(), Summary: timeoutErr.Error(), Err: timeoutErr}, timeoutErr
	}
	if err != nil {
		return topology.Topology{}, StageResult{Stage: StageSynthesis, Status: "failed", DurationMS: elapsed.Milliseconds(), Summary: err.Error(), Err: err}, err
	}
	summary := fmt.Sprintf("built %s topology with %d devices, %d links", in.Pattern, len(topo.Devices), len(topo.Links))
	return topo, StageResult{Stage: StageSynthesis, Status: "ok", DurationMS: elapsed.Milliseconds(), Summary: summary}, nil
}

func (o *Orchestrator) runAnalysisStage(topo topology.Topology) (domanalysis.Result, StageResult) {
	start := time.Now()
	result := o.analyzer.Analyze(topo)
	return result, StageResult{Stage: StageAnalysis, Status: "ok", DurationMS: time.Since(start).Milliseconds(), Summary: result.Summary}
}

func (o *Orchestrator) runSimulationStage(topo topology.Topology) ([]domsimulation.Result, StageResult) {
	start := time.Now()
	scenarios, err := o.simulator.GenerateTestScenarios(topo)
	if err != nil {
		return nil, StageResult{Stage: StageSimulate, Status: "failed", DurationMS: time.Since(start).Milliseconds(), Summary: err.Error(), Err: err}
	}

	results := make([]domsimulation.Result, 0, len(scenarios))
	for _, scenario := range scenarios {
		r, err := o.simulator.Run(topo, scenario)
		if err != nil {
			return results, StageResult{Stage: StageSimulate, Status: "failed", DurationMS: time.Since(start).Milliseconds(), Summary: err.Error(), Err: err}
		}
		results = append(results, r)
	}

	worst := 0.0
	for _, r := range results {
		if r.ConnectivityLoss > worst {
			worst = r.ConnectivityLoss
		}
	}
	summary := fmt.Sprintf("ran %d failure scenarios, worst connectivity loss %.1f%%", len(results), worst)
	return results, StageResult{Stage: StageSimulate, Status: "ok", DurationMS: time.Since(start).Milliseconds(), Summary: summary}
}

func (o *Orchestrator) runValidationStage(topo topology.Topology, in intent.Intent) (domvalidation.Result, StageResult) {
	start := time.Now()
	result, err := o.validator.Validate(topo, in)
	if err != nil {
		return domvalidation.Result{}, StageResult{Stage: StageValidate, Status: "failed", DurationMS: time.Since(start).Milliseconds(), Summary: err.Error(), Err: err}
	}
	summary := fmt.Sprintf("overall score %.1f, satisfied=%v", result.OverallScore, result.Satisfied)
	return result, StageResult{Stage: StageValidate, Status: "ok", DurationMS: time.Since(start).Milliseconds(), Summary: summary}
}

// runPersistStage writes the topology record first, then validation and
// simulation records that reference it, matching the order those tables'
// foreign keys require.
func (o *Orchestrator) runPersistStage(ctx context.Context, in intent.Intent, result RunResult) (StageResult, string) {
	start := time.Now()

	intentJSON, _ := json.Marshal(in)
	topoJSON, _ := json.Marshal(result.Topology)
	topologyID := uuid.NewString()

	err := o.store.SaveTopology(ctx, domhistory.TopologyRecord{
		ID:          topologyID,
		Name:        in.Name,
		Pattern:     string(in.Pattern),
		Intent:      string(intentJSON),
		Topology:    string(topoJSON),
		DeviceCount: len(result.Topology.Devices),
		LinkCount:   len(result.Topology.Links),
	})
	if err != nil {
		return StageResult{Stage: StagePersist, Status: "failed", DurationMS: time.Since(start).Milliseconds(), Summary: err.Error(), Err: err}, ""
	}

	if result.Validation.OverallScore != 0 || len(result.Validation.Violations) > 0 {
		violationsJSON, _ := json.Marshal(result.Validation.Violations)
		if err := o.store.SaveValidation(ctx, domhistory.ValidationRecord{
			TopologyID:   topologyID,
			Satisfied:    result.Validation.Satisfied,
			OverallScore: result.Validation.OverallScore,
			Violations:   string(violationsJSON),
		}); err != nil {
			return StageResult{Stage: StagePersist, Status: "failed", DurationMS: time.Since(start).Milliseconds(), Summary: err.Error(), Err: err}, topologyID
		}
	}

	for _, sim := range result.Simulation {
		if err := o.store.SaveSimulation(ctx, domhistory.SimulationRecord{
			TopologyID:       topologyID,
			ScenarioKind:     string(sim.Scenario.Kind),
			ConnectivityLoss: sim.ConnectivityLoss,
			Severity:         string(sim.Severity),
		}); err != nil {
			return StageResult{Stage: StagePersist, Status: "failed", DurationMS: time.Since(start).Milliseconds(), Summary: err.Error(), Err: err}, topologyID
		}
	}

	return StageResult{Stage: StagePersist, Status: "ok", DurationMS: time.Since(start).Milliseconds(), Summary: "persisted topology, validation and simulation records"}, topologyID
}

func intentHash(in intent.Intent) string {
	return fmt.Sprintf("%s:%d:%s:%d:%s:%s:%v:%d", in.Pattern, in.SiteCount, in.Redundancy, in.MaxHops, in.Protocol, in.DesignGoal, in.MinimizeSPOF, in.MinConnectionsPerSite)
}
