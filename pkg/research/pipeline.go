package research

import (
	"context"
	"fmt"
	"log/slog"
)

// Stage is one unit of work in the research pipeline. Run does the work;
// Fallback writes a best-effort output when Run fails, so downstream
// consumers always see non-empty fields.
type Stage struct {
	Name     Step
	Label    string
	Run      func(ctx context.Context, state *ResearchState) error
	Fallback func(state *ResearchState)
}

// Pipeline executes its stages strictly in order. A failing stage records
// the first failure on the state and the pipeline keeps going: every stage
// runs exactly once and the state always ends at StepDone.
type Pipeline struct {
	Stages []Stage
	Logger *slog.Logger

	// OnStageComplete observes the state after each stage, for callers that
	// surface progress.
	OnStageComplete func(step Step, state *ResearchState)
}

func (p *Pipeline) Run(ctx context.Context, state *ResearchState) {
	for i, stage := range p.Stages {
		p.runStage(ctx, stage, state)

		if i+1 < len(p.Stages) {
			state.NextStep = p.Stages[i+1].Name
		} else {
			state.NextStep = StepDone
		}

		if p.OnStageComplete != nil {
			p.OnStageComplete(stage.Name, state)
		}
	}
}

func (p *Pipeline) runStage(ctx context.Context, stage Stage, state *ResearchState) {
	err := runRecovered(ctx, stage, state)
	if err == nil {
		return
	}

	p.logger().Error("Stage failed", "stage", string(stage.Name), "run_id", state.RunID, "error", err)
	state.RecordError(fmt.Sprintf("Error in %s: %v", stage.Label, err))
	if stage.Fallback != nil {
		stage.Fallback(state)
	}
}

func runRecovered(ctx context.Context, stage Stage, state *ResearchState) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	return stage.Run(ctx, state)
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.Default()
	}
	return p.Logger
}
