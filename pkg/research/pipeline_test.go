package research

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPipelineRunsStagesInOrder(t *testing.T) {
	var ran []string
	var steps []Step

	p := &Pipeline{
		Logger: discardLogger(),
		Stages: []Stage{
			{
				Name:  StepPlanning,
				Label: "research planning",
				Run: func(ctx context.Context, state *ResearchState) error {
					ran = append(ran, "planning")
					return nil
				},
			},
			{
				Name:  StepSearching,
				Label: "web searching",
				Run: func(ctx context.Context, state *ResearchState) error {
					ran = append(ran, "searching")
					return nil
				},
			},
		},
		OnStageComplete: func(step Step, state *ResearchState) {
			steps = append(steps, state.NextStep)
		},
	}

	state := NewState("x")
	p.Run(context.Background(), state)

	if len(ran) != 2 || ran[0] != "planning" || ran[1] != "searching" {
		t.Errorf("stage order = %v", ran)
	}
	if len(steps) != 2 || steps[0] != StepSearching || steps[1] != StepDone {
		t.Errorf("step transitions = %v, want [searching done]", steps)
	}
	if state.NextStep != StepDone {
		t.Errorf("final NextStep = %q, want %q", state.NextStep, StepDone)
	}
}

func TestPipelineRecordsFirstError(t *testing.T) {
	p := &Pipeline{
		Logger: discardLogger(),
		Stages: []Stage{
			{
				Name:  StepPlanning,
				Label: "research planning",
				Run: func(ctx context.Context, state *ResearchState) error {
					return errors.New("planner offline")
				},
				Fallback: func(state *ResearchState) {
					state.ResearchPlan = "fallback plan"
				},
			},
			{
				Name:  StepSearching,
				Label: "web searching",
				Run: func(ctx context.Context, state *ResearchState) error {
					return errors.New("search offline")
				},
				Fallback: func(state *ResearchState) {
					state.SearchResults = "fallback results"
				},
			},
		},
	}

	state := NewState("x")
	p.Run(context.Background(), state)

	if state.Error != "Error in research planning: planner offline" {
		t.Errorf("Error = %q, want the first stage's failure", state.Error)
	}
	if state.ResearchPlan != "fallback plan" {
		t.Errorf("ResearchPlan = %q, want fallback applied", state.ResearchPlan)
	}
	if state.SearchResults != "fallback results" {
		t.Errorf("SearchResults = %q, want fallback applied", state.SearchResults)
	}
	if state.NextStep != StepDone {
		t.Errorf("final NextStep = %q, want %q", state.NextStep, StepDone)
	}
}

func TestPipelineRecoversStagePanic(t *testing.T) {
	secondRan := false

	p := &Pipeline{
		Logger: discardLogger(),
		Stages: []Stage{
			{
				Name:  StepPlanning,
				Label: "research planning",
				Run: func(ctx context.Context, state *ResearchState) error {
					panic("planner exploded")
				},
				Fallback: func(state *ResearchState) {
					state.ResearchPlan = "fallback plan"
				},
			},
			{
				Name:  StepSearching,
				Label: "web searching",
				Run: func(ctx context.Context, state *ResearchState) error {
					secondRan = true
					return nil
				},
			},
		},
	}

	state := NewState("x")
	p.Run(context.Background(), state)

	if state.Error != "Error in research planning: planner exploded" {
		t.Errorf("Error = %q", state.Error)
	}
	if state.ResearchPlan != "fallback plan" {
		t.Errorf("ResearchPlan = %q, want fallback applied after panic", state.ResearchPlan)
	}
	if !secondRan {
		t.Error("second stage did not run after first stage panicked")
	}
	if state.NextStep != StepDone {
		t.Errorf("final NextStep = %q, want %q", state.NextStep, StepDone)
	}
}
