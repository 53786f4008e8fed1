package research

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/research-intel/research-hub/pkg/clients"
	"github.com/research-intel/research-hub/pkg/research/tools"
)

// CompletionClient produces text for a prompt.
type CompletionClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Engine is the orchestration facade. It owns the two external collaborators
// and the stage pipeline, and reduces a finished run into a Result.
type Engine struct {
	LLM           CompletionClient
	Search        *tools.MultiSearcher
	Logger        *slog.Logger
	OnStateUpdate func(state ResearchState)
}

func NewEngine(cfg Config) (*Engine, error) {
	llm, err := clients.NewLMStudio(clients.LMStudioConfig{
		BaseURL:        cfg.LMStudioURL,
		Model:          cfg.Model,
		Temperature:    cfg.Temperature,
		MaxTokens:      cfg.MaxTokens,
		RequestTimeout: cfg.RequestTimeout,
		MaxRetries:     cfg.MaxRetries,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init LLM client: %w", err)
	}

	tavily := tools.NewTavilyWithClient(cfg.TavilyApiKey, cfg.TavilyBaseURL, nil)

	return &Engine{
		LLM:    llm,
		Search: tools.NewMultiSearcher(tavily),
		Logger: slog.Default(),
	}, nil
}

// Run executes the research workflow for a topic. It never panics and never
// returns an error: every failure is folded into the Result fields.
func (e *Engine) Run(ctx context.Context, topic string) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			e.Logger.Error("Workflow execution failed", "topic", topic, "panic", r)
			result = Result{
				ResearchPlan:  workflowFailureText,
				SearchResults: workflowFailureText,
				Error:         fmt.Sprintf("Workflow execution error: %v", r),
			}
		}
	}()

	state := NewState(topic)
	e.Logger.Info("Starting research workflow", "topic", topic, "run_id", state.RunID)

	if e.OnStateUpdate != nil {
		e.OnStateUpdate(*state)
	}

	e.pipeline().Run(ctx, state)

	e.Logger.Info("Research workflow finished", "topic", topic, "run_id", state.RunID,
		"plan_length", len(state.ResearchPlan), "results_length", len(state.SearchResults))

	return Result{
		ResearchPlan:  state.ResearchPlan,
		SearchResults: state.SearchResults,
		Error:         state.Error,
	}
}

func (e *Engine) pipeline() *Pipeline {
	p := &Pipeline{
		Stages: []Stage{
			{
				Name:     StepPlanning,
				Label:    "research planning",
				Run:      e.planStage,
				Fallback: func(s *ResearchState) { s.ResearchPlan = minimalPlan(s.Topic) },
			},
			{
				Name:     StepSearching,
				Label:    "web searching",
				Run:      e.searchStage,
				Fallback: func(s *ResearchState) { s.SearchResults = searchPlaceholder(s.Topic) },
			},
		},
		Logger: e.Logger,
	}

	if e.OnStateUpdate != nil {
		p.OnStageComplete = func(step Step, state *ResearchState) {
			e.OnStateUpdate(*state)
		}
	}
	return p
}

func (e *Engine) planStage(ctx context.Context, state *ResearchState) error {
	e.Logger.Info("Starting planning stage", "topic", state.Topic, "run_id", state.RunID)

	plan, err := e.LLM.Complete(ctx, plannerPrompt(state.Topic))
	if err != nil {
		e.Logger.Warn("Substituting the static research plan", "run_id", state.RunID, "error", err)
		plan = fallbackPlan(state.Topic)
	}

	state.ResearchPlan = plan
	state.AddAIMessage("Research plan created for: " + state.Topic)
	return nil
}

func (e *Engine) searchStage(ctx context.Context, state *ResearchState) error {
	e.Logger.Info("Starting searching stage", "topic", state.Topic, "run_id", state.RunID)

	results := e.Search.SearchTopic(ctx, state.Topic)
	combined, successful := tools.Combine(results)

	state.SearchResults = combined
	state.AddAIMessage(fmt.Sprintf("Completed %d searches (%d successful) for: %s",
		len(results), successful, state.Topic))
	return nil
}

// Run executes one research workflow with a fresh engine. It is the single
// entry point for presentation layers that do not keep an engine around.
func Run(ctx context.Context, topic string, cfg Config) Result {
	engine, err := NewEngine(cfg)
	if err != nil {
		return Result{
			ResearchPlan:  workflowFailureText,
			SearchResults: workflowFailureText,
			Error:         fmt.Sprintf("Workflow execution error: %v", err),
		}
	}
	return engine.Run(ctx, topic)
}
