package research

import (
	"time"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/llms"
)

// Config holds runtime configuration for one engine.
type Config struct {
	TavilyApiKey   string
	TavilyBaseURL  string
	LMStudioURL    string
	Model          string
	RequestTimeout time.Duration
	MaxRetries     int
	// Temperature nil selects the client default; zero is an explicit zero.
	Temperature *float64
	MaxTokens   int
}

// Step names a stage of the research workflow.
type Step string

const (
	StepPlanning  Step = "planning"
	StepSearching Step = "searching"
	StepDone      Step = "done"
)

// ResearchState tracks one research run as it moves through the pipeline.
// Topic is set once at initialization, each output field is written by
// exactly one stage, and Messages only ever grows.
type ResearchState struct {
	Topic         string
	ResearchPlan  string
	SearchResults string
	Messages      []llms.ChatMessage
	NextStep      Step
	Error         string
	RunID         string
}

func NewState(topic string) *ResearchState {
	return &ResearchState{
		Topic: topic,
		Messages: []llms.ChatMessage{
			llms.HumanChatMessage{Content: "Research topic: " + topic},
		},
		NextStep: StepPlanning,
		RunID:    uuid.New().String(),
	}
}

// RecordError keeps the first failure of the run; later failures are logged
// by the pipeline but never overwrite it.
func (s *ResearchState) RecordError(msg string) {
	if s.Error == "" {
		s.Error = msg
	}
}

// AddAIMessage appends an assistant-role entry to the run's message log.
func (s *ResearchState) AddAIMessage(content string) {
	s.Messages = append(s.Messages, llms.AIChatMessage{Content: content})
}

// Result is the reduced output of a research run.
type Result struct {
	ResearchPlan  string `json:"research_plan"`
	SearchResults string `json:"search_results"`
	Error         string `json:"error,omitempty"`
}
