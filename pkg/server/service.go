package server

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/research-intel/research-hub/pkg/research"
)

var (
	ErrTopicRequired     = errors.New("topic is required")
	ErrTavilyKeyRequired = errors.New("tavily api key is required")
)

type Service struct {
	Cfg    research.Config
	Logger *slog.Logger
}

func NewService(cfg research.Config) *Service {
	return &Service{
		Cfg:    cfg,
		Logger: slog.Default(),
	}
}

type ResearchRequest struct {
	Topic        string `json:"topic"`
	TavilyApiKey string `json:"tavily_api_key,omitempty"`
	LMStudioURL  string `json:"lm_studio_url,omitempty"`
	Model        string `json:"model,omitempty"`
}

type ConnectionTestRequest struct {
	TavilyApiKey string `json:"tavily_api_key,omitempty"`
	LMStudioURL  string `json:"lm_studio_url,omitempty"`
	Model        string `json:"model,omitempty"`
}

// Research validates the request and executes one research run with the
// service defaults plus any per-request overrides. Workflow failures do not
// surface here: they ride inside the Result.
func (s *Service) Research(ctx context.Context, req ResearchRequest) (research.Result, error) {
	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		return research.Result{}, ErrTopicRequired
	}

	cfg := s.configFor(req.TavilyApiKey, req.LMStudioURL, req.Model)
	if cfg.TavilyApiKey == "" {
		return research.Result{}, ErrTavilyKeyRequired
	}

	s.Logger.Info("Handling research request", "topic", topic, "model", cfg.Model)
	return research.Run(ctx, topic, cfg), nil
}

// TestConnections probes both external services. A missing Tavily key is
// reported as an unreachable Tavily, not as a request error.
func (s *Service) TestConnections(ctx context.Context, req ConnectionTestRequest) research.ConnectionStatus {
	cfg := s.configFor(req.TavilyApiKey, req.LMStudioURL, req.Model)
	return research.TestConnections(ctx, cfg)
}

func (s *Service) configFor(tavilyKey, lmStudioURL, model string) research.Config {
	cfg := s.Cfg
	if tavilyKey != "" {
		cfg.TavilyApiKey = tavilyKey
	}
	if lmStudioURL != "" {
		cfg.LMStudioURL = lmStudioURL
	}
	if model != "" {
		cfg.Model = model
	}
	return cfg
}
