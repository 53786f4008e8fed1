package research

import (
	"context"
	"log/slog"
	"time"

	"github.com/research-intel/research-hub/pkg/clients"
	"github.com/research-intel/research-hub/pkg/research/tools"
)

// ConnectionStatus reports which external services answered a probe.
type ConnectionStatus struct {
	Tavily   bool `json:"tavily"`
	LMStudio bool `json:"lm_studio"`
}

// probeTimeout bounds the LM Studio probe; a health check should not wait
// out the full completion timeout.
const probeTimeout = 30 * time.Second

// TestConnections issues one lightweight call to each service. The probes
// are independent, single-attempt, and never retried: the point is current
// health, not resilience.
func TestConnections(ctx context.Context, cfg Config) ConnectionStatus {
	var status ConnectionStatus

	if cfg.TavilyApiKey != "" {
		tavily := tools.NewTavilyWithClient(cfg.TavilyApiKey, cfg.TavilyBaseURL, nil)
		if _, err := tavily.Search(ctx, "hello world test", 1); err == nil {
			status.Tavily = true
		} else {
			slog.Warn("Tavily probe failed", "error", err)
		}
	}

	probe, err := clients.NewLMStudio(clients.LMStudioConfig{
		BaseURL:        cfg.LMStudioURL,
		Model:          cfg.Model,
		RequestTimeout: probeTimeout,
		MaxRetries:     1,
	})
	if err == nil {
		if _, err := probe.Complete(ctx, "Say 'Hello'"); err == nil {
			status.LMStudio = true
		} else {
			slog.Warn("LM Studio probe failed", "error", err)
		}
	}

	return status
}
