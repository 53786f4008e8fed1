package research

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestTestConnectionsBothUp(t *testing.T) {
	type probe struct {
		Query      string `json:"query"`
		MaxResults int    `json:"max_results"`
	}
	probes := make(chan probe, 1)

	tavilyServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p probe
		if err := json.NewDecoder(r.Body).Decode(&p); err == nil {
			probes <- p
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"answer": "ok", "results": []}`))
	}))
	defer tavilyServer.Close()

	lmServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(lmChatResponse("Hello")))
	}))
	defer lmServer.Close()

	status := TestConnections(context.Background(), Config{
		TavilyApiKey:  "test-key",
		TavilyBaseURL: tavilyServer.URL,
		LMStudioURL:   lmServer.URL,
		Model:         "test-model",
	})

	if !status.Tavily {
		t.Error("Tavily = false, want true")
	}
	if !status.LMStudio {
		t.Error("LMStudio = false, want true")
	}

	select {
	case p := <-probes:
		if p.Query != "hello world test" {
			t.Errorf("probe query = %q, want %q", p.Query, "hello world test")
		}
		if p.MaxResults != 1 {
			t.Errorf("probe max_results = %d, want 1", p.MaxResults)
		}
	default:
		t.Fatal("Tavily probe request was never sent")
	}
}

func TestTestConnectionsSkipsTavilyWithoutKey(t *testing.T) {
	var tavilyCalls atomic.Int32
	tavilyServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tavilyCalls.Add(1)
		w.Write([]byte(`{"answer": "ok", "results": []}`))
	}))
	defer tavilyServer.Close()

	lmServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(lmChatResponse("Hello")))
	}))
	defer lmServer.Close()

	status := TestConnections(context.Background(), Config{
		TavilyApiKey:  "",
		TavilyBaseURL: tavilyServer.URL,
		LMStudioURL:   lmServer.URL,
	})

	if status.Tavily {
		t.Error("Tavily = true, want false without an API key")
	}
	if got := tavilyCalls.Load(); got != 0 {
		t.Errorf("Tavily calls = %d, want 0 without an API key", got)
	}
	if !status.LMStudio {
		t.Error("LMStudio = false, want true")
	}
}

func TestTestConnectionsReportsFailures(t *testing.T) {
	tavilyServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail": "invalid api key"}`, http.StatusUnauthorized)
	}))
	defer tavilyServer.Close()

	lmServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	lmServer.Close() // connection refused from here on

	status := TestConnections(context.Background(), Config{
		TavilyApiKey:  "bad-key",
		TavilyBaseURL: tavilyServer.URL,
		LMStudioURL:   lmServer.URL,
	})

	if status.Tavily {
		t.Error("Tavily = true, want false on 401")
	}
	if status.LMStudio {
		t.Error("LMStudio = true, want false when unreachable")
	}
}

func TestTestConnectionsProbeIsSingleAttempt(t *testing.T) {
	var lmCalls atomic.Int32
	lmServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lmCalls.Add(1)
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer lmServer.Close()

	status := TestConnections(context.Background(), Config{
		LMStudioURL: lmServer.URL,
	})

	if status.LMStudio {
		t.Error("LMStudio = true, want false on 500")
	}
	if got := lmCalls.Load(); got != 1 {
		t.Errorf("LM Studio probe attempts = %d, want exactly 1", got)
	}
}
