package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

const (
	// DefaultBaseURL is the address LM Studio serves its OpenAI-compatible API on.
	DefaultBaseURL = "http://127.0.0.1:1234/v1"
	// DefaultModel is the model to use if none is specified.
	DefaultModel = "google/gemma-3-1b"

	DefaultTemperature = 0.7
	DefaultMaxTokens   = 2000
	DefaultTimeout     = 180 * time.Second
	DefaultMaxRetries  = 3
)

// Kind classifies a completion failure.
type Kind int

const (
	KindOther Kind = iota
	KindTimeout
	KindConnection
	KindUpstream
	KindMalformed
)

// Error is returned by Complete once every attempt has failed. Its Error
// text is the message shown to users, so the wording stays stable; callers
// that need the failure category inspect Kind instead of the text.
type Error struct {
	Kind    Kind
	BaseURL string
	Timeout time.Duration
	Status  int
	Body    string
	Err     error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindTimeout:
		return fmt.Sprintf("Error: Request timed out after %d seconds. Please check if LM Studio is running and responsive.", int(e.Timeout.Seconds()))
	case KindConnection:
		return fmt.Sprintf("Error: Cannot connect to LM Studio at %s. Please ensure LM Studio is running.", e.BaseURL)
	case KindUpstream:
		return fmt.Sprintf("Error: %d - %s", e.Status, e.Body)
	case KindMalformed:
		return fmt.Sprintf("Error: Invalid response from LM Studio: %v", e.Err)
	default:
		if e.Err == nil {
			return "Error: All retry attempts failed"
		}
		return fmt.Sprintf("Error connecting to LM Studio: %v", e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// LMStudioConfig configures an LMStudio client. Zero values fall back to
// the package defaults.
type LMStudioConfig struct {
	BaseURL string
	Model   string
	// Temperature nil means DefaultTemperature; a pointer to zero is an
	// explicit zero, not a request for the default.
	Temperature    *float64
	MaxTokens      int
	RequestTimeout time.Duration
	MaxRetries     int
	// BackoffUnit scales the delay between attempts; the n-th retry waits
	// 2^(n-1) units. Defaults to one second.
	BackoffUnit time.Duration
	Logger      *slog.Logger
}

// LMStudio talks to a local LM Studio server through its OpenAI-compatible
// chat completions endpoint. The client holds only fixed configuration, so a
// single instance is safe to share across concurrent runs.
type LMStudio struct {
	llm         llms.Model
	baseURL     string
	model       string
	temperature float64
	maxTokens   int
	timeout     time.Duration
	maxRetries  int
	backoffUnit time.Duration
	logger      *slog.Logger

	sleep func(ctx context.Context, d time.Duration) error
}

func NewLMStudio(cfg LMStudioConfig) (*LMStudio, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Temperature == nil {
		v := DefaultTemperature
		cfg.Temperature = &v
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = DefaultTimeout
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.BackoffUnit == 0 {
		cfg.BackoffUnit = time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	// LM Studio ignores authentication, but the client library requires a token.
	llm, err := openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithModel(cfg.Model),
		openai.WithToken("lm-studio"),
		openai.WithHTTPClient(&http.Client{
			Timeout:   cfg.RequestTimeout,
			Transport: &statusTransport{base: http.DefaultTransport},
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to init LM Studio client: %w", err)
	}

	return &LMStudio{
		llm:         llm,
		baseURL:     cfg.BaseURL,
		model:       cfg.Model,
		temperature: *cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		timeout:     cfg.RequestTimeout,
		maxRetries:  cfg.MaxRetries,
		backoffUnit: cfg.BackoffUnit,
		logger:      cfg.Logger,
		sleep:       sleepCtx,
	}, nil
}

// Complete sends the prompt as a single user turn and returns the first
// choice's text. It issues at most MaxRetries attempts, waiting 1, 2, 4, ...
// backoff units between them, and returns a *Error once all attempts fail.
func (c *LMStudio) Complete(ctx context.Context, prompt string) (string, error) {
	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Warn("Retrying LM Studio completion",
				"attempt", attempt+1, "max", c.maxRetries, "last_error", lastErr)
			delay := time.Duration(1<<(attempt-1)) * c.backoffUnit
			if err := c.sleep(ctx, delay); err != nil {
				break
			}
		}

		resp, err := c.llm.GenerateContent(ctx, content,
			llms.WithTemperature(c.temperature),
			llms.WithMaxTokens(c.maxTokens),
		)
		if err != nil {
			lastErr = err
			continue
		}
		return resp.Choices[0].Content, nil
	}

	return "", c.classify(lastErr)
}

func (c *LMStudio) classify(err error) *Error {
	e := &Error{
		Kind:    KindOther,
		BaseURL: c.baseURL,
		Timeout: c.timeout,
		Err:     err,
	}
	if err == nil {
		return e
	}

	var upstream *upstreamError
	var netErr net.Error
	var opErr *net.OpError
	var jsonSyntax *json.SyntaxError
	var jsonType *json.UnmarshalTypeError

	switch {
	case errors.As(err, &upstream):
		e.Kind = KindUpstream
		e.Status = upstream.Status
		e.Body = upstream.Body
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		e.Kind = KindTimeout
	case errors.Is(err, syscall.ECONNREFUSED),
		errors.As(err, &opErr) && opErr.Op == "dial":
		e.Kind = KindConnection
	case errors.Is(err, errNoChoices),
		errors.Is(err, openai.ErrEmptyResponse),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.As(err, &jsonSyntax),
		errors.As(err, &jsonType):
		e.Kind = KindMalformed
	}
	return e
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// upstreamError reports a non-2xx reply from the completions endpoint.
type upstreamError struct {
	Status int
	Body   string
}

func (e *upstreamError) Error() string {
	return fmt.Sprintf("unexpected status code: %d - %s", e.Status, e.Body)
}

// statusTransport sits between the client library and LM Studio. It rewrites
// the outbound token cap field to the name the endpoint documents, and it
// turns non-2xx responses and empty-choices bodies into typed errors so
// failure classification never depends on parsing library error text.
type statusTransport struct {
	base http.RoundTripper
}

var errNoChoices = errors.New("completion response contained no choices")

func (t *statusTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req, err := rewriteTokenCap(req)
	if err != nil {
		return nil, err
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		resp.Body.Close()
		return nil, &upstreamError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return checkChoices(resp)
}

// rewriteTokenCap renames the request's max_completion_tokens field to the
// max_tokens field LM Studio reads. The client library only emits the newer
// name, so without the rename no token cap reaches the server.
func rewriteTokenCap(req *http.Request) (*http.Request, error) {
	if req.Body == nil {
		return req, nil
	}
	body, err := io.ReadAll(req.Body)
	req.Body.Close()
	if err != nil {
		return nil, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err == nil {
		if v, ok := fields["max_completion_tokens"]; ok {
			delete(fields, "max_completion_tokens")
			fields["max_tokens"] = v
			if rewritten, err := json.Marshal(fields); err == nil {
				body = rewritten
			}
		}
	}

	clone := req.Clone(req.Context())
	clone.Body = io.NopCloser(bytes.NewReader(body))
	clone.ContentLength = int64(len(body))
	clone.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(body)), nil
	}
	return clone, nil
}

// checkChoices rejects a successful reply whose choices array is missing or
// empty. The client library reports that case with an error value this
// package cannot match against, so it is caught before the body is decoded.
func checkChoices(resp *http.Response) (*http.Response, error) {
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, err
	}

	var reply struct {
		Choices []json.RawMessage `json:"choices"`
	}
	if err := json.Unmarshal(body, &reply); err == nil && len(reply.Choices) == 0 {
		return nil, errNoChoices
	}

	resp.Body = io.NopCloser(bytes.NewReader(body))
	return resp, nil
}
