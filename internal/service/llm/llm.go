package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultRequestTimeout bounds a single provider call
const DefaultRequestTimeout = 60 * time.Second

// Adapter is the capability contract every vendor implementation satisfies
type Adapter interface {
	// Name returns the provider the adapter talks to
	Name() Provider

	// TestConnection issues a minimal request to verify credentials and endpoint
	TestConnection(ctx context.Context, cfg CallConfig) CallResult

	// GenerateContent sends the prompt and returns the extracted text
	GenerateContent(ctx context.Context, cfg CallConfig, prompt string, opts GenerationOptions) CallResult

	// ParseResponse extracts generated text from a vendor response body.
	// It never fails; unknown shapes yield an empty string.
	ParseResponse(body []byte) string
}

// Dispatcher maps a provider identifier to its adapter
type Dispatcher interface {
	Resolve(p Provider) (Adapter, error)
}

// Observer is notified after every facade call
type Observer interface {
	ObserveCall(provider Provider, operation string, success bool, duration time.Duration)
}

// Operation names reported to the Observer
const (
	OperationTestConnection  = "test_connection"
	OperationGenerateContent = "generate_content"
)

// Client is the uniform entry point for provider calls. Every failure,
// including panics inside adapters, comes back as a failed CallResult.
type Client struct {
	dispatcher Dispatcher
	timeout    time.Duration
	logger     Logger
	observer   Observer
}

// ClientOptions contains configuration for the client
type ClientOptions struct {
	Dispatcher     Dispatcher
	RequestTimeout time.Duration
	Logger         Logger
	Observer       Observer
}

// NewClient creates a facade over the given dispatcher
func NewClient(opts ClientOptions) *Client {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}
	if opts.Logger == nil {
		opts.Logger = NewZapLogger(nil)
	}

	return &Client{
		dispatcher: opts.Dispatcher,
		timeout:    opts.RequestTimeout,
		logger:     opts.Logger,
		observer:   opts.Observer,
	}
}

// TestConnection checks that the configured provider accepts the credentials
func (c *Client) TestConnection(ctx context.Context, cfg CallConfig) CallResult {
	return c.call(ctx, cfg, OperationTestConnection, func(ctx context.Context, adapter Adapter) CallResult {
		return adapter.TestConnection(ctx, cfg)
	})
}

// GenerateContent sends prompt to the configured provider
func (c *Client) GenerateContent(ctx context.Context, cfg CallConfig, prompt string, opts GenerationOptions) CallResult {
	return c.call(ctx, cfg, OperationGenerateContent, func(ctx context.Context, adapter Adapter) CallResult {
		return adapter.GenerateContent(ctx, cfg, prompt, opts)
	})
}

func (c *Client) call(ctx context.Context, cfg CallConfig, operation string, invoke func(context.Context, Adapter) CallResult) (result CallResult) {
	startTime := time.Now()
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Provider call panicked", "provider", cfg.Provider, "operation", operation, "panic", r)
			result = Failed(panicMessage(r))
		}
		c.finish(cfg, operation, result, time.Since(startTime))
	}()

	if cfg.APIKey == "" {
		return Failed(MsgAPIKeyRequired)
	}
	if cfg.Provider == ProviderCustom && cfg.Endpoint == "" {
		return Failed(MsgCustomEndpointRequired)
	}

	adapter, err := c.resolve(cfg.Provider)
	if err != nil {
		return Failed(errorMessage(err))
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	c.logger.Debug("Calling provider", "provider", cfg.Provider, "operation", operation, "model", cfg.Model)
	return invoke(ctx, adapter)
}

func (c *Client) resolve(p Provider) (Adapter, error) {
	if c.dispatcher == nil {
		return nil, errors.New("no provider dispatcher configured")
	}
	return c.dispatcher.Resolve(p)
}

func (c *Client) finish(cfg CallConfig, operation string, result CallResult, elapsed time.Duration) {
	if result.Success {
		c.logger.Info("Provider call succeeded",
			"provider", cfg.Provider,
			"operation", operation,
			"time", elapsed)
	} else {
		c.logger.Error("Provider call failed",
			"provider", cfg.Provider,
			"operation", operation,
			"error", result.Error,
			"time", elapsed)
	}

	if c.observer != nil {
		c.observer.ObserveCall(cfg.Provider, operation, result.Success, elapsed)
	}
}

func errorMessage(err error) string {
	if err == nil || err.Error() == "" {
		return MsgUnknownError
	}
	return err.Error()
}

func panicMessage(r interface{}) string {
	switch v := r.(type) {
	case error:
		return errorMessage(v)
	case string:
		if v == "" {
			return MsgUnknownError
		}
		return v
	default:
		msg := fmt.Sprint(v)
		if msg == "" {
			return MsgUnknownError
		}
		return msg
	}
}
