// Package analyzer provides the client for the Vision-LLM screen analyzer
// sidecar. The sidecar consumes a screen frame and returns the structured
// UI elements it detected, falling back to OCR when the model call fails.
package analyzer

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/qaforge/replaykit/pkg/ui"
)

// Analyzer turns a captured screen frame into a structured UI snapshot.
type Analyzer interface {
	Analyze(ctx context.Context, img image.Image) (ui.Snapshot, error)
}

// Judge asks the analyzer's model whether a screen transition satisfies a
// recorded expectation.
type Judge interface {
	JudgeTransition(ctx context.Context, params JudgeParams) (JudgeResult, error)
}

// Defaults for the HTTP client.
const (
	DefaultTimeout    = 60 * time.Second
	DefaultMaxElapsed = 3 * time.Minute
)

// HTTPClient talks JSON-RPC 2.0 to the analyzer sidecar over HTTP, retrying
// transient failures with exponential backoff. A single call can therefore
// take a long time; callers bound it with the context.
type HTTPClient struct {
	endpoint   string
	model      string
	client     *http.Client
	maxElapsed time.Duration
	nextID     atomic.Int64
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithModel sets the model name forwarded to the sidecar.
func WithModel(model string) Option {
	return func(c *HTTPClient) { c.model = model }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.client = hc }
}

// WithMaxElapsed bounds the total retry budget for one call.
func WithMaxElapsed(d time.Duration) Option {
	return func(c *HTTPClient) { c.maxElapsed = d }
}

// NewHTTPClient creates an analyzer client for the given sidecar endpoint.
func NewHTTPClient(endpoint string, opts ...Option) (*HTTPClient, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("analyzer endpoint is required")
	}
	c := &HTTPClient{
		endpoint:   endpoint,
		client:     &http.Client{Timeout: DefaultTimeout},
		maxElapsed: DefaultMaxElapsed,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Analyze sends the frame to the sidecar and decodes the element snapshot.
// Transient transport and server errors are retried with exponential backoff
// until the retry budget is exhausted; the final error is returned rather
// than hanging indefinitely.
func (c *HTTPClient) Analyze(ctx context.Context, img image.Image) (ui.Snapshot, error) {
	encoded, err := EncodePNG(img)
	if err != nil {
		return ui.Snapshot{}, fmt.Errorf("encode frame: %w", err)
	}

	var snap ui.Snapshot
	result, err := c.call(ctx, MethodScreenAnalyze, AnalyzeParams{
		ImagePNG: encoded,
		Model:    c.model,
	})
	if err != nil {
		return ui.Snapshot{}, err
	}
	if err := json.Unmarshal(result, &snap); err != nil {
		return ui.Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.Source == "" {
		snap.Source = ui.SourceVisionLLM
	}
	return snap, nil
}

// JudgeTransition asks the sidecar's model for a semantic verdict on a
// screen transition.
func (c *HTTPClient) JudgeTransition(ctx context.Context, params JudgeParams) (JudgeResult, error) {
	if params.Model == "" {
		params.Model = c.model
	}
	result, err := c.call(ctx, MethodTransitionJudge, params)
	if err != nil {
		return JudgeResult{}, err
	}
	var verdict JudgeResult
	if err := json.Unmarshal(result, &verdict); err != nil {
		return JudgeResult{}, fmt.Errorf("decode verdict: %w", err)
	}
	return verdict, nil
}

// call performs one JSON-RPC round trip with retry.
func (c *HTTPClient) call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	req, err := NewRequest(c.nextID.Add(1), method, params)
	if err != nil {
		return nil, fmt.Errorf("marshal %s params: %w", method, err)
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal %s request: %w", method, err)
	}

	var result json.RawMessage
	operation := func() error {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		httpReq.Header.Set("Content-Type", "application/json")

		httpResp, err := c.client.Do(httpReq)
		if err != nil {
			return err // transport errors are retryable
		}
		defer httpResp.Body.Close()

		if httpResp.StatusCode >= 500 {
			return fmt.Errorf("analyzer returned %s", httpResp.Status)
		}
		if httpResp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("analyzer returned %s", httpResp.Status))
		}

		var rpcResp Response
		if err := json.NewDecoder(httpResp.Body).Decode(&rpcResp); err != nil {
			return fmt.Errorf("decode %s response: %w", method, err)
		}
		if rpcResp.Error != nil {
			if rpcResp.Error.Code == CodeModelUnavailable || rpcResp.Error.Code == CodeInternalError {
				return rpcResp.Error // sidecar may recover; retry
			}
			return backoff.Permanent(rpcResp.Error)
		}
		result = rpcResp.Result
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = c.maxElapsed
	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	return result, nil
}

// EncodePNG renders a frame as base64 PNG, the wire format the sidecar
// expects for image parameters.
func EncodePNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
