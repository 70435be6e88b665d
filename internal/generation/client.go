package generation

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrGenerationFailed is what callers see when the backend call fails for
// any reason. The upstream detail is logged server-side only and never
// propagated, so backend internals do not leak to end users.
var ErrGenerationFailed = errors.New("image generation failed")

// Result is the contractually consumed part of the backend response. The
// backend also echoes the generation parameters, which we ignore.
type Result struct {
	Images []string `json:"images"`
	Info   string   `json:"info"`
}

// Client calls the txt2img endpoint of a single configured generation
// backend. One call, one image, no retries: retry policy belongs to whoever
// invokes the client.
type Client struct {
	client *resty.Client
}

func NewClient(backendURL string) *Client {
	return &Client{client: resty.New().SetBaseURL(backendURL)}
}

// Generate sends the normalized request and waits for the result. The
// caller's context carries any deadline; the client imposes none of its own.
func (c *Client) Generate(ctx context.Context, req Request) (*Result, error) {
	var result Result

	start := time.Now()
	slog.Info("generating image", "sampler", req.SamplerName, "steps", req.Steps, "seed", req.Seed, "size", req.Width*req.Height)

	// The backend's response is always JSON but not always labelled as such,
	// and resty only auto-unmarshals recognized JSON content types.
	res, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&result).
		ForceContentType("application/json").
		Post("/txt2img")

	if err != nil {
		slog.Error("generation backend request failed", "error", err)
		return nil, ErrGenerationFailed
	}

	if !res.IsSuccess() {
		slog.Error("generation backend returned error", "status_code", res.StatusCode(), "body", res.String())
		return nil, ErrGenerationFailed
	}

	slog.Info("image generated", "elapsed_seconds", time.Since(start).Seconds(), "images", len(result.Images))
	return &result, nil
}
