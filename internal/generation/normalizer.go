package generation

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	"imagegen-backend/pkg/api"
)

// ErrInvalidSeed indicates the caller supplied a seed that cannot be coerced
// to an integer. This is rejected up front instead of letting a garbage seed
// reach the backend.
var ErrInvalidSeed = errors.New("seed must be an integer or a numeric string")

// RandomSeed is the backend's convention for "pick a seed for me".
const RandomSeed = -1

// Request is the canonical txt2img request sent to the generation backend.
// Field names match the backend's wire schema exactly.
type Request struct {
	Prompt            string   `json:"prompt"`
	NegativePrompt    string   `json:"negative_prompt"`
	SamplerName       string   `json:"sampler_name"`
	CfgScale          float64  `json:"cfg_scale"`
	Seed              int64    `json:"seed"`
	Width             int      `json:"width"`
	Height            int      `json:"height"`
	Steps             int      `json:"steps"`
	BatchSize         int      `json:"batch_size"`
	NIter             int      `json:"n_iter"`
	RestoreFaces      bool     `json:"restore_faces,omitempty"`
	DenoisingStrength *float64 `json:"denoising_strength,omitempty"`
	FirstphaseWidth   *int     `json:"firstphase_width,omitempty"`
	FirstphaseHeight  *int     `json:"firstphase_height,omitempty"`
	Tiling            bool     `json:"tiling,omitempty"`
	EnableHr          bool     `json:"enable_hr,omitempty"`
}

// Normalize reshapes a caller-supplied request into the backend schema. It
// is a pure function: no I/O, no mutation of the input. BatchSize and NIter
// are forced to 1 whatever the caller sent, since the service generates one
// image per call.
func Normalize(raw api.GenerateRequest) (Request, error) {
	seed, err := parseSeed(raw.Seed)
	if err != nil {
		return Request{}, err
	}

	return Request{
		Prompt:            raw.Prompt,
		NegativePrompt:    raw.NegativePrompt,
		SamplerName:       raw.Sampler,
		CfgScale:          raw.Cfg,
		Seed:              seed,
		Width:             raw.Width,
		Height:            raw.Height,
		Steps:             raw.Steps,
		BatchSize:         1,
		NIter:             1,
		RestoreFaces:      raw.FaceRestoration,
		DenoisingStrength: raw.DenoisingHr,
		FirstphaseWidth:   raw.FirstPassHr,
		Tiling:            raw.Tiling,
		EnableHr:          raw.EnableHr,
	}, nil
}

// parseSeed coerces the seed the caller sent, which may be a JSON number, a
// numeric string, or absent. An absent seed means "random". A non-numeric
// seed is an error: silently forwarding an unparseable seed would hand the
// backend a meaningless value.
func parseSeed(raw any) (int64, error) {
	switch v := raw.(type) {
	case nil:
		return RandomSeed, nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%w: got %v", ErrInvalidSeed, v)
		}
		return int64(v), nil
	case json.Number:
		seed, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("%w: got %q", ErrInvalidSeed, v.String())
		}
		return seed, nil
	case string:
		if v == "" {
			return RandomSeed, nil
		}
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: got %q", ErrInvalidSeed, v)
		}
		return seed, nil
	default:
		return 0, fmt.Errorf("%w: got %T", ErrInvalidSeed, raw)
	}
}
