package generation_test

import (
	"testing"

	"imagegen-backend/internal/generation"
	"imagegen-backend/pkg/api"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeMapsFields(t *testing.T) {
	denoising := 0.7
	firstPass := 512

	req, err := generation.Normalize(api.GenerateRequest{
		Prompt:          "a lighthouse at dusk",
		NegativePrompt:  "blurry",
		Sampler:         "Euler a",
		Cfg:             7.5,
		Seed:            float64(42),
		Width:           512,
		Height:          768,
		Steps:           30,
		FaceRestoration: true,
		DenoisingHr:     &denoising,
		FirstPassHr:     &firstPass,
		Tiling:          true,
		EnableHr:        true,
	})
	require.NoError(t, err)

	assert.Equal(t, generation.Request{
		Prompt:            "a lighthouse at dusk",
		NegativePrompt:    "blurry",
		SamplerName:       "Euler a",
		CfgScale:          7.5,
		Seed:              42,
		Width:             512,
		Height:            768,
		Steps:             30,
		BatchSize:         1,
		NIter:             1,
		RestoreFaces:      true,
		DenoisingStrength: &denoising,
		FirstphaseWidth:   &firstPass,
		Tiling:            true,
		EnableHr:          true,
	}, req)
}

func TestNormalizeForcesSingleImage(t *testing.T) {
	req, err := generation.Normalize(api.GenerateRequest{
		Prompt:    "anything",
		BatchSize: 8,
		NIter:     4,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, req.BatchSize)
	assert.Equal(t, 1, req.NIter)
}

func TestNormalizeSeed(t *testing.T) {
	t.Run("NumericString", func(t *testing.T) {
		req, err := generation.Normalize(api.GenerateRequest{Seed: "12345"})
		require.NoError(t, err)
		assert.Equal(t, int64(12345), req.Seed)
	})

	t.Run("Number", func(t *testing.T) {
		req, err := generation.Normalize(api.GenerateRequest{Seed: float64(99)})
		require.NoError(t, err)
		assert.Equal(t, int64(99), req.Seed)
	})

	t.Run("Absent", func(t *testing.T) {
		req, err := generation.Normalize(api.GenerateRequest{})
		require.NoError(t, err)
		assert.Equal(t, int64(generation.RandomSeed), req.Seed)
	})

	t.Run("EmptyString", func(t *testing.T) {
		req, err := generation.Normalize(api.GenerateRequest{Seed: ""})
		require.NoError(t, err)
		assert.Equal(t, int64(generation.RandomSeed), req.Seed)
	})

	t.Run("NonNumericString", func(t *testing.T) {
		_, err := generation.Normalize(api.GenerateRequest{Seed: "abc"})
		assert.ErrorIs(t, err, generation.ErrInvalidSeed)
	})

	t.Run("FractionalNumber", func(t *testing.T) {
		_, err := generation.Normalize(api.GenerateRequest{Seed: 1.5})
		assert.ErrorIs(t, err, generation.ErrInvalidSeed)
	})

	t.Run("UnexpectedType", func(t *testing.T) {
		_, err := generation.Normalize(api.GenerateRequest{Seed: []any{1}})
		assert.ErrorIs(t, err, generation.ErrInvalidSeed)
	})
}
