package api

import (
	"time"

	"github.com/google/uuid"
)

// VoteType is the closed set of reactions a user can have to a generated
// image. The API only ever accepts and returns these five values.
type VoteType string

const (
	Upvote    VoteType = "UPVOTE"
	Downvote  VoteType = "DOWNVOTE"
	Favorite  VoteType = "FAVORITE"
	ToModify  VoteType = "TO_MODIFY"
	ToUpscale VoteType = "TO_UPSCALE"
)

// AllVoteTypes lists every vote type in a fixed order. Aggregations iterate
// over this so responses always cover all five kinds, zeros included.
var AllVoteTypes = []VoteType{Upvote, Downvote, Favorite, ToModify, ToUpscale}

func (v VoteType) Valid() bool {
	switch v {
	case Upvote, Downvote, Favorite, ToModify, ToUpscale:
		return true
	}
	return false
}

// GenerateRequest is the caller-facing txt2img request. Field names follow
// the frontend's camelCase convention; generation.Normalize maps them onto
// the backend schema. Seed is declared as any because callers send it either
// as a JSON number or as a numeric string.
type GenerateRequest struct {
	Prompt          string   `json:"prompt"`
	NegativePrompt  string   `json:"negativePrompt"`
	Sampler         string   `json:"sampler"`
	Cfg             float64  `json:"cfg"`
	Seed            any      `json:"seed,omitempty"`
	Width           int      `json:"width"`
	Height          int      `json:"height"`
	Steps           int      `json:"steps"`
	BatchSize       int      `json:"batchSize,omitempty"`
	NIter           int      `json:"nIter,omitempty"`
	FaceRestoration bool     `json:"faceRestoration,omitempty"`
	DenoisingHr     *float64 `json:"denoisingHr,omitempty"`
	FirstPassHr     *int     `json:"firstPassHr,omitempty"`
	Tiling          bool     `json:"tiling,omitempty"`
	EnableHr        bool     `json:"enableHr,omitempty"`
}

// GenerateResponse echoes what the generation backend returned: base64 image
// payloads plus the backend's info string.
type GenerateResponse struct {
	Images []string `json:"images"`
	Info   string   `json:"info"`
}

type Image struct {
	Id        uuid.UUID `json:"id"`
	Prompt    string    `json:"prompt"`
	Seed      int64     `json:"seed"`
	Sampler   string    `json:"sampler"`
	Steps     int       `json:"steps"`
	CfgScale  float64   `json:"cfgScale"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	CreatedAt time.Time `json:"createdAt"`
}

type Vote struct {
	Id        uuid.UUID `json:"id"`
	Vote      VoteType  `json:"vote"`
	ImageId   uuid.UUID `json:"imageId"`
	UserId    uuid.UUID `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	Image     *Image    `json:"image,omitempty"`
}

// VoteListQuery is decoded from query params on the vote listing endpoints.
// An empty Type means all kinds.
type VoteListQuery struct {
	Type VoteType `schema:"type"`
}

type VoteListResponse struct {
	Count   int    `json:"count"`
	Results []Vote `json:"results"`
}

type VoteCount struct {
	Vote  VoteType `json:"vote"`
	Count int64    `json:"count"`
}

// VoteCountsResponse always contains one entry per vote type. Count is the
// grand total across kinds.
type VoteCountsResponse struct {
	Count   int64       `json:"count"`
	Results []VoteCount `json:"results"`
}
