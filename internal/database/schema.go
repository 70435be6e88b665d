package database

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	JobQueued    string = "QUEUED"
	JobRunning   string = "RUNNING"
	JobCompleted string = "COMPLETED"
	JobFailed    string = "FAILED"
)

// GenerationJob records the intent to generate an image. It is created when
// the request is enqueued and only its status fields change afterwards; the
// normalized request parameters are frozen into Params at enqueue time.
type GenerationJob struct {
	Id uuid.UUID `gorm:"type:uuid;primaryKey"`

	UserId uuid.UUID `gorm:"type:uuid;not null;index"`

	Params datatypes.JSON `gorm:"not null"`

	Status         string `gorm:"size:20;not null"`
	EnqueueTime    time.Time
	CompletionTime sql.NullTime
}

type GeneratedImage struct {
	Id uuid.UUID `gorm:"type:uuid;primaryKey"`

	JobId uuid.NullUUID `gorm:"type:uuid;index"`

	UserId uuid.UUID `gorm:"type:uuid;not null;index"`

	Prompt         string
	NegativePrompt string
	Sampler        string
	CfgScale       float64
	Seed           int64
	Width          int
	Height         int
	Steps          int

	// Base64 payload as returned by the generation backend.
	Data string

	CreationTime time.Time
}

// Vote holds one reaction of one user to one image. The composite unique
// index is what makes CastVote's upsert atomic: concurrent casts for the
// same (user, image, kind) can never produce two rows.
type Vote struct {
	Id uuid.UUID `gorm:"type:uuid;primaryKey"`

	Vote    string    `gorm:"size:20;not null;uniqueIndex:idx_votes_user_image_vote"`
	ImageId uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_votes_user_image_vote"`
	UserId  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_votes_user_image_vote;index"`

	CreatedAt time.Time

	Image *GeneratedImage `gorm:"foreignKey:ImageId"`
}
