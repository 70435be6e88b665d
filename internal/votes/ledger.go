package votes

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"imagegen-backend/internal/database"
	"imagegen-backend/pkg/api"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrLedgerUnavailable is returned when the vote store cannot be reached.
// Storage detail is logged server-side; callers only see this sentinel.
var ErrLedgerUnavailable = errors.New("vote ledger unavailable")

// Ledger is the single writer to the vote table. Referential integrity of
// image and user ids is the storage layer's concern, not validated here.
type Ledger struct {
	db *gorm.DB
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// CastVote upserts the vote keyed by (user, image, kind). Re-casting the
// same vote refreshes created_at rather than inserting a second row; the
// unique index on the triple makes this atomic under concurrent casts.
func (l *Ledger) CastVote(ctx context.Context, userId, imageId uuid.UUID, kind api.VoteType) (*database.Vote, error) {
	vote := database.Vote{
		Id:        uuid.New(),
		Vote:      string(kind),
		ImageId:   imageId,
		UserId:    userId,
		CreatedAt: time.Now().UTC(),
	}

	err := l.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "image_id"}, {Name: "vote"}},
		DoUpdates: clause.Assignments(map[string]any{"created_at": vote.CreatedAt}),
	}).Create(&vote).Error
	if err != nil {
		slog.Error("error upserting vote", "user_id", userId, "image_id", imageId, "vote", kind, "error", err)
		return nil, ErrLedgerUnavailable
	}

	// On conflict the insert's generated id is discarded, so read the row
	// back by its natural key to return what is actually stored.
	var stored database.Vote
	err = l.db.WithContext(ctx).
		Where("user_id = ? AND image_id = ? AND vote = ?", userId, imageId, string(kind)).
		First(&stored).Error
	if err != nil {
		slog.Error("error reading back vote", "user_id", userId, "image_id", imageId, "vote", kind, "error", err)
		return nil, ErrLedgerUnavailable
	}

	return &stored, nil
}

// ListVotesByUser returns the user's votes joined with image metadata. An
// empty kind returns votes of every kind.
func (l *Ledger) ListVotesByUser(ctx context.Context, userId uuid.UUID, kind api.VoteType) ([]database.Vote, error) {
	query := l.db.WithContext(ctx).Preload("Image").Where("user_id = ?", userId)
	if kind != "" {
		query = query.Where("vote = ?", string(kind))
	}

	var results []database.Vote
	if err := query.Find(&results).Error; err != nil {
		slog.Error("error listing votes", "user_id", userId, "vote", kind, "error", err)
		return nil, ErrLedgerUnavailable
	}
	return results, nil
}

// ListVotedImageIds returns the distinct image ids the user has voted on,
// optionally restricted to one kind.
func (l *Ledger) ListVotedImageIds(ctx context.Context, userId uuid.UUID, kind api.VoteType) ([]uuid.UUID, error) {
	query := l.db.WithContext(ctx).Model(&database.Vote{}).Distinct("image_id").Where("user_id = ?", userId)
	if kind != "" {
		query = query.Where("vote = ?", string(kind))
	}

	var ids []uuid.UUID
	if err := query.Pluck("image_id", &ids).Error; err != nil {
		slog.Error("error listing voted image ids", "user_id", userId, "vote", kind, "error", err)
		return nil, ErrLedgerUnavailable
	}
	return ids, nil
}
