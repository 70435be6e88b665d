package votes

import (
	"context"
	"log/slog"

	"imagegen-backend/internal/database"
	"imagegen-backend/pkg/api"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Aggregator derives per-user vote statistics from ledger state. It only
// reads; all writes go through the Ledger.
type Aggregator struct {
	db *gorm.DB
}

func NewAggregator(db *gorm.DB) *Aggregator {
	return &Aggregator{db: db}
}

// CountsByUser returns a count for every vote kind plus the grand total.
// The mapping is always complete: kinds the user never voted with are
// present with a zero, never omitted.
func (a *Aggregator) CountsByUser(ctx context.Context, userId uuid.UUID) (map[api.VoteType]int64, int64, error) {
	var rows []struct {
		Vote  string
		Count int64
	}

	err := a.db.WithContext(ctx).
		Model(&database.Vote{}).
		Select("vote, count(*) as count").
		Where("user_id = ?", userId).
		Group("vote").
		Find(&rows).Error
	if err != nil {
		slog.Error("error counting votes", "user_id", userId, "error", err)
		return nil, 0, ErrLedgerUnavailable
	}

	counts := make(map[api.VoteType]int64, len(api.AllVoteTypes))
	for _, kind := range api.AllVoteTypes {
		counts[kind] = 0
	}

	var total int64
	for _, row := range rows {
		counts[api.VoteType(row.Vote)] = row.Count
		total += row.Count
	}

	return counts, total, nil
}
