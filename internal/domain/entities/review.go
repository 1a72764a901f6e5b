package entities

import (
	"fmt"
	"time"
)

// ReviewQueueEntry flags a lesson or quiz for reinforcement.
// Entries are consumed highest priority first, oldest first within a priority.
type ReviewQueueEntry struct {
	ID        int64
	UserID    string
	ItemID    string // lesson or quiz identifier
	Tier      Tier
	Reason    string
	Priority  int
	CreatedAt time.Time
}

// NewWeakAreaReview builds the review entry added for a quiz with low accuracy.
func NewWeakAreaReview(userID string, tier Tier, area WeakArea, now time.Time) *ReviewQueueEntry {
	return &ReviewQueueEntry{
		UserID:    userID,
		ItemID:    area.QuizID,
		Tier:      tier,
		Reason:    fmt.Sprintf("テスト正答率%.1f%%", area.Ratio()*100),
		Priority:  WeakAreaPriority,
		CreatedAt: now,
	}
}
