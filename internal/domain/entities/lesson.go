package entities

import "time"

// RecentLessonWindow is the lookback used to avoid resending a lesson.
const RecentLessonWindow = 7 * 24 * time.Hour

// ReviewScanLimit bounds how many queued review entries lesson selection inspects.
const ReviewScanLimit = 20

// Lesson is a single piece of learning content from the catalog.
type Lesson struct {
	ID       string   `json:"id"`       // stable identifier referenced by history and review entries
	Title    string   `json:"title"`    // short headline
	Point    string   `json:"point"`    // main explanation
	Examples []string `json:"examples"` // sample prompts, at most three are shown
	Tags     []string `json:"tags"`
	Tier     Tier     `json:"level"`
}

// LessonSendRecord is an append-only entry written every time a lesson is delivered.
type LessonSendRecord struct {
	UserID   string
	LessonID string
	Tier     Tier
	SentAt   time.Time
}

// LessonPick is the outcome of lesson selection.
// Review is set when the lesson came from the head of the user's review queue.
type LessonPick struct {
	Lesson *Lesson
	Review *ReviewQueueEntry
}

// FromReview reports whether the pick was served from the review queue.
func (p *LessonPick) FromReview() bool {
	return p != nil && p.Review != nil
}
