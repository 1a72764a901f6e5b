package entities

import "time"

// Progress summarizes a user's learning activity.
type Progress struct {
	Tier          Tier
	TotalLessons  int
	WeeklyLessons int
	Quiz          QuizStats // all-time
}

// LevelInfo is shown by the level command.
type LevelInfo struct {
	Tier          Tier
	RecentLessons int // lessons received in the last 30 days
}

// DispatchReport is returned by every broadcast job.
type DispatchReport struct {
	Job        string
	Attempted  int
	Delivered  int
	Skipped    int
	Failed     int
	StartedAt  time.Time
	FinishedAt time.Time
}

// LessonSlot identifies one of the three daily lesson broadcasts.
type LessonSlot string

const (
	SlotMorning   LessonSlot = "morning"
	SlotAfternoon LessonSlot = "afternoon"
	SlotEvening   LessonSlot = "evening"
)
