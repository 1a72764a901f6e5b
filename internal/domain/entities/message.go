package entities

// MessageKind tells the delivery layer how to render a Message.
type MessageKind int

const (
	MsgHelp MessageKind = iota
	MsgLesson
	MsgNoLesson
	MsgQuiz
	MsgReviewQuiz
	MsgNoQuiz
	MsgNoReview
	MsgAnswerResult
	MsgNoActiveQuiz
	MsgInvalidAnswer
	MsgProgress
	MsgSummary
	MsgStats
	MsgWeakAreas
	MsgLevel
	MsgMotivation
	MsgPremiumOffer
	MsgPremiumManage
	MsgPlan
	MsgAIAnswer
	MsgQuotaExceeded
	MsgModerated
	MsgAIUnavailable
	MsgSlotIntro
	MsgReengagement
	MsgPremiumWelcome
	MsgPremiumCanceled
	MsgPaymentUnavailable
)

// WeakAreaView pairs a weak area with its quiz when the quiz still exists.
type WeakAreaView struct {
	Area WeakArea
	Quiz *Quiz
}

// Message is a rendering-neutral outbound message. Only the fields relevant
// to Kind are set.
type Message struct {
	Kind      MessageKind
	Slot      LessonSlot
	Lesson    *Lesson
	Review    *ReviewQueueEntry
	Quiz      *Quiz
	Outcome   *AnswerOutcome
	Progress  *Progress
	Stats     *QuizStats
	WeakAreas []WeakAreaView
	Level     *LevelInfo
	Plan      *PlanStatus
	Quota     *QuotaDecision
	Text      string // free text such as an AI answer or a motivational line
	URL       string // checkout or billing portal link
}
