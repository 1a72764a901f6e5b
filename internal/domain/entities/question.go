package entities

import "time"

// Daily AI question limits per plan.
const (
	FreeQuestionLimit    = 3
	PremiumQuestionLimit = 10
)

// QuestionAskEvent records one AI question. Daily usage is derived by counting these.
type QuestionAskEvent struct {
	UserID   string
	Question string
	AskedAt  time.Time
}

// QuotaLimits maps plans to daily question ceilings.
type QuotaLimits struct {
	Free    int
	Premium int
}

// DefaultQuotaLimits are the limits used unless configuration overrides them.
var DefaultQuotaLimits = QuotaLimits{Free: FreeQuestionLimit, Premium: PremiumQuestionLimit}

// For returns the daily limit for plan.
func (l QuotaLimits) For(plan Plan) int {
	if plan == PlanPremium {
		return l.Premium
	}
	return l.Free
}

// QuestionLimit returns the default daily limit for plan.
func QuestionLimit(plan Plan) int {
	return DefaultQuotaLimits.For(plan)
}

// QuotaDecision is the result of a quota check taken before the ask is recorded.
type QuotaDecision struct {
	Allowed   bool
	Remaining int // asks left after this one is recorded
	Limit     int
	Used      int // asks already recorded today
}

// Decide evaluates a quota from the count read before recording.
func Decide(used, limit int) QuotaDecision {
	d := QuotaDecision{Limit: limit, Used: used}
	if used < limit {
		d.Allowed = true
		d.Remaining = max(0, limit-(used+1))
	}
	return d
}
