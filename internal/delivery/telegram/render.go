package telegram

import (
	"fmt"
	"math/rand/v2"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aliskhannn/prompt-study-bot/internal/domain/entities"
)

const (
	maxLessonExamples  = 3
	weakQuestionLength = 30
)

// Render turns a rendering-neutral message into Telegram text and an optional keyboard.
func Render(msg entities.Message) (string, *tgbotapi.InlineKeyboardMarkup) {
	switch msg.Kind {
	case entities.MsgHelp:
		return msgHelp, nil
	case entities.MsgLesson:
		return renderLesson(msg.Lesson, msg.Review), nil
	case entities.MsgNoLesson:
		return msgNoLesson, nil
	case entities.MsgQuiz:
		return renderQuiz("🧪 今週のクイズ", msg.Quiz), buildQuizAnswerKeyboard()
	case entities.MsgReviewQuiz:
		return renderQuiz("🔄 復習クイズ", msg.Quiz), buildQuizAnswerKeyboard()
	case entities.MsgNoQuiz:
		return msgNoQuiz, nil
	case entities.MsgNoReview:
		return msgNoReview, nil
	case entities.MsgAnswerResult:
		return renderAnswer(msg.Outcome), buildAnswerResultKeyboard()
	case entities.MsgNoActiveQuiz:
		return msgNoActiveQuiz, nil
	case entities.MsgInvalidAnswer:
		return msgInvalidAnswer, nil
	case entities.MsgProgress:
		return renderProgress(msg.Progress), nil
	case entities.MsgSummary:
		return renderSummary(msg.Progress), nil
	case entities.MsgStats:
		return renderStats(msg.Stats), nil
	case entities.MsgWeakAreas:
		return renderWeakAreas(msg.WeakAreas), nil
	case entities.MsgLevel:
		return renderLevel(msg.Level), nil
	case entities.MsgMotivation:
		if msg.Text != "" {
			return msg.Text, nil
		}
		return motivationalLines[rand.IntN(len(motivationalLines))], nil
	case entities.MsgPremiumOffer:
		return renderPremiumOffer(), buildURLKeyboard(btnCheckout, msg.URL)
	case entities.MsgPremiumManage:
		return renderPremiumManage(msg.Plan), buildURLKeyboard(btnManage, msg.URL)
	case entities.MsgPlan:
		return renderPlan(msg.Plan, msg.Quota), nil
	case entities.MsgAIAnswer:
		return renderAIAnswer(msg.Text, msg.Quota), nil
	case entities.MsgQuotaExceeded:
		return renderQuotaExceeded(msg.Quota), nil
	case entities.MsgModerated:
		return msgModerated, nil
	case entities.MsgAIUnavailable:
		return msgAIUnavailable, nil
	case entities.MsgSlotIntro:
		return slotIntros[string(msg.Slot)], nil
	case entities.MsgReengagement:
		return msgReengagement, buildLessonKeyboard()
	case entities.MsgPremiumWelcome:
		return msgPremiumWelcome, nil
	case entities.MsgPremiumCanceled:
		return msgPremiumCanceled, nil
	case entities.MsgPaymentUnavailable:
		return msgPaymentUnavailable, nil
	}

	return msgHelp, nil
}

func renderLesson(l *entities.Lesson, review *entities.ReviewQueueEntry) string {
	if l == nil {
		return msgNoLesson
	}

	var b strings.Builder
	if review != nil {
		b.WriteString("🔄 復習の時間です！\n")
		if review.Reason != "" {
			fmt.Fprintf(&b, "（%s）\n", review.Reason)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "📚 %s\n\n%s", l.Title, l.Point)

	if len(l.Examples) > 0 {
		b.WriteString("\n\n📝 例文:\n")
		for i, ex := range l.Examples[:min(len(l.Examples), maxLessonExamples)] {
			fmt.Fprintf(&b, "%d. %s\n", i+1, ex)
		}
	}

	if len(l.Tags) > 0 {
		fmt.Fprintf(&b, "\n🏷️ タグ: %s", strings.Join(l.Tags, ", "))
	}

	return b.String()
}

func renderQuiz(header string, q *entities.Quiz) string {
	if q == nil {
		return msgNoQuiz
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n❓ %s\n\n", header, q.Question)
	for i, opt := range q.Options {
		fmt.Fprintf(&b, "%d. %s\n", i+1, opt)
	}
	b.WriteString("\n📝 回答は「1」「2」「3」「4」で送信してください。")

	return b.String()
}

func renderAnswer(o *entities.AnswerOutcome) string {
	if o == nil || o.Quiz == nil {
		return msgNoActiveQuiz
	}

	var b strings.Builder
	if o.Correct {
		b.WriteString("✅ 正解です！")
	} else {
		fmt.Fprintf(&b, "❌ 不正解です。\n正解は %d でした。", o.CorrectIndex+1)
	}

	if o.Quiz.Explanation != "" {
		fmt.Fprintf(&b, "\n\n💡 解説：\n%s", o.Quiz.Explanation)
	}

	switch o.Promoted {
	case entities.TierIntermediate:
		b.WriteString("\n\n🎉 おめでとうございます！次回から中級クイズに進みます。")
	case entities.TierAdvanced:
		b.WriteString("\n\n🎉 素晴らしい！次回から上級クイズに進みます。")
	}

	return b.String()
}

func renderProgress(p *entities.Progress) string {
	if p == nil {
		return msgInternalError
	}

	return fmt.Sprintf(
		"📊 学習進捗\n\n"+
			"📚 累計学習回数: %d回\n"+
			"📅 今週の学習回数: %d回\n"+
			"🎯 テスト正答率: %.1f%%（%d/%d問）\n"+
			"📈 現在のレベル: %s",
		p.TotalLessons,
		p.WeeklyLessons,
		p.Quiz.Accuracy(), p.Quiz.Correct, p.Quiz.Total,
		p.Tier.Label(),
	)
}

func renderSummary(p *entities.Progress) string {
	if p == nil {
		return msgInternalError
	}

	return fmt.Sprintf(
		"📊 今週の学習サマリー\n\n"+
			"📚 学習回数: %d回\n"+
			"🎯 テスト正答率: %.1f%%\n"+
			"📈 現在のレベル: %s",
		p.WeeklyLessons,
		p.Quiz.Accuracy(),
		p.Tier.Label(),
	)
}

func renderStats(s *entities.QuizStats) string {
	if s == nil || s.Total == 0 {
		return "📊 まだクイズに回答していません。週間クイズに参加してみましょう！"
	}

	accuracy := s.Accuracy()

	var tail string
	switch {
	case accuracy >= 90:
		tail = "🌟 素晴らしい成績です！"
	case accuracy >= 70:
		tail = "👍 良い成績です！"
	default:
		tail = "💪 復習を頑張りましょう！"
	}

	return fmt.Sprintf(
		"📊 クイズ統計（過去30日）\n\n"+
			"📝 回答数: %d問\n"+
			"✅ 正解数: %d問\n"+
			"🎯 正答率: %.1f%%\n\n%s",
		s.Total, s.Correct, accuracy, tail,
	)
}

func renderWeakAreas(views []entities.WeakAreaView) string {
	if len(views) == 0 {
		return "🎉 苦手分野はありません！素晴らしいです！"
	}

	var b strings.Builder
	b.WriteString("📚 復習が必要な分野：\n\n")
	for _, v := range views {
		question := v.Area.QuizID
		if v.Quiz != nil {
			question = truncate(v.Quiz.Question, weakQuestionLength)
		}
		fmt.Fprintf(&b, "• %s\n  正答率: %.1f%%\n\n", question, v.Area.Ratio()*100)
	}
	b.WriteString("💡 これらの分野を重点的に復習しましょう！")

	return b.String()
}

func renderLevel(l *entities.LevelInfo) string {
	if l == nil {
		return msgInternalError
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🎯 現在のレベル: %s\n\n", l.Tier.Label())
	fmt.Fprintf(&b, "📚 最近30日の学習回数: %d回\n", l.RecentLessons)

	condition := fmt.Sprintf("クイズ%d問以上に回答し、%d問以上正解", entities.PromotionMinAttempts, entities.PromotionMinCorrect)
	switch l.Tier {
	case entities.TierBeginner:
		fmt.Fprintf(&b, "\n📈 中級への条件: %s", condition)
	case entities.TierIntermediate:
		fmt.Fprintf(&b, "\n📈 上級への条件: %s", condition)
	default:
		b.WriteString("\n🏆 最高レベルです！")
	}

	return b.String()
}

func renderPremiumOffer() string {
	return fmt.Sprintf(
		"💎 プレミアムプラン\n\n"+
			"🔸 AI質問回数: %d回 → %d回/日\n"+
			"🔸 全機能がご利用可能\n\n"+
			"下のボタンからお申し込みください。",
		entities.FreeQuestionLimit, entities.PremiumQuestionLimit,
	)
}

func renderPremiumManage(p *entities.PlanStatus) string {
	text := "💎 プレミアムプランをご利用中です"
	if p != nil && p.ExpiresAt != nil {
		text += fmt.Sprintf("\n📅 有効期限: %s", p.ExpiresAt.Format("2006/01/02"))
	}
	return text
}

func renderPlan(p *entities.PlanStatus, q *entities.QuotaDecision) string {
	var b strings.Builder

	if p != nil && p.IsPremium() {
		b.WriteString("📋 現在のプラン: プレミアム\n")
		if p.ExpiresAt != nil {
			fmt.Fprintf(&b, "📅 有効期限: %s\n", p.ExpiresAt.Format("2006/01/02"))
		}
	} else {
		b.WriteString("📋 現在のプラン: 無料\n")
	}

	if q != nil {
		left := max(0, q.Limit-q.Used)
		fmt.Fprintf(&b, "💬 本日の残り質問回数: %d/%d回", left, q.Limit)
	}

	return strings.TrimRight(b.String(), "\n")
}

func renderAIAnswer(answer string, q *entities.QuotaDecision) string {
	if q == nil {
		return answer
	}
	return fmt.Sprintf("%s\n\n💬 本日の残り質問回数: %d回", answer, q.Remaining)
}

func renderQuotaExceeded(q *entities.QuotaDecision) string {
	limit := entities.FreeQuestionLimit
	if q != nil {
		limit = q.Limit
	}
	return fmt.Sprintf(
		"⏳ 本日のAI質問回数の上限（%d回）に達しました。\n"+
			"明日またご利用ください。\n\n"+
			"💎 「プレミアム」と送信するとプランを確認できます。",
		limit,
	)
}
