package telegram

import (
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aliskhannn/prompt-study-bot/internal/domain/entities"
)

// buildQuizAnswerKeyboard builds one button per answer option.
func buildQuizAnswerKeyboard() *tgbotapi.InlineKeyboardMarkup {
	row := make([]tgbotapi.InlineKeyboardButton, 0, entities.QuizOptions)
	for i := 1; i <= entities.QuizOptions; i++ {
		digit := strconv.Itoa(i)
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(digit, buildAnswerCallback(digit)))
	}

	kb := tgbotapi.NewInlineKeyboardMarkup(row)
	return &kb
}

// buildAnswerResultKeyboard offers the next quiz and the statistics after an answer.
func buildAnswerResultKeyboard() *tgbotapi.InlineKeyboardMarkup {
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(btnNextQuiz, buildCommandCallback("quiz")),
			tgbotapi.NewInlineKeyboardButtonData(btnStats, buildCommandCallback("stats")),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(btnWeakAreas, buildCommandCallback("weak")),
		),
	)
	return &kb
}

func buildLessonKeyboard() *tgbotapi.InlineKeyboardMarkup {
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(btnLesson, buildCommandCallback("lesson")),
		),
	)
	return &kb
}

// buildURLKeyboard builds a single link button. It returns nil without a URL.
func buildURLKeyboard(label, url string) *tgbotapi.InlineKeyboardMarkup {
	if url == "" {
		return nil
	}

	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL(label, url),
		),
	)
	return &kb
}
