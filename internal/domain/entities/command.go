package entities

import "strings"

// Command is the normalized action an inbound chat message maps to.
type Command int

const (
	CommandQuestion Command = iota
	CommandHelp
	CommandProgress
	CommandStats
	CommandWeak
	CommandLevel
	CommandLesson
	CommandQuiz
	CommandReview
	CommandMotivation
	CommandPremium
	CommandPlan
	CommandAnswer
)

var commandSynonyms = map[string]Command{
	"start":      CommandHelp,
	"help":       CommandHelp,
	"ヘルプ":        CommandHelp,
	"progress":   CommandProgress,
	"進捗":         CommandProgress,
	"stats":      CommandStats,
	"統計":         CommandStats,
	"weak":       CommandWeak,
	"苦手":         CommandWeak,
	"level":      CommandLevel,
	"レベル":        CommandLevel,
	"lesson":     CommandLesson,
	"レッスン":       CommandLesson,
	"quiz":       CommandQuiz,
	"クイズ":        CommandQuiz,
	"review":     CommandReview,
	"復習":         CommandReview,
	"motivation": CommandMotivation,
	"モチベーション":    CommandMotivation,
	"premium":    CommandPremium,
	"プレミアム":      CommandPremium,
	"plan":       CommandPlan,
	"プラン":        CommandPlan,
}

// ParsedCommand is the result of normalizing inbound text.
type ParsedCommand struct {
	Command Command
	Text    string // trimmed original text, used as the question body
	Answer  string // quiz answer digit for CommandAnswer
}

// ParseCommand trims, case-folds and strips a leading slash, then maps
// bilingual synonyms to a single command. Anything unmatched is a question.
func ParseCommand(text string) ParsedCommand {
	trimmed := strings.TrimSpace(text)
	key := strings.ToLower(strings.TrimPrefix(trimmed, "/"))
	if i := strings.Index(key, "@"); i > 0 {
		key = key[:i] // "/quiz@bot_name" in group chats
	}

	switch key {
	case "1", "2", "3", "4":
		return ParsedCommand{Command: CommandAnswer, Text: trimmed, Answer: key}
	}

	if cmd, ok := commandSynonyms[key]; ok {
		return ParsedCommand{Command: cmd, Text: trimmed}
	}

	return ParsedCommand{Command: CommandQuestion, Text: trimmed}
}
