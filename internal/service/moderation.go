package service

import (
	"regexp"
	"strings"
	"unicode"
)

// Moderator rejects questions touching sensitive topics before any quota is read.
type Moderator struct {
	denylist map[string][]string // category -> keywords
	words    map[string]*regexp.Regexp
}

// NewModerator returns a moderator with the built-in Japanese and English denylist.
func NewModerator() *Moderator {
	m := &Moderator{denylist: map[string][]string{
		"politics": {
			"政治", "選挙", "政党", "首相", "大統領", "投票",
			"politics", "election", "political party", "president",
		},
		"religion": {
			"宗教", "信仰", "神様", "教団",
			"religion", "religious", "worship",
		},
		"violence": {
			"暴力", "殺人", "殺す", "爆弾", "武器", "テロ",
			"violence", "murder", "kill", "bomb", "weapon", "terror",
		},
		"discrimination": {
			"差別", "人種", "ヘイト",
			"discrimination", "racist", "racism", "hate speech",
		},
		"personal_data": {
			"個人情報", "住所", "電話番号", "パスワード", "クレジットカード", "マイナンバー",
			"personal information", "home address", "phone number", "password", "credit card",
		},
	}}

	// Latin keywords match whole words only, so "skill" does not hit "kill".
	m.words = make(map[string]*regexp.Regexp)
	for _, words := range m.denylist {
		for _, w := range words {
			if isLatin(w) {
				m.words[w] = regexp.MustCompile(`\b` + regexp.QuoteMeta(w) + `\b`)
			}
		}
	}

	return m
}

// Check returns the matched category and false when text must be rejected.
func (m *Moderator) Check(text string) (string, bool) {
	lower := strings.ToLower(text)
	for category, words := range m.denylist {
		for _, w := range words {
			if re, ok := m.words[w]; ok {
				if re.MatchString(lower) {
					return category, false
				}
				continue
			}
			if strings.Contains(lower, w) {
				return category, false
			}
		}
	}
	return "", true
}

func isLatin(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII {
			return false
		}
	}
	return true
}
