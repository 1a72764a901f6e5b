package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"

	"github.com/aliskhannn/prompt-study-bot/internal/domain/entities"
)

var (
	ErrLessonNotFound = errors.New("lesson not found")
	ErrQuizNotFound   = errors.New("quiz not found")
)

// Catalog is a read-only in-memory index of lessons and quizzes grouped by tier.
type Catalog struct {
	lessons       map[string]*entities.Lesson
	quizzes       map[string]*entities.Quiz
	lessonsByTier map[entities.Tier][]*entities.Lesson
	quizzesByTier map[entities.Tier][]*entities.Quiz
}

// NewCatalog builds a catalog from already decoded content.
// Lessons and quizzes without a tier are treated as beginner content.
func NewCatalog(lessons []*entities.Lesson, quizzes []*entities.Quiz) (*Catalog, error) {
	c := &Catalog{
		lessons:       make(map[string]*entities.Lesson, len(lessons)),
		quizzes:       make(map[string]*entities.Quiz, len(quizzes)),
		lessonsByTier: make(map[entities.Tier][]*entities.Lesson),
		quizzesByTier: make(map[entities.Tier][]*entities.Quiz),
	}

	for _, l := range lessons {
		if l.ID == "" {
			return nil, fmt.Errorf("lesson %q has no id", l.Title)
		}
		if _, dup := c.lessons[l.ID]; dup {
			return nil, fmt.Errorf("duplicate lesson id %q", l.ID)
		}
		if l.Tier == "" {
			l.Tier = entities.TierBeginner
		}
		if !l.Tier.Valid() {
			return nil, fmt.Errorf("lesson %q: %w: %q", l.ID, entities.ErrUnknownTier, l.Tier)
		}
		c.lessons[l.ID] = l
		c.lessonsByTier[l.Tier] = append(c.lessonsByTier[l.Tier], l)
	}

	for _, q := range quizzes {
		if err := validateQuiz(q); err != nil {
			return nil, err
		}
		if _, dup := c.quizzes[q.ID]; dup {
			return nil, fmt.Errorf("duplicate quiz id %q", q.ID)
		}
		if q.LessonID != "" {
			if _, ok := c.lessons[q.LessonID]; !ok {
				return nil, fmt.Errorf("quiz %q: %w: %q", q.ID, ErrLessonNotFound, q.LessonID)
			}
		}
		c.quizzes[q.ID] = q
		c.quizzesByTier[q.Tier] = append(c.quizzesByTier[q.Tier], q)
	}

	return c, nil
}

// LoadCatalog reads lessons and quizzes from JSON files.
//
// The lessons file is an array of lessons. The quizzes file is an object keyed
// by "<tier>_quiz", e.g. {"beginner_quiz": [...], "advanced_quiz": [...]}.
func LoadCatalog(lessonsPath, quizzesPath string) (*Catalog, error) {
	var lessons []*entities.Lesson
	if err := readJSON(lessonsPath, &lessons); err != nil {
		return nil, fmt.Errorf("load lessons: %w", err)
	}

	var grouped map[string][]*entities.Quiz
	if err := readJSON(quizzesPath, &grouped); err != nil {
		return nil, fmt.Errorf("load quizzes: %w", err)
	}

	var quizzes []*entities.Quiz
	for key, list := range grouped {
		tier, err := entities.ParseTier(strings.TrimSuffix(key, "_quiz"))
		if err != nil {
			return nil, fmt.Errorf("quiz group %q: %w", key, err)
		}
		for _, q := range list {
			q.Tier = tier
			quizzes = append(quizzes, q)
		}
	}

	return NewCatalog(lessons, quizzes)
}

// LessonByID returns a lesson by identifier.
func (c *Catalog) LessonByID(id string) (*entities.Lesson, error) {
	l, ok := c.lessons[id]
	if !ok {
		return nil, ErrLessonNotFound
	}
	return l, nil
}

// QuizByID returns a quiz by identifier.
func (c *Catalog) QuizByID(id string) (*entities.Quiz, error) {
	q, ok := c.quizzes[id]
	if !ok {
		return nil, ErrQuizNotFound
	}
	return q, nil
}

// Lessons returns the lesson pool of a tier.
func (c *Catalog) Lessons(tier entities.Tier) []*entities.Lesson {
	return c.lessonsByTier[tier]
}

// Quizzes returns the quiz pool of a tier.
func (c *Catalog) Quizzes(tier entities.Tier) []*entities.Quiz {
	return c.quizzesByTier[tier]
}

// RandomLesson picks a lesson of the tier uniformly among those not in exclude.
func (c *Catalog) RandomLesson(tier entities.Tier, exclude map[string]struct{}) (*entities.Lesson, error) {
	pool := make([]*entities.Lesson, 0, len(c.lessonsByTier[tier]))
	for _, l := range c.lessonsByTier[tier] {
		if _, skip := exclude[l.ID]; !skip {
			pool = append(pool, l)
		}
	}
	if len(pool) == 0 {
		return nil, ErrLessonNotFound
	}

	return pool[rand.IntN(len(pool))], nil
}

// RandomQuiz picks a quiz of the tier uniformly.
func (c *Catalog) RandomQuiz(tier entities.Tier) (*entities.Quiz, error) {
	pool := c.quizzesByTier[tier]
	if len(pool) == 0 {
		return nil, ErrQuizNotFound
	}

	return pool[rand.IntN(len(pool))], nil
}

func validateQuiz(q *entities.Quiz) error {
	if q.ID == "" {
		return fmt.Errorf("quiz %q has no id", q.Question)
	}
	if !q.Tier.Valid() {
		return fmt.Errorf("quiz %q: %w: %q", q.ID, entities.ErrUnknownTier, q.Tier)
	}
	if len(q.Options) != entities.QuizOptions {
		return fmt.Errorf("quiz %q: expected %d options, got %d", q.ID, entities.QuizOptions, len(q.Options))
	}
	if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
		return fmt.Errorf("quiz %q: correct answer %d out of range", q.ID, q.CorrectAnswer)
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal %s: %w", path, err)
	}
	return nil
}
