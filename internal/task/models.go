package task

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("task: not found")

// Kind names a question template kind. The same strings address exam questions in URLs.
type Kind string

const (
	KindIncorrectWord Kind = "incorrectword"
	KindOptions       Kind = "options"
)

// Valid reports whether k is a known question kind.
func (k Kind) Valid() bool { return k == KindIncorrectWord || k == KindOptions }

func (k Kind) Label() string {
	switch k {
	case KindIncorrectWord:
		return "Find the incorrect letter"
	case KindOptions:
		return "Multiple choice"
	}
	return string(k)
}

type Task struct {
	ID                int64     `json:"id"`
	Title             string    `json:"title" validate:"required,max=255"`
	Description       string    `json:"description" validate:"required"`
	CreatedAt         time.Time `json:"created_at"`
	MaxQuestionsCount int       `json:"max_questions_count" validate:"min=0"`
}

// IncorrectWordBlank asks the user to find the misspelled letter in IncorrectWord.
type IncorrectWordBlank struct {
	ID                   int64  `json:"id"`
	TaskID               int64  `json:"task_id"`
	CorrectWord          string `json:"correct_word" validate:"required,max=255"`
	IncorrectWord        string `json:"incorrect_word" validate:"required,max=255"`
	IncorrectLetterIndex int    `json:"incorrect_letter_index"`
}

// NumOptions is the fixed number of option slots on a multiple-choice question.
const NumOptions = 3

type Option struct {
	Text    string `json:"text" yaml:"text" validate:"max=255"`
	Correct bool   `json:"correct" yaml:"correct"`
}

// OptionsBlank is a multiple-choice template. Empty option slots are not shown.
type OptionsBlank struct {
	ID       int64              `json:"id"`
	TaskID   int64              `json:"task_id"`
	Question string             `json:"question" validate:"required,max=255"`
	Options  [NumOptions]Option `json:"options" validate:"dive"`
}

// Blanks groups every template a task owns.
type Blanks struct {
	IncorrectWords []IncorrectWordBlank `json:"incorrect_words"`
	Options        []OptionsBlank       `json:"options"`
}

func (b Blanks) Len() int { return len(b.IncorrectWords) + len(b.Options) }

// TaskDetail is a task together with its templates.
type TaskDetail struct {
	Task
	Blanks Blanks `json:"blanks"`
}
