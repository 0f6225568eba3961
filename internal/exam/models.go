package exam

import (
	"errors"
	"time"
	"unicode/utf8"

	"github.com/mind-engage/mindengage-tasks/internal/task"
	"github.com/mind-engage/mindengage-tasks/internal/validate"
)

var (
	ErrNotFound = errors.New("exam: not found")

	// ErrAlreadyAnswered is returned for any attempt to answer a finished question.
	ErrAlreadyAnswered = &validate.Error{Msg: "this question has already been answered"}
)

// Exam is one user's attempt at a task.
type Exam struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"user_id"`
	TaskID     *int64     `json:"task_id,omitempty"` // nil once the task is deleted
	TaskTitle  string     `json:"task_title"`
	CreatedAt  time.Time  `json:"created_at"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

func (e Exam) IsFinished() bool { return e.FinishedAt != nil }

// Ref addresses a question across both snapshot tables.
type Ref struct {
	Kind task.Kind
	ID   int64
}

// Question is a snapshot taken from a blank when the exam was created.
type Question interface {
	Ref() Ref
	Kind() task.Kind
	Exam() int64
	IsFinished() bool
	IsCorrect() bool
	base() *questionBase
}

type questionBase struct {
	ID         int64      `json:"id"`
	ExamID     int64      `json:"exam_id"`
	Position   int        `json:"position"`
	CreatedAt  time.Time  `json:"created_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

func (b *questionBase) base() *questionBase { return b }
func (b *questionBase) Exam() int64         { return b.ExamID }
func (b *questionBase) IsFinished() bool    { return b.FinishedAt != nil }

type IncorrectWordQuestion struct {
	questionBase
	CorrectWord          string `json:"correct_word"`
	IncorrectWord        string `json:"incorrect_word"`
	IncorrectLetterIndex int    `json:"incorrect_letter_index"`
	SelectedLetterIndex  *int   `json:"selected_letter_index,omitempty"`
}

func (q *IncorrectWordQuestion) Kind() task.Kind { return task.KindIncorrectWord }
func (q *IncorrectWordQuestion) Ref() Ref        { return Ref{Kind: task.KindIncorrectWord, ID: q.ID} }

func (q *IncorrectWordQuestion) IsCorrect() bool {
	return q.SelectedLetterIndex != nil && *q.SelectedLetterIndex == q.IncorrectLetterIndex
}

// Letter is one character of the displayed word; Index is 1-based.
type Letter struct {
	Index int
	Char  string
}

// Letters splits IncorrectWord into characters for display.
func (q *IncorrectWordQuestion) Letters() []Letter {
	out := make([]Letter, 0, utf8.RuneCountInString(q.IncorrectWord))
	for _, r := range q.IncorrectWord {
		out = append(out, Letter{Index: len(out) + 1, Char: string(r)})
	}
	return out
}

type OptionsQuestion struct {
	questionBase
	Question string                       `json:"question"`
	Options  [task.NumOptions]task.Option `json:"options"`
	Selected [task.NumOptions]*bool       `json:"selected"`
}

func (q *OptionsQuestion) Kind() task.Kind { return task.KindOptions }
func (q *OptionsQuestion) Ref() Ref        { return Ref{Kind: task.KindOptions, ID: q.ID} }

// IsCorrect compares every selection with its stored flag. An empty third
// option is ignored; empty first and second slots are compared like any other.
func (q *OptionsQuestion) IsCorrect() bool {
	for i, o := range q.Options {
		if i == task.NumOptions-1 && o.Text == "" {
			continue
		}
		if q.Selected[i] == nil || *q.Selected[i] != o.Correct {
			return false
		}
	}
	return true
}

// DisplayedOption is an option slot as shown to the user.
type DisplayedOption struct {
	Slot     int // 1-based
	Text     string
	Correct  bool
	Selected bool
}

// Displayed returns the non-empty option slots in order.
func (q *OptionsQuestion) Displayed() []DisplayedOption {
	var out []DisplayedOption
	for i, o := range q.Options {
		if o.Text == "" {
			continue
		}
		out = append(out, DisplayedOption{
			Slot:     i + 1,
			Text:     o.Text,
			Correct:  o.Correct,
			Selected: q.Selected[i] != nil && *q.Selected[i],
		})
	}
	return out
}

// Score summarizes an exam's questions.
type Score struct {
	Total    int `json:"total"`
	Answered int `json:"answered"`
	Correct  int `json:"correct"`
}

func (s Score) Percent() int {
	if s.Total == 0 {
		return 0
	}
	return s.Correct * 100 / s.Total
}

// ScoreOf counts answered and correct questions.
func ScoreOf(qs []Question) Score {
	s := Score{Total: len(qs)}
	for _, q := range qs {
		if q.IsFinished() {
			s.Answered++
		}
		if q.IsCorrect() {
			s.Correct++
		}
	}
	return s
}

// Summary is an exam with its score, as listed on the results page.
type Summary struct {
	Exam
	Score Score `json:"score"`
}

// Result is the full breakdown of one exam.
type Result struct {
	Exam      Exam       `json:"exam"`
	Questions []Question `json:"questions"`
	Score     Score      `json:"score"`
}
