// Package report turns exam results into a per-question breakdown and renders it as PDF.
package report

import (
	"strconv"
	"strings"
	"time"

	"github.com/mind-engage/mindengage-tasks/internal/exam"
	"github.com/mind-engage/mindengage-tasks/internal/task"
)

const noAnswer = "—"

// Row is one question of a scored exam, flattened for display.
type Row struct {
	Number   int
	Ref      exam.Ref
	Kind     task.Kind
	Prompt   string
	Answer   string
	Expected string
	Answered bool
	Correct  bool
}

type ExamReport struct {
	Title      string
	Username   string
	CreatedAt  time.Time
	FinishedAt *time.Time
	Score      exam.Score
	Rows       []Row
}

func FromResult(res exam.Result, username string) ExamReport {
	return ExamReport{
		Title:      res.Exam.TaskTitle,
		Username:   username,
		CreatedAt:  res.Exam.CreatedAt,
		FinishedAt: res.Exam.FinishedAt,
		Score:      res.Score,
		Rows:       Rows(res.Questions),
	}
}

// Rows describes each question in the order given.
func Rows(qs []exam.Question) []Row {
	out := make([]Row, 0, len(qs))
	for i, q := range qs {
		r := Row{
			Number:   i + 1,
			Ref:      q.Ref(),
			Kind:     q.Kind(),
			Answer:   noAnswer,
			Answered: q.IsFinished(),
			Correct:  q.IsCorrect(),
		}
		switch q := q.(type) {
		case *exam.IncorrectWordQuestion:
			r.Prompt = q.IncorrectWord
			r.Expected = letterAt(q.IncorrectWord, q.IncorrectLetterIndex) + " → " + q.CorrectWord
			if q.SelectedLetterIndex != nil {
				r.Answer = letterAt(q.IncorrectWord, *q.SelectedLetterIndex)
			}
		case *exam.OptionsQuestion:
			r.Prompt = q.Question
			var chosen, correct []string
			for _, o := range q.Displayed() {
				if o.Selected {
					chosen = append(chosen, o.Text)
				}
				if o.Correct {
					correct = append(correct, o.Text)
				}
			}
			r.Expected = strings.Join(correct, ", ")
			if q.IsFinished() {
				r.Answer = strings.Join(chosen, ", ")
				if r.Answer == "" {
					r.Answer = "(none)"
				}
			}
		}
		out = append(out, r)
	}
	return out
}

// letterAt renders the 1-based letter position as `#3 "з"`.
func letterAt(word string, idx int) string {
	runes := []rune(word)
	s := "#" + strconv.Itoa(idx)
	if idx >= 1 && idx <= len(runes) {
		s += ` "` + string(runes[idx-1]) + `"`
	}
	return s
}
