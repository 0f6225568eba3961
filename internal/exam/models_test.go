package exam

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mind-engage/mindengage-tasks/internal/task"
)

func ptr[T any](v T) *T { return &v }

func TestIncorrectWordQuestion_IsCorrect(t *testing.T) {
	q := &IncorrectWordQuestion{CorrectWord: "лиса", IncorrectWord: "лиза", IncorrectLetterIndex: 3}
	assert.False(t, q.IsCorrect(), "unanswered")

	q.SelectedLetterIndex = ptr(3)
	assert.True(t, q.IsCorrect())

	q.SelectedLetterIndex = ptr(2)
	assert.False(t, q.IsCorrect())
}

func TestIncorrectWordQuestion_Letters(t *testing.T) {
	q := &IncorrectWordQuestion{IncorrectWord: "лиза"}
	assert.Equal(t, []Letter{{1, "л"}, {2, "и"}, {3, "з"}, {4, "а"}}, q.Letters())
}

func TestOptionsQuestion_IsCorrect(t *testing.T) {
	full := [task.NumOptions]task.Option{{Text: "a", Correct: true}, {Text: "b"}, {Text: "c", Correct: true}}
	two := [task.NumOptions]task.Option{{Text: "a"}, {Text: "b", Correct: true}, {}}

	tests := []struct {
		name     string
		options  [task.NumOptions]task.Option
		selected [task.NumOptions]*bool
		want     bool
	}{
		{"exact match", full, [3]*bool{ptr(true), ptr(false), ptr(true)}, true},
		{"third wrong", full, [3]*bool{ptr(true), ptr(false), ptr(false)}, false},
		{"first wrong", full, [3]*bool{ptr(false), ptr(false), ptr(true)}, false},
		{"unanswered", full, [3]*bool{}, false},
		{"empty third ignored", two, [3]*bool{ptr(false), ptr(true), ptr(true)}, true},
		{"empty third ignored even unset", two, [3]*bool{ptr(false), ptr(true), nil}, true},
		{"second wrong", two, [3]*bool{ptr(false), ptr(false), ptr(false)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &OptionsQuestion{Options: tt.options, Selected: tt.selected}
			assert.Equal(t, tt.want, q.IsCorrect())
		})
	}
}

func TestOptionsQuestion_Displayed(t *testing.T) {
	q := &OptionsQuestion{
		Options:  [task.NumOptions]task.Option{{Text: "a", Correct: true}, {Text: "b"}, {}},
		Selected: [3]*bool{ptr(true), ptr(false), ptr(false)},
	}
	assert.Equal(t, []DisplayedOption{
		{Slot: 1, Text: "a", Correct: true, Selected: true},
		{Slot: 2, Text: "b"},
	}, q.Displayed())
}

func TestScoreOf(t *testing.T) {
	now := time.Now()
	right := &IncorrectWordQuestion{IncorrectLetterIndex: 1, SelectedLetterIndex: ptr(1)}
	right.FinishedAt = &now
	wrong := &IncorrectWordQuestion{IncorrectLetterIndex: 1, SelectedLetterIndex: ptr(2)}
	wrong.FinishedAt = &now
	open := &OptionsQuestion{}

	s := ScoreOf([]Question{right, wrong, open})
	assert.Equal(t, Score{Total: 3, Answered: 2, Correct: 1}, s)
	assert.Equal(t, 33, s.Percent())
	assert.Zero(t, Score{}.Percent())
}
