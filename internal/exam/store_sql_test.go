package exam

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-tasks/internal/db/dbtest"
	"github.com/mind-engage/mindengage-tasks/internal/task"
)

// unstorable is a question kind the store does not know how to insert.
type unstorable struct{ questionBase }

func (u *unstorable) Kind() task.Kind { return "unstorable" }
func (u *unstorable) Ref() Ref        { return Ref{Kind: u.Kind(), ID: u.ID} }
func (u *unstorable) IsCorrect() bool { return false }

func TestSQLStore_CreateExamIsAtomic(t *testing.T) {
	ctx := context.Background()
	h := dbtest.Open(t)
	s := NewSQLStore(h)
	user := dbtest.SeedUser(t, h, "alice", "user")

	at := time.Unix(0, 1)
	e := &Exam{UserID: user, CreatedAt: at}
	qs := []Question{
		snapshotIncorrectWord(task.IncorrectWordBlank{CorrectWord: "a", IncorrectWord: "b", IncorrectLetterIndex: 1}, 0, at),
		&unstorable{questionBase{Position: 1, CreatedAt: at}},
	}
	require.Error(t, s.CreateExam(ctx, e, qs))

	for _, table := range []string{"user_exams", "exam_incorrect_word_questions", "exam_options_questions"} {
		var n int
		require.NoError(t, h.Get(&n, `SELECT COUNT(*) FROM `+table))
		assert.Zero(t, n, table)
	}
}

func TestSQLStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	h := dbtest.Open(t)
	s := NewSQLStore(h)
	user := dbtest.SeedUser(t, h, "alice", "user")

	at := time.Unix(0, 42)
	e := &Exam{UserID: user, TaskTitle: "t", CreatedAt: at, StartedAt: &at}
	oq := snapshotOptions(task.OptionsBlank{Question: "q", Options: [task.NumOptions]task.Option{
		{Text: "x", Correct: true}, {Text: "y"},
	}}, 1, at, noShuffle)
	iw := snapshotIncorrectWord(task.IncorrectWordBlank{CorrectWord: "лиса", IncorrectWord: "лиза", IncorrectLetterIndex: 3}, 0, at)
	require.NoError(t, s.CreateExam(ctx, e, []Question{iw, oq}))
	require.NotZero(t, iw.ID)
	require.NotZero(t, oq.ID)
	assert.Equal(t, e.ID, oq.ExamID)

	got, err := s.GetExam(ctx, e.ID)
	require.NoError(t, err)
	assert.Nil(t, got.TaskID)
	assert.Equal(t, at, *got.StartedAt)
	assert.Nil(t, got.FinishedAt)

	loaded, err := s.GetOptionsQuestion(ctx, oq.ID)
	require.NoError(t, err)
	assert.Equal(t, oq.Options, loaded.Options)
	assert.Equal(t, [task.NumOptions]*bool{}, loaded.Selected)

	ok, err := s.SetOptionsAnswer(ctx, oq.ID, [task.NumOptions]bool{true, false, false}, at)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.SetOptionsAnswer(ctx, oq.ID, [task.NumOptions]bool{false, true, false}, at)
	require.NoError(t, err)
	assert.False(t, ok, "finished questions are never rewritten")

	loaded, err = s.GetOptionsQuestion(ctx, oq.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.Selected[0])
	assert.True(t, *loaded.Selected[0])
	assert.True(t, loaded.IsCorrect())

	finished, err := s.FinishExam(ctx, e.ID, at)
	require.NoError(t, err)
	assert.False(t, finished, "incorrect word question is still open")

	ok, err = s.SetIncorrectWordAnswer(ctx, iw.ID, 3, at)
	require.NoError(t, err)
	assert.True(t, ok)

	finished, err = s.FinishExam(ctx, e.ID, at)
	require.NoError(t, err)
	assert.True(t, finished)

	_, err = s.GetIncorrectWordQuestion(ctx, 12345)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetExam(ctx, 12345)
	assert.ErrorIs(t, err, ErrNotFound)
}
