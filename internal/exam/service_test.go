package exam_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mind-engage/mindengage-tasks/internal/db/dbtest"
	"github.com/mind-engage/mindengage-tasks/internal/exam"
	"github.com/mind-engage/mindengage-tasks/internal/task"
	"github.com/mind-engage/mindengage-tasks/internal/validate"
)

type fixture struct {
	h     *sqlx.DB
	tasks *task.Service
	svc   *exam.Service
	user  int64
	other int64
}

// tick is a clock that advances by one millisecond per call.
func tick() func() time.Time {
	t := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Millisecond)
		return t
	}
}

func newFixture(t *testing.T, opts ...exam.Option) *fixture {
	t.Helper()
	h := dbtest.Open(t)
	store := task.NewSQLStore(h)
	opts = append([]exam.Option{exam.WithClock(tick())}, opts...)
	return &fixture{
		h:     h,
		tasks: task.NewService(store, zap.NewNop(), 10),
		svc:   exam.NewService(store, exam.NewSQLStore(h), zap.NewNop(), opts...),
		user:  dbtest.SeedUser(t, h, "alice", "user"),
		other: dbtest.SeedUser(t, h, "bob", "user"),
	}
}

func (f *fixture) task(t *testing.T, max, words, options int) task.Task {
	t.Helper()
	ctx := context.Background()
	tk := &task.Task{Title: "Spelling", Description: "d", MaxQuestionsCount: max}
	require.NoError(t, f.tasks.Create(ctx, tk))
	for i := 0; i < words; i++ {
		require.NoError(t, f.tasks.AddIncorrectWordBlank(ctx, &task.IncorrectWordBlank{
			TaskID: tk.ID, CorrectWord: fmt.Sprintf("лиса%d", i), IncorrectWord: fmt.Sprintf("лиза%d", i),
		}))
	}
	for i := 0; i < options; i++ {
		require.NoError(t, f.tasks.AddOptionsBlank(ctx, &task.OptionsBlank{
			TaskID: tk.ID, Question: fmt.Sprintf("q%d", i),
			Options: [task.NumOptions]task.Option{{Text: "yes", Correct: true}, {Text: "no"}},
		}))
	}
	return *tk
}

func (f *fixture) count(t *testing.T, table string, examID int64) int {
	t.Helper()
	var n int
	require.NoError(t, f.h.Get(&n, `SELECT COUNT(*) FROM `+table+` WHERE exam_id=?`, examID))
	return n
}

func TestCreateByTask_SamplesMinOfBlanksAndMax(t *testing.T) {
	ctx := context.Background()
	for _, tc := range []struct{ words, options, max, want int }{
		{3, 2, 3, 3},
		{1, 1, 5, 2},
		{2, 2, 0, 0},
		{0, 0, 4, 0},
		{4, 0, 4, 4},
	} {
		t.Run(fmt.Sprintf("%d+%d/max%d", tc.words, tc.options, tc.max), func(t *testing.T) {
			f := newFixture(t)
			tk := f.task(t, tc.max, tc.words, tc.options)

			e, first, err := f.svc.CreateByTask(ctx, tk.ID, f.user)
			require.NoError(t, err)
			require.NotZero(t, e.ID)
			assert.Equal(t, tk.Title, e.TaskTitle)
			require.NotNil(t, e.StartedAt)
			assert.Equal(t, e.CreatedAt, *e.StartedAt)

			qs, err := f.svc.Questions(ctx, e.ID)
			require.NoError(t, err)
			assert.Len(t, qs, tc.want)
			assert.Equal(t, tc.want,
				f.count(t, "exam_incorrect_word_questions", e.ID)+f.count(t, "exam_options_questions", e.ID))

			seen := map[string]bool{}
			for _, q := range qs {
				var key string
				switch x := q.(type) {
				case *exam.IncorrectWordQuestion:
					key = x.CorrectWord
				case *exam.OptionsQuestion:
					key = x.Question
				}
				assert.False(t, seen[key], "template %q drawn twice", key)
				seen[key] = true
			}

			if tc.want == 0 {
				assert.Nil(t, first)
				assert.True(t, e.IsFinished())
				return
			}
			require.NotNil(t, first)
			assert.Equal(t, qs[0].Ref(), first.Ref())
			assert.False(t, e.IsFinished())
		})
	}
}

func TestCreateByTask_UnknownTask(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.svc.CreateByTask(context.Background(), 404, f.user)
	assert.True(t, exam.IsNotFound(err))
}

func TestCreateByTask_SnapshotsAreDecoupledFromBlanks(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tk := f.task(t, 1, 1, 0)

	_, first, err := f.svc.CreateByTask(ctx, tk.ID, f.user)
	require.NoError(t, err)

	b, err := f.tasks.Blanks(ctx, tk.ID)
	require.NoError(t, err)
	edit := b.IncorrectWords[0]
	edit.CorrectWord, edit.IncorrectWord = "собака", "сабака"
	require.NoError(t, f.tasks.UpdateIncorrectWordBlank(ctx, &edit))

	q, err := f.svc.Question(ctx, f.user, first.Ref())
	require.NoError(t, err)
	iw := q.(*exam.IncorrectWordQuestion)
	assert.Equal(t, "лиса0", iw.CorrectWord)
	assert.Equal(t, 3, iw.IncorrectLetterIndex)

	require.NoError(t, f.tasks.Delete(ctx, tk.ID))
	res, err := f.svc.Results(ctx, f.user, q.Exam())
	require.NoError(t, err)
	assert.Nil(t, res.Exam.TaskID)
	assert.Len(t, res.Questions, 1)
}

func TestAnswerIncorrectWord(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tk := f.task(t, 1, 1, 0)
	_, first, err := f.svc.CreateByTask(ctx, tk.ID, f.user)
	require.NoError(t, err)
	id := first.Ref().ID

	t.Run("out of range letter", func(t *testing.T) {
		_, err := f.svc.AnswerIncorrectWord(ctx, f.user, id, 0)
		assert.True(t, validate.Is(err))
		_, err = f.svc.AnswerIncorrectWord(ctx, f.user, id, 6)
		assert.True(t, validate.Is(err))
	})

	t.Run("other user cannot answer", func(t *testing.T) {
		_, err := f.svc.AnswerIncorrectWord(ctx, f.other, id, 3)
		assert.ErrorIs(t, err, exam.ErrNotFound)
	})

	t.Run("first answer is stored", func(t *testing.T) {
		q, err := f.svc.AnswerIncorrectWord(ctx, f.user, id, 3)
		require.NoError(t, err)
		assert.True(t, q.IsFinished())
		assert.True(t, q.IsCorrect())
	})

	t.Run("second answer is rejected and changes nothing", func(t *testing.T) {
		before, err := f.svc.Question(ctx, f.user, first.Ref())
		require.NoError(t, err)

		_, err = f.svc.AnswerIncorrectWord(ctx, f.user, id, 1)
		require.ErrorIs(t, err, exam.ErrAlreadyAnswered)
		assert.True(t, validate.Is(err))

		after, err := f.svc.Question(ctx, f.user, first.Ref())
		require.NoError(t, err)
		assert.Equal(t, before, after)
		assert.Equal(t, 3, *after.(*exam.IncorrectWordQuestion).SelectedLetterIndex)
	})

	t.Run("last answer finishes the exam", func(t *testing.T) {
		e, err := f.svc.GetExam(ctx, f.user, first.Exam())
		require.NoError(t, err)
		assert.True(t, e.IsFinished())
	})
}

func TestAnswerOptions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tk := f.task(t, 2, 0, 2)
	e, first, err := f.svc.CreateByTask(ctx, tk.ID, f.user)
	require.NoError(t, err)

	oq := first.(*exam.OptionsQuestion)
	var pick [task.NumOptions]bool
	for i, o := range oq.Options {
		pick[i] = o.Correct
	}
	got, err := f.svc.AnswerOptions(ctx, f.user, oq.ID, pick)
	require.NoError(t, err)
	assert.True(t, got.IsCorrect())

	_, err = f.svc.AnswerOptions(ctx, f.user, oq.ID, [task.NumOptions]bool{})
	assert.ErrorIs(t, err, exam.ErrAlreadyAnswered)

	e, err = f.svc.GetExam(ctx, f.user, e.ID)
	require.NoError(t, err)
	assert.False(t, e.IsFinished(), "one question is still open")

	_, next, err := f.svc.Neighbors(ctx, first)
	require.NoError(t, err)
	require.NotNil(t, next)
	_, err = f.svc.AnswerOptions(ctx, f.user, next.Ref().ID, [task.NumOptions]bool{})
	require.NoError(t, err)

	res, err := f.svc.Results(ctx, f.user, e.ID)
	require.NoError(t, err)
	assert.True(t, res.Exam.IsFinished())
	assert.Equal(t, exam.Score{Total: 2, Answered: 2, Correct: 1}, res.Score)
}

func TestNeighborsAcrossKinds(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tk := f.task(t, 4, 2, 2)
	e, first, err := f.svc.CreateByTask(ctx, tk.ID, f.user)
	require.NoError(t, err)

	qs, err := f.svc.Questions(ctx, e.ID)
	require.NoError(t, err)
	require.Len(t, qs, 4)
	assert.Equal(t, first.Ref(), qs[0].Ref())

	// walk forward then back
	cur := qs[0]
	for i := 1; i < len(qs); i++ {
		_, next, err := f.svc.Neighbors(ctx, cur)
		require.NoError(t, err)
		require.Equal(t, qs[i].Ref(), next.Ref())
		cur = next
	}
	_, next, err := f.svc.Neighbors(ctx, cur)
	require.NoError(t, err)
	assert.Nil(t, next)

	prev, _, err := f.svc.Neighbors(ctx, qs[1])
	require.NoError(t, err)
	require.NotNil(t, prev)
	assert.Equal(t, qs[0].Ref(), prev.Ref())
}

func TestQuestion_UnknownKindAndOwnership(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tk := f.task(t, 1, 0, 1)
	_, first, err := f.svc.CreateByTask(ctx, tk.ID, f.user)
	require.NoError(t, err)

	_, err = f.svc.Question(ctx, f.user, exam.Ref{Kind: "essay", ID: first.Ref().ID})
	assert.ErrorIs(t, err, exam.ErrNotFound)

	_, err = f.svc.Question(ctx, f.other, first.Ref())
	assert.ErrorIs(t, err, exam.ErrNotFound)

	_, err = f.svc.Results(ctx, f.other, first.Exam())
	assert.ErrorIs(t, err, exam.ErrNotFound)
}

func TestListByUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, exam.WithPerPage(2))
	tk := f.task(t, 1, 1, 0)

	var ids []int64
	for i := 0; i < 3; i++ {
		e, _, err := f.svc.CreateByTask(ctx, tk.ID, f.user)
		require.NoError(t, err)
		ids = append(ids, e.ID)
	}
	_, _, err := f.svc.CreateByTask(ctx, tk.ID, f.other)
	require.NoError(t, err)

	page, err := f.svc.ListByUser(ctx, f.user, "1")
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 2, page.NumPages)
	require.Len(t, page.Items, 2)
	assert.Equal(t, ids[2], page.Items[0].ID, "newest first")
	assert.Equal(t, ids[1], page.Items[1].ID)
	assert.Equal(t, 1, page.Items[0].Score.Total)

	page, err = f.svc.ListByUser(ctx, f.user, "2")
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, ids[0], page.Items[0].ID)
}
