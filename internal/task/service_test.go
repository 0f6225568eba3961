package task_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mind-engage/mindengage-tasks/internal/db/dbtest"
	"github.com/mind-engage/mindengage-tasks/internal/task"
	"github.com/mind-engage/mindengage-tasks/internal/validate"
)

func newService(t *testing.T) *task.Service {
	t.Helper()
	return task.NewService(task.NewSQLStore(dbtest.Open(t)), zap.NewNop(), 10)
}

func TestService_CreateAndDetail(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	tk := &task.Task{Title: "Spelling", Description: "Find typos", MaxQuestionsCount: 2}
	require.NoError(t, svc.Create(ctx, tk))
	require.NotZero(t, tk.ID)

	iw := &task.IncorrectWordBlank{TaskID: tk.ID, CorrectWord: "лиса", IncorrectWord: "лиза"}
	require.NoError(t, svc.AddIncorrectWordBlank(ctx, iw))
	assert.Equal(t, 3, iw.IncorrectLetterIndex)

	ob := &task.OptionsBlank{TaskID: tk.ID, Question: "Capital of France?", Options: [task.NumOptions]task.Option{
		{Text: "Paris", Correct: true}, {Text: "Lyon"},
	}}
	require.NoError(t, svc.AddOptionsBlank(ctx, ob))

	d, err := svc.Detail(ctx, tk.ID)
	require.NoError(t, err)
	assert.Equal(t, "Spelling", d.Title)
	assert.Equal(t, 2, d.MaxQuestionsCount)
	require.Len(t, d.Blanks.IncorrectWords, 1)
	require.Len(t, d.Blanks.Options, 1)
	assert.Equal(t, 3, d.Blanks.IncorrectWords[0].IncorrectLetterIndex)
	assert.Equal(t, task.Option{Text: "Paris", Correct: true}, d.Blanks.Options[0].Options[0])
	assert.Equal(t, task.Option{}, d.Blanks.Options[0].Options[2])
	assert.Equal(t, 2, d.Blanks.Len())
}

func TestService_InvalidBlanksAreNotStored(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	tk := &task.Task{Title: "t", Description: "d", MaxQuestionsCount: 1}
	require.NoError(t, svc.Create(ctx, tk))

	err := svc.AddIncorrectWordBlank(ctx, &task.IncorrectWordBlank{TaskID: tk.ID, CorrectWord: "лес", IncorrectWord: "лес"})
	assert.True(t, validate.Is(err))

	err = svc.AddOptionsBlank(ctx, &task.OptionsBlank{TaskID: tk.ID, Question: "q", Options: [task.NumOptions]task.Option{
		{Text: "a"}, {Text: "b"},
	}})
	assert.True(t, validate.Is(err))

	b, err := svc.Blanks(ctx, tk.ID)
	require.NoError(t, err)
	assert.Zero(t, b.Len())
}

func TestService_BlankForMissingTask(t *testing.T) {
	svc := newService(t)
	err := svc.AddIncorrectWordBlank(context.Background(), &task.IncorrectWordBlank{TaskID: 42, CorrectWord: "a", IncorrectWord: "b"})
	assert.ErrorIs(t, err, task.ErrNotFound)
}

func TestService_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	tk := &task.Task{Title: "t", Description: "d", MaxQuestionsCount: 1}
	require.NoError(t, svc.Create(ctx, tk))
	iw := &task.IncorrectWordBlank{TaskID: tk.ID, CorrectWord: "кот", IncorrectWord: "кат"}
	require.NoError(t, svc.AddIncorrectWordBlank(ctx, iw))

	upd := &task.IncorrectWordBlank{ID: iw.ID, CorrectWord: "собака", IncorrectWord: "сабака"}
	require.NoError(t, svc.UpdateIncorrectWordBlank(ctx, upd))
	assert.Equal(t, tk.ID, upd.TaskID)
	assert.Equal(t, 2, upd.IncorrectLetterIndex)

	tk.Title = "renamed"
	require.NoError(t, svc.Update(ctx, *tk))
	got, err := svc.Get(ctx, tk.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Title)

	require.NoError(t, svc.Delete(ctx, tk.ID))
	_, err = svc.Get(ctx, tk.ID)
	assert.ErrorIs(t, err, task.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteIncorrectWordBlank(ctx, iw.ID), task.ErrNotFound, "blanks cascade with their task")
}

func TestService_List(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	for i := 1; i <= 12; i++ {
		require.NoError(t, svc.Create(ctx, &task.Task{Title: fmt.Sprintf("task %02d", i), Description: "d", MaxQuestionsCount: 1}))
	}

	first, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, first.Items, 10)
	assert.Equal(t, "task 01", first.Items[0].Title)
	assert.True(t, first.HasNext())

	last, err := svc.List(ctx, "7")
	require.NoError(t, err)
	assert.Equal(t, 2, last.Number)
	require.Len(t, last.Items, 2)
	assert.Equal(t, "task 12", last.Items[1].Title)
}
