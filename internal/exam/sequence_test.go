package exam

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-tasks/internal/task"
)

func iwq(id int64, pos int, at time.Time) *IncorrectWordQuestion {
	return &IncorrectWordQuestion{questionBase: questionBase{ID: id, Position: pos, CreatedAt: at}}
}

func optq(id int64, pos int, at time.Time) *OptionsQuestion {
	return &OptionsQuestion{questionBase: questionBase{ID: id, Position: pos, CreatedAt: at}}
}

func TestSortQuestions(t *testing.T) {
	t0 := time.Unix(1000, 0)
	qs := []Question{
		iwq(1, 2, t0),
		optq(1, 1, t0),
		iwq(2, 0, t0.Add(-time.Second)),
		optq(2, 3, t0.Add(time.Second)),
	}
	sortQuestions(qs)

	var got []Ref
	for _, q := range qs {
		got = append(got, q.Ref())
	}
	assert.Equal(t, []Ref{
		{Kind: task.KindIncorrectWord, ID: 2},
		{Kind: task.KindOptions, ID: 1},
		{Kind: task.KindIncorrectWord, ID: 1},
		{Kind: task.KindOptions, ID: 2},
	}, got)
}

func TestNeighbors(t *testing.T) {
	t0 := time.Unix(1000, 0)
	a, b, c := iwq(1, 0, t0), optq(1, 1, t0), iwq(2, 2, t0)
	qs := []Question{a, b, c}

	prev, next := Neighbors(qs, a.Ref())
	assert.Nil(t, prev)
	assert.Same(t, b, next)

	prev, next = Neighbors(qs, b.Ref())
	require.NotNil(t, prev, "second question links back to the first")
	assert.Same(t, a, prev)
	assert.Same(t, c, next)

	prev, next = Neighbors(qs, c.Ref())
	assert.Same(t, b, prev)
	assert.Nil(t, next)

	prev, next = Neighbors(qs, Ref{Kind: task.KindOptions, ID: 99})
	assert.Nil(t, prev)
	assert.Nil(t, next)

	prev, next = Neighbors([]Question{a}, a.Ref())
	assert.Nil(t, prev)
	assert.Nil(t, next)
}

func TestNeighbors_KindDisambiguatesIDs(t *testing.T) {
	t0 := time.Unix(1000, 0)
	a, b := iwq(7, 0, t0), optq(7, 1, t0)
	_, next := Neighbors([]Question{a, b}, Ref{Kind: task.KindIncorrectWord, ID: 7})
	assert.Same(t, b, next)
}
