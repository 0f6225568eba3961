package exam

import (
	"time"

	"github.com/mind-engage/mindengage-tasks/internal/task"
)

// ShuffleFunc permutes n elements through swap, like rand.Shuffle.
type ShuffleFunc func(n int, swap func(i, j int))

// pick is a selected blank of either kind.
type pick struct {
	iw  *task.IncorrectWordBlank
	opt *task.OptionsBlank
}

// selectBlanks shuffles every blank of the task and keeps the first max of them.
func selectBlanks(b task.Blanks, max int, shuffle ShuffleFunc) []pick {
	all := make([]pick, 0, b.Len())
	for i := range b.IncorrectWords {
		all = append(all, pick{iw: &b.IncorrectWords[i]})
	}
	for i := range b.Options {
		all = append(all, pick{opt: &b.Options[i]})
	}
	shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })
	if max < 0 {
		max = 0
	}
	if len(all) > max {
		all = all[:max]
	}
	return all
}

func snapshotIncorrectWord(b task.IncorrectWordBlank, pos int, at time.Time) *IncorrectWordQuestion {
	return &IncorrectWordQuestion{
		questionBase:         questionBase{Position: pos, CreatedAt: at},
		CorrectWord:          b.CorrectWord,
		IncorrectWord:        b.IncorrectWord,
		IncorrectLetterIndex: b.IncorrectLetterIndex,
	}
}

// snapshotOptions copies the blank with its option slots in random order.
// Empty donor slots are dropped, so filled options always come first.
func snapshotOptions(b task.OptionsBlank, pos int, at time.Time, shuffle ShuffleFunc) *OptionsQuestion {
	donors := b.Options
	shuffle(len(donors), func(i, j int) { donors[i], donors[j] = donors[j], donors[i] })

	q := &OptionsQuestion{
		questionBase: questionBase{Position: pos, CreatedAt: at},
		Question:     b.Question,
	}
	slot := 0
	for _, d := range donors {
		if d.Text == "" {
			continue
		}
		q.Options[slot] = d
		slot++
	}
	return q
}
