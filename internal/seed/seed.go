// Package seed imports tasks and their blanks from YAML.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/mind-engage/mindengage-tasks/internal/task"
)

type Doc struct {
	Tasks []TaskDoc `yaml:"tasks"`
}

type TaskDoc struct {
	Title             string       `yaml:"title"`
	Description       string       `yaml:"description"`
	MaxQuestionsCount *int         `yaml:"max_questions_count"` // default 1
	IncorrectWords    []WordDoc    `yaml:"incorrect_words"`
	Options           []OptionsDoc `yaml:"options"`
}

type WordDoc struct {
	Correct   string `yaml:"correct"`
	Incorrect string `yaml:"incorrect"`
}

type OptionsDoc struct {
	Question string        `yaml:"question"`
	Options  []task.Option `yaml:"options"`
}

// Load decodes a seed document; unknown keys are rejected.
func Load(r io.Reader) (Doc, error) {
	var d Doc
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil {
		if errors.Is(err, io.EOF) {
			return Doc{}, nil
		}
		return Doc{}, fmt.Errorf("decode seed: %w", err)
	}
	for i, t := range d.Tasks {
		for j, o := range t.Options {
			if len(o.Options) > task.NumOptions {
				return Doc{}, fmt.Errorf("tasks[%d].options[%d]: at most %d options allowed", i, j, task.NumOptions)
			}
		}
	}
	return d, nil
}

// Catalog is the subset of task.Service used for importing.
type Catalog interface {
	Create(ctx context.Context, t *task.Task) error
	AddIncorrectWordBlank(ctx context.Context, b *task.IncorrectWordBlank) error
	AddOptionsBlank(ctx context.Context, b *task.OptionsBlank) error
}

type Stats struct {
	Tasks  int
	Blanks int
}

// Apply creates every task and blank in d through c, stopping at the first
// failure. Items created before the failure are kept.
func Apply(ctx context.Context, c Catalog, d Doc) (Stats, error) {
	var st Stats
	for i, td := range d.Tasks {
		t := task.Task{Title: td.Title, Description: td.Description, MaxQuestionsCount: 1}
		if td.MaxQuestionsCount != nil {
			t.MaxQuestionsCount = *td.MaxQuestionsCount
		}
		if err := c.Create(ctx, &t); err != nil {
			return st, fmt.Errorf("tasks[%d] %q: %w", i, td.Title, err)
		}
		st.Tasks++

		for j, w := range td.IncorrectWords {
			b := task.IncorrectWordBlank{TaskID: t.ID, CorrectWord: w.Correct, IncorrectWord: w.Incorrect}
			if err := c.AddIncorrectWordBlank(ctx, &b); err != nil {
				return st, fmt.Errorf("tasks[%d].incorrect_words[%d]: %w", i, j, err)
			}
			st.Blanks++
		}
		for j, o := range td.Options {
			b := task.OptionsBlank{TaskID: t.ID, Question: o.Question}
			copy(b.Options[:], o.Options)
			if err := c.AddOptionsBlank(ctx, &b); err != nil {
				return st, fmt.Errorf("tasks[%d].options[%d]: %w", i, j, err)
			}
			st.Blanks++
		}
	}
	return st, nil
}
