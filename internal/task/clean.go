package task

import (
	"unicode/utf8"

	"github.com/mind-engage/mindengage-tasks/internal/validate"
)

func (t *Task) Clean() error {
	return validate.Struct(t)
}

// Clean validates the words and derives IncorrectLetterIndex from them.
func (b *IncorrectWordBlank) Clean() error {
	if err := validate.Struct(b); err != nil {
		return err
	}
	if b.CorrectWord == b.IncorrectWord {
		return validate.Errorf("", "word forms must differ")
	}
	b.IncorrectLetterIndex = FirstMismatch(b.CorrectWord, b.IncorrectWord)
	return nil
}

// FirstMismatch returns the 1-based character position at which a and b
// first differ, or 0 when they are equal. When one word is a prefix of the
// other, the position just past the shorter word is returned.
func FirstMismatch(a, b string) int {
	pos := 1
	for a != "" && b != "" {
		ra, na := utf8.DecodeRuneInString(a)
		rb, nb := utf8.DecodeRuneInString(b)
		if ra != rb {
			return pos
		}
		a, b = a[na:], b[nb:]
		pos++
	}
	if a == b {
		return 0
	}
	return pos
}

// Clean enforces that some option is correct and that no correct option is empty.
func (b *OptionsBlank) Clean() error {
	if err := validate.Struct(b); err != nil {
		return err
	}
	anyCorrect := false
	for _, o := range b.Options {
		anyCorrect = anyCorrect || o.Correct
	}
	if !anyCorrect {
		return validate.Errorf("options", "at least one option must be correct")
	}
	for _, o := range b.Options {
		if o.Correct && o.Text == "" {
			return validate.Errorf("options", "an empty option cannot be correct")
		}
	}
	return nil
}
