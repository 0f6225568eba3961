package task

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

type SQLStore struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db, now: time.Now}
}

type taskRow struct {
	ID                int64  `db:"id"`
	Title             string `db:"title"`
	Description       string `db:"description"`
	CreatedAt         int64  `db:"created_at"`
	MaxQuestionsCount int    `db:"max_questions_count"`
}

func (r taskRow) task() Task {
	return Task{
		ID:                r.ID,
		Title:             r.Title,
		Description:       r.Description,
		CreatedAt:         time.Unix(0, r.CreatedAt),
		MaxQuestionsCount: r.MaxQuestionsCount,
	}
}

type incorrectWordRow struct {
	ID                   int64  `db:"id"`
	TaskID               int64  `db:"task_id"`
	CorrectWord          string `db:"correct_word"`
	IncorrectWord        string `db:"incorrect_word"`
	IncorrectLetterIndex int    `db:"incorrect_letter_index"`
}

func (r incorrectWordRow) blank() IncorrectWordBlank {
	return IncorrectWordBlank(r)
}

type optionsRow struct {
	ID            int64  `db:"id"`
	TaskID        int64  `db:"task_id"`
	Question      string `db:"question"`
	Option1       string `db:"option1"`
	Option1IsTrue bool   `db:"option1_is_true"`
	Option2       string `db:"option2"`
	Option2IsTrue bool   `db:"option2_is_true"`
	Option3       string `db:"option3"`
	Option3IsTrue bool   `db:"option3_is_true"`
}

func (r optionsRow) blank() OptionsBlank {
	return OptionsBlank{
		ID:       r.ID,
		TaskID:   r.TaskID,
		Question: r.Question,
		Options: [NumOptions]Option{
			{Text: r.Option1, Correct: r.Option1IsTrue},
			{Text: r.Option2, Correct: r.Option2IsTrue},
			{Text: r.Option3, Correct: r.Option3IsTrue},
		},
	}
}

const (
	taskCols          = `id, title, description, created_at, max_questions_count`
	incorrectWordCols = `id, task_id, correct_word, incorrect_word, incorrect_letter_index`
	optionsCols       = `id, task_id, question, option1, option1_is_true, option2, option2_is_true, option3, option3_is_true`
)

func (s *SQLStore) CountTasks(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM tasks`); err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return n, nil
}

func (s *SQLStore) ListTasks(ctx context.Context, limit, offset int) ([]Task, error) {
	var rows []taskRow
	q := s.db.Rebind(`SELECT ` + taskCols + ` FROM tasks ORDER BY id LIMIT ? OFFSET ?`)
	if err := s.db.SelectContext(ctx, &rows, q, limit, offset); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	out := make([]Task, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.task())
	}
	return out, nil
}

func (s *SQLStore) GetTask(ctx context.Context, id int64) (Task, error) {
	var r taskRow
	q := s.db.Rebind(`SELECT ` + taskCols + ` FROM tasks WHERE id=?`)
	if err := s.db.GetContext(ctx, &r, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Task{}, ErrNotFound
		}
		return Task{}, fmt.Errorf("get task %d: %w", id, err)
	}
	return r.task(), nil
}

func (s *SQLStore) CreateTask(ctx context.Context, t *Task) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = s.now()
	}
	q := s.db.Rebind(`INSERT INTO tasks (title, description, created_at, max_questions_count)
		VALUES (?,?,?,?) RETURNING id`)
	if err := s.db.QueryRowxContext(ctx, q, t.Title, t.Description, t.CreatedAt.UnixNano(), t.MaxQuestionsCount).Scan(&t.ID); err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (s *SQLStore) UpdateTask(ctx context.Context, t Task) error {
	q := s.db.Rebind(`UPDATE tasks SET title=?, description=?, max_questions_count=? WHERE id=?`)
	res, err := s.db.ExecContext(ctx, q, t.Title, t.Description, t.MaxQuestionsCount, t.ID)
	if err != nil {
		return fmt.Errorf("update task %d: %w", t.ID, err)
	}
	return expectOne(res)
}

func (s *SQLStore) DeleteTask(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM tasks WHERE id=?`), id)
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	return expectOne(res)
}

func (s *SQLStore) Blanks(ctx context.Context, taskID int64) (Blanks, error) {
	var iw []incorrectWordRow
	q := s.db.Rebind(`SELECT ` + incorrectWordCols + ` FROM incorrect_word_blanks WHERE task_id=? ORDER BY id`)
	if err := s.db.SelectContext(ctx, &iw, q, taskID); err != nil {
		return Blanks{}, fmt.Errorf("incorrect word blanks of task %d: %w", taskID, err)
	}
	var opt []optionsRow
	q = s.db.Rebind(`SELECT ` + optionsCols + ` FROM options_blanks WHERE task_id=? ORDER BY id`)
	if err := s.db.SelectContext(ctx, &opt, q, taskID); err != nil {
		return Blanks{}, fmt.Errorf("options blanks of task %d: %w", taskID, err)
	}

	out := Blanks{
		IncorrectWords: make([]IncorrectWordBlank, 0, len(iw)),
		Options:        make([]OptionsBlank, 0, len(opt)),
	}
	for _, r := range iw {
		out.IncorrectWords = append(out.IncorrectWords, r.blank())
	}
	for _, r := range opt {
		out.Options = append(out.Options, r.blank())
	}
	return out, nil
}

func (s *SQLStore) GetIncorrectWordBlank(ctx context.Context, id int64) (IncorrectWordBlank, error) {
	var r incorrectWordRow
	q := s.db.Rebind(`SELECT ` + incorrectWordCols + ` FROM incorrect_word_blanks WHERE id=?`)
	if err := s.db.GetContext(ctx, &r, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return IncorrectWordBlank{}, ErrNotFound
		}
		return IncorrectWordBlank{}, fmt.Errorf("get incorrect word blank %d: %w", id, err)
	}
	return r.blank(), nil
}

func (s *SQLStore) CreateIncorrectWordBlank(ctx context.Context, b *IncorrectWordBlank) error {
	q := s.db.Rebind(`INSERT INTO incorrect_word_blanks (task_id, correct_word, incorrect_word, incorrect_letter_index)
		VALUES (?,?,?,?) RETURNING id`)
	if err := s.db.QueryRowxContext(ctx, q, b.TaskID, b.CorrectWord, b.IncorrectWord, b.IncorrectLetterIndex).Scan(&b.ID); err != nil {
		return fmt.Errorf("create incorrect word blank: %w", err)
	}
	return nil
}

func (s *SQLStore) UpdateIncorrectWordBlank(ctx context.Context, b IncorrectWordBlank) error {
	q := s.db.Rebind(`UPDATE incorrect_word_blanks SET correct_word=?, incorrect_word=?, incorrect_letter_index=? WHERE id=?`)
	res, err := s.db.ExecContext(ctx, q, b.CorrectWord, b.IncorrectWord, b.IncorrectLetterIndex, b.ID)
	if err != nil {
		return fmt.Errorf("update incorrect word blank %d: %w", b.ID, err)
	}
	return expectOne(res)
}

func (s *SQLStore) DeleteIncorrectWordBlank(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM incorrect_word_blanks WHERE id=?`), id)
	if err != nil {
		return fmt.Errorf("delete incorrect word blank %d: %w", id, err)
	}
	return expectOne(res)
}

func (s *SQLStore) GetOptionsBlank(ctx context.Context, id int64) (OptionsBlank, error) {
	var r optionsRow
	q := s.db.Rebind(`SELECT ` + optionsCols + ` FROM options_blanks WHERE id=?`)
	if err := s.db.GetContext(ctx, &r, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return OptionsBlank{}, ErrNotFound
		}
		return OptionsBlank{}, fmt.Errorf("get options blank %d: %w", id, err)
	}
	return r.blank(), nil
}

func (s *SQLStore) CreateOptionsBlank(ctx context.Context, b *OptionsBlank) error {
	q := s.db.Rebind(`INSERT INTO options_blanks
		(task_id, question, option1, option1_is_true, option2, option2_is_true, option3, option3_is_true)
		VALUES (?,?,?,?,?,?,?,?) RETURNING id`)
	o := b.Options
	err := s.db.QueryRowxContext(ctx, q, b.TaskID, b.Question,
		o[0].Text, o[0].Correct, o[1].Text, o[1].Correct, o[2].Text, o[2].Correct,
	).Scan(&b.ID)
	if err != nil {
		return fmt.Errorf("create options blank: %w", err)
	}
	return nil
}

func (s *SQLStore) UpdateOptionsBlank(ctx context.Context, b OptionsBlank) error {
	q := s.db.Rebind(`UPDATE options_blanks SET question=?,
		option1=?, option1_is_true=?, option2=?, option2_is_true=?, option3=?, option3_is_true=?
		WHERE id=?`)
	o := b.Options
	res, err := s.db.ExecContext(ctx, q, b.Question,
		o[0].Text, o[0].Correct, o[1].Text, o[1].Correct, o[2].Text, o[2].Correct, b.ID)
	if err != nil {
		return fmt.Errorf("update options blank %d: %w", b.ID, err)
	}
	return expectOne(res)
}

func (s *SQLStore) DeleteOptionsBlank(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM options_blanks WHERE id=?`), id)
	if err != nil {
		return fmt.Errorf("delete options blank %d: %w", id, err)
	}
	return expectOne(res)
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
