package exam

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/mind-engage/mindengage-tasks/internal/db"
	"github.com/mind-engage/mindengage-tasks/internal/task"
)

type SQLStore struct {
	db *sqlx.DB
}

func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}

type examRow struct {
	ID         int64         `db:"id"`
	UserID     int64         `db:"user_id"`
	TaskID     sql.NullInt64 `db:"task_id"`
	TaskTitle  string        `db:"task_title"`
	CreatedAt  int64         `db:"created_at"`
	StartedAt  sql.NullInt64 `db:"started_at"`
	FinishedAt sql.NullInt64 `db:"finished_at"`
}

func (r examRow) exam() Exam {
	e := Exam{
		ID:         r.ID,
		UserID:     r.UserID,
		TaskTitle:  r.TaskTitle,
		CreatedAt:  time.Unix(0, r.CreatedAt),
		StartedAt:  fromNullTime(r.StartedAt),
		FinishedAt: fromNullTime(r.FinishedAt),
	}
	if r.TaskID.Valid {
		id := r.TaskID.Int64
		e.TaskID = &id
	}
	return e
}

type incorrectWordRow struct {
	ID                   int64         `db:"id"`
	ExamID               int64         `db:"exam_id"`
	Position             int           `db:"position"`
	CreatedAt            int64         `db:"created_at"`
	CorrectWord          string        `db:"correct_word"`
	IncorrectWord        string        `db:"incorrect_word"`
	IncorrectLetterIndex int           `db:"incorrect_letter_index"`
	SelectedLetterIndex  sql.NullInt64 `db:"selected_letter_index"`
	FinishedAt           sql.NullInt64 `db:"finished_at"`
}

func (r incorrectWordRow) question() *IncorrectWordQuestion {
	q := &IncorrectWordQuestion{
		questionBase: questionBase{
			ID:         r.ID,
			ExamID:     r.ExamID,
			Position:   r.Position,
			CreatedAt:  time.Unix(0, r.CreatedAt),
			FinishedAt: fromNullTime(r.FinishedAt),
		},
		CorrectWord:          r.CorrectWord,
		IncorrectWord:        r.IncorrectWord,
		IncorrectLetterIndex: r.IncorrectLetterIndex,
	}
	if r.SelectedLetterIndex.Valid {
		v := int(r.SelectedLetterIndex.Int64)
		q.SelectedLetterIndex = &v
	}
	return q
}

type optionsRow struct {
	ID                    int64         `db:"id"`
	ExamID                int64         `db:"exam_id"`
	Position              int           `db:"position"`
	CreatedAt             int64         `db:"created_at"`
	Question              string        `db:"question"`
	Option1               string        `db:"option1"`
	Option1IsTrue         bool          `db:"option1_is_true"`
	Option2               string        `db:"option2"`
	Option2IsTrue         bool          `db:"option2_is_true"`
	Option3               string        `db:"option3"`
	Option3IsTrue         bool          `db:"option3_is_true"`
	SelectedOption1IsTrue sql.NullBool  `db:"selected_option1_is_true"`
	SelectedOption2IsTrue sql.NullBool  `db:"selected_option2_is_true"`
	SelectedOption3IsTrue sql.NullBool  `db:"selected_option3_is_true"`
	FinishedAt            sql.NullInt64 `db:"finished_at"`
}

func (r optionsRow) question() *OptionsQuestion {
	return &OptionsQuestion{
		questionBase: questionBase{
			ID:         r.ID,
			ExamID:     r.ExamID,
			Position:   r.Position,
			CreatedAt:  time.Unix(0, r.CreatedAt),
			FinishedAt: fromNullTime(r.FinishedAt),
		},
		Question: r.Question,
		Options: [task.NumOptions]task.Option{
			{Text: r.Option1, Correct: r.Option1IsTrue},
			{Text: r.Option2, Correct: r.Option2IsTrue},
			{Text: r.Option3, Correct: r.Option3IsTrue},
		},
		Selected: [task.NumOptions]*bool{
			fromNullBool(r.SelectedOption1IsTrue),
			fromNullBool(r.SelectedOption2IsTrue),
			fromNullBool(r.SelectedOption3IsTrue),
		},
	}
}

const (
	examCols          = `id, user_id, task_id, task_title, created_at, started_at, finished_at`
	incorrectWordCols = `id, exam_id, position, created_at, correct_word, incorrect_word, incorrect_letter_index,
		selected_letter_index, finished_at`
	optionsCols = `id, exam_id, position, created_at, question,
		option1, option1_is_true, option2, option2_is_true, option3, option3_is_true,
		selected_option1_is_true, selected_option2_is_true, selected_option3_is_true, finished_at`
)

func (s *SQLStore) CreateExam(ctx context.Context, e *Exam, qs []Question) error {
	return db.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		q := tx.Rebind(`INSERT INTO user_exams (user_id, task_id, task_title, created_at, started_at, finished_at)
			VALUES (?,?,?,?,?,?) RETURNING id`)
		err := tx.QueryRowxContext(ctx, q, e.UserID, toNullInt(e.TaskID), e.TaskTitle,
			e.CreatedAt.UnixNano(), toNullTime(e.StartedAt), toNullTime(e.FinishedAt),
		).Scan(&e.ID)
		if err != nil {
			return fmt.Errorf("insert exam: %w", err)
		}

		for _, question := range qs {
			b := question.base()
			b.ExamID = e.ID
			switch x := question.(type) {
			case *IncorrectWordQuestion:
				q := tx.Rebind(`INSERT INTO exam_incorrect_word_questions
					(exam_id, position, created_at, correct_word, incorrect_word, incorrect_letter_index)
					VALUES (?,?,?,?,?,?) RETURNING id`)
				err = tx.QueryRowxContext(ctx, q, e.ID, b.Position, b.CreatedAt.UnixNano(),
					x.CorrectWord, x.IncorrectWord, x.IncorrectLetterIndex,
				).Scan(&b.ID)
			case *OptionsQuestion:
				o := x.Options
				q := tx.Rebind(`INSERT INTO exam_options_questions
					(exam_id, position, created_at, question,
					 option1, option1_is_true, option2, option2_is_true, option3, option3_is_true)
					VALUES (?,?,?,?,?,?,?,?,?,?) RETURNING id`)
				err = tx.QueryRowxContext(ctx, q, e.ID, b.Position, b.CreatedAt.UnixNano(), x.Question,
					o[0].Text, o[0].Correct, o[1].Text, o[1].Correct, o[2].Text, o[2].Correct,
				).Scan(&b.ID)
			default:
				err = fmt.Errorf("unknown question type %T", question)
			}
			if err != nil {
				return fmt.Errorf("insert question %d: %w", b.Position, err)
			}
		}
		return nil
	})
}

func (s *SQLStore) GetExam(ctx context.Context, id int64) (Exam, error) {
	var r examRow
	q := s.db.Rebind(`SELECT ` + examCols + ` FROM user_exams WHERE id=?`)
	if err := s.db.GetContext(ctx, &r, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Exam{}, ErrNotFound
		}
		return Exam{}, fmt.Errorf("get exam %d: %w", id, err)
	}
	return r.exam(), nil
}

func (s *SQLStore) CountExamsByUser(ctx context.Context, userID int64) (int, error) {
	var n int
	q := s.db.Rebind(`SELECT COUNT(*) FROM user_exams WHERE user_id=?`)
	if err := s.db.GetContext(ctx, &n, q, userID); err != nil {
		return 0, fmt.Errorf("count exams: %w", err)
	}
	return n, nil
}

func (s *SQLStore) ListExamsByUser(ctx context.Context, userID int64, limit, offset int) ([]Exam, error) {
	var rows []examRow
	q := s.db.Rebind(`SELECT ` + examCols + ` FROM user_exams WHERE user_id=?
		ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`)
	if err := s.db.SelectContext(ctx, &rows, q, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("list exams: %w", err)
	}
	out := make([]Exam, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.exam())
	}
	return out, nil
}

func (s *SQLStore) Questions(ctx context.Context, examID int64) ([]Question, error) {
	var iw []incorrectWordRow
	q := s.db.Rebind(`SELECT ` + incorrectWordCols + ` FROM exam_incorrect_word_questions WHERE exam_id=?`)
	if err := s.db.SelectContext(ctx, &iw, q, examID); err != nil {
		return nil, fmt.Errorf("incorrect word questions of exam %d: %w", examID, err)
	}
	var opt []optionsRow
	q = s.db.Rebind(`SELECT ` + optionsCols + ` FROM exam_options_questions WHERE exam_id=?`)
	if err := s.db.SelectContext(ctx, &opt, q, examID); err != nil {
		return nil, fmt.Errorf("options questions of exam %d: %w", examID, err)
	}

	out := make([]Question, 0, len(iw)+len(opt))
	for _, r := range iw {
		out = append(out, r.question())
	}
	for _, r := range opt {
		out = append(out, r.question())
	}
	return out, nil
}

func (s *SQLStore) GetIncorrectWordQuestion(ctx context.Context, id int64) (*IncorrectWordQuestion, error) {
	var r incorrectWordRow
	q := s.db.Rebind(`SELECT ` + incorrectWordCols + ` FROM exam_incorrect_word_questions WHERE id=?`)
	if err := s.db.GetContext(ctx, &r, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get incorrect word question %d: %w", id, err)
	}
	return r.question(), nil
}

func (s *SQLStore) GetOptionsQuestion(ctx context.Context, id int64) (*OptionsQuestion, error) {
	var r optionsRow
	q := s.db.Rebind(`SELECT ` + optionsCols + ` FROM exam_options_questions WHERE id=?`)
	if err := s.db.GetContext(ctx, &r, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get options question %d: %w", id, err)
	}
	return r.question(), nil
}

func (s *SQLStore) SetIncorrectWordAnswer(ctx context.Context, id int64, letterIndex int, at time.Time) (bool, error) {
	q := s.db.Rebind(`UPDATE exam_incorrect_word_questions SET selected_letter_index=?, finished_at=?
		WHERE id=? AND finished_at IS NULL`)
	res, err := s.db.ExecContext(ctx, q, letterIndex, at.UnixNano(), id)
	if err != nil {
		return false, fmt.Errorf("answer incorrect word question %d: %w", id, err)
	}
	return affected(res)
}

func (s *SQLStore) SetOptionsAnswer(ctx context.Context, id int64, sel [task.NumOptions]bool, at time.Time) (bool, error) {
	q := s.db.Rebind(`UPDATE exam_options_questions
		SET selected_option1_is_true=?, selected_option2_is_true=?, selected_option3_is_true=?, finished_at=?
		WHERE id=? AND finished_at IS NULL`)
	res, err := s.db.ExecContext(ctx, q, sel[0], sel[1], sel[2], at.UnixNano(), id)
	if err != nil {
		return false, fmt.Errorf("answer options question %d: %w", id, err)
	}
	return affected(res)
}

func (s *SQLStore) FinishExam(ctx context.Context, id int64, at time.Time) (bool, error) {
	q := s.db.Rebind(`UPDATE user_exams SET finished_at=?
		WHERE id=? AND finished_at IS NULL
		  AND NOT EXISTS (SELECT 1 FROM exam_incorrect_word_questions WHERE exam_id=? AND finished_at IS NULL)
		  AND NOT EXISTS (SELECT 1 FROM exam_options_questions WHERE exam_id=? AND finished_at IS NULL)`)
	res, err := s.db.ExecContext(ctx, q, at.UnixNano(), id, id, id)
	if err != nil {
		return false, fmt.Errorf("finish exam %d: %w", id, err)
	}
	return affected(res)
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func fromNullTime(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.Unix(0, v.Int64)
	return &t
}

func toNullTime(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixNano(), Valid: true}
}

func toNullInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func fromNullBool(v sql.NullBool) *bool {
	if !v.Valid {
		return nil
	}
	b := v.Bool
	return &b
}
