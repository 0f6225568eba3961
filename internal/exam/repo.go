package exam

import (
	"context"
	"time"

	"github.com/mind-engage/mindengage-tasks/internal/task"
)

type Store interface {
	// CreateExam inserts e and its questions atomically and assigns their ids.
	CreateExam(ctx context.Context, e *Exam, qs []Question) error
	GetExam(ctx context.Context, id int64) (Exam, error)
	CountExamsByUser(ctx context.Context, userID int64) (int, error)
	ListExamsByUser(ctx context.Context, userID int64, limit, offset int) ([]Exam, error)

	// Questions returns every snapshot of the exam, in no particular order.
	Questions(ctx context.Context, examID int64) ([]Question, error)
	GetIncorrectWordQuestion(ctx context.Context, id int64) (*IncorrectWordQuestion, error)
	GetOptionsQuestion(ctx context.Context, id int64) (*OptionsQuestion, error)

	// SetIncorrectWordAnswer and SetOptionsAnswer report false when the
	// question was already finished and nothing was written.
	SetIncorrectWordAnswer(ctx context.Context, id int64, letterIndex int, at time.Time) (bool, error)
	SetOptionsAnswer(ctx context.Context, id int64, selected [task.NumOptions]bool, at time.Time) (bool, error)

	// FinishExam stamps the exam once all of its questions are finished.
	FinishExam(ctx context.Context, id int64, at time.Time) (bool, error)
}

// TaskReader is the part of the task catalog exam assembly reads from.
type TaskReader interface {
	GetTask(ctx context.Context, id int64) (task.Task, error)
	Blanks(ctx context.Context, taskID int64) (task.Blanks, error)
}
