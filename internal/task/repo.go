package task

import "context"

type Store interface {
	CountTasks(ctx context.Context) (int, error)
	ListTasks(ctx context.Context, limit, offset int) ([]Task, error)
	GetTask(ctx context.Context, id int64) (Task, error)
	CreateTask(ctx context.Context, t *Task) error
	UpdateTask(ctx context.Context, t Task) error
	DeleteTask(ctx context.Context, id int64) error

	Blanks(ctx context.Context, taskID int64) (Blanks, error)

	GetIncorrectWordBlank(ctx context.Context, id int64) (IncorrectWordBlank, error)
	CreateIncorrectWordBlank(ctx context.Context, b *IncorrectWordBlank) error
	UpdateIncorrectWordBlank(ctx context.Context, b IncorrectWordBlank) error
	DeleteIncorrectWordBlank(ctx context.Context, id int64) error

	GetOptionsBlank(ctx context.Context, id int64) (OptionsBlank, error)
	CreateOptionsBlank(ctx context.Context, b *OptionsBlank) error
	UpdateOptionsBlank(ctx context.Context, b OptionsBlank) error
	DeleteOptionsBlank(ctx context.Context, id int64) error
}
