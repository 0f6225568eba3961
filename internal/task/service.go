package task

import (
	"context"

	"go.uber.org/zap"

	"github.com/mind-engage/mindengage-tasks/internal/paginate"
)

// Service is the authoring side of the catalog: every write is validated first.
type Service struct {
	store   Store
	log     *zap.Logger
	perPage int
}

func NewService(store Store, log *zap.Logger, perPage int) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if perPage <= 0 {
		perPage = paginate.DefaultPerPage
	}
	return &Service{store: store, log: log.Named("task"), perPage: perPage}
}

// List returns the page named by rawPage (see paginate.Resolve), ordered by id.
func (s *Service) List(ctx context.Context, rawPage string) (paginate.Page[Task], error) {
	total, err := s.store.CountTasks(ctx)
	if err != nil {
		return paginate.Page[Task]{}, err
	}
	req := paginate.Resolve(rawPage, total, s.perPage)
	items, err := s.store.ListTasks(ctx, req.Limit, req.Offset)
	if err != nil {
		return paginate.Page[Task]{}, err
	}
	return paginate.New(items, req, total), nil
}

func (s *Service) Get(ctx context.Context, id int64) (Task, error) {
	return s.store.GetTask(ctx, id)
}

func (s *Service) Detail(ctx context.Context, id int64) (TaskDetail, error) {
	t, err := s.store.GetTask(ctx, id)
	if err != nil {
		return TaskDetail{}, err
	}
	b, err := s.store.Blanks(ctx, id)
	if err != nil {
		return TaskDetail{}, err
	}
	return TaskDetail{Task: t, Blanks: b}, nil
}

func (s *Service) Blanks(ctx context.Context, taskID int64) (Blanks, error) {
	return s.store.Blanks(ctx, taskID)
}

func (s *Service) Create(ctx context.Context, t *Task) error {
	if err := t.Clean(); err != nil {
		return err
	}
	if err := s.store.CreateTask(ctx, t); err != nil {
		return err
	}
	s.log.Info("task created", zap.Int64("task_id", t.ID), zap.String("title", t.Title))
	return nil
}

func (s *Service) Update(ctx context.Context, t Task) error {
	if err := t.Clean(); err != nil {
		return err
	}
	return s.store.UpdateTask(ctx, t)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteTask(ctx, id); err != nil {
		return err
	}
	s.log.Info("task deleted", zap.Int64("task_id", id))
	return nil
}

func (s *Service) AddIncorrectWordBlank(ctx context.Context, b *IncorrectWordBlank) error {
	if _, err := s.store.GetTask(ctx, b.TaskID); err != nil {
		return err
	}
	if err := b.Clean(); err != nil {
		return err
	}
	return s.store.CreateIncorrectWordBlank(ctx, b)
}

// UpdateIncorrectWordBlank rewrites the words of an existing blank; its task is kept.
func (s *Service) UpdateIncorrectWordBlank(ctx context.Context, b *IncorrectWordBlank) error {
	cur, err := s.store.GetIncorrectWordBlank(ctx, b.ID)
	if err != nil {
		return err
	}
	b.TaskID = cur.TaskID
	if err := b.Clean(); err != nil {
		return err
	}
	return s.store.UpdateIncorrectWordBlank(ctx, *b)
}

func (s *Service) DeleteIncorrectWordBlank(ctx context.Context, id int64) error {
	return s.store.DeleteIncorrectWordBlank(ctx, id)
}

func (s *Service) AddOptionsBlank(ctx context.Context, b *OptionsBlank) error {
	if _, err := s.store.GetTask(ctx, b.TaskID); err != nil {
		return err
	}
	if err := b.Clean(); err != nil {
		return err
	}
	return s.store.CreateOptionsBlank(ctx, b)
}

func (s *Service) UpdateOptionsBlank(ctx context.Context, b *OptionsBlank) error {
	cur, err := s.store.GetOptionsBlank(ctx, b.ID)
	if err != nil {
		return err
	}
	b.TaskID = cur.TaskID
	if err := b.Clean(); err != nil {
		return err
	}
	return s.store.UpdateOptionsBlank(ctx, *b)
}

func (s *Service) DeleteOptionsBlank(ctx context.Context, id int64) error {
	return s.store.DeleteOptionsBlank(ctx, id)
}
