package exam

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/mind-engage/mindengage-tasks/internal/paginate"
	"github.com/mind-engage/mindengage-tasks/internal/task"
	"github.com/mind-engage/mindengage-tasks/internal/validate"
)

type Service struct {
	tasks   TaskReader
	store   Store
	log     *zap.Logger
	now     func() time.Time
	shuffle ShuffleFunc
	perPage int
}

type Option func(*Service)

func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }
func WithShuffle(f ShuffleFunc) Option      { return func(s *Service) { s.shuffle = f } }
func WithPerPage(n int) Option              { return func(s *Service) { s.perPage = n } }

func NewService(tasks TaskReader, store Store, log *zap.Logger, opts ...Option) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		tasks:   tasks,
		store:   store,
		log:     log.Named("exam"),
		now:     time.Now,
		shuffle: rand.Shuffle,
		perPage: paginate.DefaultPerPage,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// CreateByTask starts a new exam for userID built from a random sample of
// the task's blanks. The first question is nil when nothing was sampled.
func (s *Service) CreateByTask(ctx context.Context, taskID, userID int64) (Exam, Question, error) {
	t, err := s.tasks.GetTask(ctx, taskID)
	if err != nil {
		return Exam{}, nil, err
	}
	blanks, err := s.tasks.Blanks(ctx, taskID)
	if err != nil {
		return Exam{}, nil, err
	}

	now := s.now()
	e := Exam{
		UserID:    userID,
		TaskID:    &t.ID,
		TaskTitle: t.Title,
		CreatedAt: now,
		StartedAt: &now,
	}

	picks := selectBlanks(blanks, t.MaxQuestionsCount, s.shuffle)
	qs := make([]Question, 0, len(picks))
	for i, p := range picks {
		at := s.now()
		if p.opt != nil {
			qs = append(qs, snapshotOptions(*p.opt, i, at, s.shuffle))
		} else {
			qs = append(qs, snapshotIncorrectWord(*p.iw, i, at))
		}
	}
	if len(qs) == 0 {
		e.FinishedAt = &now
	}

	if err := s.store.CreateExam(ctx, &e, qs); err != nil {
		return Exam{}, nil, err
	}
	s.log.Info("exam created",
		zap.Int64("exam_id", e.ID),
		zap.Int64("task_id", taskID),
		zap.Int64("user_id", userID),
		zap.Int("questions", len(qs)),
		zap.Int("blanks", blanks.Len()),
	)

	if len(qs) == 0 {
		return e, nil, nil
	}
	return e, qs[0], nil
}

// GetExam returns the exam if it belongs to userID.
func (s *Service) GetExam(ctx context.Context, userID, examID int64) (Exam, error) {
	e, err := s.store.GetExam(ctx, examID)
	if err != nil {
		return Exam{}, err
	}
	if e.UserID != userID {
		return Exam{}, ErrNotFound
	}
	return e, nil
}

// Question loads a question of userID's exam by kind and id.
func (s *Service) Question(ctx context.Context, userID int64, ref Ref) (Question, error) {
	var (
		q   Question
		err error
	)
	switch ref.Kind {
	case task.KindIncorrectWord:
		q, err = s.store.GetIncorrectWordQuestion(ctx, ref.ID)
	case task.KindOptions:
		q, err = s.store.GetOptionsQuestion(ctx, ref.ID)
	default:
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if _, err := s.GetExam(ctx, userID, q.Exam()); err != nil {
		return nil, err
	}
	return q, nil
}

// Questions returns the exam's questions in the order they are asked.
func (s *Service) Questions(ctx context.Context, examID int64) ([]Question, error) {
	qs, err := s.store.Questions(ctx, examID)
	if err != nil {
		return nil, err
	}
	sortQuestions(qs)
	return qs, nil
}

// Neighbors returns the questions before and after q within its exam.
func (s *Service) Neighbors(ctx context.Context, q Question) (prev, next Question, err error) {
	qs, err := s.Questions(ctx, q.Exam())
	if err != nil {
		return nil, nil, err
	}
	prev, next = Neighbors(qs, q.Ref())
	return prev, next, nil
}

// AnswerIncorrectWord records the chosen letter (1-based) exactly once.
func (s *Service) AnswerIncorrectWord(ctx context.Context, userID, questionID int64, letterIndex int) (*IncorrectWordQuestion, error) {
	q, err := s.Question(ctx, userID, Ref{Kind: task.KindIncorrectWord, ID: questionID})
	if err != nil {
		return nil, err
	}
	iw := q.(*IncorrectWordQuestion)
	if iw.IsFinished() {
		return nil, ErrAlreadyAnswered
	}
	if n := utf8.RuneCountInString(iw.IncorrectWord); letterIndex < 1 || letterIndex > n {
		return nil, validate.Errorf("letter_index", "must be between 1 and %d", n)
	}

	now := s.now()
	ok, err := s.store.SetIncorrectWordAnswer(ctx, questionID, letterIndex, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAlreadyAnswered
	}
	iw.SelectedLetterIndex = &letterIndex
	iw.FinishedAt = &now

	s.afterAnswer(ctx, iw, now)
	return iw, nil
}

// AnswerOptions records the correctness flags the user chose for each option slot.
func (s *Service) AnswerOptions(ctx context.Context, userID, questionID int64, selected [task.NumOptions]bool) (*OptionsQuestion, error) {
	q, err := s.Question(ctx, userID, Ref{Kind: task.KindOptions, ID: questionID})
	if err != nil {
		return nil, err
	}
	oq := q.(*OptionsQuestion)
	if oq.IsFinished() {
		return nil, ErrAlreadyAnswered
	}

	now := s.now()
	ok, err := s.store.SetOptionsAnswer(ctx, questionID, selected, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAlreadyAnswered
	}
	for i := range selected {
		v := selected[i]
		oq.Selected[i] = &v
	}
	oq.FinishedAt = &now

	s.afterAnswer(ctx, oq, now)
	return oq, nil
}

func (s *Service) afterAnswer(ctx context.Context, q Question, now time.Time) {
	s.log.Debug("question answered",
		zap.Int64("exam_id", q.Exam()),
		zap.String("kind", string(q.Kind())),
		zap.Int64("question_id", q.Ref().ID),
		zap.Bool("correct", q.IsCorrect()),
	)
	// The answer is already stored; a failure here only delays the exam's finish stamp.
	finished, err := s.store.FinishExam(ctx, q.Exam(), now)
	if err != nil {
		s.log.Warn("finish exam", zap.Int64("exam_id", q.Exam()), zap.Error(err))
		return
	}
	if finished {
		s.log.Info("exam finished", zap.Int64("exam_id", q.Exam()))
	}
}

// Results returns the scored breakdown of one of userID's exams.
func (s *Service) Results(ctx context.Context, userID, examID int64) (Result, error) {
	e, err := s.GetExam(ctx, userID, examID)
	if err != nil {
		return Result{}, err
	}
	qs, err := s.Questions(ctx, examID)
	if err != nil {
		return Result{}, err
	}
	return Result{Exam: e, Questions: qs, Score: ScoreOf(qs)}, nil
}

// ListByUser pages through userID's exams, newest first, with their scores.
func (s *Service) ListByUser(ctx context.Context, userID int64, rawPage string) (paginate.Page[Summary], error) {
	total, err := s.store.CountExamsByUser(ctx, userID)
	if err != nil {
		return paginate.Page[Summary]{}, err
	}
	req := paginate.Resolve(rawPage, total, s.perPage)
	exams, err := s.store.ListExamsByUser(ctx, userID, req.Limit, req.Offset)
	if err != nil {
		return paginate.Page[Summary]{}, err
	}
	out := make([]Summary, 0, len(exams))
	for _, e := range exams {
		qs, err := s.store.Questions(ctx, e.ID)
		if err != nil {
			return paginate.Page[Summary]{}, err
		}
		out = append(out, Summary{Exam: e, Score: ScoreOf(qs)})
	}
	return paginate.New(out, req, total), nil
}

// IsNotFound reports whether err means a missing exam, question or task.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, task.ErrNotFound)
}
