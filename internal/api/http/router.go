package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/mind-engage/mindengage-tasks/internal/auth"
	"github.com/mind-engage/mindengage-tasks/internal/exam"
	"github.com/mind-engage/mindengage-tasks/internal/logging"
	"github.com/mind-engage/mindengage-tasks/internal/rbac"
	"github.com/mind-engage/mindengage-tasks/internal/task"
	"github.com/mind-engage/mindengage-tasks/internal/web"
)

// Pinger reports database readiness.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Deps struct {
	DB    Pinger
	Tasks *task.Service
	Exams *exam.Service
	Users *auth.Users
	Auth  *auth.AuthService
	Views *web.Renderer
	Log   *zap.Logger

	CookieSecure   bool
	CORSOrigins    []string
	ReportFontPath string
}

func NewRouter(d Deps) http.Handler {
	p := Pages{Views: d.Views, Log: d.Log.Named("pages")}
	apiLog := d.Log.Named("admin")

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, logging.Requests(d.Log), middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := d.DB.PingContext(ctx); err != nil {
			http.Error(w, "db unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	r.Post("/auth/token", auth.TokenHandler(d.Auth, d.Users, d.Log.Named("auth")))

	r.Group(func(r chi.Router) {
		r.Use(auth.Authenticate(d.Auth, d.Users, d.Log.Named("auth")))
		r.NotFound(func(w http.ResponseWriter, r *http.Request) { d.Views.NotFound(w, viewer(r)) })

		home := HomeHandler(p, d.Auth, d.Users, d.CookieSecure)
		r.Get("/", home)
		r.Post("/", home)
		logout := LogoutHandler(d.CookieSecure)
		r.Get("/logout/", logout)
		r.Post("/logout/", logout)

		// Browser pages
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireUser("/"))

			r.With(rbac.Require(rbac.PermTaskView)).Get("/tasks/", TaskListHandler(p, d.Tasks))
			r.With(rbac.Require(rbac.PermTaskView)).Get("/task/{id:[0-9]+}/", TaskDetailHandler(p, d.Tasks))

			r.Route("/exam", func(r chi.Router) {
				run := ExamRunHandler(p, d.Exams)
				r.With(rbac.Require(rbac.PermExamRun)).Get("/run/{taskID:[0-9]+}/", run)
				r.With(rbac.Require(rbac.PermExamRun)).Post("/run/{taskID:[0-9]+}/", run)

				question := ExamQuestionHandler(p, d.Exams)
				r.With(rbac.RequireAny(rbac.PermExamAnswer, rbac.PermExamViewOwn)).Get("/question/{kind}/{id:[0-9]+}/", question)
				r.With(rbac.Require(rbac.PermExamAnswer)).Post("/question/{kind}/{id:[0-9]+}/", question)

				answer := IncorrectWordAnswerHandler(p, d.Exams)
				r.With(rbac.Require(rbac.PermExamAnswer)).Get("/incorrect-word-answer/{id:[0-9]+}/{letterIndex:[0-9]+}/", answer)
				r.With(rbac.Require(rbac.PermExamAnswer)).Post("/incorrect-word-answer/{id:[0-9]+}/{letterIndex:[0-9]+}/", answer)

				r.Group(func(r chi.Router) {
					r.Use(rbac.Require(rbac.PermExamViewOwn))
					r.Get("/results/", ExamListHandler(p, d.Exams))
					r.Get("/results/{examID:[0-9]+}/", ExamResultsHandler(p, d.Exams))
					r.Get("/results/{examID:[0-9]+}/pdf", ExamPDFHandler(p, d.Exams, d.ReportFontPath))
				})
			})
		})

		// Admin JSON API
		r.Route("/admin", func(r chi.Router) {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins:   d.CORSOrigins,
				AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
				AllowedHeaders:   []string{"Authorization", "Content-Type"},
				ExposedHeaders:   []string{"Content-Length"},
				AllowCredentials: true,
				MaxAge:           300,
			}))
			r.Use(auth.RequireAPIUser, rbac.Require(rbac.PermTaskManage))

			r.Get("/tasks", ListTasksAPI(d.Tasks, apiLog))
			r.Post("/tasks", CreateTaskAPI(d.Tasks, apiLog))
			r.Get("/tasks/{id:[0-9]+}", GetTaskAPI(d.Tasks, apiLog))
			r.Put("/tasks/{id:[0-9]+}", UpdateTaskAPI(d.Tasks, apiLog))
			r.Delete("/tasks/{id:[0-9]+}", DeleteTaskAPI(d.Tasks, apiLog))

			r.Post("/tasks/{id:[0-9]+}/incorrect-word-blanks", CreateIncorrectWordBlankAPI(d.Tasks, apiLog))
			r.Put("/incorrect-word-blanks/{id:[0-9]+}", UpdateIncorrectWordBlankAPI(d.Tasks, apiLog))
			r.Delete("/incorrect-word-blanks/{id:[0-9]+}", DeleteIncorrectWordBlankAPI(d.Tasks, apiLog))

			r.Post("/tasks/{id:[0-9]+}/options-blanks", CreateOptionsBlankAPI(d.Tasks, apiLog))
			r.Put("/options-blanks/{id:[0-9]+}", UpdateOptionsBlankAPI(d.Tasks, apiLog))
			r.Delete("/options-blanks/{id:[0-9]+}", DeleteOptionsBlankAPI(d.Tasks, apiLog))
		})
	})

	return r
}
