package http

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mind-engage/mindengage-tasks/internal/auth"
	"github.com/mind-engage/mindengage-tasks/internal/exam"
	"github.com/mind-engage/mindengage-tasks/internal/report"
	"github.com/mind-engage/mindengage-tasks/internal/task"
	"github.com/mind-engage/mindengage-tasks/internal/validate"
)

func questionURL(ref exam.Ref) string {
	return fmt.Sprintf("/exam/question/%s/%d/", ref.Kind, ref.ID)
}

func resultsURL(examID int64) string {
	return fmt.Sprintf("/exam/results/%d/", examID)
}

type loginForm struct {
	Username string
}

// GET/POST /
func HomeHandler(p Pages, a *auth.AuthService, users *auth.Users, cookieSecure bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			if _, ok := auth.UserFromContext(r.Context()); ok {
				http.Redirect(w, r, "/tasks/", http.StatusSeeOther)
				return
			}
			p.render(w, r, http.StatusOK, "home.html", "Sign in", loginForm{})
			return
		}

		form := loginForm{Username: r.PostFormValue("username")}
		u, err := users.Authenticate(r.Context(), form.Username, r.PostFormValue("password"))
		if errors.Is(err, auth.ErrInvalidCredentials) {
			p.renderError(w, r, http.StatusUnauthorized, "home.html", "Sign in", form, "Please enter a correct username and password.")
			return
		}
		if err != nil {
			p.fail(w, r, err)
			return
		}
		tok, err := a.IssueJWT(u)
		if err != nil {
			p.fail(w, r, err)
			return
		}
		auth.SetSessionCookie(w, tok, a.TTL(), cookieSecure)
		p.Log.Info("login", zap.Int64("user_id", u.ID))
		http.Redirect(w, r, "/tasks/", http.StatusSeeOther)
	}
}

// GET/POST /logout/
func LogoutHandler(cookieSecure bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth.ClearSessionCookie(w, cookieSecure)
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// GET /tasks/?page=N
func TaskListHandler(p Pages, tasks *task.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := tasks.List(r.Context(), r.URL.Query().Get("page"))
		if err != nil {
			p.fail(w, r, err)
			return
		}
		p.render(w, r, http.StatusOK, "task_list.html", "Tasks", page)
	}
}

// GET /task/{id}/
func TaskDetailHandler(p Pages, tasks *task.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(r, "id")
		if !ok {
			p.Views.NotFound(w, viewer(r))
			return
		}
		d, err := tasks.Detail(r.Context(), id)
		if err != nil {
			p.fail(w, r, err)
			return
		}
		p.render(w, r, http.StatusOK, "task_detail.html", d.Title, d)
	}
}

// GET/POST /exam/run/{taskID}/
func ExamRunHandler(p Pages, exams *exam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		taskID, ok := idParam(r, "taskID")
		if !ok {
			p.Views.NotFound(w, viewer(r))
			return
		}
		e, first, err := exams.CreateByTask(r.Context(), taskID, currentUser(r).ID)
		if err != nil {
			p.fail(w, r, err)
			return
		}
		if first == nil {
			http.Redirect(w, r, resultsURL(e.ID), http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, questionURL(first.Ref()), http.StatusSeeOther)
	}
}

type questionView struct {
	Exam       exam.Exam
	Number     int
	Total      int
	Word       *exam.IncorrectWordQuestion
	Options    *exam.OptionsQuestion
	Picked     int // selected letter, 0 when unanswered
	PrevURL    string
	NextURL    string
	ResultsURL string
}

func (p Pages) renderQuestion(w http.ResponseWriter, r *http.Request, exams *exam.Service, status int, q exam.Question, msg string) {
	userID := currentUser(r).ID
	e, err := exams.GetExam(r.Context(), userID, q.Exam())
	if err != nil {
		p.fail(w, r, err)
		return
	}
	qs, err := exams.Questions(r.Context(), e.ID)
	if err != nil {
		p.fail(w, r, err)
		return
	}
	v := questionView{Exam: e, Total: len(qs), ResultsURL: resultsURL(e.ID)}
	for i, other := range qs {
		if other.Ref() == q.Ref() {
			v.Number = i + 1
		}
	}
	prev, next := exam.Neighbors(qs, q.Ref())
	if prev != nil {
		v.PrevURL = questionURL(prev.Ref())
	}
	if next != nil {
		v.NextURL = questionURL(next.Ref())
	}
	switch q := q.(type) {
	case *exam.IncorrectWordQuestion:
		v.Word = q
		if q.SelectedLetterIndex != nil {
			v.Picked = *q.SelectedLetterIndex
		}
	case *exam.OptionsQuestion:
		v.Options = q
	}
	p.renderError(w, r, status, "exam_question.html", e.TaskTitle, v, msg)
}

// afterAnswer sends the user to the next question, or to the results once
// there is none.
func afterAnswer(w http.ResponseWriter, r *http.Request, exams *exam.Service, q exam.Question) error {
	_, next, err := exams.Neighbors(r.Context(), q)
	if err != nil {
		return err
	}
	if next != nil {
		http.Redirect(w, r, questionURL(next.Ref()), http.StatusSeeOther)
		return nil
	}
	http.Redirect(w, r, resultsURL(q.Exam()), http.StatusSeeOther)
	return nil
}

// GET/POST /exam/question/{kind}/{id}/
func ExamQuestionHandler(p Pages, exams *exam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind := task.Kind(chi.URLParam(r, "kind"))
		id, ok := idParam(r, "id")
		if !kind.Valid() || !ok {
			p.Views.NotFound(w, viewer(r))
			return
		}
		userID := currentUser(r).ID
		q, err := exams.Question(r.Context(), userID, exam.Ref{Kind: kind, ID: id})
		if err != nil {
			p.fail(w, r, err)
			return
		}

		if r.Method != http.MethodPost {
			p.renderQuestion(w, r, exams, http.StatusOK, q, "")
			return
		}
		if kind != task.KindOptions {
			w.Header().Set("Allow", "GET")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		var selected [task.NumOptions]bool
		for i := range selected {
			selected[i] = r.PostForm.Get("option_"+strconv.Itoa(i+1)) != ""
		}
		answered, err := exams.AnswerOptions(r.Context(), userID, id, selected)
		if validate.Is(err) {
			p.renderQuestion(w, r, exams, http.StatusUnprocessableEntity, q, err.Error())
			return
		}
		if err != nil {
			p.fail(w, r, err)
			return
		}
		if err := afterAnswer(w, r, exams, answered); err != nil {
			p.fail(w, r, err)
		}
	}
}

// GET/POST /exam/incorrect-word-answer/{id}/{letterIndex}/
func IncorrectWordAnswerHandler(p Pages, exams *exam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(r, "id")
		letter, err := strconv.Atoi(chi.URLParam(r, "letterIndex"))
		if !ok || err != nil {
			p.Views.NotFound(w, viewer(r))
			return
		}
		userID := currentUser(r).ID
		answered, err := exams.AnswerIncorrectWord(r.Context(), userID, id, letter)
		if validate.Is(err) {
			q, qerr := exams.Question(r.Context(), userID, exam.Ref{Kind: task.KindIncorrectWord, ID: id})
			if qerr != nil {
				p.fail(w, r, qerr)
				return
			}
			p.renderQuestion(w, r, exams, http.StatusUnprocessableEntity, q, err.Error())
			return
		}
		if err != nil {
			p.fail(w, r, err)
			return
		}
		if err := afterAnswer(w, r, exams, answered); err != nil {
			p.fail(w, r, err)
		}
	}
}

// GET /exam/results/?page=N
func ExamListHandler(p Pages, exams *exam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := exams.ListByUser(r.Context(), currentUser(r).ID, r.URL.Query().Get("page"))
		if err != nil {
			p.fail(w, r, err)
			return
		}
		p.render(w, r, http.StatusOK, "exam_list.html", "My results", page)
	}
}

type resultsView struct {
	Exam  exam.Exam
	Score exam.Score
	Rows  []report.Row
}

// GET /exam/results/{examID}/
func ExamResultsHandler(p Pages, exams *exam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		examID, ok := idParam(r, "examID")
		if !ok {
			p.Views.NotFound(w, viewer(r))
			return
		}
		res, err := exams.Results(r.Context(), currentUser(r).ID, examID)
		if err != nil {
			p.fail(w, r, err)
			return
		}
		p.render(w, r, http.StatusOK, "exam_results.html", res.Exam.TaskTitle, resultsView{
			Exam:  res.Exam,
			Score: res.Score,
			Rows:  report.Rows(res.Questions),
		})
	}
}

// GET /exam/results/{examID}/pdf
func ExamPDFHandler(p Pages, exams *exam.Service, fontPath string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		examID, ok := idParam(r, "examID")
		if !ok {
			p.Views.NotFound(w, viewer(r))
			return
		}
		u := currentUser(r)
		res, err := exams.Results(r.Context(), u.ID, examID)
		if err != nil {
			p.fail(w, r, err)
			return
		}
		var buf bytes.Buffer
		if err := report.ExamPDF(&buf, report.FromResult(res, u.Username), fontPath); err != nil {
			p.fail(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="exam-%d-%s.pdf"`, examID, time.Now().Format("20060102")))
		_, _ = buf.WriteTo(w)
	}
}
