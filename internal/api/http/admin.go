package http

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/mind-engage/mindengage-tasks/internal/task"
)

// Admin JSON API over the task catalog. Every route sits behind
// rbac.Require(rbac.PermTaskManage).

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "bad json"})
		return false
	}
	return true
}

// GET /admin/tasks?page=N
func ListTasksAPI(tasks *task.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := tasks.List(r.Context(), r.URL.Query().Get("page"))
		if err != nil {
			writeAPIError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, page)
	}
}

// POST /admin/tasks
func CreateTaskAPI(tasks *task.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t := task.Task{MaxQuestionsCount: 1}
		if !decode(w, r, &t) {
			return
		}
		t.ID = 0
		if err := tasks.Create(r.Context(), &t); err != nil {
			writeAPIError(w, log, err)
			return
		}
		writeJSON(w, http.StatusCreated, t)
	}
}

// GET /admin/tasks/{id}
func GetTaskAPI(tasks *task.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(r, "id")
		if !ok {
			writeJSON(w, http.StatusNotFound, apiError{Error: "not found"})
			return
		}
		d, err := tasks.Detail(r.Context(), id)
		if err != nil {
			writeAPIError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, d)
	}
}

// PUT /admin/tasks/{id}
func UpdateTaskAPI(tasks *task.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(r, "id")
		if !ok {
			writeJSON(w, http.StatusNotFound, apiError{Error: "not found"})
			return
		}
		var t task.Task
		if !decode(w, r, &t) {
			return
		}
		t.ID = id
		if err := tasks.Update(r.Context(), t); err != nil {
			writeAPIError(w, log, err)
			return
		}
		got, err := tasks.Get(r.Context(), id)
		if err != nil {
			writeAPIError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, got)
	}
}

// DELETE /admin/tasks/{id}
func DeleteTaskAPI(tasks *task.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(r, "id")
		if !ok {
			writeJSON(w, http.StatusNotFound, apiError{Error: "not found"})
			return
		}
		if err := tasks.Delete(r.Context(), id); err != nil {
			writeAPIError(w, log, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// POST /admin/tasks/{id}/incorrect-word-blanks
func CreateIncorrectWordBlankAPI(tasks *task.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		taskID, ok := idParam(r, "id")
		if !ok {
			writeJSON(w, http.StatusNotFound, apiError{Error: "not found"})
			return
		}
		var b task.IncorrectWordBlank
		if !decode(w, r, &b) {
			return
		}
		b.ID, b.TaskID = 0, taskID
		if err := tasks.AddIncorrectWordBlank(r.Context(), &b); err != nil {
			writeAPIError(w, log, err)
			return
		}
		writeJSON(w, http.StatusCreated, b)
	}
}

// PUT /admin/incorrect-word-blanks/{id}
func UpdateIncorrectWordBlankAPI(tasks *task.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(r, "id")
		if !ok {
			writeJSON(w, http.StatusNotFound, apiError{Error: "not found"})
			return
		}
		var b task.IncorrectWordBlank
		if !decode(w, r, &b) {
			return
		}
		b.ID = id
		if err := tasks.UpdateIncorrectWordBlank(r.Context(), &b); err != nil {
			writeAPIError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, b)
	}
}

// DELETE /admin/incorrect-word-blanks/{id}
func DeleteIncorrectWordBlankAPI(tasks *task.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(r, "id")
		if !ok {
			writeJSON(w, http.StatusNotFound, apiError{Error: "not found"})
			return
		}
		if err := tasks.DeleteIncorrectWordBlank(r.Context(), id); err != nil {
			writeAPIError(w, log, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// POST /admin/tasks/{id}/options-blanks
func CreateOptionsBlankAPI(tasks *task.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		taskID, ok := idParam(r, "id")
		if !ok {
			writeJSON(w, http.StatusNotFound, apiError{Error: "not found"})
			return
		}
		var b task.OptionsBlank
		if !decode(w, r, &b) {
			return
		}
		b.ID, b.TaskID = 0, taskID
		if err := tasks.AddOptionsBlank(r.Context(), &b); err != nil {
			writeAPIError(w, log, err)
			return
		}
		writeJSON(w, http.StatusCreated, b)
	}
}

// PUT /admin/options-blanks/{id}
func UpdateOptionsBlankAPI(tasks *task.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(r, "id")
		if !ok {
			writeJSON(w, http.StatusNotFound, apiError{Error: "not found"})
			return
		}
		var b task.OptionsBlank
		if !decode(w, r, &b) {
			return
		}
		b.ID = id
		if err := tasks.UpdateOptionsBlank(r.Context(), &b); err != nil {
			writeAPIError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, b)
	}
}

// DELETE /admin/options-blanks/{id}
func DeleteOptionsBlankAPI(tasks *task.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(r, "id")
		if !ok {
			writeJSON(w, http.StatusNotFound, apiError{Error: "not found"})
			return
		}
		if err := tasks.DeleteOptionsBlank(r.Context(), id); err != nil {
			writeAPIError(w, log, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
