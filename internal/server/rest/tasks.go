package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/logging"
	"github.com/dmitrijs2005/todokeeper/internal/server/models"
)

// TaskService is the task API used by the /todos routes.
type TaskService interface {
	Create(ctx context.Context, p models.Principal, n models.NewTask) (int64, error)
	Update(ctx context.Context, p models.Principal, id int64, u models.TaskUpdate) error
	Delete(ctx context.Context, p models.Principal, id int64) error
	GetByID(ctx context.Context, p models.Principal, id int64) (*models.Task, error)
	List(ctx context.Context, p models.Principal, page models.PageRequest) (*models.Page[models.Task], error)
	Search(ctx context.Context, p models.Principal, keyword string, page models.PageRequest) (*models.Page[models.Task], error)
	FilterByCompletion(ctx context.Context, p models.Principal, completed bool, page models.PageRequest) (*models.Page[models.Task], error)
	SetCompletion(ctx context.Context, p models.Principal, id int64, completed bool) error
}

type createTaskRequest struct {
	Title       string          `json:"title" validate:"required,notblank,max=100"`
	Description *string         `json:"description" validate:"omitempty,max=500"`
	DueDate     *time.Time      `json:"dueDate" validate:"omitempty,future"`
	Priority    models.Priority `json:"priority" validate:"required"`
}

// updateTaskRequest keys the update by id in the body. Absent fields are
// left alone; description and dueDate accept null to clear them.
type updateTaskRequest struct {
	ID          *int64                           `json:"id" validate:"required,gt=0"`
	Title       models.Optional[string]          `json:"title"`
	Description models.Optional[*string]         `json:"description"`
	DueDate     models.Optional[*time.Time]      `json:"dueDate"`
	Priority    models.Optional[models.Priority] `json:"priority"`
	Completed   models.Optional[bool]            `json:"completed"`
}

type taskHandler struct {
	tasks TaskService
	gate  *gate
	log   logging.Logger
}

func (h *taskHandler) create(w http.ResponseWriter, r *http.Request) {
	p := mustPrincipal(r)

	var req createTaskRequest
	if err := h.gate.decode(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	id, err := h.tasks.Create(r.Context(), p, models.NewTask{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Priority:    req.Priority,
	})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, IDResponse{ID: id})
}

func (h *taskHandler) update(w http.ResponseWriter, r *http.Request) {
	p := mustPrincipal(r)

	var req updateTaskRequest
	if err := h.gate.decode(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if err := h.checkUpdate(&req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	u := models.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Priority:    req.Priority,
		Completed:   req.Completed,
	}
	if err := h.tasks.Update(r.Context(), p, *req.ID, u); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// checkUpdate validates the fields that were sent. An empty title is
// allowed and overwrites the stored one.
func (h *taskHandler) checkUpdate(req *updateTaskRequest) error {
	verr := &common.ValidationError{}
	if req.Title.Null {
		verr.Add("title", "Title must not be null")
	} else if v, ok := req.Title.Get(); ok {
		h.gate.checkVar(verr, "title", v, "max=100")
	}
	if v, ok := req.Description.Get(); ok && v != nil {
		h.gate.checkVar(verr, "description", *v, "max=500")
	}
	if req.Completed.Null {
		verr.Add("completed", "Completed must not be null")
	}
	if verr.Empty() {
		return nil
	}
	return verr
}

func (h *taskHandler) get(w http.ResponseWriter, r *http.Request) {
	p := mustPrincipal(r)

	id, err := idParam(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	task, err := h.tasks.GetByID(r.Context(), p, id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *taskHandler) delete(w http.ResponseWriter, r *http.Request) {
	p := mustPrincipal(r)

	id, err := idParam(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if err := h.tasks.Delete(r.Context(), p, id); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *taskHandler) setCompletion(w http.ResponseWriter, r *http.Request) {
	p := mustPrincipal(r)

	id, err := idParam(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	completed, err := boolParam(r, "completed")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if err := h.tasks.SetCompletion(r.Context(), p, id, completed); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *taskHandler) list(w http.ResponseWriter, r *http.Request) {
	p := mustPrincipal(r)

	req, err := pageRequest(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	page, err := h.tasks.List(r.Context(), p, req)
	writePage(w, r, h.log, page, err)
}

func (h *taskHandler) search(w http.ResponseWriter, r *http.Request) {
	p := mustPrincipal(r)

	if !r.URL.Query().Has("keyword") {
		writeError(w, r, h.log, common.NewValidationError("keyword", "keyword is required"))
		return
	}
	req, err := pageRequest(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	page, err := h.tasks.Search(r.Context(), p, r.URL.Query().Get("keyword"), req)
	writePage(w, r, h.log, page, err)
}

func (h *taskHandler) filterByCompletion(w http.ResponseWriter, r *http.Request) {
	p := mustPrincipal(r)

	completed, err := boolParam(r, "completed")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	req, err := pageRequest(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	page, err := h.tasks.FilterByCompletion(r.Context(), p, completed, req)
	writePage(w, r, h.log, page, err)
}

// writePage answers 204 for an empty page.
func writePage(w http.ResponseWriter, r *http.Request, log logging.Logger, page *models.Page[models.Task], err error) {
	if err != nil {
		writeError(w, r, log, err)
		return
	}
	if page.Empty() {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// mustPrincipal is only called behind bearerAuth.
func mustPrincipal(r *http.Request) models.Principal {
	p, ok := PrincipalFromContext(r.Context())
	if !ok {
		panic("rest: principal missing from context")
	}
	return p
}
