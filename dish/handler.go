package dish

import (
	"errors"
	"net/http"

	"github.com/drblury/dishweaver/responder"
)

// Repository is the storage contract the handlers depend on. *Store
// satisfies it.
type Repository interface {
	Append(d Dish) Dish
	List() []Dish
	Find(id int64) (Dish, error)
	Update(id int64, d Dish) (Dish, error)
	Delete(id int64) error
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// Handler serves the CRUD endpoints for dishes.
type Handler struct {
	*responder.Responder
	repo Repository
}

// NewHandler returns a Handler backed by repo.
func NewHandler(repo Repository, opts ...HandlerOption) *Handler {
	if repo == nil {
		panic("dish: repository cannot be nil")
	}
	h := &Handler{
		Responder: responder.NewResponder(),
		repo:      repo,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// WithResponder replaces the responder used for payloads and problems.
func WithResponder(r *responder.Responder) HandlerOption {
	return func(h *Handler) {
		if r != nil {
			h.Responder = r
		}
	}
}

// Register mounts the dish routes on mux below prefix. The prefix is used
// verbatim and must not end with a slash.
func (h *Handler) Register(mux *http.ServeMux, prefix string) {
	mux.HandleFunc("POST "+prefix+"/dishes/{$}", h.CreateDish)
	mux.HandleFunc("GET "+prefix+"/dishes/{$}", h.ListDishes)
	mux.HandleFunc("GET "+prefix+"/dishes/{dish_id}", h.GetDish)
	mux.HandleFunc("PUT "+prefix+"/dishes/{dish_id}", h.UpdateDish)
	mux.HandleFunc("DELETE "+prefix+"/dishes/{dish_id}", h.DeleteDish)
}

// CreateDish appends the posted dish and echoes it back with 201.
func (h *Handler) CreateDish(w http.ResponseWriter, r *http.Request) {
	d, err := Decode(r.Body)
	if err != nil {
		h.fail(w, r, err, "invalid dish payload")
		return
	}
	created := h.repo.Append(d)
	h.Logger().DebugContext(r.Context(), "dish created", "id", created.ID)
	h.RespondWithJSON(w, r, http.StatusCreated, created)
}

// ListDishes returns every dish in insertion order.
func (h *Handler) ListDishes(w http.ResponseWriter, r *http.Request) {
	h.RespondWithJSON(w, r, http.StatusOK, h.repo.List())
}

// GetDish returns the first dish with the id from the path.
func (h *Handler) GetDish(w http.ResponseWriter, r *http.Request) {
	id, err := ParseID(r.PathValue("dish_id"))
	if err != nil {
		h.fail(w, r, err, "invalid dish id")
		return
	}
	d, err := h.repo.Find(id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.RespondWithJSON(w, r, http.StatusOK, d)
}

// UpdateDish replaces the first dish with the id from the path. Every field
// of the stored record is overwritten, the id included.
func (h *Handler) UpdateDish(w http.ResponseWriter, r *http.Request) {
	id, err := ParseID(r.PathValue("dish_id"))
	if err != nil {
		h.fail(w, r, err, "invalid dish id")
		return
	}
	d, err := Decode(r.Body)
	if err != nil {
		h.fail(w, r, err, "invalid dish payload")
		return
	}
	updated, err := h.repo.Update(id, d)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.Logger().DebugContext(r.Context(), "dish replaced", "id", id, "newId", updated.ID)
	h.RespondWithJSON(w, r, http.StatusOK, updated)
}

// DeleteDish removes the first dish with the id from the path.
func (h *Handler) DeleteDish(w http.ResponseWriter, r *http.Request) {
	id, err := ParseID(r.PathValue("dish_id"))
	if err != nil {
		h.fail(w, r, err, "invalid dish id")
		return
	}
	if err := h.repo.Delete(id); err != nil {
		h.fail(w, r, err)
		return
	}
	h.Logger().DebugContext(r.Context(), "dish deleted", "id", id)
	h.RespondNoContent(w)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, msgs ...string) {
	var verr *ValidationError
	switch {
	case errors.Is(err, ErrNotFound):
		h.HandleNotFoundError(w, r, err, msgs...)
	case errors.As(err, &verr):
		h.HandleUnprocessableEntityError(w, r, err, msgs...)
	default:
		h.HandleErrors(w, r, err, msgs...)
	}
}
