package rebabble

import (
	"errors"
	"net/http"

	"babble-service/internal/babble"
	"babble-service/internal/shared/httpx"
)

type Handler struct {
	svc Service
}

func NewHandler(router *http.ServeMux, svc Service) {
	h := &Handler{svc: svc}

	router.Handle("POST /rebabbles/{id}", httpx.AuthMiddleware(httpx.Wrap(h.create)))
	router.Handle("DELETE /rebabbles/{id}", httpx.AuthMiddleware(httpx.Wrap(h.delete)))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) error {
	uid, err := httpx.UserFromCtx(r)
	if err != nil {
		return err
	}
	id, err := httpx.PathInt64(r, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Rebabble(r.Context(), uid, id); err != nil {
		if errors.Is(err, babble.ErrNotFound) {
			return httpx.ErrNotFound
		}
		return err
	}
	httpx.WriteJSON(w, map[string]string{"message": "rebabble added"}, http.StatusCreated)
	return nil
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) error {
	uid, err := httpx.UserFromCtx(r)
	if err != nil {
		return err
	}
	id, err := httpx.PathInt64(r, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Undo(r.Context(), uid, id); err != nil {
		return err
	}
	httpx.WriteJSON(w, map[string]string{"message": "rebabble removed"}, http.StatusOK)
	return nil
}
