package like

import (
	"context"
	"errors"
	"net/http"

	"babble-service/internal/babble"
	"babble-service/internal/shared/httpx"
)

// Lister serves "babbles this user liked"; implemented by the babble service.
type Lister interface {
	LikedBy(ctx context.Context, viewerID, userID int64, cur babble.Cursor, limit int) ([]babble.Data, error)
}

type Handler struct {
	svc    Service
	lister Lister
}

func NewHandler(router *http.ServeMux, svc Service, lister Lister) {
	h := &Handler{svc: svc, lister: lister}

	router.Handle("POST /likes/{id}", httpx.AuthMiddleware(httpx.Wrap(h.like)))
	router.Handle("DELETE /likes/{id}", httpx.AuthMiddleware(httpx.Wrap(h.unlike)))
	router.Handle("GET /likes/{user_id}", httpx.AuthMiddleware(httpx.Wrap(h.list)))
}

func (h *Handler) like(w http.ResponseWriter, r *http.Request) error {
	uid, err := httpx.UserFromCtx(r)
	if err != nil {
		return err
	}
	id, err := httpx.PathInt64(r, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Like(r.Context(), uid, id); err != nil {
		if errors.Is(err, babble.ErrNotFound) {
			return httpx.ErrNotFound
		}
		return err
	}
	httpx.WriteJSON(w, map[string]string{"message": "like added"}, http.StatusCreated)
	return nil
}

func (h *Handler) unlike(w http.ResponseWriter, r *http.Request) error {
	uid, err := httpx.UserFromCtx(r)
	if err != nil {
		return err
	}
	id, err := httpx.PathInt64(r, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Unlike(r.Context(), uid, id); err != nil {
		return err
	}
	httpx.WriteJSON(w, map[string]string{"message": "like removed"}, http.StatusOK)
	return nil
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) error {
	uid, err := httpx.UserFromCtx(r)
	if err != nil {
		return err
	}
	target, err := httpx.PathInt64(r, "user_id")
	if err != nil {
		return err
	}
	cur := babble.DecodeCursor(r.URL.Query().Get("cursor"))
	limit := httpx.QueryInt(r, "limit", 20)
	page, err := h.lister.LikedBy(r.Context(), uid, target, cur, limit)
	if err != nil {
		return err
	}
	next := ""
	if len(page) > 0 {
		next = babble.After(page).Encode()
	}
	httpx.WriteJSON(w, map[string]any{"results": page, "next": next}, http.StatusOK)
	return nil
}
