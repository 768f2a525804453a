package follow

import (
	"net/http"

	"babble-service/internal/shared/httpx"
)

type Handler struct {
	svc Service
}

func NewHandler(router *http.ServeMux, svc Service) {
	h := &Handler{svc: svc}

	router.Handle("POST /follows/{user_id}", httpx.AuthMiddleware(httpx.Wrap(h.follow)))
	router.Handle("DELETE /follows/{user_id}", httpx.AuthMiddleware(httpx.Wrap(h.unfollow)))
	router.Handle("GET /users/{user_id}/followers", httpx.AuthMiddleware(httpx.Wrap(h.followers)))
	router.Handle("GET /users/{user_id}/following", httpx.AuthMiddleware(httpx.Wrap(h.following)))
}

func (h *Handler) follow(w http.ResponseWriter, r *http.Request) error {
	uid, err := httpx.UserFromCtx(r)
	if err != nil {
		return err
	}
	target, err := httpx.PathInt64(r, "user_id")
	if err != nil {
		return err
	}
	if err := h.svc.Follow(r.Context(), uid, target); err != nil {
		return err
	}
	httpx.WriteJSON(w, map[string]string{"message": "followed"}, http.StatusCreated)
	return nil
}

func (h *Handler) unfollow(w http.ResponseWriter, r *http.Request) error {
	uid, err := httpx.UserFromCtx(r)
	if err != nil {
		return err
	}
	target, err := httpx.PathInt64(r, "user_id")
	if err != nil {
		return err
	}
	if err := h.svc.Unfollow(r.Context(), uid, target); err != nil {
		return err
	}
	httpx.WriteJSON(w, map[string]string{"message": "unfollowed"}, http.StatusOK)
	return nil
}

func (h *Handler) followers(w http.ResponseWriter, r *http.Request) error {
	target, err := httpx.PathInt64(r, "user_id")
	if err != nil {
		return err
	}
	ids, err := h.svc.Followers(r.Context(), target)
	if err != nil {
		return err
	}
	httpx.WriteJSON(w, map[string]any{"results": ids}, http.StatusOK)
	return nil
}

func (h *Handler) following(w http.ResponseWriter, r *http.Request) error {
	target, err := httpx.PathInt64(r, "user_id")
	if err != nil {
		return err
	}
	ids, err := h.svc.Following(r.Context(), target)
	if err != nil {
		return err
	}
	httpx.WriteJSON(w, map[string]any{"results": ids}, http.StatusOK)
	return nil
}
