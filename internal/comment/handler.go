package comment

import (
	"context"
	"errors"
	"io"
	"net/http"

	"babble-service/internal/babble"
	"babble-service/internal/shared/httpx"
)

type AudioStore interface {
	Upload(ctx context.Context, r io.Reader, size int64, contentType string) (string, error)
}

const maxAudioBytes = 32 << 20

type Handler struct {
	svc   Service
	audio AudioStore
}

func NewHandler(router *http.ServeMux, svc Service, audio AudioStore) {
	h := &Handler{svc: svc, audio: audio}

	router.Handle("POST /babbles/{id}/comments", httpx.AuthMiddleware(httpx.Wrap(h.create)))
	router.Handle("GET /babbles/{id}/comments", httpx.AuthMiddleware(httpx.Wrap(h.list)))
	router.Handle("DELETE /comments/{id}", httpx.AuthMiddleware(httpx.Wrap(h.delete)))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) error {
	uid, err := httpx.UserFromCtx(r)
	if err != nil {
		return err
	}
	babbleID, err := httpx.PathInt64(r, "id")
	if err != nil {
		return err
	}
	if err := r.ParseMultipartForm(maxAudioBytes); err != nil {
		return err
	}
	file, header, err := r.FormFile("audio")
	if err != nil {
		return err
	}
	defer file.Close()
	url, err := h.audio.Upload(r.Context(), file, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		return err
	}

	d, err := h.svc.Create(r.Context(), uid, babbleID, url)
	if errors.Is(err, babble.ErrNotFound) {
		return httpx.ErrNotFound
	}
	if err != nil {
		return err
	}
	httpx.WriteJSON(w, d, http.StatusCreated)
	return nil
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) error {
	babbleID, err := httpx.PathInt64(r, "id")
	if err != nil {
		return err
	}
	offset := httpx.QueryInt(r, "offset", 0)
	limit := httpx.QueryInt(r, "limit", 20)
	items, err := h.svc.ListByBabble(r.Context(), babbleID, offset, limit)
	if err != nil {
		return err
	}
	httpx.WriteJSON(w, map[string]any{"results": items, "offset": offset, "limit": limit}, http.StatusOK)
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
	if err := h.svc.Delete(r.Context(), uid, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return httpx.ErrNotFound
		}
		return err
	}
	httpx.WriteJSON(w, map[string]string{"message": "comment deleted"}, http.StatusOK)
	return nil
}
