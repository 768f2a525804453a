package babble

import (
	"context"
	"errors"
	"io"
	"net/http"

	"babble-service/internal/shared/httpx"
)

// AudioStore persists an uploaded clip and returns its public URL.
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

	router.Handle("POST /babbles", httpx.AuthMiddleware(httpx.Wrap(h.create)))
	router.Handle("GET /babbles/explore", httpx.AuthMiddleware(httpx.Wrap(h.explore)))
	router.Handle("GET /babbles/profile/{user_id}", httpx.AuthMiddleware(httpx.Wrap(h.profile)))
	router.Handle("GET /babbles/{id}", httpx.AuthMiddleware(httpx.Wrap(h.get)))
	router.Handle("PUT /babbles/{id}", httpx.AuthMiddleware(httpx.Wrap(h.update)))
	router.Handle("DELETE /babbles/{id}", httpx.AuthMiddleware(httpx.Wrap(h.delete)))
	router.Handle("GET /tags/{text}", httpx.AuthMiddleware(httpx.Wrap(h.byTag)))
}

func (h *Handler) storedAudio(r *http.Request) (string, error) {
	if err := r.ParseMultipartForm(maxAudioBytes); err != nil {
		return "", err
	}
	file, header, err := r.FormFile("audio")
	if err != nil {
		return "", err
	}
	defer file.Close()
	return h.audio.Upload(r.Context(), file, header.Size, header.Header.Get("Content-Type"))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) error {
	uid, err := httpx.UserFromCtx(r)
	if err != nil {
		return err
	}
	url, err := h.storedAudio(r)
	if err != nil {
		return err
	}
	d, err := h.svc.Create(r.Context(), uid, url)
	if err != nil {
		return err
	}
	httpx.WriteJSON(w, d, http.StatusCreated)
	return nil
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) error {
	uid, err := httpx.UserFromCtx(r)
	if err != nil {
		return err
	}
	id, err := httpx.PathInt64(r, "id")
	if err != nil {
		return err
	}
	d, err := h.svc.Get(r.Context(), uid, id)
	if errors.Is(err, ErrNotFound) {
		return httpx.ErrNotFound
	}
	if err != nil {
		return err
	}
	httpx.WriteJSON(w, d, http.StatusOK)
	return nil
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) error {
	uid, err := httpx.UserFromCtx(r)
	if err != nil {
		return err
	}
	id, err := httpx.PathInt64(r, "id")
	if err != nil {
		return err
	}
	url := ""
	if _, _, ferr := r.FormFile("audio"); ferr == nil {
		if url, err = h.storedAudio(r); err != nil {
			return err
		}
	}
	d, err := h.svc.Update(r.Context(), uid, id, url)
	if errors.Is(err, ErrNotFound) {
		return httpx.ErrNotFound
	}
	if err != nil {
		return err
	}
	httpx.WriteJSON(w, d, http.StatusOK)
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
	httpx.WriteJSON(w, map[string]string{"message": "babble deleted"}, http.StatusOK)
	return nil
}

func (h *Handler) explore(w http.ResponseWriter, r *http.Request) error {
	uid, err := httpx.UserFromCtx(r)
	if err != nil {
		return err
	}
	cur := DecodeCursor(r.URL.Query().Get("cursor"))
	limit := httpx.QueryInt(r, "limit", 20)
	page, err := h.svc.Explore(r.Context(), uid, cur, limit)
	if err != nil {
		return err
	}
	writePage(w, page)
	return nil
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request) error {
	uid, err := httpx.UserFromCtx(r)
	if err != nil {
		return err
	}
	author, err := httpx.PathInt64(r, "user_id")
	if err != nil {
		return err
	}
	cur := DecodeCursor(r.URL.Query().Get("cursor"))
	limit := httpx.QueryInt(r, "limit", 20)
	page, err := h.svc.Profile(r.Context(), uid, author, cur, limit)
	if err != nil {
		return err
	}
	writePage(w, page)
	return nil
}

func (h *Handler) byTag(w http.ResponseWriter, r *http.Request) error {
	uid, err := httpx.UserFromCtx(r)
	if err != nil {
		return err
	}
	text := r.PathValue("text")
	if text == "" {
		return errors.New("missing tag")
	}
	cur := DecodeCursor(r.URL.Query().Get("cursor"))
	limit := httpx.QueryInt(r, "limit", 20)
	page, err := h.svc.ByTag(r.Context(), uid, text, cur, limit)
	if err != nil {
		return err
	}
	writePage(w, page)
	return nil
}

func writePage(w http.ResponseWriter, page []Data) {
	next := ""
	if len(page) > 0 {
		next = After(page).Encode()
	}
	httpx.WriteJSON(w, map[string]any{"results": page, "next": next}, http.StatusOK)
}
