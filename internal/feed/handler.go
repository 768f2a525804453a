package feed

import (
	"net/http"

	"babble-service/internal/shared/httpx"
)

type Handler struct {
	asm *Assembler
}

// NewHandler registers the home timeline endpoint. The owner of the feed
// defaults to the requester; a profile timeline is requested with ?user=.
func NewHandler(router *http.ServeMux, asm *Assembler) {
	h := &Handler{asm: asm}
	router.Handle("GET /babbles", httpx.AuthMiddleware(httpx.Wrap(h.list)))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) error {
	viewer, err := httpx.UserFromCtx(r)
	if err != nil {
		return err
	}
	owner := httpx.QueryInt64(r, "user", viewer)
	next := httpx.QueryInt(r, "next", 0)

	page, nextOut, err := h.asm.Page(r.Context(), owner, viewer, next)
	if err != nil {
		return err
	}
	httpx.WriteJSON(w, map[string]any{"results": page, "next": nextOut}, http.StatusOK)
	return nil
}
