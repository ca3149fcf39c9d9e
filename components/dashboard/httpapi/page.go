package httpapi

import (
	"bytes"
	"net/http"

	dashboard "github.com/goliatone/go-rinsight/components/dashboard"
	"github.com/goliatone/go-rinsight/components/dashboard/queries"
)

// PageHandler serves the rendered dashboard page for the request session.
func (h *Handlers) PageHandler(renderer dashboard.Renderer, base string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := h.session(w, r)
		if !ok {
			return
		}
		snapshot, err := h.View.Query(r.Context(), queries.ViewInput{SessionID: sessionID})
		if err != nil {
			h.respondError(w, err)
			return
		}
		var buf bytes.Buffer
		if err := dashboard.RenderPage(renderer, snapshot, base, &buf); err != nil {
			h.respondError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(buf.Bytes())
	}
}
