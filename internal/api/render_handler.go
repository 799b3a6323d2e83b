package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"leadcapture/formbridge/internal/auth"
	"leadcapture/formbridge/internal/common"
	"leadcapture/formbridge/internal/models/dtos"
)

// RenderShortcode handles POST /api/v1/render/shortcode. The WordPress side
// hands over every shortcode it sees along with the plugin's own output.
func (h *Handlers) RenderShortcode() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		var req dtos.RenderShortcodeRequest
		if err := decodeJSON(w, r, &req, false); err != nil {
			respondErr(w, start, err, nil)
			return
		}

		tag := strings.TrimSpace(req.Tag)
		interceptor := h.deps.Services.Interceptor
		if !interceptor.Handles(tag) {
			respondErr(w, start, common.NewValidationError(fmt.Sprintf("shortcode %q is not handled", req.Tag)), nil)
			return
		}

		html := interceptor.Handle(r.Context(), tag, req.Attrs, req.OriginalOutput, auth.IsAdmin(r.Context()))
		common.RespondSuccess(w, start, "Shortcode rendered", dtos.RenderResponse{HTML: html})
	}
}

// RenderContent handles POST /api/v1/render/content
func (h *Handlers) RenderContent() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		var req dtos.RenderContentRequest
		if err := decodeJSON(w, r, &req, false); err != nil {
			respondErr(w, start, err, nil)
			return
		}

		content := h.deps.Services.Interceptor.ExpandContent(r.Context(), req.Content, auth.IsAdmin(r.Context()))
		common.RespondSuccess(w, start, "Content rendered", dtos.RenderContentResponse{Content: content})
	}
}
