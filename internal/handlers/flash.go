package handlers

import (
	"net/http"

	"github.com/BradenHooton/srm/internal/auth"
	pkghttp "github.com/BradenHooton/srm/pkg/http"
)

type FlashHandler struct {
	cookies auth.CookieConfig
}

func NewFlashHandler(cookies auth.CookieConfig) *FlashHandler {
	return &FlashHandler{cookies: cookies}
}

// FlashResponse carries the notices queued by earlier redirects.
type FlashResponse struct {
	Messages []string `json:"messages"`
}

// Pop handles GET /flash. Reading the notices clears them.
func (h *FlashHandler) Pop(w http.ResponseWriter, r *http.Request) {
	messages := auth.PopFlash(w, r, h.cookies)
	if messages == nil {
		messages = []string{}
	}
	pkghttp.WriteJSON(w, http.StatusOK, FlashResponse{Messages: messages})
}
