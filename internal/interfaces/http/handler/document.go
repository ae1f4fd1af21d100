package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sitestock/backend/internal/domain/shared"
)

// DocumentURLSigner signs download links for stored documents
type DocumentURLSigner interface {
	DownloadURL(ctx context.Context, kind, number string) (string, time.Time, error)
}

var documentKinds = map[string]bool{"po": true, "grn": true}

// DocumentHandler redirects to signed links of stored PO and GRN documents
type DocumentHandler struct {
	BaseHandler
	signer DocumentURLSigner
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(signer DocumentURLSigner) *DocumentHandler {
	return &DocumentHandler{signer: signer}
}

// Download redirects to a short-lived link of /documents/:kind/:number
func (h *DocumentHandler) Download(c *gin.Context) {
	kind := strings.ToLower(c.Param("kind"))
	number := strings.TrimSuffix(c.Param("number"), ".pdf")
	if !documentKinds[kind] {
		h.HandleError(c, shared.NewValidationError("kind", "unknown document kind "+kind))
		return
	}
	url, _, err := h.signer.DownloadURL(c.Request.Context(), kind, number)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Redirect(http.StatusFound, url)
}
