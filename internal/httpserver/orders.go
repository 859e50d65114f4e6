package httpserver

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
	"storefront/internal/service/confirmation"
)

func (h *handlers) loadLastOrder(c *gin.Context) (confirmation.View, bool) {
	view, err := confirmation.Last(c.Request.Context(), h.slots(c))
	if errors.Is(err, domain.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no order found", "redirect": "/"})
		return confirmation.View{}, false
	}
	if err != nil {
		h.writeError(c, err)
		return confirmation.View{}, false
	}
	return view, true
}

func (h *handlers) lastOrder(c *gin.Context) {
	view, ok := h.loadLastOrder(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *handlers) lastOrderReceipt(c *gin.Context) {
	view, ok := h.loadLastOrder(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := confirmation.RenderText(&buf, view); err != nil {
		h.writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", buf.Bytes())
}
