package httpserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
	cartsvc "storefront/internal/service/cart"
)

// addItemRequest adds either a catalog product (ProductKey set) or a
// prebuilt line item.
type addItemRequest struct {
	ProductKey     string            `json:"productKey"`
	Option         string            `json:"option"`
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	UnitPriceCents int64             `json:"unitPriceCents"`
	Quantity       *int              `json:"quantity"`
	Options        map[string]string `json:"options"`
}

type changeQuantityRequest struct {
	Delta int `json:"delta" binding:"required"`
}

type disclaimerRequest struct {
	Hidden bool `json:"hidden"`
}

func (h *handlers) cart(c *gin.Context) *cartsvc.Store {
	return cartsvc.New(h.slots(c), h.deps.ProductSvc)
}

func (h *handlers) writeCart(c *gin.Context, status int, cart domain.Cart) {
	c.JSON(status, cartsvc.NewView(cart))
}

func (h *handlers) getCart(c *gin.Context) {
	cart, err := h.cart(c).Load(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.writeCart(c, http.StatusOK, cart)
}

func (h *handlers) addCartItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}

	ctx := c.Request.Context()
	store := h.cart(c)
	var (
		cart domain.Cart
		err  error
	)
	if req.ProductKey != "" {
		cart, err = store.AddProduct(ctx, req.ProductKey, req.Option, qty)
	} else {
		if req.ID == "" || req.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "productKey or id and name required"})
			return
		}
		var item domain.LineItem
		item, err = domain.NewLineItem(req.ID, req.Name, req.UnitPriceCents, qty, req.Options)
		if err == nil {
			cart, err = store.AddItem(ctx, item)
		}
	}
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.writeCart(c, http.StatusCreated, cart)
}

func (h *handlers) changeCartItem(c *gin.Context) {
	index, ok := indexParam(c)
	if !ok {
		return
	}
	var req changeQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "delta required"})
		return
	}
	cart, err := h.cart(c).ChangeQuantity(c.Request.Context(), index, req.Delta)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.writeCart(c, http.StatusOK, cart)
}

func (h *handlers) removeCartItem(c *gin.Context) {
	index, ok := indexParam(c)
	if !ok {
		return
	}
	cart, err := h.cart(c).RemoveItem(c.Request.Context(), index)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.writeCart(c, http.StatusOK, cart)
}

func (h *handlers) clearCart(c *gin.Context) {
	if err := h.cart(c).Clear(c.Request.Context()); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) getShippingDisclaimer(c *gin.Context) {
	hidden, err := h.cart(c).ShippingDisclaimerHidden(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hidden": hidden})
}

func (h *handlers) setShippingDisclaimer(c *gin.Context) {
	var req disclaimerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if err := h.cart(c).SetShippingDisclaimerHidden(c.Request.Context(), req.Hidden); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hidden": req.Hidden})
}

func indexParam(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "index must be a non-negative integer"})
		return 0, false
	}
	return index, true
}
