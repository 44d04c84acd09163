package api

import (
	"net/http"

	"github.com/fsdevblog/gamestore/internal/domain"
	"github.com/fsdevblog/gamestore/internal/service"
	"github.com/gin-gonic/gin"
)

type CartHandler struct {
	cartSvs     CartServicer
	checkoutSvs CheckoutServicer
}

func NewCartHandler(cartSvs CartServicer, checkoutSvs CheckoutServicer) *CartHandler {
	return &CartHandler{
		cartSvs:     cartSvs,
		checkoutSvs: checkoutSvs,
	}
}

type CartLineResponse struct {
	GameID   int64  `json:"game_id"`
	Name     string `json:"name"`
	Price    string `json:"price"`
	Quantity int32  `json:"quantity"`
	Subtotal string `json:"subtotal"`
}

type CartResponse struct {
	CartID int64              `json:"cart_id,omitempty"`
	Items  []CartLineResponse `json:"items"`
	Total  string             `json:"total"`
}

func newCartLines(lines []domain.CartLine) []CartLineResponse {
	response := make([]CartLineResponse, len(lines))
	for i, line := range lines {
		response[i] = CartLineResponse{
			GameID:   line.GameID,
			Name:     line.GameName,
			Price:    money(line.Price),
			Quantity: line.Quantity,
			Subtotal: money(line.Total()),
		}
	}
	return response
}

// View GET RouteGroup + CartRoute.
func (h *CartHandler) View(c *gin.Context) {
	ctx, cancel := serviceContext(c)
	defer cancel()

	view, err := h.cartSvs.View(ctx, getUserIDFromContext(c))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, CartResponse{
		CartID: view.CartID,
		Items:  newCartLines(view.Lines),
		Total:  money(view.Total),
	})
}

type AddCartItemParams struct {
	GameID   int64 `binding:"required,gt=0"    json:"game_id"`
	Quantity int32 `binding:"omitempty,gte=1" json:"quantity"`
}

// AddItem POST RouteGroup + CartItemsRoute.
func (h *CartHandler) AddItem(c *gin.Context) {
	var params AddCartItemParams
	if !bindJSON(c, &params) {
		return
	}

	ctx, cancel := serviceContext(c)
	defer cancel()

	added, err := h.cartSvs.AddItem(ctx, service.AddCartItemArgs{
		UserID:   getUserIDFromContext(c),
		GameID:   params.GameID,
		Quantity: params.Quantity,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"cart_id":  added.CartID,
		"game_id":  added.GameID,
		"name":     added.GameName,
		"price":    money(added.Price),
		"quantity": added.Quantity,
	})
}

// RemoveItem DELETE RouteGroup + CartItemRoute. Отсутствие позиции не ошибка.
func (h *CartHandler) RemoveItem(c *gin.Context) {
	gameID, ok := idParam(c, "game_id")
	if !ok {
		return
	}

	ctx, cancel := serviceContext(c)
	defer cancel()

	if err := h.cartSvs.RemoveItem(ctx, getUserIDFromContext(c), gameID); err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.AbortWithStatus(http.StatusNoContent)
}

// Clear DELETE RouteGroup + CartRoute.
func (h *CartHandler) Clear(c *gin.Context) {
	ctx, cancel := serviceContext(c)
	defer cancel()

	removed, err := h.cartSvs.Clear(ctx, getUserIDFromContext(c))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed_items": removed})
}

type CheckoutParams struct {
	DiscountCode string `binding:"omitempty,max_bytes=64" json:"discount_code"`
}

type CheckoutResponse struct {
	CartID          int64    `json:"cart_id"`
	DiscountApplied *string  `json:"discount_applied"`
	DiscountValue   string   `json:"discount_value"`
	TotalBefore     string   `json:"total_before"`
	TotalAfter      string   `json:"total_after"`
	BalanceAfter    string   `json:"balance_after"`
	GamesPurchased  []string `json:"games_purchased"`
}

// Checkout POST RouteGroup + CheckoutRoute. Тело запроса необязательно.
func (h *CartHandler) Checkout(c *gin.Context) {
	var params CheckoutParams
	if c.Request.ContentLength != 0 && !bindJSON(c, &params) {
		return
	}

	ctx, cancel := serviceContext(c)
	defer cancel()

	result, err := h.checkoutSvs.Checkout(ctx, service.CheckoutArgs{
		UserID:       getUserIDFromContext(c),
		DiscountCode: params.DiscountCode,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	response := CheckoutResponse{
		CartID:         result.CartID,
		DiscountValue:  money(result.DiscountValue),
		TotalBefore:    money(result.TotalBefore),
		TotalAfter:     money(result.TotalAfter),
		BalanceAfter:   money(result.BalanceAfter),
		GamesPurchased: result.GamesPurchased,
	}
	if result.DiscountApplied != "" {
		response.DiscountApplied = &result.DiscountApplied
	}
	c.JSON(http.StatusOK, response)
}
