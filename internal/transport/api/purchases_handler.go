package api

import (
	"net/http"
	"time"

	"github.com/fsdevblog/gamestore/internal/domain"
	"github.com/gin-gonic/gin"
)

type PurchasesHandler struct {
	checkoutSvs CheckoutServicer
	catalogSvs  CatalogServicer
}

func NewPurchasesHandler(checkoutSvs CheckoutServicer, catalogSvs CatalogServicer) *PurchasesHandler {
	return &PurchasesHandler{
		checkoutSvs: checkoutSvs,
		catalogSvs:  catalogSvs,
	}
}

type PurchaseResponse struct {
	GameID      int64  `json:"game_id"`
	Name        string `json:"name"`
	Price       string `json:"price"`
	Category    string `json:"category,omitempty"`
	PurchasedAt string `json:"purchased_at"`
}

func newPurchasesResponse(purchases []domain.Purchase) []PurchaseResponse {
	response := make([]PurchaseResponse, len(purchases))
	for i, p := range purchases {
		response[i] = PurchaseResponse{
			GameID:      p.GameID,
			Name:        p.GameName,
			Price:       money(p.Price),
			Category:    p.Category,
			PurchasedAt: p.PurchaseDate.Format(time.RFC3339),
		}
	}
	return response
}

type BuyNowParams struct {
	GameID int64 `binding:"required,gt=0" json:"game_id"`
}

// Create POST RouteGroup + PurchasesRoute. Покупка одной игры минуя корзину.
func (h *PurchasesHandler) Create(c *gin.Context) {
	var params BuyNowParams
	if !bindJSON(c, &params) {
		return
	}

	ctx, cancel := serviceContext(c)
	defer cancel()

	result, err := h.checkoutSvs.BuyNow(ctx, getUserIDFromContext(c), params.GameID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"game_id":        result.GameID,
		"name":           result.GameName,
		"price":          money(result.Price),
		"balance_before": money(result.BalanceBefore),
		"balance_after":  money(result.BalanceAfter),
	})
}

// Index GET RouteGroup + PurchasesRoute. Нет покупок - 204.
func (h *PurchasesHandler) Index(c *gin.Context) {
	ctx, cancel := serviceContext(c)
	defer cancel()

	purchases, err := h.catalogSvs.OwnedGames(ctx, getUserIDFromContext(c))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	if len(purchases) == 0 {
		c.AbortWithStatus(http.StatusNoContent)
		return
	}

	c.JSON(http.StatusOK, newPurchasesResponse(purchases))
}
