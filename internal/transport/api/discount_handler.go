package api

import (
	"net/http"
	"time"

	"github.com/fsdevblog/gamestore/internal/domain"
	"github.com/fsdevblog/gamestore/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type DiscountHandler struct {
	svs DiscountServicer
}

func NewDiscountHandler(svs DiscountServicer) *DiscountHandler {
	return &DiscountHandler{svs: svs}
}

type DiscountResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Value     string `json:"value"`
	MaxUsage  int32  `json:"max_usage"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type DiscountStatsResponse struct {
	DiscountResponse
	UsedCount     int64 `json:"used_count"`
	RemainingUses int64 `json:"remaining_uses"`
}

func newDiscountResponse(d *domain.DiscountCode) DiscountResponse {
	return DiscountResponse{
		ID:        d.ID,
		Name:      d.Name,
		Value:     money(d.Value),
		MaxUsage:  d.MaxUsage,
		CreatedAt: d.CreatedAt.Format(time.RFC3339),
		UpdatedAt: d.UpdatedAt.Format(time.RFC3339),
	}
}

func newDiscountStatsResponse(codes []domain.DiscountCodeStats) []DiscountStatsResponse {
	response := make([]DiscountStatsResponse, len(codes))
	for i := range codes {
		response[i] = DiscountStatsResponse{
			DiscountResponse: newDiscountResponse(&codes[i].DiscountCode),
			UsedCount:        codes[i].UsedCount,
			RemainingUses:    codes[i].RemainingUses(),
		}
	}
	return response
}

type DiscountParams struct {
	Name     string `binding:"required,max_bytes=64" json:"name"`
	Value    string `binding:"required,price"        json:"value"`
	MaxUsage *int32 `binding:"required,gte=0"        json:"max_usage"`
}

func (p DiscountParams) args() service.DiscountArgs {
	return service.DiscountArgs{
		Name:     p.Name,
		Value:    decimal.RequireFromString(p.Value),
		MaxUsage: *p.MaxUsage,
	}
}

// Available GET RouteGroup + AvailableDiscountsRoute. Коды, которые еще можно погасить.
func (h *DiscountHandler) Available(c *gin.Context) {
	ctx, cancel := serviceContext(c)
	defer cancel()

	codes, err := h.svs.ListAvailable(ctx)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newDiscountStatsResponse(codes))
}

// Index GET RouteGroup + AdminDiscountsRoute.
func (h *DiscountHandler) Index(c *gin.Context) {
	ctx, cancel := serviceContext(c)
	defer cancel()

	codes, err := h.svs.List(ctx)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newDiscountStatsResponse(codes))
}

// Create POST RouteGroup + AdminDiscountsRoute. Занятое имя - 409.
func (h *DiscountHandler) Create(c *gin.Context) {
	var params DiscountParams
	if !bindJSON(c, &params) {
		return
	}

	ctx, cancel := serviceContext(c)
	defer cancel()

	code, err := h.svs.Create(ctx, params.args())
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newDiscountResponse(code))
}

// Update PUT RouteGroup + AdminDiscountRoute.
func (h *DiscountHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var params DiscountParams
	if !bindJSON(c, &params) {
		return
	}

	ctx, cancel := serviceContext(c)
	defer cancel()

	code, err := h.svs.Update(ctx, id, params.args())
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newDiscountResponse(code))
}

// Delete DELETE RouteGroup + AdminDiscountRoute. Погашения кода удаляются вместе с ним.
func (h *DiscountHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	ctx, cancel := serviceContext(c)
	defer cancel()

	if err := h.svs.Delete(ctx, id); err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.AbortWithStatus(http.StatusNoContent)
}
