package api

import (
	"net/http"

	"github.com/fsdevblog/gamestore/internal/domain"
	"github.com/fsdevblog/gamestore/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type CatalogHandler struct {
	svs CatalogServicer
}

func NewCatalogHandler(svs CatalogServicer) *CatalogHandler {
	return &CatalogHandler{svs: svs}
}

type GameResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Price    string `json:"price"`
	Category string `json:"category,omitempty"`
}

func newGameResponse(g *domain.Game) GameResponse {
	return GameResponse{
		ID:       g.ID,
		Name:     g.Name,
		Price:    money(g.Price),
		Category: g.Category,
	}
}

// Show GET RouteGroup + GameRoute.
func (h *CatalogHandler) Show(c *gin.Context) {
	gameID, ok := idParam(c, "id")
	if !ok {
		return
	}

	ctx, cancel := serviceContext(c)
	defer cancel()

	game, err := h.svs.GetPricing(ctx, gameID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newGameResponse(game))
}

type CreateGameParams struct {
	Name     string `binding:"required,max_bytes=255" json:"name"`
	Price    string `binding:"required,price"         json:"price"`
	Category string `binding:"omitempty,max_bytes=64" json:"category"`
}

// Create POST RouteGroup + AdminGamesRoute.
func (h *CatalogHandler) Create(c *gin.Context) {
	var params CreateGameParams
	if !bindJSON(c, &params) {
		return
	}

	ctx, cancel := serviceContext(c)
	defer cancel()

	game, err := h.svs.CreateGame(ctx, service.CreateGameArgs{
		Name:     params.Name,
		Price:    decimal.RequireFromString(params.Price),
		Category: params.Category,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newGameResponse(game))
}
