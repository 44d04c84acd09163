package api

import (
	"net/http"
	"time"

	"github.com/fsdevblog/gamestore/internal/domain"
	"github.com/fsdevblog/gamestore/internal/service"
	"github.com/gin-gonic/gin"
)

type RankingHandler struct {
	svs RankingServicer
}

func NewRankingHandler(svs RankingServicer) *RankingHandler {
	return &RankingHandler{svs: svs}
}

type RankingEntryResponse struct {
	RankPosition int32  `json:"rank_position"`
	GameID       int64  `json:"game_id"`
	Name         string `json:"name"`
	Price        string `json:"price"`
	TotalSales   int64  `json:"total_sales"`
}

func newRankingEntries(entries []domain.RankingEntry) []RankingEntryResponse {
	response := make([]RankingEntryResponse, len(entries))
	for i, e := range entries {
		response[i] = RankingEntryResponse{
			RankPosition: e.RankPosition,
			GameID:       e.GameID,
			Name:         e.GameName,
			Price:        money(e.Price),
			TotalSales:   e.TotalSales,
		}
	}
	return response
}

// RankingParams параметры вычисления рейтинга. Принимаются и из query, и из тела запроса.
type RankingParams struct {
	Limit int  `binding:"omitempty,gte=1,lte=100" form:"limit" json:"limit"`
	Days  *int `binding:"omitempty,gte=1"         form:"days"  json:"days"`
}

func (p RankingParams) args() service.RankingArgs {
	return service.RankingArgs{Limit: p.Limit, Days: p.Days}
}

type RankingDateParams struct {
	Date string `binding:"omitempty,datetime=2006-01-02" form:"date"`
}

// Show GET RouteGroup + RankingRoute. Без даты - снапшот за сегодня (UTC).
func (h *RankingHandler) Show(c *gin.Context) {
	var params RankingDateParams
	if !bindQuery(c, &params) {
		return
	}

	var date *time.Time
	if params.Date != "" {
		// формат проверен валидатором datetime.
		parsed, _ := time.Parse(time.DateOnly, params.Date)
		date = &parsed
	}

	ctx, cancel := serviceContext(c)
	defer cancel()

	snapshot, err := h.svs.Get(ctx, date)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"rank_date": snapshot.RankDate.Format(time.DateOnly),
		"entries":   newRankingEntries(snapshot.Entries),
	})
}

// Preview GET RouteGroup + RankingPreviewRoute. Рейтинг вычисляется без сохранения.
func (h *RankingHandler) Preview(c *gin.Context) {
	var params RankingParams
	if !bindQuery(c, &params) {
		return
	}

	ctx, cancel := serviceContext(c)
	defer cancel()

	entries, err := h.svs.Preview(ctx, params.args())
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newRankingEntries(entries))
}

// Rebuild POST RouteGroup + RankingRebuildRoute. Тело запроса необязательно.
func (h *RankingHandler) Rebuild(c *gin.Context) {
	var params RankingParams
	if c.Request.ContentLength != 0 && !bindJSON(c, &params) {
		return
	}

	ctx, cancel := serviceContext(c)
	defer cancel()

	result, err := h.svs.Rebuild(ctx, params.args())
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"rank_date":     result.RankDate.Format(time.DateOnly),
		"inserted_rows": result.InsertedRows,
		"limit":         result.Limit,
		"days":          result.Days,
	})
}
