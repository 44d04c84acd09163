package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	userSvs UserServicer
}

func NewAdminHandler(userSvs UserServicer) *AdminHandler {
	return &AdminHandler{userSvs: userSvs}
}

// UserHistory GET RouteGroup + AdminUserHistoryRoute. История кошелька и покупок любого юзера.
func (h *AdminHandler) UserHistory(c *gin.Context) {
	userID, ok := idParam(c, "id")
	if !ok {
		return
	}

	ctx, cancel := serviceContext(c)
	defer cancel()

	activity, err := h.userSvs.Activity(ctx, userID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":               newUserResponse(activity.User),
		"transactions":       newWalletHistory(activity.Transactions),
		"transactions_count": len(activity.Transactions),
		"purchases":          newPurchasesResponse(activity.Purchases),
		"purchases_count":    len(activity.Purchases),
	})
}
