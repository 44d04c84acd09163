package api

import (
	"context"
	"net/http"
	"time"

	"github.com/fsdevblog/gamestore/internal/domain"
	"github.com/fsdevblog/gamestore/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type BalanceHandler struct {
	svs WalletServicer
}

func NewBalanceHandler(svs WalletServicer) *BalanceHandler {
	return &BalanceHandler{
		svs: svs,
	}
}

// Index GET RouteGroup + BalanceRoute.
func (b *BalanceHandler) Index(c *gin.Context) {
	ctx, cancel := serviceContext(c)
	defer cancel()

	balance, err := b.svs.GetBalance(ctx, getUserIDFromContext(c))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"balance": money(balance)})
}

type WalletAmountParams struct {
	Amount string `binding:"required,amount" json:"amount"`
}

type WalletTransactionResponse struct {
	ID        int64                        `json:"id"`
	Type      domain.WalletTransactionType `json:"type"`
	Amount    string                       `json:"amount"`
	CreatedAt string                       `json:"created_at"`
}

func newWalletTransactionResponse(t *domain.WalletTransaction) WalletTransactionResponse {
	return WalletTransactionResponse{
		ID:        t.ID,
		Type:      t.Type,
		Amount:    money(t.Amount),
		CreatedAt: t.CreatedAt.Format(time.RFC3339),
	}
}

type walletOperation func(ctx context.Context, userID int64, amount decimal.Decimal) (*service.WalletOperationResult, error)

// Deposit POST RouteGroup + DepositRoute.
func (b *BalanceHandler) Deposit(c *gin.Context) {
	b.applyOperation(c, b.svs.Deposit)
}

// Withdraw POST RouteGroup + WithdrawRoute. Недостаточно средств - 402.
func (b *BalanceHandler) Withdraw(c *gin.Context) {
	b.applyOperation(c, b.svs.Withdraw)
}

func (b *BalanceHandler) applyOperation(c *gin.Context, op walletOperation) {
	var params WalletAmountParams
	if !bindJSON(c, &params) {
		return
	}
	// формат суммы уже проверен валидатором amount.
	amount := decimal.RequireFromString(params.Amount)

	ctx, cancel := serviceContext(c)
	defer cancel()

	result, err := op(ctx, getUserIDFromContext(c), amount)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"balance":     money(result.BalanceAfter),
		"transaction": newWalletTransactionResponse(result.Transaction),
	})
}

// History GET RouteGroup + WalletHistoryRoute. Новые операции первыми.
func (b *BalanceHandler) History(c *gin.Context) {
	ctx, cancel := serviceContext(c)
	defer cancel()

	transactions, err := b.svs.History(ctx, getUserIDFromContext(c))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newWalletHistory(transactions))
}

func newWalletHistory(transactions []domain.WalletTransaction) []WalletTransactionResponse {
	response := make([]WalletTransactionResponse, len(transactions))
	for i := range transactions {
		response[i] = newWalletTransactionResponse(&transactions[i])
	}
	return response
}
