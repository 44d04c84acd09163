package repoargs

import (
	"github.com/fsdevblog/gamestore/internal/domain"
	"github.com/shopspring/decimal"
)

type WalletTransactionCreate struct {
	UserID int64
	Type   domain.WalletTransactionType
	Amount decimal.Decimal
}
