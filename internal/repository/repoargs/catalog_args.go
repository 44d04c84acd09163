package repoargs

import "github.com/shopspring/decimal"

type CreateGame struct {
	Name     string
	Price    decimal.Decimal
	Category string
}

type UpsertCartItem struct {
	CartID   int64
	GameID   int64
	Quantity int32
}

type PurchaseCreate struct {
	UserID int64
	GameID int64
}
