package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxMoney наибольшая сумма, которая помещается в денежные колонки NUMERIC(12,2).
var MaxMoney = decimal.RequireFromString("9999999999.99")

type User struct {
	ID            int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Username      string
	Password      string
	Role          RoleType
	WalletBalance decimal.Decimal
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

type Game struct {
	ID        int64
	CreatedAt time.Time
	Name      string
	Price     decimal.Decimal
	Category  string
}

// CartLine позиция корзины, объединенная с ценой и названием игры.
type CartLine struct {
	GameID   int64
	GameName string
	Price    decimal.Decimal
	Quantity int32
}

func (l CartLine) Total() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt32(l.Quantity))
}

// CartTotal сумма price × quantity по всем позициям.
func CartTotal(lines []CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Total())
	}
	return total
}

type DiscountCode struct {
	ID        int64
	CreatedAt time.Time
	UpdatedAt time.Time
	Name      string
	Value     decimal.Decimal
	MaxUsage  int32
}

// Apply вычитает скидку из суммы, не опускаясь ниже нуля.
func (d *DiscountCode) Apply(total decimal.Decimal) decimal.Decimal {
	after := total.Sub(d.Value)
	if after.IsNegative() {
		return decimal.Zero
	}
	return after
}

// Exhausted сообщает, что при usedCount погашениях код больше не может быть использован.
func (d *DiscountCode) Exhausted(usedCount int64) bool {
	return d.MaxUsage <= 0 || usedCount >= int64(d.MaxUsage)
}

type DiscountCodeStats struct {
	DiscountCode
	UsedCount int64
}

func (d *DiscountCodeStats) RemainingUses() int64 {
	remaining := int64(d.MaxUsage) - d.UsedCount
	if remaining < 0 {
		return 0
	}
	return remaining
}

type DiscountUsage struct {
	ID     int64
	UserID int64
	CodeID int64
	UsedAt time.Time
}

type Purchase struct {
	ID           int64
	UserID       int64
	GameID       int64
	GameName     string
	Price        decimal.Decimal
	Category     string
	PurchaseDate time.Time
}

type WalletTransaction struct {
	ID        int64
	CreatedAt time.Time
	UserID    int64
	Type      WalletTransactionType
	Amount    decimal.Decimal
}

type RankingEntry struct {
	RankDate     time.Time
	RankPosition int32
	GameID       int64
	GameName     string
	Price        decimal.Decimal
	TotalSales   int64
}
