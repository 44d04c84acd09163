package repoargs

import "github.com/shopspring/decimal"

type DiscountCodeSave struct {
	Name     string
	Value    decimal.Decimal
	MaxUsage int32
}
