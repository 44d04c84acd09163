package api

import (
	"fmt"
	"strconv"

	"github.com/fsdevblog/gamestore/internal/domain"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// moneyScale деньги принимаются с точностью до копеек.
const moneyScale = 2

// validateMaxBytes в отличии от тэга max который проверяет длину рун, - проверят длину байт в поле.
func validateMaxBytes(fl validator.FieldLevel) bool {
	maxBytes, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	str, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return len(str) <= maxBytes
}

// parseMoney разбирает денежную строку не более чем с двумя знаками после запятой и не больше domain.MaxMoney.
func parseMoney(fl validator.FieldLevel) (decimal.Decimal, bool) {
	str, ok := fl.Field().Interface().(string)
	if !ok {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(str)
	if err != nil {
		return decimal.Zero, false
	}
	if !d.Equal(d.Truncate(moneyScale)) || d.GreaterThan(domain.MaxMoney) {
		return decimal.Zero, false
	}
	return d, true
}

// validateAmount строго положительная сумма.
func validateAmount(fl validator.FieldLevel) bool {
	d, ok := parseMoney(fl)
	return ok && d.IsPositive()
}

// validatePrice цена или скидка, ноль допустим.
func validatePrice(fl validator.FieldLevel) bool {
	d, ok := parseMoney(fl)
	return ok && !d.IsNegative()
}

func registerValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("validator registration: unexpected engine %T", binding.Validator.Engine())
	}
	validations := map[string]validator.Func{
		"max_bytes": validateMaxBytes,
		"amount":    validateAmount,
		"price":     validatePrice,
	}
	for tag, fn := range validations {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("validator registration: %s", err.Error())
		}
	}
	return nil
}
