package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/fsdevblog/gamestore/internal/domain"
	"github.com/fsdevblog/gamestore/internal/transport/api/middlewares"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// getUserIDFromContext берет из контекста gin ID текущего юзера. ID устанавливается в middlewares.AuthRequired.
// Если значения в контексте нет - вернется 0.
func getUserIDFromContext(c *gin.Context) int64 {
	return c.GetInt64(middlewares.CurrentUserIDKey)
}

// serviceContext контекст запроса с таймаутом вызова сервиса. Отмена запроса клиентом откатывает транзакцию.
func serviceContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), DefaultServiceTimeout)
}

// bindJSON разбирает тело запроса. Ошибки валидатора - 422 с их списком, остальные - 400.
func bindJSON(c *gin.Context, params any) bool {
	bindErr := c.ShouldBindJSON(params)
	if bindErr == nil {
		return true
	}
	var valErrs validator.ValidationErrors
	if errors.As(bindErr, &valErrs) {
		_ = c.Error(bindErr).SetType(gin.ErrorTypeBind)
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": validationMessages(valErrs)})
		return false
	}
	_ = c.AbortWithError(http.StatusBadRequest, errors.New("malformed request body")).SetType(gin.ErrorTypePublic)
	return false
}

func bindQuery(c *gin.Context, params any) bool {
	bindErr := c.ShouldBindQuery(params)
	if bindErr == nil {
		return true
	}
	var valErrs validator.ValidationErrors
	if errors.As(bindErr, &valErrs) {
		_ = c.Error(bindErr).SetType(gin.ErrorTypeBind)
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": validationMessages(valErrs)})
		return false
	}
	_ = c.AbortWithError(http.StatusBadRequest, errors.New("malformed query")).SetType(gin.ErrorTypePublic)
	return false
}

func validationMessages(valErrs validator.ValidationErrors) []string {
	msgs := make([]string, len(valErrs))
	for i, fe := range valErrs {
		msgs[i] = fe.Field() + ": failed on " + fe.Tag()
	}
	return msgs
}

// idParam положительный целочисленный параметр пути.
func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		_ = c.AbortWithError(http.StatusBadRequest, errors.New("invalid "+name)).SetType(gin.ErrorTypePublic)
		return 0, false
	}
	return id, true
}

// abortWithServiceError переводит ошибку сервиса в http статус. Неизвестные ошибки отдаются как 500
// без подробностей.
func abortWithServiceError(c *gin.Context, err error) {
	status, msg := serviceErrorStatus(err)
	if status == http.StatusInternalServerError {
		_ = c.AbortWithError(status, err).SetType(gin.ErrorTypePrivate)
		return
	}
	_ = c.Error(err).SetType(gin.ErrorTypePublic)
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func serviceErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, validationReason(err)
	case errors.Is(err, domain.ErrEmptyCart):
		return http.StatusBadRequest, "cart is empty"
	case errors.Is(err, domain.ErrInvalidDiscountCode):
		return http.StatusNotFound, "invalid discount code"
	case errors.Is(err, domain.ErrRecordNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, domain.ErrAlreadyOwned):
		return http.StatusConflict, "game already owned"
	case errors.Is(err, domain.ErrDuplicateOwnership):
		return http.StatusConflict, "cart contains an already owned game"
	case errors.Is(err, domain.ErrDiscountAlreadyRedeemed):
		return http.StatusConflict, "discount code already redeemed"
	case errors.Is(err, domain.ErrDiscountCapExceeded):
		return http.StatusConflict, "discount code usage limit reached"
	case errors.Is(err, domain.ErrDuplicateKey):
		return http.StatusConflict, "already exists"
	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusPaymentRequired, "insufficient funds"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// validationReason текст ошибки валидации без префиксов операций сервиса.
func validationReason(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, domain.ErrValidation.Error()); i >= 0 {
		return msg[i:]
	}
	return msg
}

// money деньги в ответах всегда строка с двумя знаками.
func money(d decimal.Decimal) string {
	return d.StringFixed(moneyScale)
}
