package domain

import "time"

type Cart struct {
	ID        int64
	CreatedAt time.Time
	UpdatedAt time.Time
	UserID    int64
	Status    CartStatusType
}

// ActiveCart корзина в статусе active. Единственный переход из этого состояния - Pay.
type ActiveCart struct {
	cart Cart
}

// NewActiveCart оборачивает корзину в ActiveCart. Для корзины в другом статусе вернет
// ErrInvalidCartTransition.
func NewActiveCart(c Cart) (ActiveCart, error) {
	if c.Status != CartStatusActive {
		return ActiveCart{}, ErrInvalidCartTransition
	}
	return ActiveCart{cart: c}, nil
}

func (a ActiveCart) ID() int64 {
	return a.cart.ID
}

func (a ActiveCart) UserID() int64 {
	return a.cart.UserID
}

func (a ActiveCart) Cart() Cart {
	return a.cart
}

// Pay переводит корзину в статус paid. Обратного перехода нет.
func (a ActiveCart) Pay() PaidCart {
	c := a.cart
	c.Status = CartStatusPaid
	return PaidCart{cart: c}
}

// PaidCart оплаченная корзина. Получить ее можно только через ActiveCart.Pay.
type PaidCart struct {
	cart Cart
}

func (p PaidCart) ID() int64 {
	return p.cart.ID
}

func (p PaidCart) Cart() Cart {
	return p.cart
}
