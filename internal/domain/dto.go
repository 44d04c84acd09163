package domain

type RoleType string

const (
	RoleUser  RoleType = "user"
	RoleAdmin RoleType = "admin"
)

type CartStatusType string

const (
	CartStatusActive CartStatusType = "active"
	CartStatusPaid   CartStatusType = "paid"
)

type WalletTransactionType string

const (
	WalletTransactionDeposit  WalletTransactionType = "deposit"
	WalletTransactionWithdraw WalletTransactionType = "withdraw"
	WalletTransactionDebit    WalletTransactionType = "debit"
	WalletTransactionCredit   WalletTransactionType = "credit"
)

// IsIncome возвращает true для типов транзакций, увеличивающих баланс кошелька.
func (t WalletTransactionType) IsIncome() bool {
	return t == WalletTransactionDeposit || t == WalletTransactionCredit
}
