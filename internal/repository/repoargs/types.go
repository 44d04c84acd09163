package repoargs

type RepositoryName string

const (
	UserRepoName              RepositoryName = "user"
	GameRepoName              RepositoryName = "game"
	CartRepoName              RepositoryName = "cart"
	DiscountRepoName          RepositoryName = "discount"
	PurchaseRepoName          RepositoryName = "purchase"
	WalletTransactionRepoName RepositoryName = "wallet_transaction"
	RankingRepoName           RepositoryName = "ranking"
)

// BatchExecQueryRow колбэк для результата каждого запроса батча.
type BatchExecQueryRow func(i int, err error)
