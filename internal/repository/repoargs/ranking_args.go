package repoargs

import "time"

type RankingCompute struct {
	Limit int
	// Since нижняя граница даты покупки. nil - за все время.
	Since *time.Time
}
