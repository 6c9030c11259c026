package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ManuelReschke/GiftScout/app/models"
)

const (
	// NoResultsAnswer is returned when no stored gift passes the thresholds.
	NoResultsAnswer = "窩不知道"
	// UnavailableAnswer is returned while the store holds no data at all.
	UnavailableAnswer = "資料還沒準備好，請稍後再試"

	MaxResults = 10
)

// Rank orders gifts by lock days descending, then rate ascending. Ties keep
// their input order.
func Rank(gifts []models.Gift) []models.Gift {
	ranked := make([]models.Gift, len(gifts))
	copy(ranked, gifts)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].MoneyLockDays != ranked[j].MoneyLockDays {
			return ranked[i].MoneyLockDays > ranked[j].MoneyLockDays
		}
		return ranked[i].EarningRate < ranked[j].EarningRate
	})
	return ranked
}

// Top ranks gifts and keeps at most n.
func Top(gifts []models.Gift, n int) []models.Gift {
	ranked := Rank(gifts)
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// Render produces the Markdown answer, one line per gift.
func Render(gifts []models.Gift) string {
	if len(gifts) == 0 {
		return NoResultsAnswer
	}
	lines := make([]string, 0, len(gifts))
	for i := range gifts {
		lines = append(lines, RenderLine(&gifts[i]))
	}
	return strings.Join(lines, "\n")
}

func RenderLine(g *models.Gift) string {
	return fmt.Sprintf("%s%%, %d, 卡 %d 天, [🔗](%s)", models.FormatRate(g.EarningRate), g.Price, g.MoneyLockDays, g.URL())
}
