package billing

import (
	"math"
	"sort"
	"strings"

	"studiobill/internal/model"
)

// Summarize folds the rows of every ledger from startYear on into one total
// per client, ordered by remainder, largest first. Clients are matched on
// the exact trimmed title. Equal remainders keep first-seen order.
func Summarize(ledgers []model.YearLedger, startYear int) []model.ClientTotals {
	index := make(map[string]int)
	var totals []model.ClientTotals

	for _, l := range ledgers {
		if l.Year < startYear {
			continue
		}
		for _, r := range l.Rows {
			client := strings.TrimSpace(r.Client)
			if client == "" {
				continue
			}
			i, ok := index[client]
			if !ok {
				i = len(totals)
				index[client] = i
				totals = append(totals, model.ClientTotals{Client: client})
			}
			totals[i].Due += orZero(r.Due)
			totals[i].Paid += orZero(r.Paid)
			totals[i].Remainder += orZero(r.Remainder)
		}
	}

	for i := range totals {
		totals[i].Due = round2(totals[i].Due)
		totals[i].Paid = round2(totals[i].Paid)
		totals[i].Remainder = round2(totals[i].Remainder)
	}

	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].Remainder > totals[j].Remainder
	})
	return totals
}

// orZero counts a NaN cell as nothing owed.
func orZero(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}
