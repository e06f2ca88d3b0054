package loan

import (
	"sort"
	"time"
)

type FeeItem struct {
	BookID      string     `json:"book_id"`
	IssuedAt    time.Time  `json:"issued_at"`
	DueAt       time.Time  `json:"due_at"`
	ReturnedAt  *time.Time `json:"returned_at,omitempty"`
	OverdueDays int        `json:"overdue_days"`
	FeeCents    int64      `json:"fee_cents"`
	Open        bool       `json:"open"`
}

type FeeReport struct {
	Items         []FeeItem `json:"items"`
	SettledCents  int64     `json:"settled_cents"`
	AccruingCents int64     `json:"accruing_cents"`
	TotalCents    int64     `json:"total_cents"`
}

const day = 24 * time.Hour

// OverdueDays counts started days past due; returning any time on the due
// date itself is free.
func OverdueDays(end, due time.Time) int {
	late := end.Sub(due)
	if late <= 0 {
		return 0
	}
	days := int(late / day)
	if late%day != 0 {
		days++
	}
	return days
}

func txRank(t TxType) int {
	switch t {
	case TxIssue:
		return 0
	case TxRenew:
		return 1
	default:
		return 2
	}
}

// ComputeFees replays a user's ledger and prices every loan it can
// reconstruct. Events that do not fit the open/closed state of their book are
// skipped. Open loans accrue up to now.
func ComputeFees(txns []Transaction, now time.Time, policy Policy) FeeReport {
	ordered := make([]Transaction, len(txns))
	copy(ordered, txns)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].OccurredAt.Equal(ordered[j].OccurredAt) {
			return ordered[i].OccurredAt.Before(ordered[j].OccurredAt)
		}
		return txRank(ordered[i].Type) < txRank(ordered[j].Type)
	})

	items := []FeeItem{}
	open := map[string]int{}

	for _, t := range ordered {
		idx, isOpen := open[t.BookID]
		switch t.Type {
		case TxIssue:
			if isOpen {
				continue
			}
			due := t.DueAt
			if due.IsZero() {
				due = t.OccurredAt.Add(policy.LoanPeriod)
			}
			items = append(items, FeeItem{BookID: t.BookID, IssuedAt: t.OccurredAt, DueAt: due, Open: true})
			open[t.BookID] = len(items) - 1
		case TxRenew:
			if !isOpen {
				continue
			}
			if t.DueAt.IsZero() {
				items[idx].DueAt = items[idx].DueAt.Add(policy.LoanPeriod)
			} else {
				items[idx].DueAt = t.DueAt
			}
		case TxReturn:
			if !isOpen {
				continue
			}
			returnedAt := t.OccurredAt
			items[idx].ReturnedAt = &returnedAt
			items[idx].Open = false
			delete(open, t.BookID)
		}
	}

	report := FeeReport{Items: items}
	for i := range report.Items {
		item := &report.Items[i]
		end := now
		if item.ReturnedAt != nil {
			end = *item.ReturnedAt
		}
		item.OverdueDays = OverdueDays(end, item.DueAt)
		item.FeeCents = int64(item.OverdueDays) * policy.FinePerDayCents
		if item.Open {
			report.AccruingCents += item.FeeCents
		} else {
			report.SettledCents += item.FeeCents
		}
	}
	report.TotalCents = report.SettledCents + report.AccruingCents
	return report
}
