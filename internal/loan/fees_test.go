package loan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	feeBase   = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	feePolicy = Policy{LoanPeriod: 14 * day, MaxRenewals: 2, MaxActiveLoans: 5, FinePerDayCents: 50}
)

func at(days int) time.Time {
	return feeBase.Add(time.Duration(days) * day)
}

func issue(book string, d int) Transaction {
	return Transaction{BookID: book, Type: TxIssue, OccurredAt: at(d), DueAt: at(d + 14)}
}

func TestOverdueDays(t *testing.T) {
	due := at(0)
	assert.Equal(t, 0, OverdueDays(due.Add(-time.Hour), due))
	assert.Equal(t, 0, OverdueDays(due, due))
	assert.Equal(t, 1, OverdueDays(due.Add(time.Minute), due))
	assert.Equal(t, 1, OverdueDays(due.Add(day), due))
	assert.Equal(t, 2, OverdueDays(due.Add(day+time.Second), due))
}

func TestComputeFees(t *testing.T) {
	tests := []struct {
		name         string
		txns         []Transaction
		now          time.Time
		wantItems    int
		wantSettled  int64
		wantAccruing int64
	}{
		{
			name:      "empty ledger",
			now:       at(100),
			wantItems: 0,
		},
		{
			name: "returned on time",
			txns: []Transaction{
				issue("b1", 0),
				{BookID: "b1", Type: TxReturn, OccurredAt: at(10)},
			},
			now:       at(100),
			wantItems: 1,
		},
		{
			name: "returned three days late",
			txns: []Transaction{
				issue("b1", 0),
				{BookID: "b1", Type: TxReturn, OccurredAt: at(17)},
			},
			now:         at(100),
			wantItems:   1,
			wantSettled: 150,
		},
		{
			name:         "open and overdue accrues",
			txns:         []Transaction{issue("b1", 0)},
			now:          at(20),
			wantItems:    1,
			wantAccruing: 300,
		},
		{
			name: "renew moves due date",
			txns: []Transaction{
				issue("b1", 0),
				{BookID: "b1", Type: TxRenew, OccurredAt: at(13), DueAt: at(28)},
				{BookID: "b1", Type: TxReturn, OccurredAt: at(27)},
			},
			now:       at(100),
			wantItems: 1,
		},
		{
			name: "renew without explicit due extends by loan period",
			txns: []Transaction{
				issue("b1", 0),
				{BookID: "b1", Type: TxRenew, OccurredAt: at(13)},
				{BookID: "b1", Type: TxReturn, OccurredAt: at(30)},
			},
			now:         at(100),
			wantItems:   1,
			wantSettled: 100,
		},
		{
			name: "return without issue is ignored",
			txns: []Transaction{
				{BookID: "b1", Type: TxReturn, OccurredAt: at(5)},
				{BookID: "b1", Type: TxRenew, OccurredAt: at(6)},
			},
			now:       at(100),
			wantItems: 0,
		},
		{
			name: "second issue while open is ignored",
			txns: []Transaction{
				issue("b1", 0),
				issue("b1", 5),
				{BookID: "b1", Type: TxReturn, OccurredAt: at(15)},
			},
			now:         at(100),
			wantItems:   1,
			wantSettled: 50,
		},
		{
			name: "issue and return at the same instant",
			txns: []Transaction{
				{BookID: "b1", Type: TxReturn, OccurredAt: at(0)},
				issue("b1", 0),
			},
			now:       at(100),
			wantItems: 1,
		},
		{
			name: "books are isolated",
			txns: []Transaction{
				issue("b1", 0),
				issue("b2", 0),
				{BookID: "b2", Type: TxReturn, OccurredAt: at(16)},
				{BookID: "b1", Type: TxReturn, OccurredAt: at(5)},
			},
			now:         at(100),
			wantItems:   2,
			wantSettled: 100,
		},
		{
			name: "reissue after return starts a new loan",
			txns: []Transaction{
				issue("b1", 0),
				{BookID: "b1", Type: TxReturn, OccurredAt: at(15)},
				issue("b1", 20),
			},
			now:          at(36),
			wantItems:    2,
			wantSettled:  50,
			wantAccruing: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := ComputeFees(tt.txns, tt.now, feePolicy)

			assert.Len(t, report.Items, tt.wantItems)
			assert.Equal(t, tt.wantSettled, report.SettledCents)
			assert.Equal(t, tt.wantAccruing, report.AccruingCents)
			assert.Equal(t, tt.wantSettled+tt.wantAccruing, report.TotalCents)
		})
	}
}

func TestComputeFees_ItemDetails(t *testing.T) {
	txns := []Transaction{
		{BookID: "b1", Type: TxReturn, OccurredAt: at(17)},
		issue("b1", 0),
	}
	report := ComputeFees(txns, at(100), feePolicy)

	require.Len(t, report.Items, 1)
	item := report.Items[0]
	assert.Equal(t, at(0), item.IssuedAt)
	assert.Equal(t, at(14), item.DueAt)
	require.NotNil(t, item.ReturnedAt)
	assert.Equal(t, at(17), *item.ReturnedAt)
	assert.Equal(t, 3, item.OverdueDays)
	assert.False(t, item.Open)
	assert.Equal(t, TxReturn, txns[0].Type, "input must not be reordered")
}

func TestComputeFees_MissingIssueDueUsesLoanPeriod(t *testing.T) {
	txns := []Transaction{{BookID: "b1", Type: TxIssue, OccurredAt: at(0)}}
	report := ComputeFees(txns, at(15), feePolicy)

	require.Len(t, report.Items, 1)
	assert.Equal(t, at(14), report.Items[0].DueAt)
	assert.Equal(t, int64(50), report.AccruingCents)
}
