package finance

import "time"

// Transaction is a single income or expense entry, stored per owner. The
// JSON field names are the stored contract.
type Transaction struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Category    string    `json:"category,omitempty"`
	Description string    `json:"description,omitempty"`
	Amount      float64   `json:"amount"`
	Date        time.Time `json:"date"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Transaction types.
const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

// ValidType reports whether t is a known transaction type.
func ValidType(t string) bool {
	return t == TypeIncome || t == TypeExpense
}

// Summary aggregates an owner's transactions.
type Summary struct {
	TotalIncome   float64 `json:"totalIncome"`
	TotalExpenses float64 `json:"totalExpenses"`
	Net           float64 `json:"net"`
	// ProfitMargin is Net over TotalIncome as a percentage, zero when
	// there is no income.
	ProfitMargin float64 `json:"profitMargin"`
	Count        int     `json:"count"`
}
