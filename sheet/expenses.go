// expenses.go - Unordered expense ledger.
//
// Mirrors the trip ledger minus sequencing: expenses have no order and
// no minimum count. A shift with zero expenses is legitimate.
package sheet

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warp/routesheet-engine/money"
)

// ExpenseLedger is the expense collection of one shift draft.
type ExpenseLedger struct {
	expenses []Expense
}

// NewExpenseLedger builds a ledger over a copy of the given expenses.
func NewExpenseLedger(expenses []Expense) *ExpenseLedger {
	return &ExpenseLedger{expenses: append([]Expense(nil), expenses...)}
}

// Expenses returns a copy.
func (l *ExpenseLedger) Expenses() []Expense {
	return append([]Expense(nil), l.expenses...)
}

// Len returns the number of expenses.
func (l *ExpenseLedger) Len() int { return len(l.expenses) }

// Append validates and stores one expense with a temporary id.
func (l *ExpenseLedger) Append(in ExpenseInput) (Expense, error) {
	if errs := ValidateExpense(in); len(errs) > 0 {
		return Expense{}, errs
	}
	e, err := expenseFromInput(in)
	if err != nil {
		return Expense{}, err
	}
	e.ID = uuid.NewString()
	l.expenses = append(l.expenses, e)
	return e, nil
}

// Update replaces the fields of an existing expense.
func (l *ExpenseLedger) Update(id string, in ExpenseInput) (Expense, error) {
	idx := -1
	for i, e := range l.expenses {
		if e.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Expense{}, ErrExpenseNotFound
	}
	if errs := ValidateExpense(in); len(errs) > 0 {
		return Expense{}, errs
	}
	e, err := expenseFromInput(in)
	if err != nil {
		return Expense{}, err
	}
	e.ID = l.expenses[idx].ID
	l.expenses[idx] = e
	return e, nil
}

// Remove deletes an expense.
func (l *ExpenseLedger) Remove(id string) error {
	for i, e := range l.expenses {
		if e.ID == id {
			l.expenses = append(l.expenses[:i], l.expenses[i+1:]...)
			return nil
		}
	}
	return ErrExpenseNotFound
}

func expenseFromInput(in ExpenseInput) (Expense, error) {
	amt, err := money.ParseNonNegative(in.Amount)
	if err != nil {
		return Expense{}, FieldErrors{"amount": "must be a non-negative amount"}
	}
	return Expense{
		Category:      ExpenseCategory(in.Category),
		Description:   in.Description,
		Amount:        amt,
		PaymentMethod: PaymentMethod(in.PaymentMethod),
	}, nil
}

// parseOptionalAmount treats empty input as zero; anything non-empty
// must normalize to a non-negative decimal. Shared by both ledgers.
func parseOptionalAmount(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	return money.ParseNonNegative(raw)
}
