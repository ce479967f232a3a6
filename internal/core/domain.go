package core

import (
	"errors"
	"math"
	"regexp"
	"strings"
	"time"
)

const (
	Inflow  TxType = "inflow"
	Outflow TxType = "outflow"
)

const (
	DefaultAccountGroup = "On budget"
	DefaultReportStatus = "Draft"
	DefaultReportFocus  = "Household summary"
	UncategorizedLabel  = "Uncategorized"

	// ISODate is the layout of every stored transaction date.
	ISODate = "2006-01-02"
)

type (
	// TxType is the direction of a transaction.
	TxType string

	// Transaction is a single register entry. Amount is always a positive
	// magnitude; the sign comes from Type.
	Transaction struct {
		ID        string  `json:"id"`
		CreatedAt int64   `json:"createdAt"` // unix milliseconds
		Date      string  `json:"date"`
		Account   string  `json:"account"` // weak reference to Account.Name
		Payee     string  `json:"payee"`
		Category  string  `json:"category"`
		Memo      string  `json:"memo"`
		Type      TxType  `json:"type"`
		Amount    float64 `json:"amount"`
	}

	Account struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Group       string `json:"group"`
		Type        string `json:"type"`
		Institution string `json:"institution"`
	}

	// Report points at a month; totals are recomputed from transactions.
	Report struct {
		ID        string `json:"id"`
		Month     string `json:"month"`
		CreatedAt int64  `json:"createdAt"`
		Status    string `json:"status"`
		Focus     string `json:"focus"`
	}
)

var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidDate         = errors.New("invalid date")
	ErrInvalidType         = errors.New("invalid transaction type")
	ErrAmountDirection     = errors.New("enter either an outflow or an inflow amount")
	ErrEmptyName           = errors.New("empty name")
	ErrMissingType         = errors.New("empty account type")
	ErrDuplicateAccount    = errors.New("an account with that name already exists")
	ErrAccountNotFound     = errors.New("account not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrNoAccounts          = errors.New("no accounts")
	ErrInvalidMonth        = errors.New("Use YYYY-MM for the report month.")
	ErrDuplicateReport     = errors.New("That month already has a report.")
)

var (
	monthKeyPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)
	isoDatePattern  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

func (t TxType) IsValid() bool {
	return t == Inflow || t == Outflow
}

// TypeForSign returns Outflow for negative values and Inflow otherwise.
func TypeForSign(v float64) TxType {
	if v < 0 {
		return Outflow
	}
	return Inflow
}

// Signed returns the amount with the sign implied by the transaction type.
func (t Transaction) Signed() float64 {
	if t.Type == Outflow {
		return -t.Amount
	}
	return t.Amount
}

func (t Transaction) Validate() error {
	if !IsISODate(t.Date) {
		return ErrInvalidDate
	}
	if !t.Type.IsValid() {
		return ErrInvalidType
	}
	if math.IsNaN(t.Amount) || math.IsInf(t.Amount, 0) || t.Amount <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// CategoryLabel is the category as shown to the user.
func (t Transaction) CategoryLabel() string {
	if strings.TrimSpace(t.Category) == "" {
		return UncategorizedLabel
	}
	return t.Category
}

// Month returns the YYYY-MM prefix of the transaction date.
func (t Transaction) Month() string {
	if len(t.Date) < 7 {
		return t.Date
	}
	return t.Date[:7]
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(a.Type) == "" {
		return ErrMissingType
	}
	return nil
}

// GroupOrDefault returns the account group, "On budget" when unset.
func (a Account) GroupOrDefault() string {
	if strings.TrimSpace(a.Group) == "" {
		return DefaultAccountGroup
	}
	return a.Group
}

func (r Report) StatusOrDefault() string {
	if r.Status == "" {
		return DefaultReportStatus
	}
	return r.Status
}

func (r Report) FocusOrDefault() string {
	if r.Focus == "" {
		return DefaultReportFocus
	}
	return r.Focus
}

// IsValidMonth reports whether key is a YYYY-MM month key.
func IsValidMonth(key string) bool {
	return monthKeyPattern.MatchString(key)
}

// IsISODate reports whether s is a real calendar day written as YYYY-MM-DD.
func IsISODate(s string) bool {
	if !isoDatePattern.MatchString(s) {
		return false
	}
	_, err := time.Parse(ISODate, s)
	return err == nil
}

// Today formats now as an ISO calendar date.
func Today(now time.Time) string {
	return now.Format(ISODate)
}

// SameName compares account names the way uniqueness is enforced.
func SameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
