package enums

import "fmt"

// FinanceStatus tracks settlement of a receivable or payable row.
type FinanceStatus string

const (
	FinanceStatusOpen    FinanceStatus = "open"
	FinanceStatusPartial FinanceStatus = "partial"
	FinanceStatusClosed  FinanceStatus = "closed"
)

var validFinanceStatuses = []FinanceStatus{
	FinanceStatusOpen,
	FinanceStatusPartial,
	FinanceStatusClosed,
}

// String implements fmt.Stringer.
func (f FinanceStatus) String() string {
	return string(f)
}

// IsValid reports whether the value is a known FinanceStatus.
func (f FinanceStatus) IsValid() bool {
	for _, candidate := range validFinanceStatuses {
		if candidate == f {
			return true
		}
	}
	return false
}

// IsOutstanding reports whether the row still carries a balance.
func (f FinanceStatus) IsOutstanding() bool {
	return f == FinanceStatusOpen || f == FinanceStatusPartial
}

// ParseFinanceStatus converts raw input into a FinanceStatus.
func ParseFinanceStatus(value string) (FinanceStatus, error) {
	for _, candidate := range validFinanceStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid finance status %q", value)
}
