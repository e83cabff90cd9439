package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// InvoiceStatus is derived from an invoice's totals. Callers never set it.
type InvoiceStatus int

const (
	InvoiceStatusUnpaid  InvoiceStatus = 0
	InvoiceStatusPartial InvoiceStatus = 1
	InvoiceStatusPaid    InvoiceStatus = 2
)

var invoiceStatusNames = [...]string{"Unpaid", "Partial", "Paid"}

func (s InvoiceStatus) String() string {
	if s < 0 || int(s) >= len(invoiceStatusNames) {
		return fmt.Sprintf("InvoiceStatus(%d)", int(s))
	}
	return invoiceStatusNames[s]
}

// ParseInvoiceStatus accepts the names produced by String, used for list filters.
func ParseInvoiceStatus(str string) (InvoiceStatus, error) {
	for i, name := range invoiceStatusNames {
		if name == str {
			return InvoiceStatus(i), nil
		}
	}
	return 0, fmt.Errorf("unknown invoice status %q", str)
}

func (s InvoiceStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *InvoiceStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := ParseInvoiceStatus(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s InvoiceStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *InvoiceStatus) Scan(value interface{}) error {
	if value == nil {
		*s = InvoiceStatusUnpaid
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = InvoiceStatus(v)
	case int32:
		*s = InvoiceStatus(v)
	case int:
		*s = InvoiceStatus(v)
	default:
		return fmt.Errorf("cannot scan %T into InvoiceStatus", value)
	}
	return nil
}
