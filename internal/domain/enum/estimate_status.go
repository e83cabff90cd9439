package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// EstimateStatus is set by the caller.
type EstimateStatus int

const (
	EstimateStatusDraft    EstimateStatus = 0
	EstimateStatusSent     EstimateStatus = 1
	EstimateStatusAccepted EstimateStatus = 2
	EstimateStatusDeclined EstimateStatus = 3
)

var estimateStatusNames = [...]string{"Draft", "Sent", "Accepted", "Declined"}

func (s EstimateStatus) String() string {
	if !s.Valid() {
		return fmt.Sprintf("EstimateStatus(%d)", int(s))
	}
	return estimateStatusNames[s]
}

func (s EstimateStatus) Valid() bool {
	return s >= 0 && int(s) < len(estimateStatusNames)
}

func (s EstimateStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *EstimateStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		if !EstimateStatus(i).Valid() {
			return fmt.Errorf("unknown estimate status %d", i)
		}
		*s = EstimateStatus(i)
		return nil
	}
	parsed, err := ParseEstimateStatus(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseEstimateStatus accepts the names produced by String.
func ParseEstimateStatus(str string) (EstimateStatus, error) {
	for i, name := range estimateStatusNames {
		if name == str {
			return EstimateStatus(i), nil
		}
	}
	return 0, fmt.Errorf("unknown estimate status %q", str)
}

func (s EstimateStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *EstimateStatus) Scan(value interface{}) error {
	if value == nil {
		*s = EstimateStatusDraft
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = EstimateStatus(v)
	case int32:
		*s = EstimateStatus(v)
	case int:
		*s = EstimateStatus(v)
	default:
		return fmt.Errorf("cannot scan %T into EstimateStatus", value)
	}
	return nil
}
