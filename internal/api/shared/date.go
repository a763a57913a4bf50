package shared

import (
	"encoding/json"
	"fmt"
	"time"
)

// Date is a time.Time that also unmarshals bare YYYY-MM-DD values.
// Field clients send planned dates in the short form; API clients send
// full RFC 3339 timestamps. Marshaling uses the embedded time.Time.
type Date struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler, accepting an RFC 3339
// timestamp or a YYYY-MM-DD date.
func (d *Date) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		d.Time = time.Time{}
		return nil
	}

	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		d.Time = t
		return nil
	}

	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return fmt.Errorf("invalid date %q: want RFC 3339 or YYYY-MM-DD", raw)
	}
	d.Time = t
	return nil
}
