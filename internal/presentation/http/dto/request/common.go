package request

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sangkips/invoicer-api/internal/application/service"
	"github.com/sangkips/invoicer-api/pkg/pagination"
)

const dateLayout = "2006-01-02"

// Date is a calendar date sent as "2006-01-02". Full RFC 3339 timestamps are
// accepted and truncated to the day.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("date %q is not in YYYY-MM-DD form", s)
	}
	d.Time = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(dateLayout))
}

// Ptr returns nil for the zero date.
func (d *Date) Ptr() *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}

// ListQuery holds the query parameters shared by list endpoints.
type ListQuery struct {
	Page     int    `form:"page"`
	PerPage  int    `form:"per_page"`
	Search   string `form:"search"`
	Status   string `form:"status"`
	ClientID string `form:"client_id"`
}

func (q *ListQuery) Pagination() *pagination.PaginationParams {
	return pagination.NewParams(q.Page, q.PerPage)
}

// LineItemRequest is one (product, quantity) pair of an invoice or estimate.
type LineItemRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Quantity  int    `json:"quantity"`
}

// LineItems converts the request rows, reporting the first malformed product id.
func LineItems(rows []LineItemRequest) ([]service.LineItemInput, error) {
	out := make([]service.LineItemInput, 0, len(rows))
	for i, row := range rows {
		id, err := ParseID(row.ProductID)
		if err != nil {
			return nil, fmt.Errorf("items[%d].product_id: %w", i, err)
		}
		out = append(out, service.LineItemInput{ProductID: id, Quantity: row.Quantity})
	}
	return out, nil
}
