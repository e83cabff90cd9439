package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sangkips/invoicer-api/internal/domain/enum"
	"gorm.io/gorm"
)

// Invoice is a numbered bill to a client. Its status is derived from the
// line items and the payment ledger and is never set directly.
type Invoice struct {
	ID            uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	CompanyID     uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex:idx_invoices_company_number,priority:1" json:"company_id"`
	ClientID      uuid.UUID          `gorm:"type:uuid;not null;index" json:"client_id"`
	InvoiceNumber string             `gorm:"size:50;not null;uniqueIndex:idx_invoices_company_number,priority:2" json:"invoice_number"`
	IssueDate     time.Time          `gorm:"type:date;not null" json:"issue_date"`
	DueDate       time.Time          `gorm:"type:date;not null" json:"due_date"`
	Notes         *string            `gorm:"type:text" json:"notes,omitempty"`
	Status        enum.InvoiceStatus `gorm:"not null;default:0;index" json:"status"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`

	// Relationships
	Company  Company       `gorm:"foreignKey:CompanyID" json:"-"`
	Client   *Client       `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Items    []InvoiceItem `gorm:"foreignKey:InvoiceID" json:"items,omitempty"`
	Payments []Payment     `gorm:"foreignKey:InvoiceID" json:"payments,omitempty"`
}

// BeforeCreate generates a UUID before creating a new invoice
func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Invoice model
func (Invoice) TableName() string {
	return "invoices"
}

// TotalDue sums quantity x current product price over the loaded items.
// Items must be loaded with their Product.
func (i *Invoice) TotalDue() decimal.Decimal {
	total := decimal.Zero
	for _, item := range i.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// TotalPaid sums the loaded payments.
func (i *Invoice) TotalPaid() decimal.Decimal {
	total := decimal.Zero
	for _, p := range i.Payments {
		total = total.Add(p.Amount)
	}
	return total
}

// InvoiceItem is one product line of an invoice. The price is not stored;
// it is read through the live product.
type InvoiceItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	InvoiceID uuid.UUID `gorm:"type:uuid;not null;index" json:"invoice_id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index" json:"company_id"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `json:"created_at"`

	// Relationships
	Invoice Invoice  `gorm:"foreignKey:InvoiceID" json:"-"`
	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// BeforeCreate generates a UUID before creating a new invoice item
func (ii *InvoiceItem) BeforeCreate(tx *gorm.DB) error {
	if ii.ID == uuid.Nil {
		ii.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the InvoiceItem model
func (InvoiceItem) TableName() string {
	return "product_invoices"
}

// LineTotal is zero when the product is not loaded.
func (ii *InvoiceItem) LineTotal() decimal.Decimal {
	if ii.Product == nil {
		return decimal.Zero
	}
	return ii.Product.Price.Mul(decimal.NewFromInt(int64(ii.Quantity)))
}
