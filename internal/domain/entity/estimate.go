package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sangkips/invoicer-api/internal/domain/enum"
	"gorm.io/gorm"
)

// Estimate is a numbered quote. TotalAmount always equals the sum of its
// items' quantity x unit price.
type Estimate struct {
	ID             uuid.UUID           `gorm:"type:uuid;primary_key" json:"id"`
	CompanyID      uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex:idx_estimates_company_number,priority:1" json:"company_id"`
	ClientID       uuid.UUID           `gorm:"type:uuid;not null;index" json:"client_id"`
	EstimateNumber string              `gorm:"size:50;not null;uniqueIndex:idx_estimates_company_number,priority:2" json:"estimate_number"`
	IssueDate      time.Time           `gorm:"type:date;not null" json:"issue_date"`
	ExpiryDate     *time.Time          `gorm:"type:date" json:"expiry_date,omitempty"`
	Notes          *string             `gorm:"type:text" json:"notes,omitempty"`
	Status         enum.EstimateStatus `gorm:"not null;default:0" json:"status"`
	TotalAmount    decimal.Decimal     `gorm:"type:decimal(18,2);not null;default:0" json:"total_amount"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`

	// Relationships
	Company Company        `gorm:"foreignKey:CompanyID" json:"-"`
	Client  *Client        `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Items   []EstimateItem `gorm:"foreignKey:EstimateID" json:"items,omitempty"`
}

// BeforeCreate generates a UUID before creating a new estimate
func (e *Estimate) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Estimate model
func (Estimate) TableName() string {
	return "estimates"
}

// EstimateItem snapshots the product price at the time it was assigned.
type EstimateItem struct {
	ID         uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	EstimateID uuid.UUID       `gorm:"type:uuid;not null;index" json:"estimate_id"`
	ProductID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	CompanyID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"company_id"`
	Quantity   int             `gorm:"not null" json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"unit_price"`
	CreatedAt  time.Time       `json:"created_at"`

	// Relationships
	Estimate Estimate `gorm:"foreignKey:EstimateID" json:"-"`
	Product  *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// BeforeCreate generates a UUID before creating a new estimate item
func (ei *EstimateItem) BeforeCreate(tx *gorm.DB) error {
	if ei.ID == uuid.Nil {
		ei.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the EstimateItem model
func (EstimateItem) TableName() string {
	return "product_estimates"
}

func (ei *EstimateItem) LineTotal() decimal.Decimal {
	return ei.UnitPrice.Mul(decimal.NewFromInt(int64(ei.Quantity)))
}
