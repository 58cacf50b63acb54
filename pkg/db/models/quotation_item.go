package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuotationItem is one priced line inside a supplier quotation.
type QuotationItem struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	QuotationID uuid.UUID       `gorm:"column:quotation_id;type:uuid;not null"`
	RFQItemID   *uuid.UUID      `gorm:"column:rfq_item_id;type:uuid"`
	Description string          `gorm:"column:description;not null"`
	Unit        string          `gorm:"column:unit;not null"`
	Quantity    decimal.Decimal `gorm:"column:quantity;type:numeric(14,4);not null;default:0"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:numeric(14,2);not null;default:0"`
	TotalPrice  decimal.Decimal `gorm:"column:total_price;type:numeric(14,2);not null;default:0"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
