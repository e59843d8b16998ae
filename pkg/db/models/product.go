package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a catalogue entry with a fixed-point price.
type Product struct {
	ID    uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Name  string          `gorm:"column:name;type:varchar(200);not null"`
	Price decimal.Decimal `gorm:"column:price;type:decimal(10,2);not null"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
