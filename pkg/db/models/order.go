package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Order stores what a customer bought. Products is free-form JSON and is
// never checked against the product catalogue.
type Order struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	User        string          `gorm:"column:user;type:varchar(200);not null"`
	PhoneNumber string          `gorm:"column:phone_number;type:varchar(30);not null"`
	Email       string          `gorm:"column:email;type:varchar(200);not null"`
	Products    datatypes.JSON  `gorm:"column:products;not null"`
	Price       decimal.Decimal `gorm:"column:price;type:decimal(10,2);not null"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if len(o.Products) == 0 {
		o.Products = datatypes.JSON("[]")
	}
	return nil
}
