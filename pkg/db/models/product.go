package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Product is the catalog listing plus its stock counters. Stock and SoldCount
// move together by the same delta, in opposite directions; stock never goes
// negative (enforced by the conditional decrement in internal/inventory).
type Product struct {
	ID          uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string         `gorm:"column:name;not null"`
	Description string         `gorm:"column:description;not null;default:''"`
	Brand       *string        `gorm:"column:brand"`
	Images      pq.StringArray `gorm:"column:images;type:text[]"`
	Price       int            `gorm:"column:price;not null"`
	Stock       int            `gorm:"column:stock;not null;default:0"`
	SoldCount   int            `gorm:"column:sold_count;not null;default:0"`
	IsActive    bool           `gorm:"column:is_active;not null;default:true"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
