package entities

import (
	"time"

	"github.com/aarondl/null/v8"
)

// Service — позиция каталога услуг с ценой, управляется из админки.
type Service struct {
	ID          uint64      `json:"id" db:"id"`
	Name        string      `json:"name" db:"name"`
	Description null.String `json:"description,omitempty" db:"description"`
	Category    string      `json:"category" db:"category"`
	Price       float64     `json:"price" db:"price"`
	Unit        null.String `json:"unit,omitempty" db:"unit"`
	IsActive    bool        `json:"is_active" db:"is_active"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"`
}
