package entities

import (
	"time"

	"github.com/aarondl/null/v8"
)

// Request — заявка клиента на метрологическую услугу.
type Request struct {
	ID            uint64      `json:"id" db:"id"`
	UserID        uint64      `json:"user_id" db:"user_id"`
	ServiceID     null.Int64  `json:"service_id,omitempty" db:"service_id"`
	EquipmentName null.String `json:"equipment_name,omitempty" db:"equipment_name"`
	Message       null.String `json:"message,omitempty" db:"message"`
	Status        string      `json:"status" db:"status"`
	CreatedAt     time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at" db:"updated_at"`
}
