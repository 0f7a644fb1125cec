package entities

import (
	"time"

	"github.com/aarondl/null/v8"
)

// Equipment — средство измерений клиента с графиком поверки.
// Поле Status хранит результат последнего пересчёта классификатора и
// может устареть между записями; диспетчер напоминаний ему не доверяет
// и отбирает строки напрямую по next_verification и notified.
type Equipment struct {
	ID               uint64      `json:"id" db:"id"`
	UserID           uint64      `json:"user_id" db:"user_id"`
	Name             string      `json:"name" db:"name"`
	Type             null.String `json:"type,omitempty" db:"type"`
	SerialNumber     null.String `json:"serial_number,omitempty" db:"serial_number"`
	RegistryNumber   null.String `json:"registry_number,omitempty" db:"registry_number"`
	Category         string      `json:"category" db:"category"`
	VerificationDate null.Time   `json:"verification_date,omitempty" db:"verification_date"`
	NextVerification null.Time   `json:"next_verification,omitempty" db:"next_verification"`
	IntervalMonths   int         `json:"interval_months" db:"interval_months"`
	Status           string      `json:"status" db:"status"`
	Notified         bool        `json:"notified" db:"notified"`
	Company          null.String `json:"company,omitempty" db:"company"`
	ContactEmail     null.String `json:"contact_email,omitempty" db:"contact_email"`
	CreatedAt        time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at" db:"updated_at"`
}
