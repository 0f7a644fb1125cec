package dto

// Даты в DTO ходят строками в формате 2006-01-02, парсятся в сервисе.

type CreateEquipmentDTO struct {
	Name             string  `json:"name" validate:"required"`
	Type             *string `json:"type,omitempty" validate:"omitempty"`
	SerialNumber     *string `json:"serial_number,omitempty" validate:"omitempty"`
	RegistryNumber   *string `json:"registry_number,omitempty" validate:"omitempty"`
	Category         string  `json:"category" validate:"omitempty,oneof=verification calibration attestation"`
	VerificationDate *string `json:"verification_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	NextVerification *string `json:"next_verification,omitempty" validate:"omitempty,datetime=2006-01-02"`
	IntervalMonths   *int    `json:"interval_months,omitempty" validate:"omitempty,gt=0"`
	Company          *string `json:"company,omitempty" validate:"omitempty"`
	ContactEmail     *string `json:"contact_email,omitempty" validate:"omitempty,email"`
}

type UpdateEquipmentDTO struct {
	Name             *string `json:"name,omitempty" validate:"omitempty"`
	Type             *string `json:"type,omitempty" validate:"omitempty"`
	SerialNumber     *string `json:"serial_number,omitempty" validate:"omitempty"`
	RegistryNumber   *string `json:"registry_number,omitempty" validate:"omitempty"`
	Category         *string `json:"category,omitempty" validate:"omitempty,oneof=verification calibration attestation"`
	VerificationDate *string `json:"verification_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	NextVerification *string `json:"next_verification,omitempty" validate:"omitempty,datetime=2006-01-02"`
	IntervalMonths   *int    `json:"interval_months,omitempty" validate:"omitempty,gt=0"`
	Company          *string `json:"company,omitempty" validate:"omitempty"`
	ContactEmail     *string `json:"contact_email,omitempty" validate:"omitempty,email"`
}

type EquipmentDTO struct {
	ID               uint64 `json:"id"`
	UserID           uint64 `json:"user_id"`
	Name             string `json:"name"`
	Type             string `json:"type,omitempty"`
	SerialNumber     string `json:"serial_number,omitempty"`
	RegistryNumber   string `json:"registry_number,omitempty"`
	Category         string `json:"category"`
	VerificationDate string `json:"verification_date,omitempty"`
	NextVerification string `json:"next_verification,omitempty"`
	IntervalMonths   int    `json:"interval_months"`
	Status           string `json:"status"`
	Notified         bool   `json:"notified"`
	Company          string `json:"company,omitempty"`
	ContactEmail     string `json:"contact_email,omitempty"`
	CreatedAt        string `json:"created_at"`
	UpdatedAt        string `json:"updated_at"`
}

type ImportResultDTO struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Errors  int `json:"errors"`
}
