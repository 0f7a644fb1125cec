package dto

type CreateServiceDTO struct {
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description,omitempty" validate:"omitempty"`
	Category    string  `json:"category" validate:"required,oneof=verification calibration attestation"`
	Price       float64 `json:"price" validate:"required,gte=0"`
	Unit        *string `json:"unit,omitempty" validate:"omitempty"`
}

type UpdateServiceDTO struct {
	Name        *string  `json:"name,omitempty" validate:"omitempty"`
	Description *string  `json:"description,omitempty" validate:"omitempty"`
	Category    *string  `json:"category,omitempty" validate:"omitempty,oneof=verification calibration attestation"`
	Price       *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	Unit        *string  `json:"unit,omitempty" validate:"omitempty"`
	IsActive    *bool    `json:"is_active,omitempty" validate:"omitempty"`
}

type ServiceDTO struct {
	ID          uint64  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Unit        string  `json:"unit,omitempty"`
	IsActive    bool    `json:"is_active"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}
