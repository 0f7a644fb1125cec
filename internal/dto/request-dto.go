package dto

type CreateRequestDTO struct {
	ServiceID     *int64  `json:"service_id,omitempty" validate:"omitempty,gt=0"`
	EquipmentName *string `json:"equipment_name,omitempty" validate:"omitempty"`
	Message       *string `json:"message,omitempty" validate:"omitempty,max=2000"`
}

type UpdateRequestDTO struct {
	Status *string `json:"status,omitempty" validate:"omitempty,oneof=new in_progress done rejected"`
}

type RequestDTO struct {
	ID            uint64       `json:"id"`
	User          ShortUserDTO `json:"user"`
	ServiceID     int64        `json:"service_id,omitempty"`
	ServiceName   string       `json:"service_name,omitempty"`
	EquipmentName string       `json:"equipment_name,omitempty"`
	Message       string       `json:"message,omitempty"`
	Status        string       `json:"status"`
	CreatedAt     string       `json:"created_at"`
	UpdatedAt     string       `json:"updated_at"`
}
