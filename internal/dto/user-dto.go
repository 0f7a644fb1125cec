package dto

type UserDTO struct {
	ID      uint64 `json:"id"`
	Fio     string `json:"fio"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Company string `json:"company,omitempty"`
	Role    string `json:"role"`
}

type ShortUserDTO struct {
	ID    uint64 `json:"id"`
	Fio   string `json:"fio"`
	Email string `json:"email"`
}
