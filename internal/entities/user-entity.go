package entities

import (
	"time"

	"github.com/aarondl/null/v8"
)

type User struct {
	ID             uint64      `json:"id" db:"id"`
	Fio            string      `json:"fio" db:"fio"`
	Email          string      `json:"email" db:"email"`
	Phone          null.String `json:"phone,omitempty" db:"phone"`
	Company        null.String `json:"company,omitempty" db:"company"`
	Password       string      `json:"-" db:"password"`
	Role           string      `json:"role" db:"role"`
	TelegramChatID null.Int64  `json:"telegram_chat_id,omitempty" db:"telegram_chat_id"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at" db:"updated_at"`
}
