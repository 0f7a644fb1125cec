package events

import (
	"metrology-portal/internal/entities"

	"github.com/google/uuid"
)

// RequestCreatedEvent публикуется после успешного сохранения заявки.
// Его разбирает слушатель админских уведомлений.
type RequestCreatedEvent struct {
	EventID string
	Request entities.Request
	User    entities.User
	Service *entities.Service
}

func NewRequestCreatedEvent(request entities.Request, user entities.User, service *entities.Service) RequestCreatedEvent {
	return RequestCreatedEvent{
		EventID: uuid.New().String(),
		Request: request,
		User:    user,
		Service: service,
	}
}

func (e RequestCreatedEvent) Name() string { return "request.created" }

// EquipmentChangedEvent публикуется после создания/обновления/удаления
// оборудования; Action — одно из created/updated/deleted.
type EquipmentChangedEvent struct {
	EventID   string
	Equipment entities.Equipment
	Action    string
}

func NewEquipmentChangedEvent(equipment entities.Equipment, action string) EquipmentChangedEvent {
	return EquipmentChangedEvent{
		EventID:   uuid.New().String(),
		Equipment: equipment,
		Action:    action,
	}
}

func (e EquipmentChangedEvent) Name() string { return "equipment.changed" }
