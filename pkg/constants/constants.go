package constants

// Статусы жизненного цикла оборудования. Пересчитываются при каждой записи.
const (
	EquipmentStatusActive  = "active"
	EquipmentStatusPending = "pending"
	EquipmentStatusExpired = "expired"
)

// Виды метрологических работ.
const (
	CategoryVerification = "verification"
	CategoryCalibration  = "calibration"
	CategoryAttestation  = "attestation"
)

// Статусы заявок на услуги.
const (
	RequestStatusNew        = "new"
	RequestStatusInProgress = "in_progress"
	RequestStatusDone       = "done"
	RequestStatusRejected   = "rejected"
)

func IsValidRequestStatus(status string) bool {
	switch status {
	case RequestStatusNew, RequestStatusInProgress, RequestStatusDone, RequestStatusRejected:
		return true
	}
	return false
}

// Роли пользователей портала.
const (
	RoleClient = "client"
	RoleAdmin  = "admin"
)

// PendingWindowDays — окно "скоро поверка": столько дней до next_verification
// оборудование считается pending и попадает в выборку диспетчера напоминаний.
const PendingWindowDays = 14

// DefaultVerificationIntervalMonths — межповерочный интервал по умолчанию.
const DefaultVerificationIntervalMonths = 12
