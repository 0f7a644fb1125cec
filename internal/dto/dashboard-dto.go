package dto

// DashboardSummaryDTO — агрегаты для админской панели.
type DashboardSummaryDTO struct {
	UsersTotal         uint64            `json:"users_total"`
	EquipmentTotal     uint64            `json:"equipment_total"`
	EquipmentByStatus  map[string]uint64 `json:"equipment_by_status"`
	RequestsByStatus   map[string]uint64 `json:"requests_by_status"`
	RequestsLast30Days uint64            `json:"requests_last_30_days"`
}
