package dto

// RegistryItemDTO — запись госреестра средств измерений (ФГИС "Аршин").
type RegistryItemDTO struct {
	RegistryNumber string `json:"registry_number"`
	Title          string `json:"title"`
	Manufacturer   string `json:"manufacturer,omitempty"`
	IntervalMonths int    `json:"interval_months,omitempty"`
}
