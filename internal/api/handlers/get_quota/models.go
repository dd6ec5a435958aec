package get_quota

import "github.com/m04kA/SMC-PhysioBooking/internal/domain"

// QuotaUsageResponse использование дневной квоты тенанта
type QuotaUsageResponse struct {
	TenantID  int64  `json:"tenantId"`
	Date      string `json:"date"`
	Limit     int    `json:"limit"`
	Used      int    `json:"used"`
	Available int    `json:"available"`
}

func FromDomain(u *domain.QuotaUsage) *QuotaUsageResponse {
	return &QuotaUsageResponse{
		TenantID:  u.TenantID,
		Date:      u.Day.String(),
		Limit:     u.Limit,
		Used:      u.Used,
		Available: u.Available(),
	}
}
