package domain

import (
	"time"

	"github.com/m04kA/SMC-PhysioBooking/pkg/types"
)

// Tenant corporate customer with a shared daily booking limit
type Tenant struct {
	ID         int64
	Name       string
	DailyLimit int
	CreatedAt  time.Time
}

// QuotaUsage derived quota state for one operating-region day, never stored
type QuotaUsage struct {
	TenantID int64
	Day      types.Date
	Limit    int
	Used     int
}

// Available returns bookings left for the day
func (q QuotaUsage) Available() int {
	if q.Used >= q.Limit {
		return 0
	}
	return q.Limit - q.Used
}

// IsExhausted returns true if no further booking may be made
func (q QuotaUsage) IsExhausted() bool {
	return q.Used >= q.Limit
}
