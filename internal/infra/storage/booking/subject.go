package booking

import (
	"database/sql"
	"fmt"

	"github.com/m04kA/SMC-PhysioBooking/internal/domain"
)

// subjectColumns раскладывает субъекта по колонкам tenant_user_id, tenant_id, consumer_id.
// CHECK в схеме гарантирует, что заполнен ровно один вариант.
func subjectColumns(s domain.Subject) (userID, tenantID, consumerID sql.NullInt64) {
	if t, ok := s.TenantID(); ok {
		return sql.NullInt64{Int64: s.ID(), Valid: true}, sql.NullInt64{Int64: t, Valid: true}, sql.NullInt64{}
	}
	return sql.NullInt64{}, sql.NullInt64{}, sql.NullInt64{Int64: s.ID(), Valid: true}
}

func subjectFromColumns(userID, tenantID, consumerID sql.NullInt64) (domain.Subject, error) {
	switch {
	case userID.Valid && tenantID.Valid && !consumerID.Valid:
		return domain.NewTenantUser(userID.Int64, tenantID.Int64)
	case consumerID.Valid && !userID.Valid && !tenantID.Valid:
		return domain.NewConsumer(consumerID.Int64)
	default:
		return domain.Subject{}, fmt.Errorf("%w: user=%v tenant=%v consumer=%v",
			ErrInvalidSubject, userID.Valid, tenantID.Valid, consumerID.Valid)
	}
}
