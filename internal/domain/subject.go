package domain

import "fmt"

// SubjectKind distinguishes the two kinds of booking subject
type SubjectKind string

const (
	SubjectTenantUser SubjectKind = "tenant_user"
	SubjectConsumer   SubjectKind = "consumer"
)

// Subject who holds a booking: a user bound to a tenant or a direct consumer.
// Exactly one case is populated, construct with NewTenantUser or NewConsumer.
type Subject struct {
	kind     SubjectKind
	id       int64
	tenantID int64
}

// NewTenantUser subject for a user of a corporate tenant, consumes the tenant's quota
func NewTenantUser(userID, tenantID int64) (Subject, error) {
	if userID <= 0 || tenantID <= 0 {
		return Subject{}, fmt.Errorf("%w: tenant user requires positive user and tenant ids", ErrInvalidSubject)
	}
	return Subject{kind: SubjectTenantUser, id: userID, tenantID: tenantID}, nil
}

// NewConsumer subject for an individual consumer, not quota bound
func NewConsumer(consumerID int64) (Subject, error) {
	if consumerID <= 0 {
		return Subject{}, fmt.Errorf("%w: consumer requires positive id", ErrInvalidSubject)
	}
	return Subject{kind: SubjectConsumer, id: consumerID}, nil
}

func (s Subject) Kind() SubjectKind {
	return s.kind
}

// ID user id for tenant users, consumer id for consumers
func (s Subject) ID() int64 {
	return s.id
}

// TenantID returns the tenant for tenant users
func (s Subject) TenantID() (int64, bool) {
	if s.kind != SubjectTenantUser {
		return 0, false
	}
	return s.tenantID, true
}

func (s Subject) IsTenantUser() bool {
	return s.kind == SubjectTenantUser
}

func (s Subject) IsConsumer() bool {
	return s.kind == SubjectConsumer
}

func (s Subject) IsZero() bool {
	return s.kind == ""
}

func (s Subject) Equal(other Subject) bool {
	return s == other
}

func (s Subject) String() string {
	switch s.kind {
	case SubjectTenantUser:
		return fmt.Sprintf("tenant_user:%d@%d", s.id, s.tenantID)
	case SubjectConsumer:
		return fmt.Sprintf("consumer:%d", s.id)
	default:
		return "none"
	}
}
