// Package middleware HTTP middleware сервиса. Аутентификация выполняется шлюзом,
// сервис доверяет заголовкам субъекта.
package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-PhysioBooking/internal/api/handlers"
	"github.com/m04kA/SMC-PhysioBooking/internal/domain"
)

const (
	HeaderTenantUserID = "X-Tenant-User-ID"
	HeaderTenantID     = "X-Tenant-ID"
	HeaderConsumerID   = "X-Consumer-ID"
	HeaderAdminID      = "X-Admin-ID"
)

type contextKey string

const (
	subjectKey contextKey = "subject"
	adminKey   contextKey = "admin_id"
)

// Auth требует субъекта: X-Tenant-User-ID вместе с X-Tenant-ID, либо X-Consumer-ID.
// Оба варианта сразу или неполный набор заголовков дают 401.
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject, ok := subjectFromHeaders(r)
		if !ok {
			handlers.RespondUnauthorized(w)
			return
		}
		ctx := context.WithValue(r.Context(), subjectKey, subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAuth кладет субъекта в контекст, если заголовки присутствуют
func OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if subject, ok := subjectFromHeaders(r); ok {
			r = r.WithContext(context.WithValue(r.Context(), subjectKey, subject))
		}
		if adminID, ok := positiveHeader(r, HeaderAdminID); ok {
			r = r.WithContext(context.WithValue(r.Context(), adminKey, adminID))
		}
		next.ServeHTTP(w, r)
	})
}

// Admin требует X-Admin-ID для административных маршрутов
func Admin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		adminID, ok := positiveHeader(r, HeaderAdminID)
		if !ok {
			handlers.RespondForbidden(w)
			return
		}
		ctx := context.WithValue(r.Context(), adminKey, adminID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetSubject возвращает субъекта, положенного Auth или OptionalAuth
func GetSubject(ctx context.Context) (domain.Subject, bool) {
	subject, ok := ctx.Value(subjectKey).(domain.Subject)
	return subject, ok
}

// GetAdminID возвращает ID администратора, положенный Admin или OptionalAuth
func GetAdminID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(adminKey).(int64)
	return id, ok
}

func subjectFromHeaders(r *http.Request) (domain.Subject, bool) {
	userRaw := r.Header.Get(HeaderTenantUserID)
	tenantRaw := r.Header.Get(HeaderTenantID)
	consumerRaw := r.Header.Get(HeaderConsumerID)

	switch {
	case consumerRaw != "" && userRaw == "" && tenantRaw == "":
		id, err := strconv.ParseInt(consumerRaw, 10, 64)
		if err != nil {
			return domain.Subject{}, false
		}
		subject, err := domain.NewConsumer(id)
		return subject, err == nil
	case consumerRaw == "" && userRaw != "" && tenantRaw != "":
		userID, err := strconv.ParseInt(userRaw, 10, 64)
		if err != nil {
			return domain.Subject{}, false
		}
		tenantID, err := strconv.ParseInt(tenantRaw, 10, 64)
		if err != nil {
			return domain.Subject{}, false
		}
		subject, err := domain.NewTenantUser(userID, tenantID)
		return subject, err == nil
	default:
		return domain.Subject{}, false
	}
}

func positiveHeader(r *http.Request, name string) (int64, bool) {
	raw := r.Header.Get(name)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}
