package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/medbook/booking-api/internal/model"
	"github.com/medbook/booking-api/pkg/query"
)

// UserRepository persists accounts and their role extensions.
type UserRepository interface {
	// Create inserts the user and its role profile in one transaction.
	Create(ctx context.Context, user *model.User) error
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// UpdateSparse applies sparse patches to the user row and, when the
	// role has one, its profile row. Both patches empty is an error.
	UpdateSparse(ctx context.Context, id uuid.UUID, role model.Role, base, profile *query.Patch) (*model.User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}

// AppointmentRepository persists appointments.
type AppointmentRepository interface {
	List(ctx context.Context, filter *model.AppointmentFilter) ([]*model.Appointment, error)
	Create(ctx context.Context, appointment *model.Appointment) (*model.Appointment, error)
	UpdateSparse(ctx context.Context, id uuid.UUID, patch *query.Patch) (*model.Appointment, error)
	GetLocation(ctx context.Context, id uuid.UUID) (*model.Location, error)
}

// CodeStore holds one-time password-reset codes with expiry.
type CodeStore interface {
	StoreResetCode(ctx context.Context, email, code string, ttl time.Duration) error
	CheckResetCode(ctx context.Context, email, code string) (bool, error)
	InvalidateResetCode(ctx context.Context, email string) error
}
