package user

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medbook/booking-api/internal/model"
	"github.com/medbook/booking-api/pkg/apperror"
	"github.com/medbook/booking-api/pkg/logger"
	"github.com/medbook/booking-api/pkg/query"
)

type fakeUserRepo struct {
	lastID      uuid.UUID
	lastRole    model.Role
	lastBase    *query.Patch
	lastProfile *query.Patch
	user        *model.User
}

func (r *fakeUserRepo) Create(ctx context.Context, user *model.User) error { return nil }

func (r *fakeUserRepo) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return r.user, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.user, nil
}

func (r *fakeUserRepo) UpdateSparse(ctx context.Context, id uuid.UUID, role model.Role, base, profile *query.Patch) (*model.User, error) {
	if (base == nil || base.IsEmpty()) && (profile == nil || profile.IsEmpty()) {
		return nil, apperror.EmptyUpdate()
	}
	r.lastID = id
	r.lastRole = role
	r.lastBase = base
	r.lastProfile = profile
	copied := *r.user
	return &copied, nil
}

func (r *fakeUserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	return nil
}

func newTestService(id uuid.UUID, role model.Role) (*Service, *fakeUserRepo) {
	repo := &fakeUserRepo{user: &model.User{
		ID:        id,
		FirstName: "Ana",
		LastName:  "Doe",
		Role:      role,
	}}
	log := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, TimeFormat: time.RFC3339, Output: io.Discard})
	return NewService(repo, log), repo
}

func strPtr(s string) *string { return &s }

func TestUpdateSelfPatient(t *testing.T) {
	id := uuid.New()
	svc, repo := newTestService(id, model.RolePatient)

	actor := model.Principal{ID: id, Role: model.RolePatient}
	updated, err := svc.UpdateSelf(context.Background(), actor, model.RolePatient, &model.UpdateUserRequest{
		FirstName: strPtr("  jo "),
		BloodType: strPtr("a+"),
	})
	require.NoError(t, err)
	assert.NotNil(t, updated)
	assert.Equal(t, id, repo.lastID)
	assert.Equal(t, model.RolePatient, repo.lastRole)
	assert.False(t, repo.lastBase.IsEmpty())
	assert.False(t, repo.lastProfile.IsEmpty())
	assert.Empty(t, updated.PasswordHash)
}

func TestUpdateSelfRoleMismatch(t *testing.T) {
	id := uuid.New()
	svc, _ := newTestService(id, model.RolePatient)

	actor := model.Principal{ID: id, Role: model.RolePatient}
	_, err := svc.UpdateSelf(context.Background(), actor, model.RoleDoctor, &model.UpdateUserRequest{
		FirstName: strPtr("Jo"),
	})
	assert.Equal(t, apperror.CodeValidation, apperror.CodeOf(err))
}

func TestUpdateSelfRejectsAdmin(t *testing.T) {
	id := uuid.New()
	svc, _ := newTestService(id, model.RoleAdmin)

	actor := model.Principal{ID: id, Role: model.RoleAdmin}
	_, err := svc.UpdateSelf(context.Background(), actor, model.RolePatient, &model.UpdateUserRequest{
		FirstName: strPtr("Jo"),
	})
	assert.Equal(t, apperror.CodeValidation, apperror.CodeOf(err))
}

func TestUpdateByIDRequiresAdmin(t *testing.T) {
	targetID := uuid.New()
	svc, _ := newTestService(targetID, model.RolePatient)

	actor := model.Principal{ID: uuid.New(), Role: model.RoleDoctor}
	_, err := svc.UpdateByID(context.Background(), actor, model.RolePatient, targetID, &model.UpdateUserRequest{
		FirstName: strPtr("Jo"),
	})
	assert.Equal(t, apperror.CodeForbidden, apperror.CodeOf(err))
}

func TestUpdateByIDAsAdmin(t *testing.T) {
	targetID := uuid.New()
	svc, repo := newTestService(targetID, model.RoleDoctor)

	actor := model.Principal{ID: uuid.New(), Role: model.RoleAdmin}
	_, err := svc.UpdateByID(context.Background(), actor, model.RoleDoctor, targetID, &model.UpdateUserRequest{
		Specialization: strPtr("dermatology"),
	})
	require.NoError(t, err)
	assert.Equal(t, targetID, repo.lastID)
	assert.True(t, repo.lastBase.IsEmpty())
	assert.False(t, repo.lastProfile.IsEmpty())
}

func TestUpdateValidatesSuppliedFieldsOnly(t *testing.T) {
	id := uuid.New()
	svc, _ := newTestService(id, model.RolePatient)
	actor := model.Principal{ID: id, Role: model.RolePatient}

	_, err := svc.UpdateSelf(context.Background(), actor, model.RolePatient, &model.UpdateUserRequest{
		PhoneNumber: strPtr("12345"),
	})
	assert.Equal(t, apperror.CodeValidation, apperror.CodeOf(err))

	// Doctor fields on a patient route are rejected outright.
	_, err = svc.UpdateSelf(context.Background(), actor, model.RolePatient, &model.UpdateUserRequest{
		LicenseNumber: strPtr("12345"),
	})
	assert.Equal(t, apperror.CodeValidation, apperror.CodeOf(err))
}

func TestUpdateEmptyPatch(t *testing.T) {
	id := uuid.New()
	svc, _ := newTestService(id, model.RolePatient)
	actor := model.Principal{ID: id, Role: model.RolePatient}

	_, err := svc.UpdateSelf(context.Background(), actor, model.RolePatient, &model.UpdateUserRequest{})
	assert.Equal(t, apperror.CodeEmptyUpdate, apperror.CodeOf(err))
}
