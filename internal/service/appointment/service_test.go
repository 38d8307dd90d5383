package appointment

import (
	"context"
	"errors"
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

type fakeAppointmentRepo struct {
	listFilter  *model.AppointmentFilter
	created     *model.Appointment
	lastPatch   *query.Patch
	locations   map[uuid.UUID]*model.Location
	locationErr error
	updateErr   error
}

func (r *fakeAppointmentRepo) List(ctx context.Context, filter *model.AppointmentFilter) ([]*model.Appointment, error) {
	r.listFilter = filter
	return []*model.Appointment{}, nil
}

func (r *fakeAppointmentRepo) Create(ctx context.Context, appointment *model.Appointment) (*model.Appointment, error) {
	appointment.ID = uuid.New()
	r.created = appointment
	copied := *appointment
	return &copied, nil
}

func (r *fakeAppointmentRepo) UpdateSparse(ctx context.Context, id uuid.UUID, patch *query.Patch) (*model.Appointment, error) {
	if r.updateErr != nil {
		return nil, r.updateErr
	}
	if patch.IsEmpty() {
		return nil, apperror.EmptyUpdate()
	}
	r.lastPatch = patch
	return &model.Appointment{ID: id}, nil
}

func (r *fakeAppointmentRepo) GetLocation(ctx context.Context, id uuid.UUID) (*model.Location, error) {
	if r.locationErr != nil {
		return nil, r.locationErr
	}
	location, ok := r.locations[id]
	if !ok {
		return nil, apperror.NotFound("location")
	}
	return location, nil
}

type fakeUserRepo struct {
	users map[uuid.UUID]*model.User
}

func (r *fakeUserRepo) Create(ctx context.Context, user *model.User) error { return nil }

func (r *fakeUserRepo) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, apperror.NotFound("user")
	}
	return user, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return nil, apperror.NotFound("matching user")
}

func (r *fakeUserRepo) UpdateSparse(ctx context.Context, id uuid.UUID, role model.Role, base, profile *query.Patch) (*model.User, error) {
	return nil, apperror.NotFound("user")
}

func (r *fakeUserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	return nil
}

func newTestService() (*Service, *fakeAppointmentRepo, *fakeUserRepo, uuid.UUID, uuid.UUID) {
	doctorID := uuid.New()
	patientID := uuid.New()
	users := &fakeUserRepo{users: map[uuid.UUID]*model.User{
		doctorID:  {ID: doctorID, Role: model.RoleDoctor},
		patientID: {ID: patientID, Role: model.RolePatient},
	}}
	repo := &fakeAppointmentRepo{locations: map[uuid.UUID]*model.Location{}}
	log := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, TimeFormat: time.RFC3339, Output: io.Discard})
	svc := NewService(repo, users, log)
	svc.now = func() time.Time { return time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC) }
	return svc, repo, users, doctorID, patientID
}

func TestCreateAppointment(t *testing.T) {
	svc, repo, _, doctorID, patientID := newTestService()

	created, err := svc.Create(context.Background(), &model.CreateAppointmentRequest{
		DoctorID:        doctorID,
		PatientID:       patientID,
		AppointmentDate: time.Date(2026, 9, 1, 10, 30, 0, 0, time.FixedZone("EET", 2*3600)),
		Fees:            150,
	})
	require.NoError(t, err)

	assert.Equal(t, model.AppointmentStatusScheduled, created.Status)
	assert.Equal(t, model.PaymentStatusPending, created.PaymentStatus)
	assert.Equal(t, time.UTC, repo.created.AppointmentDate.Location(), "timestamp must be normalized to UTC")
	assert.Nil(t, created.Location)
}

func TestCreateAppointmentPastDate(t *testing.T) {
	svc, _, _, doctorID, patientID := newTestService()

	_, err := svc.Create(context.Background(), &model.CreateAppointmentRequest{
		DoctorID:        doctorID,
		PatientID:       patientID,
		AppointmentDate: time.Date(2026, 8, 27, 10, 0, 0, 0, time.UTC),
	})
	assert.Equal(t, apperror.CodeValidation, apperror.CodeOf(err))
}

func TestCreateAppointmentRoleChecks(t *testing.T) {
	svc, _, _, doctorID, patientID := newTestService()
	date := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	// Swapped references: patient id in the doctor slot.
	_, err := svc.Create(context.Background(), &model.CreateAppointmentRequest{
		DoctorID:        patientID,
		PatientID:       doctorID,
		AppointmentDate: date,
	})
	assert.Equal(t, apperror.CodeValidation, apperror.CodeOf(err))

	// Unknown doctor.
	_, err = svc.Create(context.Background(), &model.CreateAppointmentRequest{
		DoctorID:        uuid.New(),
		PatientID:       patientID,
		AppointmentDate: date,
	})
	assert.Equal(t, apperror.CodeValidation, apperror.CodeOf(err))
}

func TestCreateAppointmentEmbedsLocation(t *testing.T) {
	svc, repo, _, doctorID, patientID := newTestService()

	locationID := uuid.New()
	repo.locations[locationID] = &model.Location{ID: locationID, Address: "Downtown Clinic"}

	created, err := svc.Create(context.Background(), &model.CreateAppointmentRequest{
		DoctorID:        doctorID,
		PatientID:       patientID,
		AppointmentDate: time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
		LocationID:      &locationID,
	})
	require.NoError(t, err)
	require.NotNil(t, created.Location)
	assert.Equal(t, "Downtown Clinic", created.Location.Address)
}

func TestCreateAppointmentLocationLookupFailureIsNotFatal(t *testing.T) {
	svc, repo, _, doctorID, patientID := newTestService()
	repo.locationErr = errors.New("connection reset")

	locationID := uuid.New()
	created, err := svc.Create(context.Background(), &model.CreateAppointmentRequest{
		DoctorID:        doctorID,
		PatientID:       patientID,
		AppointmentDate: time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
		LocationID:      &locationID,
	})
	require.NoError(t, err, "failed location embed must not fail the booking")
	assert.Nil(t, created.Location)
}

func TestListRejectsUnknownStatus(t *testing.T) {
	svc, _, _, _, _ := newTestService()

	bad := model.AppointmentStatus("Imaginary")
	_, err := svc.List(context.Background(), &model.AppointmentFilter{Status: &bad})
	assert.Equal(t, apperror.CodeValidation, apperror.CodeOf(err))
}

func TestUpdateSparseSemantics(t *testing.T) {
	svc, repo, _, _, _ := newTestService()

	status := model.AppointmentStatusCompleted
	_, err := svc.Update(context.Background(), uuid.New(), &model.UpdateAppointmentRequest{
		Status: &status,
	})
	require.NoError(t, err)
	require.NotNil(t, repo.lastPatch)
	assert.False(t, repo.lastPatch.IsEmpty())
}

func TestUpdateAllNilFails(t *testing.T) {
	svc, _, _, _, _ := newTestService()

	_, err := svc.Update(context.Background(), uuid.New(), &model.UpdateAppointmentRequest{})
	assert.Equal(t, apperror.CodeEmptyUpdate, apperror.CodeOf(err))
}

func TestUpdateRejectsBadEnums(t *testing.T) {
	svc, _, _, _, _ := newTestService()

	status := model.AppointmentStatus("Done")
	_, err := svc.Update(context.Background(), uuid.New(), &model.UpdateAppointmentRequest{Status: &status})
	assert.Equal(t, apperror.CodeValidation, apperror.CodeOf(err))

	payment := model.PaymentStatus("Maybe")
	_, err = svc.Update(context.Background(), uuid.New(), &model.UpdateAppointmentRequest{PaymentStatus: &payment})
	assert.Equal(t, apperror.CodeValidation, apperror.CodeOf(err))
}

func TestUpdatePropagatesNotFound(t *testing.T) {
	svc, repo, _, _, _ := newTestService()
	repo.updateErr = apperror.NotFound("appointment")

	status := model.AppointmentStatusCancelled
	_, err := svc.Update(context.Background(), uuid.New(), &model.UpdateAppointmentRequest{Status: &status})
	assert.Equal(t, apperror.CodeNotFound, apperror.CodeOf(err))
}
