package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/medbook/booking-api/internal/model"
	"github.com/medbook/booking-api/internal/repository"
	"github.com/medbook/booking-api/pkg/apperror"
	"github.com/medbook/booking-api/pkg/logger"
	"github.com/medbook/booking-api/pkg/query"
)

type Service struct {
	appointments repository.AppointmentRepository
	users        repository.UserRepository
	log          *logger.Logger
	now          func() time.Time
}

func NewService(appointments repository.AppointmentRepository, users repository.UserRepository, log *logger.Logger) *Service {
	return &Service{
		appointments: appointments,
		users:        users,
		log:          log,
		now:          time.Now,
	}
}

// List returns matching appointments; an empty result is not an error.
func (s *Service) List(ctx context.Context, filter *model.AppointmentFilter) ([]*model.Appointment, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, apperror.Validation("status", "unknown appointment status")
	}
	return s.appointments.List(ctx, filter)
}

// Create books an appointment. The doctor and patient references must
// exist with matching roles, and the date must not be in the past. When
// a location is supplied its details are embedded best-effort: a failed
// lookup is logged and leaves the field unset, it never fails the
// booking.
func (s *Service) Create(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	now := s.now()
	if req.AppointmentDate.Before(now) {
		return nil, apperror.Validation("appointment_date", "appointment date must not be in the past")
	}

	if err := s.checkRole(ctx, req.DoctorID, model.RoleDoctor, "doctor_id"); err != nil {
		return nil, err
	}
	if err := s.checkRole(ctx, req.PatientID, model.RolePatient, "patient_id"); err != nil {
		return nil, err
	}

	appointment := &model.Appointment{
		AppointmentDate: req.AppointmentDate.UTC(),
		Status:          model.AppointmentStatusScheduled,
		Fees:            req.Fees,
		PaymentStatus:   model.PaymentStatusPending,
		BookingDate:     now.UTC(),
		DoctorID:        req.DoctorID,
		PatientID:       req.PatientID,
		LocationID:      req.LocationID,
	}

	created, err := s.appointments.Create(ctx, appointment)
	if err != nil {
		return nil, err
	}

	if req.LocationID != nil {
		location, err := s.appointments.GetLocation(ctx, *req.LocationID)
		if err != nil {
			s.log.Error(err, "failed to embed appointment location",
				"appointment_id", created.ID.String(), "location_id", req.LocationID.String())
		} else {
			created.Location = location
		}
	}

	s.log.Info("appointment booked", "appointment_id", created.ID.String())
	return created, nil
}

func (s *Service) checkRole(ctx context.Context, id uuid.UUID, role model.Role, field string) error {
	user, err := s.users.Get(ctx, id)
	if err != nil {
		if apperror.Is(err, apperror.CodeNotFound) {
			return apperror.Validation(field, "referenced user does not exist")
		}
		return err
	}
	if user.Role != role {
		return apperror.Validation(field, "referenced user has the wrong role")
	}
	return nil
}

// Update applies a sparse patch: absent fields keep their stored value.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateAppointmentRequest) (*model.Appointment, error) {
	if req.Status != nil && !req.Status.Valid() {
		return nil, apperror.Validation("status", "unknown appointment status")
	}
	if req.PaymentStatus != nil && !req.PaymentStatus.Valid() {
		return nil, apperror.Validation("payment_status", "unknown payment status")
	}
	if req.AppointmentDate != nil && req.AppointmentDate.Before(s.now()) {
		return nil, apperror.Validation("appointment_date", "appointment date must not be in the past")
	}

	var date interface{}
	if req.AppointmentDate != nil {
		date = req.AppointmentDate.UTC()
	}

	patch := new(query.Patch)
	patch.Set("appointment_date", date)
	patch.Set("appointment_status", req.Status)
	patch.Set("payment_status", req.PaymentStatus)
	patch.Set("fees", req.Fees)
	patch.Set("location_id", req.LocationID)

	return s.appointments.UpdateSparse(ctx, id, patch)
}
