package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/medbook/booking-api/internal/model"
	"github.com/medbook/booking-api/internal/repository"
	"github.com/medbook/booking-api/pkg/apperror"
	"github.com/medbook/booking-api/pkg/query"
)

type appointmentRepository struct {
	BaseRepository
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{BaseRepository: NewBaseRepository(db)}
}

var appointmentJoins = []string{
	"JOIN doctors d ON d.user_id = a.doctor_id",
	"JOIN users ud ON ud.user_id = a.doctor_id",
	"JOIN users up ON up.user_id = a.patient_id",
	"LEFT JOIN workspace_locations wl ON wl.location_id = a.location_id",
}

// Default projection for listings: the appointment plus doctor and
// patient names and the optional location reference.
var appointmentProjection = []string{
	"a.appointment_id",
	"a.appointment_date",
	"a.appointment_status",
	"a.fees",
	"a.payment_status",
	"a.booking_date",
	"a.doctor_id",
	"ud.first_name AS doctor_first_name",
	"ud.last_name AS doctor_last_name",
	"d.specialization",
	"a.patient_id",
	"up.first_name AS patient_first_name",
	"up.last_name AS patient_last_name",
	"a.location_id",
}

// sortColumns whitelists request-supplied sort keys.
var sortColumns = map[string]string{
	"appointment_date": "a.appointment_date",
	"booking_date":     "a.booking_date",
	"fees":             "a.fees",
	"status":           "a.appointment_status",
}

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

func (r *appointmentRepository) List(ctx context.Context, filter *model.AppointmentFilter) ([]*model.Appointment, error) {
	ctx, cancel := r.opContext(ctx)
	defer cancel()

	spec := query.SelectSpec{}

	if filter.DoctorID != nil {
		spec.Conditions = append(spec.Conditions, query.Condition{Column: "a.doctor_id", Value: *filter.DoctorID})
	}
	if filter.PatientID != nil {
		spec.Conditions = append(spec.Conditions, query.Condition{Column: "a.patient_id", Value: *filter.PatientID})
	}
	if filter.Status != nil {
		spec.Conditions = append(spec.Conditions, query.Condition{Column: "a.appointment_status", Value: *filter.Status})
	}
	if filter.From != nil {
		spec.Conditions = append(spec.Conditions, query.Condition{Column: "a.appointment_date", Op: ">=", Value: *filter.From})
	}
	if filter.To != nil {
		spec.Conditions = append(spec.Conditions, query.Condition{Column: "a.appointment_date", Op: "<=", Value: *filter.To})
	}

	sortColumn := "a.appointment_date"
	if filter.SortBy != "" {
		column, ok := sortColumns[filter.SortBy]
		if !ok {
			return nil, apperror.Validation("sort_by", "unsupported sort key")
		}
		sortColumn = column
	}
	spec.Sorts = []query.Sort{{Column: sortColumn, Desc: filter.SortDesc}}

	limit := filter.Limit
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	spec.Page = &query.Page{Limit: limit, Number: filter.Page}

	stmt, args, err := query.BuildSelect("appointments a", appointmentJoins, appointmentProjection, spec)
	if err != nil {
		return nil, apperror.Persistence(err)
	}

	appointments := []*model.Appointment{}
	if err := r.db.SelectContext(ctx, &appointments, stmt, args...); err != nil {
		return nil, wrapError(err, "appointments")
	}
	return appointments, nil
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) (*model.Appointment, error) {
	ctx, cancel := r.opContext(ctx)
	defer cancel()

	if appointment.ID == uuid.Nil {
		appointment.ID = uuid.New()
	}

	stmt, args, err := query.BuildInsert("appointments",
		[]string{
			"appointment_id",
			"appointment_date",
			"appointment_status",
			"fees",
			"payment_status",
			"booking_date",
			"patient_id",
			"doctor_id",
			"location_id",
		},
		[]interface{}{
			appointment.ID,
			appointment.AppointmentDate.UTC(),
			appointment.Status,
			appointment.Fees,
			appointment.PaymentStatus,
			appointment.BookingDate.UTC(),
			appointment.PatientID,
			appointment.DoctorID,
			appointment.LocationID,
		})
	if err != nil {
		return nil, apperror.Persistence(err)
	}

	var created model.Appointment
	if err := r.db.GetContext(ctx, &created, stmt, args...); err != nil {
		return nil, wrapError(err, "appointment")
	}
	return &created, nil
}

func (r *appointmentRepository) UpdateSparse(ctx context.Context, id uuid.UUID, patch *query.Patch) (*model.Appointment, error) {
	ctx, cancel := r.opContext(ctx)
	defer cancel()

	stmt, args, err := query.BuildSparseUpdate("appointments", patch, "appointment_id", id)
	if errors.Is(err, query.ErrEmptyPatch) {
		return nil, apperror.EmptyUpdate()
	}
	if err != nil {
		return nil, apperror.Persistence(err)
	}

	var updated model.Appointment
	if err := r.db.GetContext(ctx, &updated, stmt, args...); err != nil {
		return nil, wrapError(err, "appointment")
	}
	return &updated, nil
}

func (r *appointmentRepository) GetLocation(ctx context.Context, id uuid.UUID) (*model.Location, error) {
	ctx, cancel := r.opContext(ctx)
	defer cancel()

	var location model.Location
	err := r.db.GetContext(ctx, &location,
		`SELECT location_id, workspace_id, workspace_location
		 FROM workspace_locations WHERE location_id = $1`, id)
	if err != nil {
		return nil, wrapError(err, "location")
	}
	return &location, nil
}
