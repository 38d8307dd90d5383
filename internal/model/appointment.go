package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "Scheduled"
	AppointmentStatusCompleted AppointmentStatus = "Completed"
	AppointmentStatusCancelled AppointmentStatus = "Cancelled"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusScheduled, AppointmentStatusCompleted, AppointmentStatusCancelled:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "Pending"
	PaymentStatusPaid     PaymentStatus = "Paid"
	PaymentStatusRefunded PaymentStatus = "Refunded"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusRefunded:
		return true
	}
	return false
}

// Appointment is the joined projection returned by list and write
// operations: the appointment row plus doctor/patient names and the
// optional location.
type Appointment struct {
	ID               uuid.UUID         `json:"id" db:"appointment_id"`
	AppointmentDate  time.Time         `json:"appointment_date" db:"appointment_date"`
	Status           AppointmentStatus `json:"status" db:"appointment_status"`
	Fees             float64           `json:"fees" db:"fees"`
	PaymentStatus    PaymentStatus     `json:"payment_status" db:"payment_status"`
	BookingDate      time.Time         `json:"booking_date" db:"booking_date"`
	DoctorID         uuid.UUID         `json:"doctor_id" db:"doctor_id"`
	DoctorFirstName  string            `json:"doctor_first_name" db:"doctor_first_name"`
	DoctorLastName   string            `json:"doctor_last_name" db:"doctor_last_name"`
	Specialization   string            `json:"specialization" db:"specialization"`
	PatientID        uuid.UUID         `json:"patient_id" db:"patient_id"`
	PatientFirstName string            `json:"patient_first_name" db:"patient_first_name"`
	PatientLastName  string            `json:"patient_last_name" db:"patient_last_name"`
	LocationID       *uuid.UUID        `json:"location_id,omitempty" db:"location_id"`

	Location *Location `json:"location,omitempty" db:"-"`
}

// Location is a bookable workspace location.
type Location struct {
	ID          uuid.UUID `json:"id" db:"location_id"`
	WorkspaceID uuid.UUID `json:"workspace_id" db:"workspace_id"`
	Address     string    `json:"address" db:"workspace_location"`
}

// AppointmentFilter describes the list query: optional filters, one
// sort key, and a page descriptor.
type AppointmentFilter struct {
	DoctorID  *uuid.UUID         `form:"doctor_id"`
	PatientID *uuid.UUID         `form:"patient_id"`
	Status    *AppointmentStatus `form:"status"`
	From      *time.Time         `form:"from" time_format:"2006-01-02"`
	To        *time.Time         `form:"to" time_format:"2006-01-02"`
	SortBy    string             `form:"sort_by"`
	SortDesc  bool               `form:"desc"`
	Limit     int                `form:"limit"`
	Page      int                `form:"page"`
}

type CreateAppointmentRequest struct {
	DoctorID        uuid.UUID  `json:"doctor_id" binding:"required"`
	PatientID       uuid.UUID  `json:"patient_id" binding:"required"`
	AppointmentDate time.Time  `json:"appointment_date" binding:"required"`
	Fees            float64    `json:"fees"`
	LocationID      *uuid.UUID `json:"location_id"`
}

// UpdateAppointmentRequest is a sparse patch; nil fields stay unchanged.
type UpdateAppointmentRequest struct {
	AppointmentDate *time.Time         `json:"appointment_date"`
	Status          *AppointmentStatus `json:"status"`
	PaymentStatus   *PaymentStatus     `json:"payment_status"`
	Fees            *float64           `json:"fees"`
	LocationID      *uuid.UUID         `json:"location_id"`
}
