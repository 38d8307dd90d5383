package model

import (
	"time"

	"github.com/google/uuid"
)

// Role is the closed set of principal roles.
type Role string

const (
	RolePatient Role = "Patient"
	RoleDoctor  Role = "Doctor"
	RoleAdmin   Role = "Admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RolePatient, RoleDoctor, RoleAdmin:
		return true
	}
	return false
}

// User status constants
const (
	UserStatusActive   = "Active"
	UserStatusInactive = "Inactive"
)

// User is a persisted account. Exactly one of Patient/Doctor is set,
// matching Role; admins carry neither.
type User struct {
	ID           uuid.UUID `json:"id" db:"user_id"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name" db:"last_name"`
	Email        string    `json:"email" db:"email"`
	PhoneNumber  string    `json:"phone_number" db:"phone_number"`
	Gender       string    `json:"gender" db:"gender"`
	BirthDate    time.Time `json:"birth_date" db:"birth_date"`
	Role         Role      `json:"role" db:"user_role"`
	Status       string    `json:"status" db:"status"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`

	Patient *PatientProfile `json:"patient,omitempty" db:"-"`
	Doctor  *DoctorProfile  `json:"doctor,omitempty" db:"-"`
}

// PatientProfile is the patient-specific extension row.
type PatientProfile struct {
	UserID         uuid.UUID `json:"-" db:"user_id"`
	BloodType      string    `json:"blood_type" db:"blood_type"`
	ChronicDisease *string   `json:"chronic_disease,omitempty" db:"chronic_disease"`
}

// DoctorProfile is the doctor-specific extension row.
type DoctorProfile struct {
	UserID            uuid.UUID `json:"-" db:"user_id"`
	LicenseNumber     string    `json:"license_number" db:"license_number"`
	Specialization    string    `json:"specialization" db:"specialization"`
	YearsOfExperience *int      `json:"years_of_experience,omitempty" db:"years_of_experience"`
	About             *string   `json:"about,omitempty" db:"about"`
}

// Principal is the authenticated identity attached to a request. It
// never carries credentials.
type Principal struct {
	ID   uuid.UUID `json:"id"`
	Role Role      `json:"role"`
}

// Principal derives the request identity from a stored user.
func (u *User) Principal() Principal {
	return Principal{ID: u.ID, Role: u.Role}
}

// ProfileMatchesRole checks the one-extension-per-role invariant.
func (u *User) ProfileMatchesRole() bool {
	switch u.Role {
	case RolePatient:
		return u.Patient != nil && u.Doctor == nil
	case RoleDoctor:
		return u.Doctor != nil && u.Patient == nil
	case RoleAdmin:
		return u.Patient == nil && u.Doctor == nil
	}
	return false
}

// UpdateUserRequest is a sparse profile patch: nil fields are left
// unchanged in storage.
type UpdateUserRequest struct {
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	PhoneNumber *string `json:"phone_number"`
	Email       *string `json:"email"`
	Gender      *string `json:"gender"`
	BirthDate   *string `json:"birth_date"`

	// Patient fields
	BloodType      *string `json:"blood_type"`
	ChronicDisease *string `json:"chronic_disease"`

	// Doctor fields
	LicenseNumber     *string `json:"license_number"`
	YearsOfExperience *int    `json:"years_of_experience"`
	About             *string `json:"about"`
	Specialization    *string `json:"specialization"`
}
