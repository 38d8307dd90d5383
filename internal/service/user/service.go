package user

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/medbook/booking-api/internal/model"
	"github.com/medbook/booking-api/internal/repository"
	"github.com/medbook/booking-api/internal/validate"
	"github.com/medbook/booking-api/pkg/apperror"
	"github.com/medbook/booking-api/pkg/logger"
	"github.com/medbook/booking-api/pkg/query"
)

var timeNow = time.Now

// Service applies sparse profile updates: patients and doctors edit
// themselves, admins edit any patient or doctor by id.
type Service struct {
	users repository.UserRepository
	log   *logger.Logger
}

func NewService(users repository.UserRepository, log *logger.Logger) *Service {
	return &Service{users: users, log: log}
}

// UpdateSelf applies a patch to the acting principal's own record. The
// target role is the route's role and must match the actor.
func (s *Service) UpdateSelf(ctx context.Context, actor model.Principal, targetRole model.Role, req *model.UpdateUserRequest) (*model.User, error) {
	if actor.Role == model.RoleAdmin {
		return nil, apperror.Validation("role", "you must be a patient or a doctor to update your own profile")
	}
	if actor.Role != targetRole {
		return nil, apperror.Validation("role", "roles didn't match")
	}
	return s.update(ctx, actor.ID, targetRole, req)
}

// UpdateByID applies a patch to another user's record; admin only.
func (s *Service) UpdateByID(ctx context.Context, actor model.Principal, targetRole model.Role, targetID uuid.UUID, req *model.UpdateUserRequest) (*model.User, error) {
	if actor.Role != model.RoleAdmin {
		return nil, apperror.Forbidden("you don't have the permission to perform this action")
	}
	return s.update(ctx, targetID, targetRole, req)
}

func (s *Service) update(ctx context.Context, id uuid.UUID, role model.Role, req *model.UpdateUserRequest) (*model.User, error) {
	base, profile, err := buildPatches(role, req)
	if err != nil {
		return nil, err
	}

	updated, err := s.users.UpdateSparse(ctx, id, role, base, profile)
	if err != nil {
		return nil, err
	}

	updated.PasswordHash = ""
	s.log.Info("user profile updated", "user_id", id.String())
	return updated, nil
}

// buildPatches normalizes and validates only the supplied fields, then
// lays them into sparse patches; absent fields stay untouched.
func buildPatches(role model.Role, req *model.UpdateUserRequest) (*query.Patch, *query.Patch, error) {
	base := new(query.Patch)

	if req.FirstName != nil {
		name := validate.FormatName(*req.FirstName)
		if !validate.Name(name) {
			return nil, nil, apperror.Validation("first_name", "please provide a valid name")
		}
		base.Set("first_name", name)
	}
	if req.LastName != nil {
		name := validate.FormatName(*req.LastName)
		if !validate.Name(name) {
			return nil, nil, apperror.Validation("last_name", "please provide a valid name")
		}
		base.Set("last_name", name)
	}
	if req.Email != nil {
		email := validate.NormalizeEmail(*req.Email)
		if !validate.Email(email) {
			return nil, nil, apperror.Validation("email", "please provide a valid email")
		}
		base.Set("email", email)
	}
	if req.PhoneNumber != nil {
		phone := validate.NormalizePhone(*req.PhoneNumber)
		if !validate.Phone(phone) {
			return nil, nil, apperror.Validation("phone_number", "please provide a valid phone number")
		}
		base.Set("phone_number", phone)
	}
	if req.Gender != nil {
		gender := validate.FormatName(*req.Gender)
		if !validate.Gender(gender) {
			return nil, nil, apperror.Validation("gender", "please provide a valid gender")
		}
		base.Set("gender", gender)
	}
	if req.BirthDate != nil {
		birthDate, ok := validate.BirthDate(*req.BirthDate, timeNow())
		if !ok {
			return nil, nil, apperror.Validation("birth_date", "please provide a valid birth date")
		}
		base.Set("birth_date", birthDate)
	}

	profile := new(query.Patch)
	switch role {
	case model.RolePatient:
		if req.LicenseNumber != nil || req.Specialization != nil || req.YearsOfExperience != nil || req.About != nil {
			return nil, nil, apperror.Validation("role", "doctor fields are not valid for a patient")
		}
		if req.BloodType != nil {
			profile.Set("blood_type", validate.FormatName(*req.BloodType))
		}
		profile.Set("chronic_disease", req.ChronicDisease)
	case model.RoleDoctor:
		if req.BloodType != nil || req.ChronicDisease != nil {
			return nil, nil, apperror.Validation("role", "patient fields are not valid for a doctor")
		}
		if req.LicenseNumber != nil {
			if !validate.Numeric(*req.LicenseNumber) {
				return nil, nil, apperror.Validation("license_number", "license number must be numbers")
			}
			profile.Set("license_number", *req.LicenseNumber)
		}
		if req.Specialization != nil {
			profile.Set("specialization", validate.FormatName(*req.Specialization))
		}
		profile.Set("years_of_experience", req.YearsOfExperience)
		profile.Set("about", req.About)
	default:
		return nil, nil, apperror.Validation("role", "insert a valid role, either Patient or Doctor")
	}

	return base, profile, nil
}
