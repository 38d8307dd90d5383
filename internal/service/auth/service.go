package auth

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/medbook/booking-api/internal/email"
	"github.com/medbook/booking-api/internal/model"
	"github.com/medbook/booking-api/internal/repository"
	"github.com/medbook/booking-api/internal/validate"
	"github.com/medbook/booking-api/pkg/apperror"
	"github.com/medbook/booking-api/pkg/logger"
	"github.com/medbook/booking-api/pkg/security"
	"github.com/medbook/booking-api/pkg/token"
)

const resetCodeTTL = 10 * time.Minute

// Service is the credential authority: registration, login and the
// password lifecycle.
type Service struct {
	users  repository.UserRepository
	codes  repository.CodeStore
	mailer email.Service
	hasher security.PasswordHasher
	tokens *token.Issuer
	log    *logger.Logger
	now    func() time.Time
}

func NewService(users repository.UserRepository, codes repository.CodeStore,
	mailer email.Service, hasher security.PasswordHasher, tokens *token.Issuer,
	log *logger.Logger) *Service {
	return &Service{
		users:  users,
		codes:  codes,
		mailer: mailer,
		hasher: hasher,
		tokens: tokens,
		log:    log,
		now:    time.Now,
	}
}

// invalidCredentials is the single login failure: an unknown email and
// a wrong password are indistinguishable to the caller.
func invalidCredentials() error {
	return apperror.NotFound("matching user")
}

// Register validates and persists a new account with its role profile
// and returns the principal with a signed token.
func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error) {
	user, err := s.buildUser(req)
	if err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperror.Validation("password", "please provide a valid password")
	}
	user.PasswordHash = hash

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	signed, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, apperror.Persistence(fmt.Errorf("failed to issue token: %w", err))
	}

	user.PasswordHash = ""
	s.log.Info("user registered", "user_id", user.ID.String(), "role", string(user.Role))
	return &model.AuthResponse{Token: signed, User: user}, nil
}

// buildUser normalizes and validates the registration payload, failing
// on the first invalid field.
func (s *Service) buildUser(req *model.RegisterRequest) (*model.User, error) {
	firstName := validate.FormatName(req.FirstName)
	lastName := validate.FormatName(req.LastName)
	gender := validate.FormatName(req.Gender)
	emailAddr := validate.NormalizeEmail(req.Email)
	phone := validate.NormalizePhone(req.PhoneNumber)

	if !validate.Name(firstName) || !validate.Name(lastName) {
		return nil, apperror.Validation("name", "please provide a valid name")
	}
	if !validate.Email(emailAddr) {
		return nil, apperror.Validation("email", "please provide a valid email")
	}
	if !validate.Phone(phone) {
		return nil, apperror.Validation("phone_number", "please provide a valid phone number")
	}
	birthDate, ok := validate.BirthDate(req.BirthDate, s.now())
	if !ok {
		return nil, apperror.Validation("birth_date", "please provide a valid birth date")
	}
	if !validate.Gender(gender) {
		return nil, apperror.Validation("gender", "please provide a valid gender")
	}
	if !validate.Password(req.Password) {
		return nil, apperror.Validation("password", "please provide a valid password")
	}

	user := &model.User{
		ID:          uuid.New(),
		FirstName:   firstName,
		LastName:    lastName,
		Email:       emailAddr,
		PhoneNumber: phone,
		Gender:      gender,
		BirthDate:   birthDate,
		Role:        req.Role,
		Status:      model.UserStatusActive,
	}

	hasPatientFields := req.BloodType != nil || req.ChronicDisease != nil
	hasDoctorFields := req.LicenseNumber != nil || req.Specialization != nil ||
		req.YearsOfExperience != nil || req.About != nil

	switch req.Role {
	case model.RolePatient:
		if hasDoctorFields {
			return nil, apperror.Validation("role", "doctor fields are not valid for a patient")
		}
		if req.BloodType == nil || *req.BloodType == "" {
			return nil, apperror.Validation("blood_type", "please provide a blood type")
		}
		user.Patient = &model.PatientProfile{
			BloodType:      validate.FormatName(*req.BloodType),
			ChronicDisease: req.ChronicDisease,
		}
	case model.RoleDoctor:
		if hasPatientFields {
			return nil, apperror.Validation("role", "patient fields are not valid for a doctor")
		}
		if req.LicenseNumber == nil || !validate.Numeric(*req.LicenseNumber) {
			return nil, apperror.Validation("license_number", "license number must be numbers")
		}
		if req.Specialization == nil || *req.Specialization == "" {
			return nil, apperror.Validation("specialization", "please provide a specialization")
		}
		user.Doctor = &model.DoctorProfile{
			LicenseNumber:     *req.LicenseNumber,
			Specialization:    validate.FormatName(*req.Specialization),
			YearsOfExperience: req.YearsOfExperience,
			About:             req.About,
		}
	default:
		return nil, apperror.Validation("role", "insert a valid role, either Patient or Doctor")
	}

	return user, nil
}

// Login verifies credentials and issues a token. A missing account and
// a wrong password produce the same failure.
func (s *Service) Login(ctx context.Context, emailAddr, password string) (*model.AuthResponse, error) {
	if emailAddr == "" || password == "" {
		return nil, apperror.Validation("email", "email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, validate.NormalizeEmail(emailAddr))
	if err != nil {
		if apperror.Is(err, apperror.CodeNotFound) {
			return nil, invalidCredentials()
		}
		return nil, err
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return nil, invalidCredentials()
	}

	signed, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, apperror.Persistence(fmt.Errorf("failed to issue token: %w", err))
	}

	user.PasswordHash = ""
	return &model.AuthResponse{Token: signed, User: user}, nil
}

// ChangePassword re-hashes after checking the current password of an
// already-authenticated principal.
func (s *Service) ChangePassword(ctx context.Context, principalID uuid.UUID, oldPassword, newPassword string) error {
	if !validate.Password(newPassword) {
		return apperror.Validation("new_password", "please provide a valid password")
	}

	user, err := s.users.Get(ctx, principalID)
	if err != nil {
		return err
	}

	if err := s.hasher.Compare(user.PasswordHash, oldPassword); err != nil {
		return apperror.Validation("old_password", "current password is incorrect")
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return apperror.Validation("new_password", "please provide a valid password")
	}

	return s.users.UpdatePassword(ctx, user.ID, hash)
}

// ForgotPassword issues a one-time reset code. It reports success even
// when the email is unknown so accounts cannot be enumerated.
func (s *Service) ForgotPassword(ctx context.Context, emailAddr string) error {
	emailAddr = validate.NormalizeEmail(emailAddr)

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if apperror.Is(err, apperror.CodeNotFound) {
			return nil
		}
		return err
	}

	code, err := generateResetCode()
	if err != nil {
		return apperror.Persistence(err)
	}

	if err := s.codes.StoreResetCode(ctx, user.Email, code, resetCodeTTL); err != nil {
		return err
	}

	// Delivery is best-effort: the code is stored either way and the
	// response must not reveal whether sending worked.
	if err := s.mailer.SendResetCode(ctx, user.Email, code); err != nil {
		s.log.Error(err, "failed to send reset code email")
	}
	return nil
}

// ResetPassword exchanges a valid one-time code for a new password.
func (s *Service) ResetPassword(ctx context.Context, req *model.ResetPasswordRequest) error {
	if !validate.Password(req.NewPassword) {
		return apperror.Validation("new_password", "please provide a valid password")
	}

	emailAddr := validate.NormalizeEmail(req.Email)
	ok, err := s.codes.CheckResetCode(ctx, emailAddr, req.Code)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.Validation("code", "invalid or expired reset code")
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		return err
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return apperror.Validation("new_password", "please provide a valid password")
	}

	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}

	if err := s.codes.InvalidateResetCode(ctx, emailAddr); err != nil {
		s.log.Error(err, "failed to invalidate reset code")
	}
	return nil
}

func generateResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
