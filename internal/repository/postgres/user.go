package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/medbook/booking-api/internal/model"
	"github.com/medbook/booking-api/internal/repository"
	"github.com/medbook/booking-api/pkg/apperror"
	"github.com/medbook/booking-api/pkg/query"
)

type userRepository struct {
	BaseRepository
}

func NewUserRepository(db *sqlx.DB) repository.UserRepository {
	return &userRepository{BaseRepository: NewBaseRepository(db)}
}

const userColumns = `user_id, first_name, last_name, email, phone_number,
		gender, birth_date, user_role, status, password_hash, created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	ctx, cancel := r.opContext(ctx)
	defer cancel()

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		userInsert := `
			INSERT INTO users (
				user_id, first_name, last_name, email, phone_number,
				gender, birth_date, user_role, status, password_hash,
				created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`
		_, err := tx.ExecContext(ctx, userInsert,
			user.ID,
			user.FirstName,
			user.LastName,
			user.Email,
			user.PhoneNumber,
			user.Gender,
			user.BirthDate,
			user.Role,
			user.Status,
			user.PasswordHash,
			user.CreatedAt,
			user.UpdatedAt,
		)
		if err != nil {
			return wrapError(err, "user")
		}

		switch user.Role {
		case model.RolePatient:
			user.Patient.UserID = user.ID
			_, err = tx.ExecContext(ctx,
				`INSERT INTO patients (user_id, blood_type, chronic_disease) VALUES ($1, $2, $3)`,
				user.ID, user.Patient.BloodType, user.Patient.ChronicDisease,
			)
		case model.RoleDoctor:
			user.Doctor.UserID = user.ID
			_, err = tx.ExecContext(ctx,
				`INSERT INTO doctors (user_id, license_number, specialization, years_of_experience, about)
				 VALUES ($1, $2, $3, $4, $5)`,
				user.ID, user.Doctor.LicenseNumber, user.Doctor.Specialization,
				user.Doctor.YearsOfExperience, user.Doctor.About,
			)
		case model.RoleAdmin:
			// No extension row.
		}
		if err != nil {
			return wrapError(err, "user profile")
		}
		return nil
	})
}

func (r *userRepository) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	ctx, cancel := r.opContext(ctx)
	defer cancel()

	var user model.User
	err := r.db.GetContext(ctx, &user,
		`SELECT `+userColumns+` FROM users WHERE user_id = $1`, id)
	if err != nil {
		return nil, wrapError(err, "user")
	}

	if err := r.loadProfile(ctx, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	ctx, cancel := r.opContext(ctx)
	defer cancel()

	var user model.User
	err := r.db.GetContext(ctx, &user,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	if err != nil {
		return nil, wrapError(err, "matching user")
	}

	if err := r.loadProfile(ctx, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) loadProfile(ctx context.Context, user *model.User) error {
	switch user.Role {
	case model.RolePatient:
		var profile model.PatientProfile
		err := r.db.GetContext(ctx, &profile,
			`SELECT user_id, blood_type, chronic_disease FROM patients WHERE user_id = $1`, user.ID)
		if err != nil {
			return wrapError(err, "patient profile")
		}
		user.Patient = &profile
	case model.RoleDoctor:
		var profile model.DoctorProfile
		err := r.db.GetContext(ctx, &profile,
			`SELECT user_id, license_number, specialization, years_of_experience, about
			 FROM doctors WHERE user_id = $1`, user.ID)
		if err != nil {
			return wrapError(err, "doctor profile")
		}
		user.Doctor = &profile
	case model.RoleAdmin:
		// No extension row.
	}
	return nil
}

func (r *userRepository) UpdateSparse(ctx context.Context, id uuid.UUID, role model.Role, base, profile *query.Patch) (*model.User, error) {
	ctx, cancel := r.opContext(ctx)
	defer cancel()

	baseEmpty := base == nil || base.IsEmpty()
	profileEmpty := profile == nil || profile.IsEmpty()
	if baseEmpty && profileEmpty {
		return nil, apperror.EmptyUpdate()
	}

	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if !baseEmpty {
			base.Set("updated_at", time.Now().UTC())
			stmt, args, err := query.BuildSparseUpdate("users", base, "user_id", id)
			if err != nil {
				return apperror.Persistence(err)
			}
			if err := execExpectingRow(ctx, tx, stmt, args, "user"); err != nil {
				return err
			}
		}

		if !profileEmpty {
			table := ""
			switch role {
			case model.RolePatient:
				table = "patients"
			case model.RoleDoctor:
				table = "doctors"
			default:
				return apperror.Validation("role", "role has no profile to update")
			}
			stmt, args, err := query.BuildSparseUpdate(table, profile, "user_id", id)
			if err != nil {
				return apperror.Persistence(err)
			}
			if err := execExpectingRow(ctx, tx, stmt, args, "user profile"); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.Get(ctx, id)
}

func execExpectingRow(ctx context.Context, tx *sqlx.Tx, stmt string, args []interface{}, resource string) error {
	result, err := tx.ExecContext(ctx, stmt, args...)
	if err != nil {
		return wrapError(err, resource)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperror.Persistence(err)
	}
	if rows == 0 {
		return apperror.NotFound(resource)
	}
	return nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	ctx, cancel := r.opContext(ctx)
	defer cancel()

	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = $1, updated_at = $2 WHERE user_id = $3`,
		passwordHash, time.Now().UTC(), id)
	if err != nil {
		return wrapError(err, "user")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperror.Persistence(err)
	}
	if rows == 0 {
		return apperror.NotFound("user")
	}
	return nil
}
