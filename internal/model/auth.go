package model

// RegisterRequest carries a new account. Exactly one of the patient or
// doctor field groups must be present, matching Role.
type RegisterRequest struct {
	FirstName   string `json:"first_name" binding:"required"`
	LastName    string `json:"last_name" binding:"required"`
	PhoneNumber string `json:"phone_number" binding:"required"`
	Email       string `json:"email" binding:"required"`
	Gender      string `json:"gender" binding:"required"`
	BirthDate   string `json:"birth_date" binding:"required"`
	Password    string `json:"password" binding:"required"`
	Role        Role   `json:"role" binding:"required"`

	// Patient fields
	BloodType      *string `json:"blood_type"`
	ChronicDisease *string `json:"chronic_disease"`

	// Doctor fields
	LicenseNumber     *string `json:"license_number"`
	Specialization    *string `json:"specialization"`
	YearsOfExperience *int    `json:"years_of_experience"`
	About             *string `json:"about"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required"`
	Code        string `json:"code" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// AuthResponse is returned by register and login; the token is also set
// as an httpOnly cookie by the handler.
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
