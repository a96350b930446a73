package models

// LoginRequest holds the credentials posted by the login form.
type LoginRequest struct {
	StudentNumber string `json:"studentNumber" form:"studentNumber" validate:"required"`
	Password      string `json:"password" form:"password" validate:"required"`
}

// LoginResponse is returned by POST /auth/login.
type LoginResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Token   string      `json:"token"`
	User    UserProfile `json:"user"`
}

// ForgotPasswordRequest starts the reset flow.
type ForgotPasswordRequest struct {
	Email string `json:"email" form:"email" validate:"required,email"`
}

// ActivateAccountRequest activates a pre-provisioned student account.
type ActivateAccountRequest struct {
	StudentNumber string `json:"student_number" form:"student_number" validate:"required"`
	Email         string `json:"email" form:"email" validate:"required,email"`
	Password      string `json:"password" form:"password" validate:"required,min=6"`
}

// MessageResponse is the generic {success, message} envelope of the auth endpoints.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
