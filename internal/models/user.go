// Package models contains the data structures exchanged with the
// remote course/user/payment API.
package models

// Role values reported by the remote API
const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
	RoleUser    = "user"
)

// User represents an identity record owned by the remote API
type User struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Email            string   `json:"email"`
	Username         string   `json:"username"`
	Role             string   `json:"role"`
	Bio              string   `json:"bio,omitempty"`
	MobileNumber     string   `json:"mobile_number"`
	EmailVerified    bool     `json:"email_verified"`
	DateOfBirth      string   `json:"Date_of_birth,omitempty"`
	ProfilePicture   string   `json:"profile_picture_url,omitempty"`
	CreatedBy        string   `json:"created_by"`
	UpdatedBy        string   `json:"updated_by"`
	PurchasedCourses []string `json:"purchasedCourses,omitempty"`
}

// IsAdmin reports whether the user holds the admin role. Admin status
// is derived from the role only, never stored independently.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// NewUser is the payload for creating a user record
type NewUser struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	MobileNumber  string `json:"mobile_number"`
	Username      string `json:"username"`
	PasswordHash  string `json:"password_hash,omitempty"`
	Role          string `json:"role,omitempty"`
	Bio           string `json:"bio,omitempty"`
	DateOfBirth   string `json:"Date_of_birth,omitempty"`
	EmailVerified bool   `json:"email_verified,omitempty"`
	CreatedBy     string `json:"created_by,omitempty"`
	UpdatedBy     string `json:"updated_by,omitempty"`
}

// OTPSendResponse is returned by the OTP request endpoints
type OTPSendResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Token   string `json:"token"`
}

// OTPVerifyResponse is returned by the OTP verification endpoints
type OTPVerifyResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	User    *User  `json:"user"`
}

// EmailLoginResponse is returned by the email/password login endpoint
type EmailLoginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    *User  `json:"data"`
}

// ResetOTPResponse is returned by the password-reset OTP endpoint
type ResetOTPResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    struct {
		Token string `json:"token"`
	} `json:"data"`
}

// StatusResponse is the generic success/message envelope
type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ResetPasswordRequest is the payload for the reset-password endpoint
type ResetPasswordRequest struct {
	Email        string `json:"email,omitempty"`
	MobileNumber string `json:"mobile_number,omitempty"`
	OTP          string `json:"otp"`
	Password     string `json:"password"`
	Token        string `json:"token"`
}
