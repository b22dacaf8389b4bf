package upstream

import (
	"context"
	"fmt"

	"github.com/wencuts/masterclass/internal/models"
)

// AuthAPI exposes the SMS-OTP and password authentication endpoints
type AuthAPI struct {
	client *Client
}

// NewAuthAPI creates the auth endpoint group
func NewAuthAPI(client *Client) *AuthAPI {
	return &AuthAPI{client: client}
}

// SendOTP requests an OTP for an existing user's mobile number and
// returns the exchange token binding the request to its verification.
func (a *AuthAPI) SendOTP(ctx context.Context, mobile string) (*models.OTPSendResponse, error) {
	var resp models.OTPSendResponse
	err := a.client.post(ctx, "/api/send-sms-otp-user/", map[string]string{"mobile_number": mobile}, &resp)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, rejected(resp.Message)
	}
	return &resp, nil
}

// SendOTPNewUser requests an OTP for a mobile number that is about to
// register a new account.
func (a *AuthAPI) SendOTPNewUser(ctx context.Context, mobile string) (*models.OTPSendResponse, error) {
	var resp models.OTPSendResponse
	err := a.client.post(ctx, "/api/send-sms-otp-new-user/", map[string]string{"mobile_number": mobile}, &resp)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, rejected(resp.Message)
	}
	return &resp, nil
}

// VerifyOTP exchanges a token and code for the user's identity
func (a *AuthAPI) VerifyOTP(ctx context.Context, token, otp string) (*models.OTPVerifyResponse, error) {
	var resp models.OTPVerifyResponse
	err := a.client.post(ctx, "/api/verify-sms-otp-user/", map[string]string{"token": token, "otp": otp}, &resp)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, rejected(resp.Message)
	}
	return &resp, nil
}

// VerifyOTPAndCreateUser verifies a registration OTP and creates the
// account in one round trip.
func (a *AuthAPI) VerifyOTPAndCreateUser(ctx context.Context, token, otp string, user models.NewUser) (*models.OTPVerifyResponse, error) {
	payload := struct {
		Token string `json:"token"`
		OTP   string `json:"otp"`
		models.NewUser
	}{Token: token, OTP: otp, NewUser: user}

	var resp models.OTPVerifyResponse
	err := a.client.post(ctx, "/api/verify-sms-otp-and-create-user/", payload, &resp)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, rejected(resp.Message)
	}
	return &resp, nil
}

// LoginWithEmail authenticates with email and password
func (a *AuthAPI) LoginWithEmail(ctx context.Context, email, password string) (*models.EmailLoginResponse, error) {
	var resp models.EmailLoginResponse
	err := a.client.post(ctx, "/user-login-with-email/", map[string]string{"email": email, "password": password}, &resp)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, rejected(resp.Message)
	}
	if resp.Data == nil {
		return nil, fmt.Errorf("login response missing user data")
	}
	return &resp, nil
}

// SendResetOTP requests a password-reset OTP delivered to the given
// email address.
func (a *AuthAPI) SendResetOTP(ctx context.Context, email string) (*models.ResetOTPResponse, error) {
	var resp models.ResetOTPResponse
	err := a.client.post(ctx, "/send-otp-to-contact-and-email-using-either/", map[string]string{"email": email}, &resp)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, rejected(resp.Message)
	}
	return &resp, nil
}

// ResetPasswordWithOTP sets a new password gated by a reset OTP
func (a *AuthAPI) ResetPasswordWithOTP(ctx context.Context, req models.ResetPasswordRequest) (*models.StatusResponse, error) {
	var resp models.StatusResponse
	err := a.client.post(ctx, "/reset-password-with-otp/", req, &resp)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, rejected(resp.Message)
	}
	return &resp, nil
}
