// Package session holds the authenticated identity and implements the
// OTP/password authentication state machine over the remote API.
package session

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/wencuts/masterclass/internal/errs"
	"github.com/wencuts/masterclass/internal/models"
	"github.com/wencuts/masterclass/internal/store"
	"go.uber.org/zap"
)

// dialCodePrefix is the numeric country code tried first when
// requesting an OTP. Some accounts were stored without it, so a
// rejected request is retried once with the bare number.
const dialCodePrefix = "91"

// AuthAPI is the interface that wraps the remote authentication endpoints
type AuthAPI interface {
	// Method SendOTP requests a login OTP for an existing user's mobile
	// number and returns the exchange token for verification.
	SendOTP(ctx context.Context, mobile string) (*models.OTPSendResponse, error)
	// Method SendOTPNewUser requests a registration OTP for a mobile
	// number without an account yet.
	SendOTPNewUser(ctx context.Context, mobile string) (*models.OTPSendResponse, error)
	// Method VerifyOTP exchanges a token and code for the user identity.
	VerifyOTP(ctx context.Context, token, otp string) (*models.OTPVerifyResponse, error)
	// Method VerifyOTPAndCreateUser verifies a registration OTP and
	// creates the account in a single round trip.
	VerifyOTPAndCreateUser(ctx context.Context, token, otp string, user models.NewUser) (*models.OTPVerifyResponse, error)
	// Method LoginWithEmail authenticates with email and password.
	LoginWithEmail(ctx context.Context, email, password string) (*models.EmailLoginResponse, error)
	// Method SendResetOTP requests a password-reset OTP by email.
	SendResetOTP(ctx context.Context, email string) (*models.ResetOTPResponse, error)
	// Method ResetPasswordWithOTP sets a new password gated by a reset OTP.
	ResetPasswordWithOTP(ctx context.Context, req models.ResetPasswordRequest) (*models.StatusResponse, error)
}

// UserAPI is the interface that wraps the remote user record endpoints
type UserAPI interface {
	// Method GetByMobile looks up a user by mobile number, returning
	// errs.ErrNotFound when no record exists.
	GetByMobile(ctx context.Context, mobile string) (*models.User, error)
	// Method Add creates a new user record.
	Add(ctx context.Context, user models.NewUser) error
}

// Persister is the interface that wraps durable session persistence
type Persister interface {
	SaveAuth(st *store.AuthState) error
	LoadAuth() (*store.AuthState, error)
}

// State is a read-only snapshot of the session for handlers
type State struct {
	User             *models.User `json:"user"`
	IsAuthenticated  bool         `json:"isAuthenticated"`
	IsAdmin          bool         `json:"isAdmin"`
	Loading          bool         `json:"loading"`
	Error            string       `json:"error,omitempty"`
	HasExchangeToken bool         `json:"hasExchangeToken"`
}

// Service is the session store. It is constructed once at process
// start and injected into every component that needs the identity.
type Service struct {
	authAPI   AuthAPI
	userAPI   UserAPI
	persister Persister
	logger    *zap.Logger

	mu              sync.Mutex
	user            *models.User
	isAuthenticated bool
	isAdmin         bool
	loading         bool
	errMsg          string
	otpToken        string
	otpDestination  string
}

// NewService creates the session store and restores any persisted
// identity. Admin status is recomputed from the restored role, never
// trusted from storage.
func NewService(authAPI AuthAPI, userAPI UserAPI, persister Persister, logger *zap.Logger) *Service {
	s := &Service{
		authAPI:   authAPI,
		userAPI:   userAPI,
		persister: persister,
		logger:    logger,
	}

	if persister != nil {
		st, err := persister.LoadAuth()
		if err != nil {
			logger.Warn("failed to restore session state", zap.Error(err))
		} else if st != nil && st.User != nil {
			s.user = st.User
			s.isAuthenticated = st.IsAuthenticated
			s.isAdmin = st.User.IsAdmin()
		}
	}

	return s
}

var mobileRegex = regexp.MustCompile(`^[0-9]{10,15}$`)

// RequestOTP requests a login OTP for the given mobile number. The
// country-code encoding is tried first; if the remote rejects it the
// request is retried exactly once with the bare number, and the stale
// error from the first attempt is discarded.
func (s *Service) RequestOTP(ctx context.Context, mobile string) error {
	return s.requestOTP(ctx, mobile, s.authAPI.SendOTP)
}

// RequestRegistrationOTP requests an OTP for a mobile number that is
// about to create an account, with the same format-fallback contract
// as RequestOTP.
func (s *Service) RequestRegistrationOTP(ctx context.Context, mobile string) error {
	return s.requestOTP(ctx, mobile, s.authAPI.SendOTPNewUser)
}

func (s *Service) requestOTP(ctx context.Context, mobile string, send func(context.Context, string) (*models.OTPSendResponse, error)) error {
	if !mobileRegex.MatchString(mobile) {
		return fmt.Errorf("%w: please enter a valid mobile number", errs.ErrValidation)
	}

	s.begin()

	destination := dialCodePrefix + mobile
	resp, err := send(ctx, destination)
	if err != nil {
		var re *errs.RemoteError
		if !errors.As(err, &re) {
			// Transport failure: the fallback is for format
			// rejections only.
			return s.fail(err, "Failed to send OTP")
		}

		// Deliberately broad: any rejection triggers the retry, not
		// just format complaints. The remote gives no structured way
		// to tell a bad encoding from other rejections.
		s.logger.Info("OTP request rejected, retrying with legacy number format",
			zap.String("message", re.Msg))

		destination = mobile
		resp, err = send(ctx, destination)
		if err != nil {
			return s.fail(err, "Failed to send OTP")
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	s.errMsg = ""
	s.otpToken = resp.Token
	s.otpDestination = destination
	return nil
}

// VerifyOTP exchanges the held token and the submitted code for an
// authenticated session. The exchange token is consumed by the attempt
// whatever its outcome; a failed verification requires a fresh
// RequestOTP.
func (s *Service) VerifyOTP(ctx context.Context, code string) error {
	if len(code) != 6 {
		return fmt.Errorf("%w: please enter a valid 6-digit OTP", errs.ErrValidation)
	}

	token, err := s.takeToken("OTP session expired. Please request a new OTP")
	if err != nil {
		return err
	}

	s.begin()
	resp, err := s.authAPI.VerifyOTP(ctx, token, code)
	if err != nil {
		// Only a remote rejection means the code was wrong. Transport
		// failures stay untagged so the generic fallback is shown.
		var re *errs.RemoteError
		if errors.As(err, &re) {
			return s.fail(fmt.Errorf("%w: %w", errs.ErrInvalidCode, err), "Invalid OTP")
		}
		return s.fail(err, "Invalid OTP")
	}

	s.install(resp.User)
	return nil
}

// RegisterWithOTP verifies a registration OTP and installs the created
// account as the session.
func (s *Service) RegisterWithOTP(ctx context.Context, name, email, mobile, code string) error {
	if name == "" || email == "" {
		return fmt.Errorf("%w: please fill all fields", errs.ErrValidation)
	}
	if err := validateEmail(email); err != nil {
		return err
	}
	if len(code) != 6 {
		return fmt.Errorf("%w: please enter a valid 6-digit OTP", errs.ErrValidation)
	}

	token, err := s.takeToken("OTP session expired. Please request a new OTP")
	if err != nil {
		return err
	}

	s.begin()
	resp, err := s.authAPI.VerifyOTPAndCreateUser(ctx, token, code, newUserRecord(name, email, mobile, ""))
	if err != nil {
		if isAlreadyExists(err) {
			return s.fail(fmt.Errorf("%w: %w", errs.ErrAlreadyExists, err), "User already exists")
		}
		return s.fail(err, "Registration failed")
	}

	s.install(resp.User)
	return nil
}

// LoginWithEmail authenticates directly with email and password. No
// exchange token is involved.
func (s *Service) LoginWithEmail(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return fmt.Errorf("%w: please fill all fields", errs.ErrValidation)
	}
	if err := validateEmail(email); err != nil {
		return err
	}

	s.begin()
	resp, err := s.authAPI.LoginWithEmail(ctx, email, password)
	if err != nil {
		return s.fail(err, "Login failed")
	}

	s.install(resp.Data)
	return nil
}

// RegisterDirect creates an account with a password and installs the
// synthesized identity as an authenticated session. The duplicate
// pre-check by mobile number is read-before-write; a concurrent
// duplicate registration is left for the remote system to reject.
func (s *Service) RegisterDirect(ctx context.Context, name, email, mobile, password string) error {
	if name == "" || email == "" || mobile == "" {
		return fmt.Errorf("%w: please fill all fields", errs.ErrValidation)
	}
	if err := validateEmail(email); err != nil {
		return err
	}
	if err := ValidatePassword(password); err != nil {
		return err
	}

	s.begin()

	existing, err := s.userAPI.GetByMobile(ctx, mobile)
	if err != nil && !errors.Is(err, errs.ErrNotFound) {
		// The pre-check only narrows the common case; on lookup
		// failure the create proceeds and the remote arbitrates.
		s.logger.Warn("duplicate pre-check failed, proceeding with registration", zap.Error(err))
	}
	if existing != nil {
		return s.fail(errs.ErrAlreadyExists, "User already exists")
	}

	if err := s.userAPI.Add(ctx, newUserRecord(name, email, mobile, password)); err != nil {
		return s.fail(err, "Registration failed")
	}

	s.install(&models.User{
		ID:           mobile,
		Name:         name,
		Email:        email,
		Username:     usernameFromEmail(email),
		Role:         models.RoleStudent,
		MobileNumber: mobile,
		CreatedBy:    "self",
		UpdatedBy:    "self",
	})
	return nil
}

// RequestPasswordReset requests a reset OTP delivered to the given
// email address and stores the reset exchange token.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	if err := validateEmail(email); err != nil {
		return err
	}

	s.begin()
	resp, err := s.authAPI.SendResetOTP(ctx, email)
	if err != nil {
		return s.fail(err, "Failed to send reset OTP")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	s.errMsg = ""
	s.otpToken = resp.Data.Token
	s.otpDestination = email
	return nil
}

// ResetPassword sets a new password gated by the reset OTP. The reset
// exchange token is consumed by the attempt whatever its outcome.
func (s *Service) ResetPassword(ctx context.Context, email, code, newPassword, confirm string) error {
	if newPassword != confirm {
		return fmt.Errorf("%w: passwords do not match", errs.ErrCodeMismatch)
	}
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}

	token, err := s.takeToken("Reset session expired. Please request a new OTP")
	if err != nil {
		return err
	}

	s.begin()
	_, err = s.authAPI.ResetPasswordWithOTP(ctx, models.ResetPasswordRequest{
		Email:    email,
		OTP:      code,
		Password: newPassword,
		Token:    token,
	})
	if err != nil {
		return s.fail(err, "Failed to reset password")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	s.errMsg = ""
	return nil
}

// Logout clears the session, the error state and any outstanding
// exchange token. It is idempotent.
func (s *Service) Logout() {
	s.mu.Lock()
	s.user = nil
	s.isAuthenticated = false
	s.isAdmin = false
	s.errMsg = ""
	s.otpToken = ""
	s.otpDestination = ""
	s.mu.Unlock()

	s.persist()
}

// ClearError discards the current error so a stale message never
// labels a new attempt.
func (s *Service) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errMsg = ""
}

// MarkPurchased appends a course to the session's purchased list and
// persists the session. It is the single entry point through which
// entitlement is granted client-side.
func (s *Service) MarkPurchased(courseID string) error {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: no authenticated session", errs.ErrValidation)
	}
	if !slices.Contains(s.user.PurchasedCourses, courseID) {
		s.user.PurchasedCourses = append(s.user.PurchasedCourses, courseID)
	}
	s.mu.Unlock()

	s.persist()
	return nil
}

// Snapshot returns a copy of the current session state
func (s *Service) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	var user *models.User
	if s.user != nil {
		u := *s.user
		u.PurchasedCourses = slices.Clone(s.user.PurchasedCourses)
		user = &u
	}

	return State{
		User:             user,
		IsAuthenticated:  s.isAuthenticated,
		IsAdmin:          s.isAdmin,
		Loading:          s.loading,
		Error:            s.errMsg,
		HasExchangeToken: s.otpToken != "",
	}
}

// begin marks a remote attempt as in flight and discards stale errors
func (s *Service) begin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = true
	s.errMsg = ""
}

// fail normalizes the failure into the store's error message,
// preferring the remote-provided text over the fallback.
func (s *Service) fail(err error, fallback string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	s.errMsg = errs.Message(err, fallback)
	return err
}

// takeToken consumes the outstanding exchange token. The token is
// bound to a single verification attempt and is never reused.
func (s *Service) takeToken(expiredMsg string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.otpToken == "" {
		s.errMsg = expiredMsg
		return "", errs.ErrSessionExpired
	}
	token := s.otpToken
	s.otpToken = ""
	s.otpDestination = ""
	return token, nil
}

// install sets the authenticated identity and persists it
func (s *Service) install(user *models.User) {
	s.mu.Lock()
	s.user = user
	s.isAuthenticated = user != nil
	s.isAdmin = user.IsAdmin()
	s.loading = false
	s.errMsg = ""
	s.otpToken = ""
	s.otpDestination = ""
	s.mu.Unlock()

	s.persist()
}

func (s *Service) persist() {
	if s.persister == nil {
		return
	}

	s.mu.Lock()
	st := &store.AuthState{
		User:            s.user,
		IsAuthenticated: s.isAuthenticated,
		IsAdmin:         s.isAdmin,
	}
	s.mu.Unlock()

	if err := s.persister.SaveAuth(st); err != nil {
		s.logger.Warn("failed to persist session state", zap.Error(err))
	}
}

// newUserRecord builds the user creation payload the way the remote
// API expects it.
func newUserRecord(name, email, mobile, password string) models.NewUser {
	passwordHash := password
	if passwordHash == "" {
		// Placeholder for the legacy OTP registration flow.
		passwordHash = "otp_user"
	}
	return models.NewUser{
		Name:         name,
		Email:        email,
		MobileNumber: mobile,
		Username:     usernameFromEmail(email),
		PasswordHash: passwordHash,
		Role:         models.RoleStudent,
		CreatedBy:    "self",
		UpdatedBy:    "self",
	}
}

func usernameFromEmail(email string) string {
	name, _, _ := strings.Cut(email, "@")
	return name
}

// isAlreadyExists reports whether a remote rejection describes an
// existing identity.
func isAlreadyExists(err error) bool {
	var re *errs.RemoteError
	return errors.As(err, &re) && strings.Contains(strings.ToLower(re.Msg), "exist")
}
