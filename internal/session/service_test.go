package session

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wencuts/masterclass/internal/errs"
	"github.com/wencuts/masterclass/internal/models"
	"github.com/wencuts/masterclass/internal/store"
	"go.uber.org/zap"
)

// sendResult is one canned response for an OTP send call
type sendResult struct {
	resp *models.OTPSendResponse
	err  error
}

// mockAuthAPI is a mock implementation of AuthAPI
type mockAuthAPI struct {
	sendResults   []sendResult
	sendMobiles   []string
	verifyResp    *models.OTPVerifyResponse
	verifyErr     error
	verifyToken   string
	verifyOTP     string
	createResp    *models.OTPVerifyResponse
	createErr     error
	createUser    models.NewUser
	loginResp     *models.EmailLoginResponse
	loginErr      error
	resetOTPResp  *models.ResetOTPResponse
	resetOTPErr   error
	resetResp     *models.StatusResponse
	resetErr      error
	resetReq      models.ResetPasswordRequest
}

func (m *mockAuthAPI) send(mobile string) (*models.OTPSendResponse, error) {
	m.sendMobiles = append(m.sendMobiles, mobile)
	if len(m.sendResults) == 0 {
		return &models.OTPSendResponse{Success: true, Token: "token"}, nil
	}
	r := m.sendResults[0]
	m.sendResults = m.sendResults[1:]
	return r.resp, r.err
}

func (m *mockAuthAPI) SendOTP(ctx context.Context, mobile string) (*models.OTPSendResponse, error) {
	return m.send(mobile)
}

func (m *mockAuthAPI) SendOTPNewUser(ctx context.Context, mobile string) (*models.OTPSendResponse, error) {
	return m.send(mobile)
}

func (m *mockAuthAPI) VerifyOTP(ctx context.Context, token, otp string) (*models.OTPVerifyResponse, error) {
	m.verifyToken = token
	m.verifyOTP = otp
	if m.verifyErr != nil {
		return nil, m.verifyErr
	}
	return m.verifyResp, nil
}

func (m *mockAuthAPI) VerifyOTPAndCreateUser(ctx context.Context, token, otp string, user models.NewUser) (*models.OTPVerifyResponse, error) {
	m.verifyToken = token
	m.verifyOTP = otp
	m.createUser = user
	if m.createErr != nil {
		return nil, m.createErr
	}
	return m.createResp, nil
}

func (m *mockAuthAPI) LoginWithEmail(ctx context.Context, email, password string) (*models.EmailLoginResponse, error) {
	if m.loginErr != nil {
		return nil, m.loginErr
	}
	return m.loginResp, nil
}

func (m *mockAuthAPI) SendResetOTP(ctx context.Context, email string) (*models.ResetOTPResponse, error) {
	if m.resetOTPErr != nil {
		return nil, m.resetOTPErr
	}
	return m.resetOTPResp, nil
}

func (m *mockAuthAPI) ResetPasswordWithOTP(ctx context.Context, req models.ResetPasswordRequest) (*models.StatusResponse, error) {
	m.resetReq = req
	if m.resetErr != nil {
		return nil, m.resetErr
	}
	return m.resetResp, nil
}

// mockUserAPI is a mock implementation of UserAPI
type mockUserAPI struct {
	user       *models.User
	getErr     error
	addErr     error
	addedUsers []models.NewUser
}

func (m *mockUserAPI) GetByMobile(ctx context.Context, mobile string) (*models.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.user, nil
}

func (m *mockUserAPI) Add(ctx context.Context, user models.NewUser) error {
	if m.addErr != nil {
		return m.addErr
	}
	m.addedUsers = append(m.addedUsers, user)
	return nil
}

// mockPersister is a mock implementation of Persister
type mockPersister struct {
	saved   *store.AuthState
	loaded  *store.AuthState
	loadErr error
	saveErr error
}

func (m *mockPersister) SaveAuth(st *store.AuthState) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = st
	return nil
}

func (m *mockPersister) LoadAuth() (*store.AuthState, error) {
	return m.loaded, m.loadErr
}

func newTestService(authAPI *mockAuthAPI, userAPI *mockUserAPI) *Service {
	logger, _ := zap.NewDevelopment()
	return NewService(authAPI, userAPI, nil, logger)
}

func TestService_RequestOTP(t *testing.T) {
	tests := []struct {
		name          string
		mobile        string
		sendResults   []sendResult
		expectedError bool
		wantMobiles   []string
		wantToken     bool
	}{
		{
			name:        "success with country code",
			mobile:      "9876543210",
			sendResults: []sendResult{{resp: &models.OTPSendResponse{Success: true, Token: "t1"}}},
			wantMobiles: []string{"919876543210"},
			wantToken:   true,
		},
		{
			name:   "rejected format retries with bare number",
			mobile: "9876543210",
			sendResults: []sendResult{
				{err: &errs.RemoteError{StatusCode: 400, Msg: "invalid mobile number"}},
				{resp: &models.OTPSendResponse{Success: true, Token: "t2"}},
			},
			wantMobiles: []string{"919876543210", "9876543210"},
			wantToken:   true,
		},
		{
			name:   "transport failure does not retry",
			mobile: "9876543210",
			sendResults: []sendResult{
				{err: errs.ErrNetwork},
			},
			expectedError: true,
			wantMobiles:   []string{"919876543210"},
		},
		{
			name:   "both attempts rejected",
			mobile: "9876543210",
			sendResults: []sendResult{
				{err: &errs.RemoteError{StatusCode: 400, Msg: "invalid mobile number"}},
				{err: &errs.RemoteError{StatusCode: 404, Msg: "user not found"}},
			},
			expectedError: true,
			wantMobiles:   []string{"919876543210", "9876543210"},
		},
		{
			name:          "invalid mobile rejected locally",
			mobile:        "12ab",
			expectedError: true,
			wantMobiles:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authAPI := &mockAuthAPI{sendResults: tt.sendResults}
			svc := newTestService(authAPI, &mockUserAPI{})

			err := svc.RequestOTP(context.Background(), tt.mobile)

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantMobiles, authAPI.sendMobiles)
			assert.Equal(t, tt.wantToken, svc.Snapshot().HasExchangeToken)
		})
	}
}

func TestService_RequestOTP_FallbackClearsStaleError(t *testing.T) {
	authAPI := &mockAuthAPI{sendResults: []sendResult{
		{err: &errs.RemoteError{StatusCode: 400, Msg: "invalid mobile number"}},
		{resp: &models.OTPSendResponse{Success: true, Token: "t2"}},
	}}
	svc := newTestService(authAPI, &mockUserAPI{})

	err := svc.RequestOTP(context.Background(), "9876543210")

	require.NoError(t, err)
	st := svc.Snapshot()
	assert.Empty(t, st.Error, "error from the first attempt must not survive a successful retry")
	assert.True(t, st.HasExchangeToken)
	assert.False(t, st.Loading)
}

func TestService_VerifyOTP(t *testing.T) {
	user := &models.User{ID: "u1", Name: "Asha", Role: models.RoleStudent, MobileNumber: "9876543210"}

	authAPI := &mockAuthAPI{
		sendResults: []sendResult{{resp: &models.OTPSendResponse{Success: true, Token: "t1"}}},
		verifyResp:  &models.OTPVerifyResponse{Success: true, User: user},
	}
	svc := newTestService(authAPI, &mockUserAPI{})

	require.NoError(t, svc.RequestOTP(context.Background(), "9876543210"))
	require.NoError(t, svc.VerifyOTP(context.Background(), "123456"))

	assert.Equal(t, "t1", authAPI.verifyToken)
	assert.Equal(t, "123456", authAPI.verifyOTP)

	st := svc.Snapshot()
	require.NotNil(t, st.User)
	assert.Equal(t, "u1", st.User.ID)
	assert.True(t, st.IsAuthenticated)
	assert.False(t, st.IsAdmin)
	assert.False(t, st.HasExchangeToken, "exchange token must be consumed by verification")
	assert.Empty(t, st.Error)
}

func TestService_VerifyOTP_WrongCode(t *testing.T) {
	authAPI := &mockAuthAPI{
		sendResults: []sendResult{{resp: &models.OTPSendResponse{Success: true, Token: "t1"}}},
		verifyErr:   &errs.RemoteError{StatusCode: 400, Msg: "Invalid OTP"},
	}
	svc := newTestService(authAPI, &mockUserAPI{})

	require.NoError(t, svc.RequestOTP(context.Background(), "9876543210"))
	err := svc.VerifyOTP(context.Background(), "000000")

	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrInvalidCode)

	st := svc.Snapshot()
	assert.False(t, st.IsAuthenticated)
	assert.Nil(t, st.User)
	assert.False(t, st.HasExchangeToken, "a failed attempt still consumes the token")
	assert.Equal(t, "Invalid OTP", st.Error)

	// A second attempt without a fresh OTP request must fail locally.
	err = svc.VerifyOTP(context.Background(), "123456")
	assert.ErrorIs(t, err, errs.ErrSessionExpired)
}

func TestService_VerifyOTP_TransportFailure(t *testing.T) {
	authAPI := &mockAuthAPI{
		sendResults: []sendResult{{resp: &models.OTPSendResponse{Success: true, Token: "t1"}}},
		verifyErr:   fmt.Errorf("%w: POST /api/verify-sms-otp-user/: dial tcp: connection refused", errs.ErrNetwork),
	}
	svc := newTestService(authAPI, &mockUserAPI{})

	require.NoError(t, svc.RequestOTP(context.Background(), "9876543210"))
	err := svc.VerifyOTP(context.Background(), "123456")

	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrNetwork)
	assert.NotErrorIs(t, err, errs.ErrInvalidCode, "an unreachable remote says nothing about the code")

	// The raw transport text is logged, never shown.
	assert.Equal(t, "Invalid OTP", svc.Snapshot().Error)
}

func TestService_VerifyOTP_WithoutToken(t *testing.T) {
	svc := newTestService(&mockAuthAPI{}, &mockUserAPI{})

	err := svc.VerifyOTP(context.Background(), "123456")

	assert.ErrorIs(t, err, errs.ErrSessionExpired)
	assert.Equal(t, "OTP session expired. Please request a new OTP", svc.Snapshot().Error)
}

func TestService_VerifyOTP_BadCodeLength(t *testing.T) {
	svc := newTestService(&mockAuthAPI{}, &mockUserAPI{})

	err := svc.VerifyOTP(context.Background(), "123")

	assert.ErrorIs(t, err, errs.ErrValidation)
	assert.Empty(t, svc.Snapshot().Error, "local validation never reaches the error state")
}

func TestService_RegisterWithOTP(t *testing.T) {
	user := &models.User{ID: "u2", Name: "Ravi", Role: models.RoleStudent}

	tests := []struct {
		name          string
		createResp    *models.OTPVerifyResponse
		createErr     error
		expectedError error
		wantAuth      bool
	}{
		{
			name:       "success",
			createResp: &models.OTPVerifyResponse{Success: true, User: user},
			wantAuth:   true,
		},
		{
			name:          "existing identity",
			createErr:     &errs.RemoteError{StatusCode: 409, Msg: "User already exists"},
			expectedError: errs.ErrAlreadyExists,
		},
		{
			name:          "other rejection",
			createErr:     &errs.RemoteError{StatusCode: 400, Msg: "Invalid OTP"},
			expectedError: &errs.RemoteError{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authAPI := &mockAuthAPI{
				sendResults: []sendResult{{resp: &models.OTPSendResponse{Success: true, Token: "t1"}}},
				createResp:  tt.createResp,
				createErr:   tt.createErr,
			}
			svc := newTestService(authAPI, &mockUserAPI{})

			require.NoError(t, svc.RequestRegistrationOTP(context.Background(), "9876543210"))
			err := svc.RegisterWithOTP(context.Background(), "Ravi", "ravi@example.com", "9876543210", "123456")

			if tt.expectedError != nil {
				require.Error(t, err)
				if _, remote := tt.expectedError.(*errs.RemoteError); remote {
					var re *errs.RemoteError
					assert.ErrorAs(t, err, &re)
				} else {
					assert.ErrorIs(t, err, tt.expectedError)
				}
			} else {
				require.NoError(t, err)
				assert.Equal(t, "ravi", authAPI.createUser.Username)
				assert.Equal(t, models.RoleStudent, authAPI.createUser.Role)
				assert.Equal(t, "otp_user", authAPI.createUser.PasswordHash)
			}
			assert.Equal(t, tt.wantAuth, svc.Snapshot().IsAuthenticated)
		})
	}
}

func TestService_LoginWithEmail(t *testing.T) {
	admin := &models.User{ID: "a1", Name: "Admin", Role: models.RoleAdmin}

	authAPI := &mockAuthAPI{loginResp: &models.EmailLoginResponse{Success: true, Data: admin}}
	svc := newTestService(authAPI, &mockUserAPI{})

	require.NoError(t, svc.LoginWithEmail(context.Background(), "admin@example.com", "secret"))

	st := svc.Snapshot()
	assert.True(t, st.IsAuthenticated)
	assert.True(t, st.IsAdmin, "admin status derives from the role")
}

func TestService_LoginWithEmail_Rejected(t *testing.T) {
	authAPI := &mockAuthAPI{loginErr: &errs.RemoteError{StatusCode: 401, Msg: "Incorrect password"}}
	svc := newTestService(authAPI, &mockUserAPI{})

	err := svc.LoginWithEmail(context.Background(), "user@example.com", "wrong")

	require.Error(t, err)
	st := svc.Snapshot()
	assert.False(t, st.IsAuthenticated)
	assert.Equal(t, "Incorrect password", st.Error)
}

func TestService_LoginWithEmail_Validation(t *testing.T) {
	svc := newTestService(&mockAuthAPI{}, &mockUserAPI{})

	assert.ErrorIs(t, svc.LoginWithEmail(context.Background(), "", "secret"), errs.ErrValidation)
	assert.ErrorIs(t, svc.LoginWithEmail(context.Background(), "not-an-email", "secret"), errs.ErrValidation)
}

func TestService_RegisterDirect(t *testing.T) {
	tests := []struct {
		name          string
		password      string
		userAPI       *mockUserAPI
		expectedError error
		wantAuth      bool
	}{
		{
			name:     "success",
			password: "Valid#Pass1",
			userAPI:  &mockUserAPI{getErr: errs.ErrNotFound},
			wantAuth: true,
		},
		{
			name:          "duplicate mobile",
			password:      "Valid#Pass1",
			userAPI:       &mockUserAPI{user: &models.User{ID: "u9"}},
			expectedError: errs.ErrAlreadyExists,
		},
		{
			name:          "weak password",
			password:      "longenough",
			userAPI:       &mockUserAPI{getErr: errs.ErrNotFound},
			expectedError: errs.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(&mockAuthAPI{}, tt.userAPI)

			err := svc.RegisterDirect(context.Background(), "Asha", "asha@example.com", "9876543210", tt.password)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				require.NoError(t, err)
				require.Len(t, tt.userAPI.addedUsers, 1)
				assert.Equal(t, tt.password, tt.userAPI.addedUsers[0].PasswordHash)
			}

			st := svc.Snapshot()
			assert.Equal(t, tt.wantAuth, st.IsAuthenticated)
			if tt.wantAuth {
				require.NotNil(t, st.User)
				assert.Equal(t, "9876543210", st.User.ID)
				assert.Equal(t, models.RoleStudent, st.User.Role)
				assert.Equal(t, "self", st.User.CreatedBy)
			}
		})
	}
}

func TestService_RegisterDirect_PrecheckFailureProceeds(t *testing.T) {
	// The lookup fails for a reason other than "no such user"; the
	// create still goes through and the remote arbitrates duplicates.
	userAPI := &mockUserAPI{getErr: &errs.RemoteError{StatusCode: 500, Msg: "internal error"}}
	svc := newTestService(&mockAuthAPI{}, userAPI)

	err := svc.RegisterDirect(context.Background(), "Asha", "asha@example.com", "9876543210", "Valid#Pass1")

	require.NoError(t, err)
	assert.Len(t, userAPI.addedUsers, 1)
}

func TestService_ResetPassword(t *testing.T) {
	authAPI := &mockAuthAPI{
		resetOTPResp: &models.ResetOTPResponse{Success: true},
		resetResp:    &models.StatusResponse{Success: true},
	}
	authAPI.resetOTPResp.Data.Token = "reset-token"
	svc := newTestService(authAPI, &mockUserAPI{})

	require.NoError(t, svc.RequestPasswordReset(context.Background(), "user@example.com"))
	assert.True(t, svc.Snapshot().HasExchangeToken)

	require.NoError(t, svc.ResetPassword(context.Background(), "user@example.com", "123456", "New#Pass1", "New#Pass1"))

	assert.Equal(t, "reset-token", authAPI.resetReq.Token)
	assert.Equal(t, "New#Pass1", authAPI.resetReq.Password)
	assert.False(t, svc.Snapshot().HasExchangeToken)
}

func TestService_ResetPassword_ConfirmMismatch(t *testing.T) {
	svc := newTestService(&mockAuthAPI{}, &mockUserAPI{})

	err := svc.ResetPassword(context.Background(), "user@example.com", "123456", "New#Pass1", "Other#Pass1")

	assert.ErrorIs(t, err, errs.ErrCodeMismatch)
}

func TestService_ResetPassword_TokenConsumedOnFailure(t *testing.T) {
	authAPI := &mockAuthAPI{resetOTPResp: &models.ResetOTPResponse{Success: true}}
	authAPI.resetOTPResp.Data.Token = "reset-token"
	authAPI.resetErr = &errs.RemoteError{StatusCode: 400, Msg: "Invalid OTP"}
	svc := newTestService(authAPI, &mockUserAPI{})

	require.NoError(t, svc.RequestPasswordReset(context.Background(), "user@example.com"))
	require.Error(t, svc.ResetPassword(context.Background(), "user@example.com", "123456", "New#Pass1", "New#Pass1"))

	assert.False(t, svc.Snapshot().HasExchangeToken)

	err := svc.ResetPassword(context.Background(), "user@example.com", "123456", "New#Pass1", "New#Pass1")
	assert.ErrorIs(t, err, errs.ErrSessionExpired)
}

func TestService_Logout(t *testing.T) {
	user := &models.User{ID: "u1", Role: models.RoleAdmin}
	authAPI := &mockAuthAPI{loginResp: &models.EmailLoginResponse{Success: true, Data: user}}
	persister := &mockPersister{}
	logger, _ := zap.NewDevelopment()
	svc := NewService(authAPI, &mockUserAPI{}, persister, logger)

	require.NoError(t, svc.LoginWithEmail(context.Background(), "admin@example.com", "secret"))

	svc.Logout()
	svc.Logout() // idempotent

	st := svc.Snapshot()
	assert.Nil(t, st.User)
	assert.False(t, st.IsAuthenticated)
	assert.False(t, st.IsAdmin)
	assert.Empty(t, st.Error)
	assert.False(t, st.HasExchangeToken)

	require.NotNil(t, persister.saved)
	assert.Nil(t, persister.saved.User)
	assert.False(t, persister.saved.IsAuthenticated)
}

func TestService_MarkPurchased(t *testing.T) {
	user := &models.User{ID: "u1", Role: models.RoleStudent}
	authAPI := &mockAuthAPI{loginResp: &models.EmailLoginResponse{Success: true, Data: user}}
	persister := &mockPersister{}
	logger, _ := zap.NewDevelopment()
	svc := NewService(authAPI, &mockUserAPI{}, persister, logger)

	require.NoError(t, svc.LoginWithEmail(context.Background(), "u@example.com", "secret"))

	require.NoError(t, svc.MarkPurchased("course_42"))
	require.NoError(t, svc.MarkPurchased("course_42")) // no duplicate entry

	st := svc.Snapshot()
	require.NotNil(t, st.User)
	assert.Equal(t, []string{"course_42"}, st.User.PurchasedCourses)

	require.NotNil(t, persister.saved)
	require.NotNil(t, persister.saved.User)
	assert.Equal(t, []string{"course_42"}, persister.saved.User.PurchasedCourses)
}

func TestService_MarkPurchased_NoSession(t *testing.T) {
	svc := newTestService(&mockAuthAPI{}, &mockUserAPI{})

	assert.ErrorIs(t, svc.MarkPurchased("course_42"), errs.ErrValidation)
}

func TestNewService_RestoresPersistedState(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	persister := &mockPersister{loaded: &store.AuthState{
		User:            &models.User{ID: "u1", Role: models.RoleStudent},
		IsAuthenticated: true,
		IsAdmin:         true, // stale flag must not be trusted
	}}

	svc := NewService(&mockAuthAPI{}, &mockUserAPI{}, persister, logger)

	st := svc.Snapshot()
	assert.True(t, st.IsAuthenticated)
	assert.False(t, st.IsAdmin, "admin status is recomputed from the role")
}

func TestNewService_RestoreFailureStartsEmpty(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	persister := &mockPersister{loadErr: errors.New("corrupt record")}

	svc := NewService(&mockAuthAPI{}, &mockUserAPI{}, persister, logger)

	st := svc.Snapshot()
	assert.Nil(t, st.User)
	assert.False(t, st.IsAuthenticated)
}

func TestService_ClearError(t *testing.T) {
	authAPI := &mockAuthAPI{loginErr: &errs.RemoteError{StatusCode: 401, Msg: "Incorrect password"}}
	svc := newTestService(authAPI, &mockUserAPI{})

	require.Error(t, svc.LoginWithEmail(context.Background(), "user@example.com", "wrong"))
	require.NotEmpty(t, svc.Snapshot().Error)

	svc.ClearError()

	assert.Empty(t, svc.Snapshot().Error)
}
