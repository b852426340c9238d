package api

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"confroom-backend/internal/database"
	"confroom-backend/internal/testutil"
	"confroom-backend/internal/types"
)

func TestAccountHandler_Get(t *testing.T) {
	user := database.User{
		Id:        1,
		Name:      "test",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	tcases := []struct {
		name        string
		userId      int
		mockUser    database.User
		expectedErr *ApiError
	}{
		{
			name:     "successfully retrieves account information",
			userId:   1,
			mockUser: user,
		},
		{
			name:        "fails with unauthorized access",
			userId:      0,
			expectedErr: NewUnauthorizedError(),
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			mockRepo := &database.MockConfRoomRepository{}
			defer mockRepo.AssertExpectations(t)

			if tc.mockUser != (database.User{}) {
				mockRepo.On("GetAccountById", tc.userId).Return(tc.mockUser, nil).Once()
			}

			app := newTestApp(t, mockRepo)

			rr := httptest.NewRecorder()
			var req *http.Request
			if tc.userId != 0 {
				req = authedRequest(http.MethodGet, "/api/account", nil, tc.userId)
			} else {
				req = httptest.NewRequest(http.MethodGet, "/api/account", nil)
			}
			app.account(rr, req)

			if tc.expectedErr != nil {
				assert.Equal(t, tc.expectedErr.StatusCode, rr.Code)
				return
			}

			assert.Equal(t, http.StatusOK, rr.Code)

			var got types.User
			assert.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
			assert.Equal(t, user.Id, got.Id)
			assert.Equal(t, user.Name, got.Name)
		})
	}
}

func TestUpdateProfileHandler(t *testing.T) {
	user := database.User{Id: 1, Name: "old", DisplayName: "Old Name"}

	tcases := []struct {
		name   string
		body   UpdateProfileRequest
		expect database.UpdateProfileParams
	}{
		{
			name:   "updates both fields",
			body:   UpdateProfileRequest{Name: "new", DisplayName: "New Name"},
			expect: database.UpdateProfileParams{UserId: 1, Name: "new", DisplayName: "New Name"},
		},
		{
			name:   "omitted fields are cleared",
			body:   UpdateProfileRequest{Name: "new"},
			expect: database.UpdateProfileParams{UserId: 1, Name: "new", DisplayName: ""},
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			mockRepo := &database.MockConfRoomRepository{}
			defer mockRepo.AssertExpectations(t)

			mockRepo.On("GetAccountById", user.Id).Return(user, nil).Once()

			updated := user
			updated.Name = tc.expect.Name
			updated.DisplayName = tc.expect.DisplayName
			mockRepo.On("UpdateProfile", tc.expect).Return(updated, nil).Once()

			app := newTestApp(t, mockRepo)

			rr := httptest.NewRecorder()
			req := authedRequest(http.MethodPut, "/api/account", testutil.JSONBody(t, tc.body), user.Id)
			app.updateProfile(rr, req)

			assert.Equal(t, http.StatusOK, rr.Code)

			var got types.User
			assert.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
			assert.Equal(t, tc.expect.Name, got.Name)
			assert.Equal(t, tc.expect.DisplayName, got.DisplayName)
		})
	}
}

func TestUpgradeToPremiumHandler(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	period := testConfig().PremiumPeriod

	tcases := []struct {
		name           string
		user           database.User
		expectedExpiry time.Time
	}{
		{
			name:           "first upgrade starts from now",
			user:           database.User{Id: 1},
			expectedExpiry: now.Add(period),
		},
		{
			name: "unexpired grant is extended from its expiry",
			user: database.User{
				Id:               1,
				IsPremium:        true,
				PremiumExpiresAt: sql.NullTime{Time: now.Add(10 * 24 * time.Hour), Valid: true},
			},
			expectedExpiry: now.Add(10 * 24 * time.Hour).Add(period),
		},
		{
			name: "lapsed grant restarts from now",
			user: database.User{
				Id:               1,
				IsPremium:        true,
				PremiumExpiresAt: sql.NullTime{Time: now.Add(-time.Hour), Valid: true},
			},
			expectedExpiry: now.Add(period),
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			mockRepo := &database.MockConfRoomRepository{}
			defer mockRepo.AssertExpectations(t)

			mockRepo.On("GetAccountById", tc.user.Id).Return(tc.user, nil).Once()

			upgraded := tc.user
			upgraded.IsPremium = true
			upgraded.PremiumExpiresAt = sql.NullTime{Time: tc.expectedExpiry, Valid: true}
			mockRepo.On("SetPremium", tc.user.Id, tc.expectedExpiry).Return(upgraded, nil).Once()

			app := newTestApp(t, mockRepo)
			app.now = func() time.Time { return now }

			rr := httptest.NewRecorder()
			req := authedRequest(http.MethodPost, "/api/account/premium", nil, tc.user.Id)
			app.upgradeToPremium(rr, req)

			assert.Equal(t, http.StatusOK, rr.Code)

			var got types.User
			assert.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
			assert.True(t, got.IsPremium)
			assert.NotNil(t, got.PremiumExpiresAt)
			assert.Equal(t, tc.expectedExpiry, got.PremiumExpiresAt.UTC())
		})
	}
}

func TestSetUserRoleHandler(t *testing.T) {
	admin := database.User{Id: 1, Role: database.RoleAdmin}
	member := database.User{Id: 2, Role: database.RoleMember}
	target := database.User{Id: 3, EmailAddress: "target@example.com", Role: database.RoleUser}

	tcases := []struct {
		name         string
		caller       database.User
		body         SetRoleRequest
		targetErr    error
		expectedCode int
	}{
		{
			name:         "admin sets a role",
			caller:       admin,
			body:         SetRoleRequest{Email: target.EmailAddress, Role: database.RoleMember},
			expectedCode: http.StatusOK,
		},
		{
			name:         "non-admin is forbidden",
			caller:       member,
			body:         SetRoleRequest{Email: target.EmailAddress, Role: database.RoleMember},
			expectedCode: http.StatusForbidden,
		},
		{
			name:         "unknown email is not found",
			caller:       admin,
			body:         SetRoleRequest{Email: "nobody@example.com", Role: database.RoleMember},
			targetErr:    sql.ErrNoRows,
			expectedCode: http.StatusNotFound,
		},
		{
			name:         "unknown role is rejected",
			caller:       admin,
			body:         SetRoleRequest{Email: target.EmailAddress, Role: "superuser"},
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			mockRepo := &database.MockConfRoomRepository{}
			defer mockRepo.AssertExpectations(t)

			mockRepo.On("GetAccountById", tc.caller.Id).Return(tc.caller, nil).Once()

			if tc.caller.IsAdmin() && tc.expectedCode != http.StatusBadRequest {
				if tc.targetErr != nil {
					mockRepo.On("GetAccountByEmail", tc.body.Email).Return(database.User{}, tc.targetErr).Once()
				} else {
					mockRepo.On("GetAccountByEmail", tc.body.Email).Return(target, nil).Once()
					mockRepo.On("SetRole", target.Id, tc.body.Role).Return(nil).Once()
				}
			}

			app := newTestApp(t, mockRepo)

			rr := httptest.NewRecorder()
			req := authedRequest(http.MethodPost, "/api/admin/roles", testutil.JSONBody(t, tc.body), tc.caller.Id)
			app.setUserRole(rr, req)

			assert.Equal(t, tc.expectedCode, rr.Code)
		})
	}
}

func TestGrantAdminAccessHandler(t *testing.T) {
	admin := database.User{Id: 1, Role: database.RoleAdmin}
	target := database.User{Id: 2, EmailAddress: "target@example.com", Role: database.RoleUser}
	alreadyAdmin := database.User{Id: 3, EmailAddress: "admin2@example.com", Role: database.RoleAdmin}

	t.Run("promotes a user to admin", func(t *testing.T) {
		mockRepo := &database.MockConfRoomRepository{}
		defer mockRepo.AssertExpectations(t)

		mockRepo.On("GetAccountById", admin.Id).Return(admin, nil).Once()
		mockRepo.On("GetAccountByEmail", target.EmailAddress).Return(target, nil).Once()
		mockRepo.On("SetRole", target.Id, database.RoleAdmin).Return(nil).Once()

		app := newTestApp(t, mockRepo)

		rr := httptest.NewRecorder()
		req := authedRequest(http.MethodPost, "/api/admin/grant",
			testutil.JSONBody(t, GrantAdminRequest{Email: target.EmailAddress}), admin.Id)
		app.grantAdminAccess(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("granting to an existing admin is a no-op", func(t *testing.T) {
		mockRepo := &database.MockConfRoomRepository{}
		defer mockRepo.AssertExpectations(t)

		mockRepo.On("GetAccountById", admin.Id).Return(admin, nil).Once()
		mockRepo.On("GetAccountByEmail", alreadyAdmin.EmailAddress).Return(alreadyAdmin, nil).Once()

		app := newTestApp(t, mockRepo)

		rr := httptest.NewRecorder()
		req := authedRequest(http.MethodPost, "/api/admin/grant",
			testutil.JSONBody(t, GrantAdminRequest{Email: alreadyAdmin.EmailAddress}), admin.Id)
		app.grantAdminAccess(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		mockRepo.AssertNotCalled(t, "SetRole")
	})
}
