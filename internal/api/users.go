package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"confroom-backend/internal/database"
	"confroom-backend/internal/stats"
)

type UpdateProfileRequest struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}

type SetRoleRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

type GrantAdminRequest struct {
	Email string `json:"email"`
}

func (s *ConfRoomApp) account(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.getAccount(w, r)
	case http.MethodPut:
		s.updateProfile(w, r)
	default:
		errResp := NewMethodNotAllowedError()
		s.writeJson(w, errResp.StatusCode, errResp)
	}
}

func (s *ConfRoomApp) getAccount(w http.ResponseWriter, r *http.Request) {
	user, errResp := s.currentUser(r)
	if errResp != nil {
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, userView(user))
}

// updateProfile replaces both profile fields. An omitted or empty field
// clears the stored value rather than keeping it.
func (s *ConfRoomApp) updateProfile(w http.ResponseWriter, r *http.Request) {
	user, errResp := s.currentUser(r)
	if errResp != nil {
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	updated, err := s.db.UpdateProfile(database.UpdateProfileParams{
		UserId:      user.Id,
		Name:        req.Name,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, userView(updated))
}

// upgradeToPremium grants or extends premium. An unexpired grant is extended
// from its current expiry, an expired or missing one restarts from now.
func (s *ConfRoomApp) upgradeToPremium(w http.ResponseWriter, r *http.Request) {
	user, errResp := s.currentUser(r)
	if errResp != nil {
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	now := s.now()
	base := now
	if user.IsPremium && user.PremiumExpiresAt.Valid && user.PremiumExpiresAt.Time.After(now) {
		base = user.PremiumExpiresAt.Time
	}

	updated, err := s.db.SetPremium(user.Id, base.Add(s.cfg.PremiumPeriod))
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, userView(updated))
}

func (s *ConfRoomApp) setUserRole(w http.ResponseWriter, r *http.Request) {
	caller, errResp := s.currentUser(r)
	if errResp != nil {
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if !caller.IsAdmin() {
		errResp := NewForbiddenError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var req SetRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if req.Email == "" {
		errResp := NewValidationError("email is required")
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if req.Role != database.RoleAdmin && req.Role != database.RoleUser && req.Role != database.RoleMember {
		errResp := NewValidationError("unknown role")
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	target, err := s.db.GetAccountByEmail(req.Email)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.db.SetRole(target.Id, req.Role); err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, map[string]string{"email": req.Email, "role": req.Role})
}

// grantAdminAccess promotes an account to admin. Granting to an account that
// is already an admin is a no-op.
func (s *ConfRoomApp) grantAdminAccess(w http.ResponseWriter, r *http.Request) {
	caller, errResp := s.currentUser(r)
	if errResp != nil {
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if !caller.IsAdmin() {
		errResp := NewForbiddenError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var req GrantAdminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if req.Email == "" {
		errResp := NewValidationError("email is required")
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	target, err := s.db.GetAccountByEmail(req.Email)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if !target.IsAdmin() {
		if err := s.db.SetRole(target.Id, database.RoleAdmin); err != nil {
			errResp := NewInternalServerError(err)
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}
		s.stats.Incr(stats.AdminGrants)
	}

	s.writeJson(w, http.StatusOK, map[string]string{"email": req.Email, "role": database.RoleAdmin})
}
