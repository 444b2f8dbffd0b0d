// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 UserCenter Contributors

package web

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/codeplanet/usercenter/internal/session"
	"github.com/codeplanet/usercenter/pkg/errutil"
)

type registerRequest struct {
	Handle     string `json:"userAccount"`
	Credential string `json:"userPassword"`
	Confirm    string `json:"checkPassword"`
	PlanetCode string `json:"planetCode"`
}

type loginRequest struct {
	Handle     string `json:"userAccount"`
	Credential string `json:"userPassword"`
}

type registerResponse struct {
	ID int64 `json:"id"`
}

type deleteResponse struct {
	Response bool `json:"response"`
}

// openSession resolves the caller's session slot from the request cookie.
func (s *Server) openSession(r *http.Request) *session.Slot {
	var token string
	if c, err := r.Cookie(session.CookieName); err == nil {
		token = c.Value
	}
	return s.sessions.Open(r.Context(), token)
}

// writeSessionCookie reflects slot state changes onto the response cookie:
// a newly created session sets it, a cleared one expires it.
func (s *Server) writeSessionCookie(w http.ResponseWriter, slot *session.Slot) {
	if token, ok := slot.IssuedToken(); ok {
		http.SetCookie(w, &http.Cookie{
			Name:     session.CookieName,
			Value:    token,
			Path:     "/",
			MaxAge:   int(s.cfg.SessionTTL.Seconds()),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		return
	}
	if slot.Cleared() {
		http.SetCookie(w, &http.Cookie{
			Name:     session.CookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) int {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, s.logger, errorResponse(codeParamsError, "params error", "malformed request body"))
		return codeParamsError
	}

	id, err := s.svc.Register(r.Context(), req.Handle, req.Credential, req.Confirm, req.PlanetCode)
	if err != nil {
		code, message := businessCode(err)
		errutil.LogError(s.logger, "register failed", err)
		writeJSON(w, s.logger, errorResponse(code, message, err.Error()))
		return code
	}

	if id > 0 && s.metrics != nil {
		s.metrics.RegistrationsTotal.Inc()
	}
	writeJSON(w, s.logger, okResponse(registerResponse{ID: id}))
	return codeOK
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) int {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, s.logger, errorResponse(codeParamsError, "params error", "malformed request body"))
		return codeParamsError
	}

	slot := s.openSession(r)
	view, err := s.svc.Login(r.Context(), slot, req.Handle, req.Credential)
	if err != nil {
		code, message := businessCode(err)
		errutil.LogError(s.logger, "login failed", err)
		if s.metrics != nil {
			outcome := "error"
			if code == codePasswordIncorrect {
				outcome = "mismatch"
			}
			s.metrics.LoginsTotal.WithLabelValues(outcome).Inc()
		}
		writeJSON(w, s.logger, errorResponse(code, message, err.Error()))
		return code
	}

	s.writeSessionCookie(w, slot)
	if s.metrics != nil {
		s.metrics.LoginsTotal.WithLabelValues("success").Inc()
	}
	writeJSON(w, s.logger, okResponse(view))
	return codeOK
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) int {
	slot := s.openSession(r)
	err := s.svc.Logout(r.Context(), slot)
	// The cookie is dropped regardless; logout clears first, then reports.
	s.writeSessionCookie(w, slot)
	if err != nil {
		code, message := businessCode(err)
		writeJSON(w, s.logger, errorResponse(code, message, err.Error()))
		return code
	}

	writeJSON(w, s.logger, okResponse(1))
	return codeOK
}

// requireAdmin resolves the caller's login state and reports the business
// code blocking access, or codeOK for admins. The engine re-checks with the
// same fail-closed gate; this mirrors the check at the API edge so callers
// get a precise code instead of silently empty results.
func (s *Server) requireAdmin(r *http.Request, slot *session.Slot) int {
	view, ok, err := slot.Get(r.Context(), s.cfg.LoginStateKey)
	if err != nil {
		return codeSystemError
	}
	if !ok || view == nil {
		return codeNotLogin
	}
	if view.Role != s.cfg.AdminRole {
		return codeNoAuth
	}
	return codeOK
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) int {
	slot := s.openSession(r)
	if code := s.requireAdmin(r, slot); code != codeOK {
		switch code {
		case codeNotLogin:
			writeJSON(w, s.logger, errorResponse(code, "not login", ""))
		case codeNoAuth:
			writeJSON(w, s.logger, errorResponse(code, "no auth", ""))
		default:
			writeJSON(w, s.logger, errorResponse(code, "system error", ""))
		}
		return code
	}

	views, err := s.svc.Search(r.Context(), slot, r.URL.Query().Get("user_name"))
	if err != nil {
		code, message := businessCode(err)
		errutil.LogError(s.logger, "search failed", err)
		writeJSON(w, s.logger, errorResponse(code, message, err.Error()))
		return code
	}

	writeJSON(w, s.logger, okResponse(views))
	return codeOK
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) int {
	slot := s.openSession(r)
	if code := s.requireAdmin(r, slot); code != codeOK {
		switch code {
		case codeNotLogin:
			writeJSON(w, s.logger, errorResponse(code, "not login", ""))
		case codeNoAuth:
			writeJSON(w, s.logger, errorResponse(code, "no auth", ""))
		default:
			writeJSON(w, s.logger, errorResponse(code, "system error", ""))
		}
		return code
	}

	id, err := strconv.ParseInt(r.URL.Query().Get("userId"), 10, 64)
	if err != nil {
		writeJSON(w, s.logger, errorResponse(codeParamsError, "params error", "userId must be an integer"))
		return codeParamsError
	}

	deleted, err := s.svc.DeleteAccount(r.Context(), slot, id)
	if err != nil {
		code, message := businessCode(err)
		errutil.LogError(s.logger, "delete failed", err)
		writeJSON(w, s.logger, errorResponse(code, message, err.Error()))
		return code
	}

	writeJSON(w, s.logger, okResponse(deleteResponse{Response: deleted}))
	return codeOK
}
