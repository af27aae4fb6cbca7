package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/acmeid/accounts-api/auth"
	"github.com/acmeid/accounts-api/users"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// LoginHandler authenticates an email/password pair and returns a token pair.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := decodeJSON(r, &req); err != nil || req.Email == "" || req.Password == "" {
			writeError(w, http.StatusBadRequest, "email and password are required")
			return
		}

		resp, err := s.auth.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			s.writeAuthError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// RefreshHandler rotates a refresh token and returns a new token pair.
func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req refreshRequest
		if err := decodeJSON(r, &req); err != nil || req.RefreshToken == "" {
			writeError(w, http.StatusBadRequest, "refreshToken is required")
			return
		}

		resp, err := s.auth.Refresh(r.Context(), req.RefreshToken)
		if err != nil {
			s.writeAuthError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// MeHandler returns the sanitized profile of the authenticated user.
func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := UserIDFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		profile, err := s.auth.GetMe(r.Context(), userID)
		if err != nil {
			s.writeAuthError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, profile)
	}
}

// RegisterHandler creates a user and authenticates it in the same call.
func (s *Server) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		resp, err := s.auth.Register(r.Context(), req.Email, req.Password, req.Name)
		if err != nil {
			s.writeAuthError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, resp)
	}
}

// writeAuthError maps the auth service's sentinel errors to HTTP statuses.
// Anything unrecognized is a 500 and gets logged; validation errors from
// registration surface as 400.
func (s *Server) writeAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, auth.ErrInvalidRefreshToken), errors.Is(err, auth.ErrRefreshTokenInactive):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, auth.ErrUserNotFound), errors.Is(err, users.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, auth.ErrEmailTaken):
		writeError(w, http.StatusConflict, err.Error())
	case isValidationError(err):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.log.Error().Err(err).Msg("auth operation failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// isValidationError reports whether err came from registration input checks.
func isValidationError(err error) bool {
	var vErr *users.ValidationError
	return errors.As(err, &vErr)
}

func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
