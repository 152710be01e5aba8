package http

import (
	"net/http"

	"github.com/BerenSaglam41/BackendMarket-sub001/internal/platform/logger"
	"github.com/BerenSaglam41/BackendMarket-sub001/internal/service"
)

type AuthHandler struct {
	auth service.AuthService
	log  logger.Logger
}

func NewAuthHandler(auth service.AuthService, log logger.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, log: log.With("handler", "auth")}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	user, err := h.auth.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		h.fail(w, "register", err)
		return
	}
	respondOK(w, http.StatusCreated, "user registered", toUserResponse(user))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	res, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(w, "login", err)
		return
	}
	respondOK(w, http.StatusOK, "login successful", loginResponse{
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
		Profile:   toUserResponse(res.User),
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFromContext(r.Context())
	if err := h.auth.Logout(r.Context(), claims); err != nil {
		h.fail(w, "logout", err)
		return
	}
	respondOK(w, http.StatusOK, "logged out", nil)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFromContext(r.Context())
	user, err := h.auth.Profile(r.Context(), claims.UserID)
	if err != nil {
		h.fail(w, "profile", err)
		return
	}
	respondOK(w, http.StatusOK, "", toUserResponse(user))
}

func (h *AuthHandler) fail(w http.ResponseWriter, op string, err error) {
	status, _ := statusFor(err)
	if status == http.StatusInternalServerError {
		h.log.Errorf("%s failed: %v", op, err)
		respondError(w, status, "internal server error")
		return
	}
	respondError(w, status, err.Error())
}
