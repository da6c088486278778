package rest

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/todokeeper/internal/logging"
	"github.com/dmitrijs2005/todokeeper/internal/server/services"
)

// UserService is the identity API used by the auth routes.
type UserService interface {
	Register(ctx context.Context, fullName, email, password string) (int64, error)
	Login(ctx context.Context, email, password string) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
}

type registerRequest struct {
	FullName string `json:"fullName" validate:"required,notblank,max=100"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required,max=1024"`
}

// IDResponse carries the id of a created resource.
type IDResponse struct {
	ID int64 `json:"id"`
}

// TokenResponse is returned by login and refresh.
type TokenResponse struct {
	Token        string `json:"token"`
	ExpiresIn    int64  `json:"expiresIn"`
	RefreshToken string `json:"refreshToken"`
}

type authHandler struct {
	users UserService
	gate  *gate
	log   logging.Logger
}

func (h *authHandler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := h.gate.decode(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	id, err := h.users.Register(r.Context(), req.FullName, req.Email, req.Password)
	recordAuthAttempt("register", err == nil)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, IDResponse{ID: id})
}

func (h *authHandler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := h.gate.decode(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	pair, err := h.users.Login(r.Context(), req.Email, req.Password)
	recordAuthAttempt("login", err == nil)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse(pair))
}

func (h *authHandler) refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := h.gate.decode(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	pair, err := h.users.RefreshToken(r.Context(), req.RefreshToken)
	recordAuthAttempt("refresh", err == nil)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse(pair))
}

func tokenResponse(p *services.TokenPair) TokenResponse {
	return TokenResponse{Token: p.AccessToken, ExpiresIn: p.ExpiresIn, RefreshToken: p.RefreshToken}
}
