package handlers

import (
	"net/http"

	"taskManager/internal/handlers/dto"
	"taskManager/internal/logger"
	"taskManager/internal/service"

	"go.uber.org/zap"
)

type AuthHandler struct {
	AuthService AuthService
}

func NewAuthHandler(authService AuthService) *AuthHandler {
	return &AuthHandler{AuthService: authService}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.RegisterRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	res, err := h.AuthService.Register(r.Context(), service.RegisterRequest{
		Username: request.Username,
		Email:    request.Email,
		Password: request.Password,
		FullName: request.FullName,
	})
	if err != nil {
		handleServiceError(w, r, err, "register")
		return
	}

	logger.Info("HTTP_OUT: Пользователь зарегистрирован", zap.String("username", res.User.Username))
	responseWithBody(w, http.StatusCreated, dto.FromAuthResult(res))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.LoginRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	res, err := h.AuthService.Login(r.Context(), request.Username, request.Password)
	if err != nil {
		handleServiceError(w, r, err, "login")
		return
	}
	responseWithBody(w, http.StatusOK, dto.FromAuthResult(res))
}
