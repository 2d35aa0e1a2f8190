package handlers

import (
	"net/http"

	"taskManager/internal/handlers/dto"
	"taskManager/internal/logger"
	"taskManager/internal/models/user"
)

type UserHandler struct {
	UserService UserService
}

func NewUserHandler(userService UserService) *UserHandler {
	return &UserHandler{UserService: userService}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	users, err := h.UserService.GetAllUsers(r.Context())
	if err != nil {
		handleServiceError(w, r, err, "list_users")
		return
	}
	responseWithBody(w, http.StatusOK, dto.FromUserList(users))
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	u, err := h.UserService.GetCurrentUser(r.Context(), caller(r))
	if err != nil {
		handleServiceError(w, r, err, "current_user")
		return
	}
	responseWithBody(w, http.StatusOK, dto.FromUser(u))
}

func (h *UserHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	u, err := h.UserService.GetUserByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err, "get_user")
		return
	}
	responseWithBody(w, http.StatusOK, dto.FromUser(u))
}

func (h *UserHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	var request dto.RoleRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	u, err := h.UserService.UpdateRole(r.Context(), id, user.Role(request.Role), caller(r))
	if err != nil {
		handleServiceError(w, r, err, "update_role")
		return
	}
	responseWithBody(w, http.StatusOK, dto.FromUser(u))
}

func (h *UserHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	var request dto.StatusRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	u, err := h.UserService.UpdateEnabled(r.Context(), id, *request.Enabled, caller(r))
	if err != nil {
		handleServiceError(w, r, err, "update_status")
		return
	}
	responseWithBody(w, http.StatusOK, dto.FromUser(u))
}
