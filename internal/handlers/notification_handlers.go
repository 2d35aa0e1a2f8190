package handlers

import (
	"net/http"

	"taskManager/internal/handlers/dto"
	"taskManager/internal/logger"
)

type NotificationHandler struct {
	NotificationService NotificationService
}

func NewNotificationHandler(notificationService NotificationService) *NotificationHandler {
	return &NotificationHandler{NotificationService: notificationService}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	list, err := h.NotificationService.GetMyNotifications(r.Context(), caller(r))
	if err != nil {
		handleServiceError(w, r, err, "list_notifications")
		return
	}
	responseWithBody(w, http.StatusOK, dto.FromNotificationList(list))
}

func (h *NotificationHandler) ListUnread(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	list, err := h.NotificationService.GetUnreadNotifications(r.Context(), caller(r))
	if err != nil {
		handleServiceError(w, r, err, "list_unread")
		return
	}
	responseWithBody(w, http.StatusOK, dto.FromNotificationList(list))
}

func (h *NotificationHandler) CountUnread(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	count, err := h.NotificationService.CountUnread(r.Context(), caller(r))
	if err != nil {
		handleServiceError(w, r, err, "count_unread")
		return
	}
	responseWithJSON(w, http.StatusOK, toPayload("count", count))
}

func (h *NotificationHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	n, err := h.NotificationService.MarkAsRead(r.Context(), id, caller(r))
	if err != nil {
		handleServiceError(w, r, err, "mark_read")
		return
	}
	responseWithBody(w, http.StatusOK, dto.FromNotification(n))
}

func (h *NotificationHandler) MarkAllAsRead(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	updated, err := h.NotificationService.MarkAllAsRead(r.Context(), caller(r))
	if err != nil {
		handleServiceError(w, r, err, "mark_all_read")
		return
	}
	responseWithJSON(w, http.StatusOK, toPayload("updated", updated))
}
