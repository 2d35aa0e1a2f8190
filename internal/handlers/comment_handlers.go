package handlers

import (
	"net/http"
	"time"

	"taskManager/internal/handlers/dto"
	"taskManager/internal/logger"
	"taskManager/internal/service"

	"go.uber.org/zap"
)

type CommentHandler struct {
	CommentService CommentService
}

func NewCommentHandler(commentService CommentService) *CommentHandler {
	return &CommentHandler{CommentService: commentService}
}

func (h *CommentHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.CommentRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	c, err := h.CommentService.AddComment(r.Context(), service.CommentRequest{
		TaskID:  request.TaskID,
		Content: request.Content,
	}, caller(r))
	if err != nil {
		handleServiceError(w, r, err, "add_comment")
		return
	}

	logger.Info("HTTP_OUT: Комментарий добавлен",
		zap.String("comment_id", c.ID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))
	responseWithBody(w, http.StatusCreated, dto.FromComment(c))
}

// ListByTask обслуживает GET /api/tasks/{id}/comments.
func (h *CommentHandler) ListByTask(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	taskID, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	comments, err := h.CommentService.GetCommentsByTask(r.Context(), taskID)
	if err != nil {
		handleServiceError(w, r, err, "list_comments")
		return
	}
	responseWithBody(w, http.StatusOK, dto.FromCommentList(comments))
}

func (h *CommentHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	if err := h.CommentService.DeleteComment(r.Context(), id, caller(r)); err != nil {
		handleServiceError(w, r, err, "delete_comment")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
