package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/orgtask-api/internal/dto"
	apierrors "github.com/yukikurage/orgtask-api/internal/errors"
	"github.com/yukikurage/orgtask-api/internal/services"
	"github.com/yukikurage/orgtask-api/internal/utils"
)

type CommentHandler struct {
	comments *services.CommentService
}

func NewCommentHandler(comments *services.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

func commentInput(req dto.CommentRequest) services.CommentInput {
	return services.CommentInput{Comment: req.Comment, FilePath: req.FilePath, FileType: req.FileType}
}

func (h *CommentHandler) CreateComment(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	taskID, ok := paramID(c, "id", "task")
	if !ok {
		return
	}
	var req dto.CommentRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := h.comments.CreateComment(c.Request.Context(), taskID, commentInput(req), actor)
	if err != nil {
		apierrors.HandleError(c, err)
		return
	}

	apierrors.Respond(c, http.StatusCreated, "Comment added successfully", gin.H{"comment": comment})
}

func (h *CommentHandler) ListComments(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	taskID, ok := paramID(c, "id", "task")
	if !ok {
		return
	}
	params := utils.GetPaginationParams(c)

	comments, total, err := h.comments.ListComments(c.Request.Context(), taskID, actor, params)
	if err != nil {
		apierrors.HandleError(c, err)
		return
	}

	apierrors.Respond(c, http.StatusOK, "Comments retrieved successfully", gin.H{
		"comments":   comments,
		"pagination": params.Response(total),
	})
}

func (h *CommentHandler) UpdateComment(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	commentID, ok := paramID(c, "comment_id", "comment")
	if !ok {
		return
	}
	var req dto.CommentRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := h.comments.UpdateComment(c.Request.Context(), commentID, commentInput(req), actor.ID)
	if err != nil {
		apierrors.HandleError(c, err)
		return
	}

	apierrors.Respond(c, http.StatusOK, "Comment updated successfully", gin.H{"comment": comment})
}

func (h *CommentHandler) DeleteComment(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	commentID, ok := paramID(c, "comment_id", "comment")
	if !ok {
		return
	}

	if err := h.comments.DeleteComment(c.Request.Context(), commentID, actor.ID); err != nil {
		apierrors.HandleError(c, err)
		return
	}

	apierrors.Respond(c, http.StatusOK, "Comment deleted successfully", nil)
}
