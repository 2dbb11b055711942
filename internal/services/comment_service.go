package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	apierrors "github.com/yukikurage/orgtask-api/internal/errors"
	"github.com/yukikurage/orgtask-api/internal/models"
	"github.com/yukikurage/orgtask-api/internal/repository"
	"github.com/yukikurage/orgtask-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrCommentNotFound     = apierrors.NotFound("Comment not found.")
	ErrCommentRequired     = apierrors.BadRequest("Comment cannot be empty.")
	ErrCommentAccessDenied = apierrors.Unauthorized("You are not authorized to comment on this task.")
	ErrNotCommentAuthor    = apierrors.Unauthorized("Only the author can change this comment.")
)

// CommentService handles task comments.
type CommentService struct {
	taskRepo    repository.TaskRepository
	commentRepo repository.CommentRepository
	dispatcher  *Dispatcher
	access      *accessChecker
}

// NewCommentService creates a new CommentService
func NewCommentService(repos *repository.Repositories, dispatcher *Dispatcher) *CommentService {
	return &CommentService{
		taskRepo:    repos.Tasks,
		commentRepo: repos.Comments,
		dispatcher:  dispatcher,
		access: &accessChecker{
			userRepo:         repos.Users,
			teamRepo:         repos.Teams,
			contributionRepo: repos.Contributions,
		},
	}
}

// CommentInput is the content of a comment.
type CommentInput struct {
	Comment  string
	FilePath *string
	FileType *string
}

func (s *CommentService) taskFor(ctx context.Context, taskID uint64, actor Actor) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	allowed, err := s.access.Allows(ctx, taskDiscussRule, actor, task)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrCommentAccessDenied
	}
	return task, nil
}

func (s *CommentService) ownComment(ctx context.Context, commentID, actorID uint64) (*models.TaskComment, error) {
	comment, err := s.commentRepo.FindByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("failed to find comment: %w", err)
	}
	if comment.UserID != actorID {
		return nil, ErrNotCommentAuthor
	}
	return comment, nil
}

// CreateComment adds a comment to a task and logs TASK_COMMENT_ADDED.
func (s *CommentService) CreateComment(ctx context.Context, taskID uint64, input CommentInput, actor Actor) (*models.TaskComment, error) {
	text := strings.TrimSpace(input.Comment)
	if text == "" && input.FilePath == nil {
		return nil, ErrCommentRequired
	}

	task, err := s.taskFor(ctx, taskID, actor)
	if err != nil {
		return nil, err
	}

	comment := &models.TaskComment{
		TaskID:   task.ID,
		UserID:   actor.ID,
		Comment:  text,
		FilePath: input.FilePath,
		FileType: input.FileType,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	details := fmt.Sprintf("User %d commented on task %q", actor.ID, task.Title)
	if _, err := s.dispatcher.LogHistory(ctx, task.ID, models.ActionTaskCommentAdded, details, actor.ID); err != nil {
		return nil, err
	}
	return comment, nil
}

// UpdateComment changes a comment. Only its author may do so.
func (s *CommentService) UpdateComment(ctx context.Context, commentID uint64, input CommentInput, actorID uint64) (*models.TaskComment, error) {
	comment, err := s.ownComment(ctx, commentID, actorID)
	if err != nil {
		return nil, err
	}

	text := strings.TrimSpace(input.Comment)
	if text == "" && input.FilePath == nil && comment.FilePath == nil {
		return nil, ErrCommentRequired
	}
	comment.Comment = text
	if input.FilePath != nil {
		comment.FilePath = input.FilePath
		comment.FileType = input.FileType
	}

	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}
	return comment, nil
}

// DeleteComment removes a comment. Only its author may do so.
func (s *CommentService) DeleteComment(ctx context.Context, commentID, actorID uint64) error {
	if _, err := s.ownComment(ctx, commentID, actorID); err != nil {
		return err
	}
	if err := s.commentRepo.Delete(ctx, commentID); err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	return nil
}

// ListComments returns a page of a task's comments, newest first.
func (s *CommentService) ListComments(ctx context.Context, taskID uint64, actor Actor, page utils.PaginationParams) ([]models.TaskComment, int64, error) {
	if _, err := s.taskFor(ctx, taskID, actor); err != nil {
		return nil, 0, err
	}

	comments, total, err := s.commentRepo.ListByTask(ctx, taskID, page)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, total, nil
}
