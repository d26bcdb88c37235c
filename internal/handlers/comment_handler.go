package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/isomdurm/phenom-backend-sub000/internal/models"
	"github.com/isomdurm/phenom-backend-sub000/internal/notifications"
	"github.com/isomdurm/phenom-backend-sub000/internal/repositories"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	commentRepository repositories.CommentRepository
	momentRepository  repositories.MomentRepository
	userRepository    repositories.UserRepository
	notifications     *notifications.Service
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentRepo repositories.CommentRepository, momentRepo repositories.MomentRepository, userRepo repositories.UserRepository, svc *notifications.Service) *CommentHandler {
	return &CommentHandler{
		commentRepository: commentRepo,
		momentRepository:  momentRepo,
		userRepository:    userRepo,
		notifications:     svc,
	}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/moments/:moment_id/comments", h.CreateComment)
	g.GET("/moments/:moment_id/comments", h.GetCommentsByMomentID)
	g.DELETE("/comments/:id", h.DeleteComment)
}

// CreateComment creates a new comment on a moment. It notifies the moment's
// author and every user tagged with @ in the comment text.
func (h *CommentHandler) CreateComment(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	momentID := c.Param("moment_id")

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	// Verify moment exists
	moment, err := h.momentRepository.GetMomentByID(c.Request().Context(), momentID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Moment not found")
	}

	author, err := h.userRepository.GetUserByID(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Authenticated user not found in database")
	}

	comment := &models.Comment{
		MomentID: momentID,
		UserID:   author.ID,
		Content:  req.Content,
	}
	if err := h.commentRepository.CreateComment(comment); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	go h.momentRepository.IncrementCommentsCount(c.Request().Context(), momentID)

	h.raiseCommentNotifications(author, moment, comment)

	return c.JSON(http.StatusCreated, comment)
}

// raiseCommentNotifications notifies the moment's author of the comment and
// each @mentioned user separately. A mentioned moment author gets only the
// mention; the comment policy's self-check handles the author commenting on
// their own moment.
func (h *CommentHandler) raiseCommentNotifications(author *models.User, moment *models.Moment, comment *models.Comment) {
	momentAuthor, err := h.userRepository.GetUserByID(moment.UserID)
	if err == nil {
		h.notifications.SendAsync(notifications.NewMomentCommentPolicy(author, momentAuthor, moment.SubjectKey(), comment.ID))
	}

	usernames := notifications.ExtractMentions(comment.Content)
	if len(usernames) == 0 {
		return
	}
	mentioned, err := h.userRepository.GetUsersByUsernames(usernames)
	if err != nil {
		return
	}
	for i := range mentioned {
		if mentioned[i].ID == moment.UserID {
			continue
		}
		h.notifications.SendAsync(notifications.NewCommentMentionPolicy(author, &mentioned[i], moment.SubjectKey(), comment.ID))
	}
}

// GetCommentsByMomentID retrieves all comments for a specific moment
func (h *CommentHandler) GetCommentsByMomentID(c echo.Context) error {
	momentID := c.Param("moment_id")

	// Verify moment exists
	_, err := h.momentRepository.GetMomentByID(c.Request().Context(), momentID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Moment not found")
	}

	comments, err := h.commentRepository.GetCommentsByMomentID(momentID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, comments)
}

// DeleteComment deletes a comment owned by the authenticated user
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	commentID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid comment ID")
	}

	comment, err := h.commentRepository.GetCommentByID(uint(commentID))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if comment.UserID != currentUserID {
		return echo.NewHTTPError(http.StatusForbidden, "Cannot delete another user's comment")
	}

	if err := h.commentRepository.DeleteComment(uint(commentID)); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.NoContent(http.StatusNoContent)
}
