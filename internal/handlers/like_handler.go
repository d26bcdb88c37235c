package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/isomdurm/phenom-backend-sub000/internal/models"
	"github.com/isomdurm/phenom-backend-sub000/internal/notifications"
	"github.com/isomdurm/phenom-backend-sub000/internal/repositories"
)

// LikeHandler handles HTTP requests related to likes
type LikeHandler struct {
	likeRepository   repositories.LikeRepository
	momentRepository repositories.MomentRepository
	userRepository   repositories.UserRepository
	notifications    *notifications.Service
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(likeRepo repositories.LikeRepository, momentRepo repositories.MomentRepository, userRepo repositories.UserRepository, svc *notifications.Service) *LikeHandler {
	return &LikeHandler{
		likeRepository:   likeRepo,
		momentRepository: momentRepo,
		userRepository:   userRepo,
		notifications:    svc,
	}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/moments/:moment_id/likes", h.LikeMoment)
	g.DELETE("/moments/:moment_id/likes", h.UnlikeMoment)
	g.GET("/moments/:moment_id/likes/status", h.GetUserLikeStatusForMoment)
}

// LikeMoment handles liking a moment and raises the like notification for
// the moment's author.
func (h *LikeHandler) LikeMoment(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	momentID := c.Param("moment_id")

	// Verify moment exists
	moment, err := h.momentRepository.GetMomentByID(c.Request().Context(), momentID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Moment not found")
	}

	user, err := h.userRepository.GetUserByID(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Authenticated user not found in database")
	}

	// Check if user has already liked the moment
	hasLiked, err := h.likeRepository.HasUserLikedMoment(momentID, user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if hasLiked {
		return echo.NewHTTPError(http.StatusConflict, "Moment already liked by this user")
	}

	like := &models.Like{
		MomentID: momentID,
		UserID:   user.ID,
	}

	if err := h.likeRepository.CreateLike(like); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	go h.momentRepository.IncrementLikesCount(c.Request().Context(), momentID)

	// Notify the author off the request path.
	h.notifications.SendAsync(notifications.NewMomentLikePolicy(user, moment))

	return c.JSON(http.StatusCreated, like)
}

// UnlikeMoment handles unliking a moment
func (h *LikeHandler) UnlikeMoment(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	momentID := c.Param("moment_id")

	// Verify moment exists
	_, err := h.momentRepository.GetMomentByID(c.Request().Context(), momentID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Moment not found")
	}

	if err := h.likeRepository.DeleteLike(momentID, currentUserID); err != nil {
		if err.Error() == "like not found" {
			return echo.NewHTTPError(http.StatusNotFound, "Like not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	go h.momentRepository.DecrementLikesCount(c.Request().Context(), momentID)

	return c.NoContent(http.StatusNoContent)
}

// GetUserLikeStatusForMoment checks if the authenticated user has liked a specific moment
func (h *LikeHandler) GetUserLikeStatusForMoment(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	momentID := c.Param("moment_id")

	hasLiked, err := h.likeRepository.HasUserLikedMoment(momentID, currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"moment_id": momentID, "user_id": currentUserID, "has_liked": hasLiked})
}
