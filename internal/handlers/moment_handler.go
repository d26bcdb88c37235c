package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/isomdurm/phenom-backend-sub000/internal/models"
	"github.com/isomdurm/phenom-backend-sub000/internal/notifications"
	"github.com/isomdurm/phenom-backend-sub000/internal/repositories"
)

// MomentHandler handles HTTP requests related to moments
type MomentHandler struct {
	momentRepository repositories.MomentRepository
	userRepository   repositories.UserRepository
	notifications    *notifications.Service
}

// NewMomentHandler creates a new MomentHandler
func NewMomentHandler(momentRepo repositories.MomentRepository, userRepo repositories.UserRepository, svc *notifications.Service) *MomentHandler {
	return &MomentHandler{
		momentRepository: momentRepo,
		userRepository:   userRepo,
		notifications:    svc,
	}
}

// RegisterMomentRoutes registers moment-related routes
func (h *MomentHandler) RegisterMomentRoutes(g *echo.Group) {
	g.POST("/moments", h.CreateMoment)
	g.GET("/moments/:moment_id", h.GetMoment)
	g.DELETE("/moments/:moment_id", h.DeleteMoment)
}

// CreateMoment creates a new moment and notifies every user tagged with @ in
// its headline.
func (h *MomentHandler) CreateMoment(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreateMomentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	author, err := h.userRepository.GetUserByID(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Authenticated user not found in database")
	}

	moment := &models.Moment{
		UserID:   author.ID,
		Headline: req.Headline,
		ImageKey: req.ImageKey,
	}
	if err := h.momentRepository.CreateMoment(c.Request().Context(), moment); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.raiseHeadlineMentions(author, moment)

	return c.JSON(http.StatusCreated, moment)
}

// raiseHeadlineMentions notifies each user tagged in the headline. Headlines
// are immutable, so this runs exactly once per moment.
func (h *MomentHandler) raiseHeadlineMentions(author *models.User, moment *models.Moment) {
	usernames := notifications.ExtractMentions(moment.Headline)
	if len(usernames) == 0 {
		return
	}
	mentioned, err := h.userRepository.GetUsersByUsernames(usernames)
	if err != nil {
		return
	}
	for i := range mentioned {
		h.notifications.SendAsync(notifications.NewHeadlineMentionPolicy(author, &mentioned[i], moment.SubjectKey()))
	}
}

// GetMoment retrieves a moment by id
func (h *MomentHandler) GetMoment(c echo.Context) error {
	momentID := c.Param("moment_id")

	moment, err := h.momentRepository.GetMomentByID(c.Request().Context(), momentID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Moment not found")
	}

	return c.JSON(http.StatusOK, moment)
}

// DeleteMoment deletes a moment owned by the authenticated user and purges
// every alert that was raised for it.
func (h *MomentHandler) DeleteMoment(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	momentID := c.Param("moment_id")

	moment, err := h.momentRepository.GetMomentByID(c.Request().Context(), momentID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Moment not found")
	}
	if moment.UserID != currentUserID {
		return echo.NewHTTPError(http.StatusForbidden, "Cannot delete another user's moment")
	}

	if err := h.momentRepository.DeleteMoment(c.Request().Context(), momentID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.notifications.DeleteForSubject(moment.SubjectKey()); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.NoContent(http.StatusNoContent)
}
