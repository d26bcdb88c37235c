package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/isomdurm/phenom-backend-sub000/internal/models"
	"github.com/isomdurm/phenom-backend-sub000/internal/notifications"
	"github.com/isomdurm/phenom-backend-sub000/internal/repositories"
)

// NotificationHandler exposes the alert feed and the push device surface.
type NotificationHandler struct {
	notifications  *notifications.Service
	userRepository repositories.UserRepository
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(svc *notifications.Service, userRepo repositories.UserRepository) *NotificationHandler {
	return &NotificationHandler{
		notifications:  svc,
		userRepository: userRepo,
	}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.POST("/notifications/acknowledge", h.AcknowledgeAll)
	g.DELETE("/notifications/:id", h.DeleteNotification)
	g.POST("/devices", h.RegisterDevice)
	g.DELETE("/devices", h.UnregisterDevice)
	g.PUT("/devices/preferences", h.UpdatePreferences)
}

// EnrichedNotification includes actor info
type EnrichedNotification struct {
	models.Notification
	Actor models.UserCompact `json:"actor"`
}

func (h *NotificationHandler) enrichNotifications(results []models.Notification) []EnrichedNotification {
	enriched := make([]EnrichedNotification, len(results))
	userCache := make(map[uint]models.UserCompact)

	for i, n := range results {
		enriched[i] = EnrichedNotification{Notification: n}
		if actor, ok := userCache[n.SourceID]; ok {
			enriched[i].Actor = actor
		} else {
			user, err := h.userRepository.GetUserByID(n.SourceID)
			if err == nil {
				compact := user.ToCompact()
				userCache[n.SourceID] = compact
				enriched[i].Actor = compact
			}
		}
	}
	return enriched
}

// GetNotifications returns one page of the user's alert feed, newest first.
// since is a unix millisecond cursor; alerts strictly older than it are
// returned and the response cursor feeds the next request.
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	since, err := strconv.ParseInt(c.QueryParam("since"), 10, 64)
	if err != nil || since <= 0 {
		since = time.Now().UnixMilli()
	}
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil {
		limit = 20
	}

	page, err := h.notifications.ListAlerts(currentUserID, since, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"results":    h.enrichNotifications(page.Results),
		"cursor":     page.Cursor,
		"totalCount": page.TotalCount,
	})
}

// AcknowledgeAll marks every pending alert as seen, resetting the badge.
func (h *NotificationHandler) AcknowledgeAll(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	if err := h.notifications.AcknowledgeAlerts(currentUserID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// DeleteNotification removes a single alert from the feed.
func (h *NotificationHandler) DeleteNotification(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	notifID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid notification ID")
	}

	if err := h.notifications.DeleteAlert(uint(notifID)); err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Notification not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.NoContent(http.StatusNoContent)
}

// RegisterDevice binds the caller's device to their current login session.
func (h *NotificationHandler) RegisterDevice(c echo.Context) error {
	claims := getClaimsFromContext(c)
	if claims == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.RegisterDeviceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.userRepository.GetUserByID(claims.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authenticated user not found in database")
	}

	target, err := h.notifications.RegisterDevice(
		c.Request().Context(),
		req.DeviceID,
		models.DeviceKind(req.DeviceKind),
		user,
		claims.CredentialID(),
	)
	if err != nil {
		var validationErr *notifications.ValidationError
		var unsupportedErr *notifications.UnsupportedDeviceError
		switch {
		case errors.As(err, &validationErr), errors.As(err, &unsupportedErr):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusCreated, target)
}

// UnregisterDevice removes the device bound to the caller's session.
func (h *NotificationHandler) UnregisterDevice(c echo.Context) error {
	claims := getClaimsFromContext(c)
	if claims == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	if err := h.notifications.UnregisterDevice(c.Request().Context(), claims.CredentialID()); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.NoContent(http.StatusNoContent)
}

// UpdatePreferences replaces the notification kinds the caller's device
// wants pushed.
func (h *NotificationHandler) UpdatePreferences(c echo.Context) error {
	claims := getClaimsFromContext(c)
	if claims == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.UpdatePreferencesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	desired := make(models.KindList, len(req.DesiredKinds))
	for i, k := range req.DesiredKinds {
		desired[i] = models.NotificationKind(k)
	}

	if err := h.notifications.UpdatePreferences(claims.CredentialID(), desired); err != nil {
		if err == notifications.ErrNoTarget {
			return echo.NewHTTPError(http.StatusNotFound, "No device registered for this session")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
