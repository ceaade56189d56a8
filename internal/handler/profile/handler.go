package profile

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medalert/ice-api/internal/middleware"
	"github.com/medalert/ice-api/internal/model"
	"github.com/medalert/ice-api/internal/service/profile"
	apperrors "github.com/medalert/ice-api/pkg/errors"
	"github.com/medalert/ice-api/pkg/httputil"
)

type Handler struct {
	svc *profile.Service
}

func NewHandler(svc *profile.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	p := r.Group("/profile")
	{
		p.GET("", h.Get)
		p.PATCH("", h.Update)
		p.GET("/qr-link", h.QRLink)
	}
}

func (h *Handler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	prof, err := h.svc.Get(c.Request.Context(), userID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, prof)
}

func (h *Handler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var patch model.UpdateProfileRequest
	if err := c.ShouldBindJSON(&patch); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	prof, err := h.svc.Update(c.Request.Context(), userID, &patch)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, prof)
}

// QRLink returns the public resolution URL for the caller's profile.
// Rendering the QR image from it is the client's job.
func (h *Handler) QRLink(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	link, err := h.svc.EmergencyLink(c.Request.Context(), userID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{"url": link})
}

func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, err := middleware.UserIDFromContext(c)
	if err != nil {
		httputil.RespondWithError(c, apperrors.Unauthorized("", err))
		return uuid.Nil, false
	}
	return userID, true
}
