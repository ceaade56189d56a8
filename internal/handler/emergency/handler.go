package emergency

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medalert/ice-api/internal/service/emergency"
	apperrors "github.com/medalert/ice-api/pkg/errors"
	"github.com/medalert/ice-api/pkg/httputil"
)

// Handler serves the public read-only emergency view. No authentication:
// this endpoint exists so a first responder can scan a QR code and see
// the profile immediately.
type Handler struct {
	svc *emergency.Service
}

func NewHandler(svc *emergency.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/emergency/:qrCodeId", h.Resolve)
}

func (h *Handler) Resolve(c *gin.Context) {
	qrCodeID := c.Param("qrCodeId")

	profile, err := h.svc.ResolveByQR(c.Request.Context(), qrCodeID)
	if err != nil {
		if appErr, ok := apperrors.AsAppError(err); ok && appErr.Code == apperrors.ErrNotFound {
			// One generic message for every miss; never hint at
			// whether an identifier is malformed or unregistered.
			c.JSON(http.StatusNotFound, httputil.Response{
				Success: false,
				Error: &httputil.Error{
					Code:    http.StatusNotFound,
					Message: "Profile not found. The link may be invalid.",
				},
			})
			return
		}
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, profile)
}
