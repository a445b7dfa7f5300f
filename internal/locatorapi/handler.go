package locatorapi

import (
	"net/http"

	"storelocator/platform/apperr"
	"storelocator/platform/httpkit"
	"storelocator/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgIncompletePair   = "lat and lon must be given together"
)

// Handler exposes the locator endpoints.
type Handler struct {
	svc *Service
	val *validator.Validator
}

func NewHandler(svc *Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Locator runs a full locator session.
// GET /api/v1/locator?lat=&lon=&q=&storeCode=&select=
func (h *Handler) Locator(c *gin.Context) {
	var req LocatorRequest
	if !h.bind(c, &req) {
		return
	}

	snap, err := h.svc.RunSession(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, snap)
}

// ListStores returns the sorted, filtered store collection.
// GET /api/v1/stores?lat=&lon=&q=
func (h *Handler) ListStores(c *gin.Context) {
	var req StoresRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.svc.ListStores(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// GetStore returns one store.
// GET /api/v1/stores/:id
func (h *Handler) GetStore(c *gin.Context) {
	var pos PositionQuery
	if !h.bind(c, &pos) {
		return
	}

	store, err := h.svc.GetStore(c.Request.Context(), c.Param("id"), pos)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, store)
}

// StoreQRCode returns a QR code of the store's landing page link.
// GET /api/v1/stores/:id/qr.png?size=
func (h *Handler) StoreQRCode(c *gin.Context) {
	var req QRRequest
	if httpkit.HandleError(c, h.check(c, &req)) {
		return
	}

	png, err := h.svc.StoreQRCode(c.Request.Context(), c.Param("id"), req.Size)
	if httpkit.HandleError(c, err) {
		return
	}
	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, "image/png", png)
}

// bind parses and validates query parameters into req.
func (h *Handler) bind(c *gin.Context, req positioned) bool {
	if httpkit.HandleError(c, h.check(c, req)) {
		return false
	}
	if pos := req.position(); (pos.Lat == nil) != (pos.Lon == nil) {
		httpkit.HandleError(c, apperr.Validation(msgValidationFailed).WithDetails(msgIncompletePair))
		return false
	}
	return true
}

func (h *Handler) check(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindQuery(req); err != nil {
		return apperr.BadRequest(msgInvalidRequest)
	}
	if err := h.val.Struct(req); err != nil {
		return apperr.Validation(msgValidationFailed).WithDetails(err.Error())
	}
	return nil
}
