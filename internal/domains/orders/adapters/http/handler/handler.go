package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	orderhttpmapper "github.com/agizo/agizo-api/internal/domains/orders/adapters/http/mapper"
	orderports "github.com/agizo/agizo-api/internal/domains/orders/ports"
	apierrors "github.com/agizo/agizo-api/internal/shared/errors"
	"github.com/agizo/agizo-api/internal/shared/validation"
)

const (
	// HeaderIdempotencyKey lets clients retry order submission safely.
	HeaderIdempotencyKey = "Idempotency-Key"
	// HeaderIdempotentReplayed is set on responses answered from an earlier identical request.
	HeaderIdempotentReplayed = "Idempotent-Replayed"

	maxIdempotencyKeyLength = 255
)

// Handler wires HTTP transport with the orders bounded context.
type Handler struct {
	service   orderports.Service
	responder *apierrors.ChainedResponder
}

func NewHandler(service orderports.Service) *Handler {
	return &Handler{
		service:   service,
		responder: apierrors.NewChainedResponder("", ErrorMapper),
	}
}

func (h *Handler) Routes(r gin.IRouter) {
	r.POST("/orders/", h.PlaceOrder)
	r.GET("/orders/:orderId/", h.GetOrder)
}

// Post /api/v1/orders/
func (h *Handler) PlaceOrder(c *gin.Context) {
	key := strings.TrimSpace(c.GetHeader(HeaderIdempotencyKey))
	if len(key) > maxIdempotencyKeyLength {
		h.responder.BadRequest(c, HeaderIdempotencyKey+" header is too long")
		return
	}
	body, err := c.GetRawData()
	if err != nil {
		h.responder.BadRequest(c, "request body could not be read")
		return
	}
	req, err := orderhttpmapper.DecodePlaceOrderRequest(body)
	if err != nil {
		if errs, ok := validation.As(err); ok {
			h.responder.ValidationFailed(c, errs)
			return
		}
		h.responder.BadRequest(c, err.Error())
		return
	}
	result, err := h.service.PlaceOrder(c.Request.Context(), orderhttpmapper.ToPlaceOrderInput(req, key))
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	if result.Replayed {
		c.Header(HeaderIdempotentReplayed, "true")
	}
	c.JSON(http.StatusCreated, orderhttpmapper.FromPlaceOrderResult(result))
}

// Get /api/v1/orders/:orderId/
func (h *Handler) GetOrder(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("orderId"), 10, 64)
	if err != nil || id <= 0 {
		h.responder.BadRequest(c, "order id must be a positive integer")
		return
	}
	details, err := h.service.GetOrder(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, orderports.ErrNotFound) {
			h.responder.NotFound(c, "order", id)
			return
		}
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromOrderDetails(details))
}

// ErrorMapper translates order errors into problem details. Validation errors fall
// through to the default responder, which renders them field by field.
func ErrorMapper(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, orderports.ErrIdempotencyInProgress):
		return apierrors.ErrConflict.WithDetail("a request with this " + HeaderIdempotencyKey + " is still being processed"), true
	case errors.Is(err, orderports.ErrIdempotencyConflict):
		return apierrors.ErrConflict.WithDetail(HeaderIdempotencyKey + " was already used with a different request"), true
	case errors.Is(err, orderports.ErrPersistence):
		return apierrors.ErrInternal.WithDetail("the order could not be saved"), true
	case errors.Is(err, orderports.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}
