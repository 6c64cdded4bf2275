package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	customerhttpmapper "github.com/agizo/agizo-api/internal/domains/customers/adapters/http/mapper"
	customerapp "github.com/agizo/agizo-api/internal/domains/customers/application"
	customerdomain "github.com/agizo/agizo-api/internal/domains/customers/domain"
	customerports "github.com/agizo/agizo-api/internal/domains/customers/ports"
	apierrors "github.com/agizo/agizo-api/internal/shared/errors"
)

const (
	basicRealm = "agizo"
	accountKey = "customers.account"
)

// Handler wires HTTP transport with the customers bounded context.
type Handler struct {
	service   customerports.Service
	responder *apierrors.ChainedResponder
}

func NewHandler(service customerports.Service) *Handler {
	return &Handler{
		service:   service,
		responder: apierrors.NewChainedResponder("", ErrorMapper),
	}
}

// Routes mounts the account and customer endpoints under r.
func (h *Handler) Routes(r gin.IRouter) {
	r.POST("/accounts/", h.CreateAccount)
	r.POST("/customers/", h.RequireAccount(), h.CreateCustomer)
	r.POST("/customers/register/", h.RegisterCustomer)
}

// Post /api/v1/accounts/
func (h *Handler) CreateAccount(c *gin.Context) {
	var req customerhttpmapper.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.responder.BadRequest(c, err.Error())
		return
	}
	account, err := h.service.CreateAccount(c.Request.Context(), customerhttpmapper.ToCreateAccountInput(req))
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, customerhttpmapper.FromAccount(account))
}

// Post /api/v1/customers/register/
// Creates the account and its customer profile without prior authentication.
func (h *Handler) RegisterCustomer(c *gin.Context) {
	var req customerhttpmapper.RegisterCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.responder.BadRequest(c, err.Error())
		return
	}
	profile, err := h.service.Register(c.Request.Context(), customerhttpmapper.ToRegisterInput(req))
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, customerhttpmapper.FromProfile(profile))
}

// Post /api/v1/customers/
// Attaches a profile to the account authenticated by RequireAccount.
func (h *Handler) CreateCustomer(c *gin.Context) {
	owner, ok := AccountFromContext(c)
	if !ok {
		h.responder.Unauthorized(c, basicRealm, "authentication credentials were not provided")
		return
	}
	var req customerhttpmapper.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.responder.BadRequest(c, err.Error())
		return
	}
	profile, err := h.service.CreateForOwner(c.Request.Context(), owner, customerhttpmapper.ToCreateCustomerInput(req))
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, customerhttpmapper.FromProfile(profile))
}

// RequireAccount authenticates HTTP Basic credentials against stored accounts.
func (h *Handler) RequireAccount() gin.HandlerFunc {
	return func(c *gin.Context) {
		email, password, ok := c.Request.BasicAuth()
		if !ok {
			h.responder.Unauthorized(c, basicRealm, "authentication credentials were not provided")
			c.Abort()
			return
		}
		account, err := h.service.Authenticate(c.Request.Context(), email, password)
		if err != nil {
			if errors.Is(err, customerapp.ErrInvalidCredentials) {
				h.responder.Unauthorized(c, basicRealm, "invalid email or password")
			} else {
				h.responder.RespondError(c, err)
			}
			c.Abort()
			return
		}
		c.Set(accountKey, account)
		c.Next()
	}
}

// AccountFromContext returns the account stored by RequireAccount.
func AccountFromContext(c *gin.Context) (*customerdomain.Account, bool) {
	value, ok := c.Get(accountKey)
	if !ok {
		return nil, false
	}
	account, ok := value.(*customerdomain.Account)
	return account, ok && account != nil
}

// ErrorMapper translates customer errors into problem details.
func ErrorMapper(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, customerapp.ErrInvalidCredentials):
		return apierrors.ErrUnauthorized.WithDetail(err.Error()), true
	case errors.Is(err, customerports.ErrDuplicate):
		return apierrors.ErrConflict.WithDetail(err.Error()), true
	case errors.Is(err, customerports.ErrNotFound), errors.Is(err, customerports.ErrAccountNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}
