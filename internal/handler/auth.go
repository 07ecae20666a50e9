package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/local-services-marketplace/internal/model"
	"github.com/iliyamo/local-services-marketplace/internal/service"
)

// AuthHandler serves registration, login and the current account for
// both customers and professionals.
type AuthHandler struct {
	Identity IdentityAPI
}

func NewAuthHandler(identity IdentityAPI) *AuthHandler {
	return &AuthHandler{Identity: identity}
}

type registerResp struct {
	Message string      `json:"message"`
	User    accountView `json:"user"`
}

// Register creates a customer account.  No session is issued.
func (h *AuthHandler) Register(c echo.Context) error {
	return h.register(c, model.RoleCustomer, "Registration successful. Please log in.")
}

// RegisterProfessional creates a professional account and its profile.
func (h *AuthHandler) RegisterProfessional(c echo.Context) error {
	return h.register(c, model.RoleProfessional, "Professional registration successful. Please log in.")
}

func (h *AuthHandler) register(c echo.Context, role model.Role, msg string) error {
	var req service.RegisterInput
	if err := bind(c, &req); err != nil {
		return err
	}
	req.Role = role
	acc, err := h.Identity.Register(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, registerResp{Message: msg, User: newAccountView(acc)})
}

// Login authenticates a customer.
func (h *AuthHandler) Login(c echo.Context) error {
	return h.login(c, model.RoleCustomer)
}

// LoginProfessional authenticates a professional.
func (h *AuthHandler) LoginProfessional(c echo.Context) error {
	return h.login(c, model.RoleProfessional)
}

func (h *AuthHandler) login(c echo.Context, role model.Role) error {
	var req service.LoginInput
	if err := bind(c, &req); err != nil {
		return err
	}
	sess, err := h.Identity.Authenticate(c.Request().Context(), req, role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newSessionView(sess))
}

// Me returns the resolved acting identity.
func (h *AuthHandler) Me(c echo.Context) error {
	ident, err := actor(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, identityView{ID: ident.AccountID, Name: ident.Name, Email: ident.Email, Role: ident.Role})
}
