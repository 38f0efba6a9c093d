// User HTTP handlers.
//
// This file exposes the account endpoints:
//   - POST /users/login/     (identifier + password, issues a JWT pair)
//   - POST /users/register/  (account creation)
//   - POST /users/devices/   (device registration on app launch)
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oshxona/go-food-backend/internal/http/middleware"
	"github.com/oshxona/go-food-backend/internal/services"
)

// LoginRequest carries the login identifier and password. The identifier
// may be an email, a phone number, or a username.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// RegisterRequest is the account creation payload.
type RegisterRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	PhoneNumber     string `json:"phone_number"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	MiddleName      string `json:"middle_name"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

// RegisterDeviceRequest is the device registration payload. The caller's
// IP address is captured from the connection, not the body.
type RegisterDeviceRequest struct {
	DeviceModel string `json:"device_model"`
	OSVersion   string `json:"os_version"`
	DeviceType  string `json:"device_type"`
	DeviceID    string `json:"device_id"`
	AppVersion  string `json:"app_version"`
}

// Login godoc
// @ID          login
// @Summary     Log in
// @Description Authenticates by email, phone number, or username plus password and returns the user with an access/refresh token pair. Failures are reported generically.
// @Tags        Users
// @Accept      json
// @Produce     json
// @Param       body body handlers.LoginRequest true "Credentials"
// @Success     200 {object} handlers.SuccessResponse
// @Failure     400 {object} handlers.ErrorResponse
// @Router      /users/login/ [post]
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid payload", map[string]string{"body": err.Error()})
		return
	}
	if strings.TrimSpace(req.Identifier) == "" || req.Password == "" {
		fail(c, http.StatusBadRequest, "invalid payload", map[string]string{
			"identifier": "identifier and password are required",
		})
		return
	}

	user, tokens, err := h.auth.Login(c.Request.Context(), req.Identifier, req.Password)
	if err != nil {
		failErr(c, err)
		return
	}

	ok(c, http.StatusOK, "login successful", gin.H{
		"user":    user,
		"access":  tokens.Access,
		"refresh": tokens.Refresh,
	})
}

// Register godoc
// @ID          register
// @Summary     Register an account
// @Description Creates a user account. Username, email, and phone number must be unused; conflicts come back as field errors.
// @Tags        Users
// @Accept      json
// @Produce     json
// @Param       body body handlers.RegisterRequest true "Account payload"
// @Success     201 {object} handlers.SuccessResponse
// @Failure     400 {object} handlers.ErrorResponse
// @Router      /users/register/ [post]
func (h *Handlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid payload", map[string]string{"body": err.Error()})
		return
	}

	user, err := h.auth.Register(c.Request.Context(), services.RegisterInput{
		Username:        req.Username,
		Email:           req.Email,
		PhoneNumber:     req.PhoneNumber,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		MiddleName:      req.MiddleName,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
	})
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, "account created", user)
}

// RegisterDevice godoc
// @ID          registerDevice
// @Summary     Register a device
// @Description Upserts a device fingerprint on app launch. Re-registration of a known device refreshes its details instead of creating a duplicate. Authenticated callers get the device linked to their account.
// @Tags        Users
// @Accept      json
// @Produce     json
// @Param       body body handlers.RegisterDeviceRequest true "Device payload"
// @Success     201 {object} handlers.SuccessResponse
// @Failure     400 {object} handlers.ErrorResponse
// @Router      /users/devices/ [post]
func (h *Handlers) RegisterDevice(c *gin.Context) {
	var req RegisterDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid payload", map[string]string{"body": err.Error()})
		return
	}

	device, err := h.auth.RegisterDevice(c.Request.Context(), services.DeviceInput{
		DeviceModel: req.DeviceModel,
		OSVersion:   req.OSVersion,
		DeviceType:  strings.ToUpper(req.DeviceType),
		DeviceID:    req.DeviceID,
		AppVersion:  req.AppVersion,
		IPAddress:   c.ClientIP(),
		UserID:      middleware.UserIDFrom(c),
	})
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, "device registered", device)
}
