package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bus-ticket-booking/internal/model"
	"github.com/iliyamo/bus-ticket-booking/internal/repository"
	"github.com/iliyamo/bus-ticket-booking/internal/utils"
)

// AuthHandler serves login, registration and logout.  When TokenSecret is
// set, successful logins and registrations also carry a signed access
// token for the JWT gate.
type AuthHandler struct {
	Users       repository.UserStore
	Passwords   utils.PasswordHasher
	TokenSecret string
	TokenTTL    time.Duration
	Log         *slog.Logger
	Now         func() time.Time
}

func NewAuthHandler(users repository.UserStore, passwords utils.PasswordHasher, log *slog.Logger) *AuthHandler {
	if passwords == nil {
		passwords = utils.PlainPasswords{}
	}
	return &AuthHandler{Users: users, Passwords: passwords, Log: log, Now: time.Now}
}

type loginReq struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type registerReq struct {
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type authResp struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	User    model.UserSummary `json:"user"`
	Token   string            `json:"token,omitempty"`
}

func authFailure(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"success": false, "error": msg})
}

// Login handles POST /api/login.  Email must match exactly; an unknown
// email and a wrong password get the same 401.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}

	u, err := h.Users.FindUser(c.Request().Context(), req.Email)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return internalError(c, h.Log, "find user", err)
	}
	if err != nil || !h.Passwords.Verify(u.Password, req.Password) {
		return authFailure(c, http.StatusUnauthorized, "Invalid email or password")
	}
	return h.respond(c, "Login successful", u)
}

// Register handles POST /api/register.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return authFailure(c, http.StatusBadRequest, "All fields are required")
	}

	hashed, err := h.Passwords.Hash(req.Password)
	if err != nil {
		return internalError(c, h.Log, "hash password", err)
	}
	u := model.User{Email: req.Email, Password: hashed, Name: req.Name}
	if err := h.Users.CreateUser(c.Request().Context(), u); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return authFailure(c, http.StatusConflict, "User already exists")
		}
		return internalError(c, h.Log, "create user", err)
	}
	return h.respond(c, "Registration successful", u)
}

// Logout handles POST /api/logout.  The server holds no session, so this
// only acknowledges; clients drop their own state.
func (h *AuthHandler) Logout(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Logout successful"})
}

func (h *AuthHandler) respond(c echo.Context, msg string, u model.User) error {
	resp := authResp{Success: true, Message: msg, User: u.Summary()}
	if h.TokenSecret != "" {
		tok, err := utils.NewAccessToken(h.TokenSecret, u.Email, h.TokenTTL, h.Now())
		if err != nil {
			return internalError(c, h.Log, "issue token", err)
		}
		resp.Token = tok.Token
	}
	return c.JSON(http.StatusOK, resp)
}
