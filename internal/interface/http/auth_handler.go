package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/online-school/internal/application"
	"github.com/oksasatya/online-school/internal/interface/middleware"
	"github.com/oksasatya/online-school/pkg/helpers"
	"github.com/oksasatya/online-school/pkg/validation"
)

const (
	msgRegistered       = "Registration successful."
	msgRegisterFailed   = "Unsuccessful registration. Invalid information."
	msgLoginFailed      = "Invalid username or password."
	msgLoggedOut        = "You have successfully logged out."
	msgLoggedInTemplate = "You are now logged in as %s."
)

type AuthHandler struct {
	Svc     *application.Service
	Pages   *Pages
	Cookies *helpers.Manager
	Logger  *logrus.Logger
}

func NewAuthHandler(svc *application.Service, pages *Pages, cookies *helpers.Manager, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Pages: pages, Cookies: cookies, Logger: logger}
}

// RegisterForm GET /register/
func (h *AuthHandler) RegisterForm(c *gin.Context) {
	h.Pages.HTML(c, http.StatusOK, "register.html", registerPage(nil, nil))
}

// Register POST /register/
func (h *AuthHandler) Register(c *gin.Context) {
	var form registerForm
	if err := c.ShouldBind(&form); err != nil {
		h.registerFailed(c, &form, validation.ToDetails(err))
		return
	}

	files := &uploads{}
	defer func() { _ = files.Close() }()
	in, err := form.input(files)
	if err != nil {
		helpers.RequestLogger(h.Logger, c).WithError(err).Warn("read upload failed")
		h.registerFailed(c, &form, map[string]string{"payload": "could not read uploaded files"})
		return
	}
	in.IP = middleware.ClientIP(c)

	acc, err := h.Svc.Register(c.Request.Context(), in)
	switch {
	case err == nil:
	case errors.Is(err, application.ErrUsernameTaken):
		h.registerFailed(c, &form, map[string]string{"username": "already taken"})
		return
	case errors.Is(err, application.ErrMissingDocument):
		h.registerFailed(c, &form, map[string]string{"payload": err.Error()})
		return
	case errors.Is(err, application.ErrRoleNotAllowed):
		h.registerFailed(c, &form, map[string]string{"role": "must be one of: Student, Tutor"})
		return
	default:
		helpers.RequestLogger(h.Logger, c).WithError(err).Error("registration failed")
		h.Pages.Error(c, http.StatusInternalServerError)
		return
	}

	h.Pages.Flash.Add(c, LevelSuccess, msgRegistered)
	sess, err := h.Svc.StartSession(c.Request.Context(), &acc.User)
	if err != nil {
		helpers.RequestLogger(h.Logger, c).WithError(err).Error("start session after registration failed")
		c.Redirect(http.StatusFound, "/login/")
		return
	}
	h.Cookies.SetSession(c, sess.Token, sess.ExpiresAt)
	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) registerFailed(c *gin.Context, form *registerForm, errs map[string]string) {
	h.Pages.Flash.Add(c, LevelError, msgRegisterFailed)
	h.Pages.HTML(c, http.StatusOK, "register.html", registerPage(form.values(), errs))
}

// LoginForm GET /login/
func (h *AuthHandler) LoginForm(c *gin.Context) {
	h.Pages.HTML(c, http.StatusOK, "login.html", loginPage("", nil))
}

// Login POST /login/
func (h *AuthHandler) Login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		h.loginFailed(c, form.Username, validation.ToDetails(err))
		return
	}

	u, sess, err := h.Svc.Login(c.Request.Context(), form.Username, form.Password)
	if errors.Is(err, application.ErrInvalidCredentials) {
		h.loginFailed(c, form.Username, nil)
		return
	}
	if err != nil {
		helpers.RequestLogger(h.Logger, c).WithError(err).Error("login failed")
		h.Pages.Error(c, http.StatusInternalServerError)
		return
	}

	h.Cookies.SetSession(c, sess.Token, sess.ExpiresAt)
	h.Pages.Flash.Add(c, LevelInfo, fmt.Sprintf(msgLoggedInTemplate, u.Username))
	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) loginFailed(c *gin.Context, username string, errs map[string]string) {
	h.Pages.Flash.Add(c, LevelError, msgLoginFailed)
	h.Pages.HTML(c, http.StatusOK, "login.html", loginPage(username, errs))
}

// Logout GET /logout/ ends the session whether or not one exists.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.Svc.Logout(c.Request.Context(), helpers.SessionToken(c)); err != nil {
		helpers.RequestLogger(h.Logger, c).WithError(err).Warn("session destroy failed")
	}
	h.Cookies.ClearSession(c)
	h.Pages.Flash.Add(c, LevelInfo, msgLoggedOut)
	c.Redirect(http.StatusFound, "/")
}
