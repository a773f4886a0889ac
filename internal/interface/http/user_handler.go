package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/online-school/internal/application"
	"github.com/oksasatya/online-school/internal/domain/entity"
	"github.com/oksasatya/online-school/internal/interface/middleware"
	"github.com/oksasatya/online-school/pkg/helpers"
	"github.com/oksasatya/online-school/pkg/response"
	"github.com/oksasatya/online-school/pkg/validation"
)

type UserHandler struct {
	Svc     *application.Service
	Pages   *Pages
	Cookies *helpers.Manager
	Logger  *logrus.Logger
}

func NewUserHandler(svc *application.Service, pages *Pages, cookies *helpers.Manager, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Pages: pages, Cookies: cookies, Logger: logger}
}

// Home GET /
func (h *UserHandler) Home(c *gin.Context) {
	h.Pages.HTML(c, http.StatusOK, "home.html", gin.H{"Title": "Home"})
}

// Profile GET /user/
func (h *UserHandler) Profile(c *gin.Context) {
	id := middleware.IdentityFrom(c)
	acc, err := h.Svc.GetAccount(c.Request.Context(), id.UserID)
	if errors.Is(err, application.ErrUserNotFound) {
		// session outlived its user
		h.Cookies.ClearSession(c)
		c.Redirect(http.StatusFound, "/login/")
		return
	}
	if err != nil {
		helpers.RequestLogger(h.Logger, c).WithError(err).Error("load account failed")
		h.Pages.Error(c, http.StatusInternalServerError)
		return
	}

	data := gin.H{
		"Title":         acc.User.Username,
		"Account":       acc,
		"DocumentTypes": entity.DocumentTypes,
	}
	if sp, ok := acc.Student(); ok {
		data["Student"] = sp
	}
	if tp, ok := acc.Tutor(); ok {
		data["Tutor"] = tp
	}
	h.Pages.HTML(c, http.StatusOK, "user.html", data)
}

func (h *UserHandler) documentFailed(c *gin.Context, err error) {
	switch {
	case errors.Is(err, application.ErrNotTutor):
		h.Pages.Flash.Add(c, LevelError, "Only tutors can upload documents.")
	default:
		helpers.RequestLogger(h.Logger, c).WithError(err).Error("document upload failed")
		h.Pages.Flash.Add(c, LevelError, "Upload failed. Please try again.")
	}
	c.Redirect(http.StatusFound, "/user/")
}

func invalidUpload(details map[string]string) string {
	msg := "Upload failed. Invalid information."
	for field, reason := range details {
		msg += " " + field + " " + reason + "."
	}
	return msg
}

// AddEducation POST /user/education/
func (h *UserHandler) AddEducation(c *gin.Context) {
	var form educationForm
	if err := c.ShouldBind(&form); err != nil {
		h.Pages.Flash.Add(c, LevelError, invalidUpload(validation.ToDetails(err)))
		c.Redirect(http.StatusFound, "/user/")
		return
	}
	files := &uploads{}
	defer func() { _ = files.Close() }()
	f, err := files.open(form.File)
	if err != nil {
		h.documentFailed(c, err)
		return
	}

	id := middleware.IdentityFrom(c)
	if _, err := h.Svc.AddEducation(c.Request.Context(), id.UserID, entity.DocumentType(form.DocumentType), *f); err != nil {
		h.documentFailed(c, err)
		return
	}
	h.Pages.Flash.Add(c, LevelSuccess, "Education document uploaded.")
	c.Redirect(http.StatusFound, "/user/")
}

// AddCertification POST /user/certifications/
func (h *UserHandler) AddCertification(c *gin.Context) {
	var form certificationForm
	if err := c.ShouldBind(&form); err != nil {
		h.Pages.Flash.Add(c, LevelError, invalidUpload(validation.ToDetails(err)))
		c.Redirect(http.StatusFound, "/user/")
		return
	}
	files := &uploads{}
	defer func() { _ = files.Close() }()
	list, err := form.files(files)
	if err != nil {
		h.documentFailed(c, err)
		return
	}

	id := middleware.IdentityFrom(c)
	if _, err := h.Svc.AddCertification(c.Request.Context(), id.UserID, form.Name, list); err != nil {
		h.documentFailed(c, err)
		return
	}
	h.Pages.Flash.Add(c, LevelSuccess, "Certification added.")
	c.Redirect(http.StatusFound, "/user/")
}

// Delete POST /user/delete/
func (h *UserHandler) Delete(c *gin.Context) {
	id := middleware.IdentityFrom(c)
	err := h.Svc.DeleteAccount(c.Request.Context(), id.UserID)
	if err != nil && !errors.Is(err, application.ErrUserNotFound) {
		helpers.RequestLogger(h.Logger, c).WithError(err).Error("delete account failed")
		h.Pages.Error(c, http.StatusInternalServerError)
		return
	}
	h.Cookies.ClearSession(c)
	h.Pages.Flash.Add(c, LevelInfo, "Your account has been deleted.")
	c.Redirect(http.StatusFound, "/")
}

// Search GET /api/users/search?q=&size=
func (h *UserHandler) Search(c *gin.Context) {
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	docs, err := h.Svc.SearchUsers(c.Request.Context(), c.Query("q"), size)
	if err != nil {
		helpers.RequestLogger(h.Logger, c).WithError(err).Warn("user search failed")
		response.JSON(c, response.Error[any](c, http.StatusBadGateway, "search unavailable", nil))
		return
	}
	response.JSON(c, response.Success(c, http.StatusOK, docs, "users", gin.H{"count": len(docs)}))
}
