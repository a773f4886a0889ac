package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/online-school/internal/domain/entity"
	"github.com/oksasatya/online-school/internal/interface/middleware"
)

// Pages renders the HTML templates with the data every page needs.
type Pages struct {
	Flash *Flash
}

func NewPages(flash *Flash) *Pages {
	return &Pages{Flash: flash}
}

func (p *Pages) HTML(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["Identity"] = middleware.IdentityFrom(c)
	data["Messages"] = p.Flash.Pop(c)
	c.HTML(status, name, data)
}

// Error renders the generic error page.
func (p *Pages) Error(c *gin.Context, status int) {
	p.HTML(c, status, "error.html", gin.H{
		"Title":  http.StatusText(status),
		"Status": status,
	})
}

func registerPage(values, errs map[string]string) gin.H {
	if values == nil {
		values = map[string]string{}
	}
	return gin.H{
		"Title":         "Register",
		"Values":        values,
		"Errors":        errs,
		"Roles":         []entity.Role{entity.RoleStudent, entity.RoleTutor},
		"Genders":       entity.Genders,
		"LearningModes": entity.LearningModes,
	}
}

func loginPage(username string, errs map[string]string) gin.H {
	return gin.H{
		"Title":    "Log in",
		"Username": username,
		"Errors":   errs,
	}
}
