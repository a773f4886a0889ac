package web

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/online-school/internal/application"
	"github.com/oksasatya/online-school/internal/domain/entity"
)

func render(t *testing.T, name string, data gin.H) string {
	t.Helper()
	tpl := Parse(func(key string) string { return "/blobs/" + key })
	var buf bytes.Buffer
	if err := tpl.ExecuteTemplate(&buf, name, data); err != nil {
		t.Fatalf("render %s: %v", name, err)
	}
	return buf.String()
}

func TestRegisterPageEchoesValuesAndErrors(t *testing.T) {
	out := render(t, "register.html", gin.H{
		"Title":         "Register",
		"Values":        map[string]string{"username": "alice", "role": "Tutor"},
		"Errors":        map[string]string{"cv": "is required for this role"},
		"Roles":         []entity.Role{entity.RoleStudent, entity.RoleTutor},
		"Genders":       entity.Genders,
		"LearningModes": entity.LearningModes,
	})
	for _, want := range []string{`value="alice"`, `<option value="Tutor" selected>`, "is required for this role", `enctype="multipart/form-data"`} {
		if !strings.Contains(out, want) {
			t.Errorf("register page missing %q", want)
		}
	}
	if strings.Contains(out, `<option value="Admin"`) {
		t.Error("register page must not offer the admin role")
	}
}

func TestLayoutShowsIdentityAndMessages(t *testing.T) {
	type msg struct {
		Level string
		Text  string
	}
	out := render(t, "home.html", gin.H{
		"Title":    "Home",
		"Identity": &application.Identity{Username: "bob", Role: entity.RoleStudent},
		"Messages": []msg{{Level: "error", Text: "Invalid username or password."}},
	})
	if !strings.Contains(out, "/logout/") || !strings.Contains(out, "bob") {
		t.Error("expected signed in navigation")
	}
	if !strings.Contains(out, `alert-danger`) || !strings.Contains(out, "Invalid username or password.") {
		t.Errorf("flash message not rendered: %s", out)
	}

	anon := render(t, "home.html", gin.H{"Title": "Home"})
	if strings.Contains(anon, "/logout/") || !strings.Contains(anon, "/register/") {
		t.Error("expected anonymous navigation")
	}
}

func TestUserPageListsTutorDocuments(t *testing.T) {
	tp := &entity.TutorProfile{
		CV:              "cvs/one.pdf",
		Resume:          "resumes/two.pdf",
		ProofOfIdentity: "proofs/three.png",
		Education:       []entity.TutorEducation{{DocumentType: entity.DocMasters, File: "education/m.pdf"}},
		Certifications:  []entity.TutorCertification{{Name: "TEFL", File1: "certifications/a.pdf", File2: "certifications/b.pdf"}},
	}
	acc := &entity.Account{
		User:    entity.User{Username: "carol", Role: entity.RoleTutor, CreatedAt: time.Now()},
		Profile: tp,
	}
	out := render(t, "user.html", gin.H{
		"Title":         "carol",
		"Account":       acc,
		"Tutor":         tp,
		"DocumentTypes": entity.DocumentTypes,
	})
	for _, want := range []string{"/blobs/cvs/one.pdf", "/blobs/education/m.pdf", "TEFL", "/blobs/certifications/b.pdf", "Pending verification", "/user/delete/"} {
		if !strings.Contains(out, want) {
			t.Errorf("user page missing %q", want)
		}
	}
}

func TestErrorPage(t *testing.T) {
	out := render(t, "error.html", gin.H{"Title": "Not Found", "Status": 404})
	if !strings.Contains(out, "404") {
		t.Fatal("status not rendered")
	}
}
