package validation

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
)

type signup struct {
	Username string `form:"username" binding:"required,max=150,username"`
	Password string `form:"password" binding:"required,pwd"`
	Role     string `form:"role" binding:"required,oneof=Student Tutor"`
	Mode     string `form:"preferred_learning_mode" binding:"required_if=Role Student,learning_mode"`
	Doc      string `json:"document_type" binding:"omitempty,document_type"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	Register(v)
	return v
}

func TestToDetailsUsesFormNames(t *testing.T) {
	v := newValidator()
	err := v.Struct(signup{Username: "bad name!", Password: "short", Role: "Student"})
	d := ToDetails(err)

	want := map[string]string{
		"username":                "may contain only letters, digits and @/./+/-/_",
		"password":                "must be at least 8 characters long",
		"preferred_learning_mode": "is required for this role",
	}
	for k, msg := range want {
		if d[k] != msg {
			t.Errorf("%s: got %q, want %q", k, d[k], msg)
		}
	}
	if len(d) != len(want) {
		t.Errorf("unexpected details: %v", d)
	}
}

func TestLearningModeOnlyRequiredForStudents(t *testing.T) {
	v := newValidator()
	if err := v.Struct(signup{Username: "tom", Password: "longenough", Role: "Tutor"}); err != nil {
		t.Fatalf("tutor without mode should pass: %v", err)
	}
	err := v.Struct(signup{Username: "tom", Password: "longenough", Role: "Tutor", Mode: "Carrier pigeon"})
	if d := ToDetails(err); d["preferred_learning_mode"] == "" {
		t.Fatalf("invalid mode should fail, got %v", d)
	}
}

func TestRoleRejectsAdmin(t *testing.T) {
	v := newValidator()
	err := v.Struct(signup{Username: "root", Password: "longenough", Role: "Admin"})
	if d := ToDetails(err); d["role"] != "must be one of: Student, Tutor" {
		t.Fatalf("got %v", d)
	}
}

func TestDocumentType(t *testing.T) {
	v := newValidator()
	ok := signup{Username: "tom", Password: "longenough", Role: "Tutor", Doc: "PhD"}
	if err := v.Struct(ok); err != nil {
		t.Fatalf("PhD should be valid: %v", err)
	}
	ok.Doc = "Diploma"
	if d := ToDetails(v.Struct(ok)); d["document_type"] == "" {
		t.Fatalf("expected document_type error, got %v", d)
	}
}

func TestToDetailsFallback(t *testing.T) {
	if d := ToDetails(errors.New("boom")); d["payload"] != "invalid payload" {
		t.Fatalf("got %v", d)
	}
	if ToDetails(nil) != nil {
		t.Fatal("nil error should give nil details")
	}
}
