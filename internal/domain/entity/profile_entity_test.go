package entity

import (
	"errors"
	"testing"
)

func TestAccountValidate(t *testing.T) {
	tests := []struct {
		name    string
		account Account
		wantErr error
	}{
		{
			name:    "student with student profile",
			account: Account{User: User{Role: RoleStudent}, Profile: &StudentProfile{}},
		},
		{
			name:    "tutor with tutor profile",
			account: Account{User: User{Role: RoleTutor}, Profile: &TutorProfile{}},
		},
		{
			name:    "admin with admin profile",
			account: Account{User: User{Role: RoleAdmin}, Profile: &AdminProfile{}},
		},
		{
			name:    "missing profile",
			account: Account{User: User{Role: RoleStudent}},
			wantErr: ErrProfileMissing,
		},
		{
			name:    "tutor with student profile",
			account: Account{User: User{Role: RoleTutor}, Profile: &StudentProfile{}},
			wantErr: ErrProfileMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.account.Validate()
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCertificationFiles(t *testing.T) {
	var c TutorCertification
	if err := c.SetFiles([]string{"a", "b"}); err != nil {
		t.Fatalf("SetFiles: %v", err)
	}
	if got := c.Files(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("unexpected files %v", got)
	}
	if c.File3 != "" {
		t.Fatalf("third slot should stay empty, got %q", c.File3)
	}
	if err := c.SetFiles([]string{"1", "2", "3", "4"}); err == nil {
		t.Fatal("expected error for four files")
	}
}

func TestAccountBlobKeys(t *testing.T) {
	a := Account{
		User: User{Role: RoleTutor, ProfilePic: "profile_pics/p.png"},
		Profile: &TutorProfile{
			CV:              "tutor_documents/cv/c.pdf",
			Resume:          "tutor_documents/resume/r.pdf",
			ProofOfIdentity: "tutor_documents/identity/i.pdf",
			Education:       []TutorEducation{{File: "tutor_documents/education/e.pdf"}},
			Certifications:  []TutorCertification{{File1: "tutor_documents/certifications/1.pdf", File3: "tutor_documents/certifications/3.pdf"}},
		},
	}

	keys := a.BlobKeys()
	if len(keys) != 7 {
		t.Fatalf("got %d keys, want 7: %v", len(keys), keys)
	}

	student := Account{User: User{Role: RoleStudent}, Profile: &StudentProfile{}}
	if keys := student.BlobKeys(); len(keys) != 0 {
		t.Fatalf("student without picture should own no blobs, got %v", keys)
	}
}

func TestParseRole(t *testing.T) {
	if r, err := ParseRole("Tutor"); err != nil || r != RoleTutor {
		t.Fatalf("ParseRole(Tutor) = %q, %v", r, err)
	}
	if _, err := ParseRole("tutor"); err == nil {
		t.Fatal("roles are case sensitive")
	}
}
