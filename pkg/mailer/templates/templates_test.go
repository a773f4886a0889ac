package templates

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestRenderRegistrationNoticeForTutor(t *testing.T) {
	data := NewRegistrationNoticeData(Brand{AppName: "Online School"}, "u-1", "tom", "Tutor",
		WithTime(time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)),
		WithDocuments("cv.pdf", "resume.pdf"),
	)

	subject, text, html, err := Render(RegistrationNotice, data)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if subject != "[Online School] New Tutor registration: tom" {
		t.Fatalf("subject = %q", subject)
	}
	for _, want := range []string{"Username: tom", "01 March 2024, 09:30", "cv.pdf", "waiting for verification"} {
		if !strings.Contains(text, want) {
			t.Errorf("text missing %q:\n%s", want, text)
		}
	}
	if !strings.Contains(html, "<li>resume.pdf</li>") {
		t.Errorf("html missing document list:\n%s", html)
	}
}

func TestRenderRegistrationNoticeForStudentHasNoReview(t *testing.T) {
	data := NewRegistrationNoticeData(Brand{}, "u-2", "alice", "Student")
	_, text, _, err := Render(RegistrationNotice, data)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(text, "verification") {
		t.Fatalf("student notice should not ask for review:\n%s", text)
	}
}

func TestRenderUnknownTemplate(t *testing.T) {
	if _, _, _, err := Render("nope", nil); !errors.Is(err, ErrUnknownTemplate) {
		t.Fatalf("got %v, want ErrUnknownTemplate", err)
	}
}

func TestRenderTutorVerified(t *testing.T) {
	subject, _, html, err := Render(TutorVerified, NewTutorVerifiedData(Brand{AppName: "Online School"}, "u-3", "tom"))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(subject, "\n") || !strings.Contains(subject, "tom") {
		t.Fatalf("subject = %q", subject)
	}
	if !strings.Contains(html, "tom") {
		t.Fatalf("html missing username:\n%s", html)
	}
}
