package helpers

import (
	"fmt"
	"strings"

	"github.com/oksasatya/online-school/pkg/mailer"
	mailtpl "github.com/oksasatya/online-school/pkg/mailer/templates"
)

// SubjectFor returns a fallback subject for jobs that carry no template.
func SubjectFor(job *mailer.EmailJob) string {
	if job.Subject != "" {
		return job.Subject
	}
	switch strings.ToLower(job.Template) {
	case mailtpl.RegistrationNotice:
		return "New registration"
	case mailtpl.TutorVerified:
		return "Tutor verified"
	default:
		return "Notification"
	}
}

// EnsureRecipient fills the recipient from fallback and mirrors it into the
// template data.
func EnsureRecipient(job *mailer.EmailJob, fallback string) {
	if strings.TrimSpace(job.To) == "" {
		job.To = fallback
	}
	if job.Data == nil {
		job.Data = map[string]any{}
	}
	if v, ok := job.Data["RecipientEmail"]; !ok || fmt.Sprintf("%v", v) == "" {
		job.Data["RecipientEmail"] = job.To
	}
}
