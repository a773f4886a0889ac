package mailer

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Either Template+Data or Subject+Text(+HTML) is set.
type EmailJob struct {
	To       string         `json:"to,omitempty"` // empty: the worker's staff mailbox
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // "registration_notice", "tutor_verified"
	Data     map[string]any `json:"data,omitempty"`
}
