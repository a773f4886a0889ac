package templates

import (
	"time"
)

// Option pattern
type Option func(*EmailData)

func WithIP(ip string) Option { return func(d *EmailData) { d.IP = ip } }
func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.RegisteredAt = utc
		d.Time = utc.Format("02 January 2006, 15:04")
	}
}
func WithDocuments(names ...string) Option {
	return func(d *EmailData) { d.Documents = append(d.Documents, names...) }
}

// Brand carries the product details printed in every email.
type Brand struct {
	AppName     string
	CompanyName string
	LogoURL     string
	SupportURL  string
}

func newBase(b Brand, typ, userID, username, role string, opts ...Option) EmailData {
	d := EmailData{
		Type:        typ,
		AppName:     b.AppName,
		CompanyName: b.CompanyName,
		LogoURL:     b.LogoURL,
		SupportURL:  b.SupportURL,
		UserID:      userID,
		Username:    username,
		Role:        role,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// NewRegistrationNoticeData tells staff a user signed up. Tutors need a
// document review before they are verified.
func NewRegistrationNoticeData(b Brand, userID, username, role string, opts ...Option) map[string]any {
	d := newBase(b, RegistrationNotice, userID, username, role, opts...)
	d.NeedsReview = role == "Tutor"
	return ToMap(d)
}

func NewTutorVerifiedData(b Brand, userID, username string, opts ...Option) map[string]any {
	return ToMap(newBase(b, TutorVerified, userID, username, "Tutor", opts...))
}
