package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/online-school/pkg/helpers"
	"github.com/oksasatya/online-school/pkg/mailer"
	mailtpl "github.com/oksasatya/online-school/pkg/mailer/templates"
)

type sent struct {
	to, subject, text, html string
}

type fakeSender struct {
	out []sent
	err error
}

func (f *fakeSender) Send(_ context.Context, to, subject, text, html string) error {
	if f.err != nil {
		return f.err
	}
	f.out = append(f.out, sent{to, subject, text, html})
	return nil
}

func newWorker(s mailer.Sender, staff string) *worker {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return &worker{
		sender:  s,
		staff:   staff,
		timeout: time.Second,
		metrics: helpers.NewProm(prometheus.NewRegistry()),
		logger:  logger,
	}
}

func encode(t *testing.T, job mailer.EmailJob) []byte {
	t.Helper()
	b, err := json.Marshal(job)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestHandleRendersTemplateToStaffMailbox(t *testing.T) {
	s := &fakeSender{}
	w := newWorker(s, "staff@example.com")

	data := mailtpl.NewRegistrationNoticeData(mailtpl.Brand{AppName: "Online School"}, "u-1", "tom", "Tutor",
		mailtpl.WithDocuments("https://files.example/cv.pdf"))
	got := w.handle(context.Background(), encode(t, mailer.EmailJob{Template: mailtpl.RegistrationNotice, Data: data}), false)
	if got != ack {
		t.Fatalf("outcome = %v", got)
	}
	if len(s.out) != 1 {
		t.Fatalf("sent %d emails", len(s.out))
	}
	m := s.out[0]
	if m.to != "staff@example.com" {
		t.Errorf("to = %q", m.to)
	}
	if !strings.Contains(m.subject, "tom") || strings.Contains(m.subject, "\n") {
		t.Errorf("subject = %q", m.subject)
	}
	if !strings.Contains(m.html, "https://files.example/cv.pdf") {
		t.Error("html should link the tutor documents")
	}
	if v := testutil.ToFloat64(w.metrics.EmailJobs.WithLabelValues(mailtpl.RegistrationNotice, "sent")); v != 1 {
		t.Errorf("sent counter = %v", v)
	}
}

func TestHandlePlainJobKeepsRecipient(t *testing.T) {
	s := &fakeSender{}
	w := newWorker(s, "staff@example.com")

	got := w.handle(context.Background(), encode(t, mailer.EmailJob{To: "ops@example.com", Text: "hello"}), false)
	if got != ack || len(s.out) != 1 {
		t.Fatalf("outcome = %v, sent = %d", got, len(s.out))
	}
	if s.out[0].to != "ops@example.com" || s.out[0].subject != "Notification" {
		t.Fatalf("unexpected email %+v", s.out[0])
	}
}

func TestHandleFailures(t *testing.T) {
	tests := []struct {
		name        string
		body        []byte
		staff       string
		sendErr     error
		redelivered bool
		want        outcome
	}{
		{name: "bad json", body: []byte("{"), staff: "staff@example.com", want: drop},
		{name: "unknown template", body: []byte(`{"template":"nope"}`), staff: "staff@example.com", want: drop},
		{name: "no recipient", body: []byte(`{"text":"hi"}`), want: drop},
		{name: "send error", body: []byte(`{"text":"hi"}`), staff: "staff@example.com", sendErr: errors.New("502"), want: requeue},
		{name: "send error after retry", body: []byte(`{"text":"hi"}`), staff: "staff@example.com", sendErr: errors.New("502"), redelivered: true, want: drop},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newWorker(&fakeSender{err: tt.sendErr}, tt.staff)
			if got := w.handle(context.Background(), tt.body, tt.redelivered); got != tt.want {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}
