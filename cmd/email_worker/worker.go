package main

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/online-school/pkg/helpers"
	"github.com/oksasatya/online-school/pkg/mailer"
	mailtpl "github.com/oksasatya/online-school/pkg/mailer/templates"
)

type outcome int

const (
	ack outcome = iota
	requeue
	drop
)

func (o outcome) String() string {
	switch o {
	case ack:
		return "sent"
	case requeue:
		return "retry"
	default:
		return "dropped"
	}
}

var errNoRecipient = errors.New("no recipient and no staff mailbox configured")

// worker renders queued email jobs and hands them to the sender.
type worker struct {
	sender  mailer.Sender
	staff   string // mailbox for jobs queued without a recipient
	timeout time.Duration
	metrics *helpers.Prom
	logger  *logrus.Logger
}

// handle processes one delivery. A send failure is retried once through
// the queue, anything else that fails is dropped.
func (w *worker) handle(ctx context.Context, body []byte, redelivered bool) outcome {
	var job mailer.EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		w.logger.WithError(err).Warn("bad message")
		return w.done(&job, drop)
	}

	helpers.EnsureRecipient(&job, w.staff)
	log := w.logger.WithFields(logrus.Fields{"template": job.Template, "to": job.To})
	if job.To == "" {
		log.WithError(errNoRecipient).Warn("email dropped")
		return w.done(&job, drop)
	}

	subject, text, html := helpers.SubjectFor(&job), job.Text, job.HTML
	if job.Template != "" {
		s, t, h, err := mailtpl.Render(job.Template, job.Data)
		if err != nil {
			log.WithError(err).Error("render failed")
			return w.done(&job, drop)
		}
		subject, text, html = s, t, h
	}

	c, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()
	if err := w.sender.Send(c, job.To, subject, text, html); err != nil {
		if redelivered {
			log.WithError(err).Error("send failed again, dropping")
			return w.done(&job, drop)
		}
		log.WithError(err).Warn("send failed, requeueing")
		return w.done(&job, requeue)
	}
	log.Info("email sent")
	return w.done(&job, ack)
}

func (w *worker) done(job *mailer.EmailJob, o outcome) outcome {
	w.metrics.ObserveEmailJob(job.Template, o.String())
	return o
}
