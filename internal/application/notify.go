package application

import (
	"context"
	"time"

	"github.com/oksasatya/online-school/internal/domain/entity"
	"github.com/oksasatya/online-school/pkg/mailer"
	mailtpl "github.com/oksasatya/online-school/pkg/mailer/templates"
)

// JobPublisher puts background jobs on the queue.
type JobPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

func (s *Service) publish(ctx context.Context, job mailer.EmailJob) {
	if s.Jobs == nil {
		return
	}
	c, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	if err := s.Jobs.PublishJSON(c, job); err != nil {
		s.Logger.WithError(err).WithField("template", job.Template).Warn("publish email job failed")
	}
}

func (s *Service) notifyRegistration(ctx context.Context, a *entity.Account, ip string) {
	opts := []mailtpl.Option{mailtpl.WithTime(a.User.CreatedAt), mailtpl.WithIP(ip)}
	if t, ok := a.Tutor(); ok {
		opts = append(opts, mailtpl.WithDocuments(s.documentURLs(t)...))
	}
	s.publish(ctx, mailer.EmailJob{
		Template: mailtpl.RegistrationNotice,
		Data:     mailtpl.NewRegistrationNoticeData(s.Brand, a.User.ID, a.User.Username, string(a.User.Role), opts...),
	})
}

func (s *Service) notifyTutorVerified(ctx context.Context, u *entity.User) {
	s.publish(ctx, mailer.EmailJob{
		Template: mailtpl.TutorVerified,
		Data:     mailtpl.NewTutorVerifiedData(s.Brand, u.ID, u.Username, mailtpl.WithTime(time.Now())),
	})
}

func (s *Service) documentURLs(t *entity.TutorProfile) []string {
	out := make([]string, 0, 3)
	for _, k := range []string{t.CV, t.Resume, t.ProofOfIdentity} {
		if k != "" {
			out = append(out, s.Blobs.URL(k))
		}
	}
	return out
}
