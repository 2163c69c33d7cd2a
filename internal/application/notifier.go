package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/course-subscription-api/internal/domain/entity"
	"github.com/oksasatya/course-subscription-api/pkg/mailer"
	"github.com/oksasatya/course-subscription-api/pkg/mailer/templates"
)

// Publisher puts a JSON message on the email queue.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// Notifier enqueues learner emails. A nil Notifier or nil Pub is a no-op,
// and publish failures never fail the calling operation.
type Notifier struct {
	Pub     Publisher
	AppName string
	Logger  *logrus.Logger
}

func NewNotifier(pub Publisher, appName string, logger *logrus.Logger) *Notifier {
	return &Notifier{Pub: pub, AppName: appName, Logger: logger}
}

func (n *Notifier) Welcome(ctx context.Context, u *entity.User) {
	n.send(ctx, u, templates.Welcome, nil)
}

func (n *Notifier) SubscriptionActivated(ctx context.Context, u *entity.User) {
	n.send(ctx, u, templates.SubscriptionActivated, nil)
}

func (n *Notifier) CourseEnrolled(ctx context.Context, u *entity.User, courseID, courseTitle string) {
	n.send(ctx, u, templates.CourseEnrolled, map[string]any{"CourseID": courseID, "CourseTitle": courseTitle})
}

func (n *Notifier) send(ctx context.Context, u *entity.User, tpl string, extra map[string]any) {
	if n == nil || n.Pub == nil {
		return
	}
	data := map[string]any{
		"AppName": n.AppName,
		"Name":    u.FirstName,
		"Email":   u.Email,
	}
	for k, v := range extra {
		data[k] = v
	}
	job := mailer.EmailJob{To: u.Email, Template: tpl, Data: data}

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := n.Pub.PublishJSON(c, job); err != nil && n.Logger != nil {
		n.Logger.WithError(err).WithFields(logrus.Fields{"user_id": u.ID, "template": tpl}).Warn("publish email job failed")
	}
}
