package mailer

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/taranco/contact-directory-api/pkg/helpers"
)

// Dispatcher hands an email job to the delivery pipeline. A failed dispatch
// means the email will not be sent.
type Dispatcher interface {
	Dispatch(ctx context.Context, job EmailJob) error
}

// QueueDispatcher publishes jobs to RabbitMQ for the email worker.
type QueueDispatcher struct {
	Pub *helpers.RabbitPublisher
}

func (d *QueueDispatcher) Dispatch(ctx context.Context, job EmailJob) error {
	return d.Pub.PublishJSON(ctx, job)
}

// DisabledDispatcher is used when MAIL_SEND_ENABLED=false: jobs are logged
// and reported as dispatched so flows that require email still proceed.
type DisabledDispatcher struct {
	Logger *logrus.Logger
}

func (d *DisabledDispatcher) Dispatch(_ context.Context, job EmailJob) error {
	if d.Logger != nil {
		d.Logger.WithFields(logrus.Fields{"to": job.To, "template": job.Template}).
			Info("email sending disabled; dropping job")
	}
	return nil
}
