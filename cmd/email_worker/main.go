package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/course-subscription-api/config"
	"github.com/oksasatya/course-subscription-api/pkg/helpers"
	"github.com/oksasatya/course-subscription-api/pkg/mailer"
	mailtpl "github.com/oksasatya/course-subscription-api/pkg/mailer/templates"
)

// sender delivers one rendered email.
type sender interface {
	Send(ctx context.Context, to, subject, text, html string, tags ...string) error
}

type outcome int

const (
	ack outcome = iota
	drop
	retry
	park
)

const attemptHeader = "x-attempt"

// consumerTag names this worker's subscription so shutdown cancels exactly it.
func consumerTag(appName string) string { return appName + "-email-worker" }

// publisher is the slice of *amqp.Channel used to move deliveries between queues.
type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// attemptsOf reads how many times a delivery has already been retried.
func attemptsOf(h amqp.Table) int {
	switch v := h[attemptHeader].(type) {
	case int32:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

// settle caps retries: the delivery that would exceed maxAttempts is parked instead.
func settle(out outcome, attempts, maxAttempts int) outcome {
	if out == retry && attempts+1 >= maxAttempts {
		return park
	}
	return out
}

// forward republishes d onto queue with its attempt counter set to attempts.
func forward(ctx context.Context, ch publisher, queue string, d amqp.Delivery, attempts int) error {
	headers := amqp.Table{}
	for k, v := range d.Headers {
		headers[k] = v
	}
	headers[attemptHeader] = int32(attempts)
	return ch.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType:  d.ContentType,
		DeliveryMode: amqp.Persistent,
		Timestamp:    d.Timestamp,
		Headers:      headers,
		Body:         d.Body,
	})
}

// dispatch settles one delivery. Retries go to the delay queue and come back
// after it expires; exhausted jobs are parked for inspection.
func dispatch(ctx context.Context, ch publisher, queue string, maxAttempts int, d amqp.Delivery, out outcome, logger logrus.FieldLogger) {
	attempts := attemptsOf(d.Headers)
	switch settle(out, attempts, maxAttempts) {
	case ack:
		_ = d.Ack(false)
	case retry:
		if err := forward(ctx, ch, helpers.RetryQueueName(queue), d, attempts+1); err != nil {
			logger.WithError(err).Warn("schedule email retry failed")
			_ = d.Nack(false, true)
			return
		}
		logger.WithField("attempt", attempts+1).Info("email retry scheduled")
		_ = d.Ack(false)
	case park:
		if err := forward(ctx, ch, helpers.DeadQueueName(queue), d, attempts+1); err != nil {
			logger.WithError(err).Warn("park email job failed")
			_ = d.Nack(false, false)
			return
		}
		logger.WithField("attempts", attempts+1).Error("email job parked after repeated failures")
		_ = d.Ack(false)
	default:
		_ = d.Nack(false, false)
	}
}

// handle decodes, renders and sends one job. Malformed or unrenderable jobs
// are dropped; delivery failures are retried.
func handle(ctx context.Context, body []byte, mg sender, logger logrus.FieldLogger) outcome {
	var job mailer.EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		logger.WithError(err).Warn("bad email job")
		return drop
	}
	if job.To == "" {
		logger.Warn("email job without recipient")
		return drop
	}
	log := logger.WithField("template", job.Template)

	if err := job.Prepare(mailtpl.Render); err != nil {
		log.WithError(err).Warn("render email failed")
		return drop
	}
	if job.Subject == "" || (job.Text == "" && job.HTML == "") {
		log.Warn("email job has no content")
		return drop
	}

	c, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := mg.Send(c, job.To, job.Subject, job.Text, job.HTML, job.Template); err != nil {
		log.WithError(err).Warn("send email failed")
		return retry
	}
	log.Info("email sent")
	return ack
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(consumerTag(cfg.AppName), cfg.Env)

	if !cfg.MailSendEnabled {
		logger.Info("MAIL_SEND_ENABLED=false; email worker disabled")
		return
	}
	if cfg.RabbitMQURL == "" || cfg.RabbitMQEmailQueue == "" {
		logger.Fatal("RabbitMQ not configured")
	}
	if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
		logger.Fatal("Mailgun not configured")
	}

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		logger.Fatalf("amqp dial: %v", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		logger.Fatalf("amqp channel: %v", err)
	}
	defer func() { _ = ch.Close() }()

	// prefetch for fair dispatch across workers
	if err := ch.Qos(16, 0, false); err != nil {
		logger.Fatalf("qos: %v", err)
	}
	if err := helpers.DeclareDurableQueue(ch, cfg.RabbitMQEmailQueue); err != nil {
		logger.Fatalf("queue declare: %v", err)
	}
	if err := helpers.DeclareRetryQueue(ch, cfg.RabbitMQEmailQueue, cfg.EmailRetryDelay); err != nil {
		logger.Fatalf("retry queue declare: %v", err)
	}
	if err := helpers.DeclareDurableQueue(ch, helpers.DeadQueueName(cfg.RabbitMQEmailQueue)); err != nil {
		logger.Fatalf("dead queue declare: %v", err)
	}

	tag := consumerTag(cfg.AppName)
	msgs, err := ch.Consume(cfg.RabbitMQEmailQueue, tag, false, false, false, false, nil)
	if err != nil {
		logger.Fatalf("consume: %v", err)
	}

	mg := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for msg := range msgs {
			log := logger.WithField("delivery_tag", msg.DeliveryTag)
			dispatch(ctx, ch, cfg.RabbitMQEmailQueue, cfg.EmailMaxAttempts, msg, handle(ctx, msg.Body, mg, log), log)
		}
	}()

	logger.Infof("email worker listening on queue=%s", cfg.RabbitMQEmailQueue)
	<-stop
	logger.Info("shutting down...")
	_ = ch.Cancel(tag, false)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}
