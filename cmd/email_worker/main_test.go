package main

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/course-subscription-api/pkg/helpers"
	"github.com/oksasatya/course-subscription-api/pkg/mailer"
	mailtpl "github.com/oksasatya/course-subscription-api/pkg/mailer/templates"
)

type fakeSender struct {
	to, subject, text, html string
	tags                    []string
	calls                   int
	err                     error
}

func (s *fakeSender) Send(_ context.Context, to, subject, text, html string, tags ...string) error {
	s.calls++
	s.to, s.subject, s.text, s.html = to, subject, text, html
	s.tags = tags
	return s.err
}

func encode(t *testing.T, job mailer.EmailJob) []byte {
	t.Helper()
	b, err := json.Marshal(job)
	require.NoError(t, err)
	return b
}

func TestHandle_RendersTemplate(t *testing.T) {
	s := &fakeSender{}
	body := encode(t, mailer.EmailJob{
		To:       "a@b.com",
		Template: mailtpl.CourseEnrolled,
		Data:     map[string]any{"AppName": "Courses", "Name": "Alice", "CourseTitle": "Go Basics"},
	})

	got := handle(context.Background(), body, s, helpers.NewNopLogger())
	assert.Equal(t, ack, got)
	assert.Equal(t, "a@b.com", s.to)
	assert.NotEmpty(t, s.subject)
	assert.Contains(t, s.text, "Go Basics")
	assert.Equal(t, []string{mailtpl.CourseEnrolled}, s.tags)
}

func TestHandle_RawMessage(t *testing.T) {
	s := &fakeSender{}
	body := encode(t, mailer.EmailJob{To: "a@b.com", Subject: "Hi", Text: "plain"})
	assert.Equal(t, ack, handle(context.Background(), body, s, helpers.NewNopLogger()))
	assert.Equal(t, "Hi", s.subject)
}

func TestHandle_DropsBadJobs(t *testing.T) {
	s := &fakeSender{}
	logger := helpers.NewNopLogger()

	assert.Equal(t, drop, handle(context.Background(), []byte("{"), s, logger))
	assert.Equal(t, drop, handle(context.Background(), encode(t, mailer.EmailJob{Subject: "x", Text: "y"}), s, logger))
	assert.Equal(t, drop, handle(context.Background(), encode(t, mailer.EmailJob{To: "a@b.com", Template: "missing"}), s, logger))
	assert.Equal(t, drop, handle(context.Background(), encode(t, mailer.EmailJob{To: "a@b.com"}), s, logger))
	assert.Zero(t, s.calls)
}

func TestHandle_RetriesOnSendFailure(t *testing.T) {
	s := &fakeSender{err: errors.New("mailgun 503")}
	body := encode(t, mailer.EmailJob{To: "a@b.com", Template: mailtpl.Welcome, Data: map[string]any{"Name": "Alice"}})
	assert.Equal(t, retry, handle(context.Background(), body, s, helpers.NewNopLogger()))
	assert.Equal(t, 1, s.calls)
}

type fakeAck struct {
	acked, nacked, requeued bool
}

func (a *fakeAck) Ack(uint64, bool) error {
	a.acked = true
	return nil
}

func (a *fakeAck) Nack(_ uint64, _ bool, requeue bool) error {
	a.nacked, a.requeued = true, requeue
	return nil
}

func (a *fakeAck) Reject(_ uint64, requeue bool) error { return a.Nack(0, false, requeue) }

type published struct {
	key string
	msg amqp.Publishing
}

type fakeChannel struct {
	out []published
	err error
}

func (c *fakeChannel) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	if c.err != nil {
		return c.err
	}
	c.out = append(c.out, published{key: key, msg: msg})
	return nil
}

func delivery(acker *fakeAck, attempts any) amqp.Delivery {
	d := amqp.Delivery{Acknowledger: acker, ContentType: "application/json", Body: []byte(`{"to":"a@b.com"}`), Headers: amqp.Table{"trace": "t-1"}}
	if attempts != nil {
		d.Headers[attemptHeader] = attempts
	}
	return d
}

func TestAttemptsOf(t *testing.T) {
	assert.Equal(t, 0, attemptsOf(nil))
	assert.Equal(t, 0, attemptsOf(amqp.Table{attemptHeader: "3"}))
	assert.Equal(t, 2, attemptsOf(amqp.Table{attemptHeader: int32(2)}))
	assert.Equal(t, 4, attemptsOf(amqp.Table{attemptHeader: int64(4)}))
}

func TestSettle_CapsRetries(t *testing.T) {
	assert.Equal(t, retry, settle(retry, 0, 5))
	assert.Equal(t, retry, settle(retry, 3, 5))
	assert.Equal(t, park, settle(retry, 4, 5))
	assert.Equal(t, ack, settle(ack, 9, 5))
	assert.Equal(t, drop, settle(drop, 9, 5))
}

func TestDispatch_RetryGoesToDelayQueue(t *testing.T) {
	acker, ch := &fakeAck{}, &fakeChannel{}
	dispatch(context.Background(), ch, "emails", 5, delivery(acker, int32(1)), retry, helpers.NewNopLogger())

	assert.True(t, acker.acked)
	assert.False(t, acker.nacked)
	require.Len(t, ch.out, 1)
	assert.Equal(t, "emails.retry", ch.out[0].key)
	assert.Equal(t, int32(2), ch.out[0].msg.Headers[attemptHeader])
	assert.Equal(t, "t-1", ch.out[0].msg.Headers["trace"])
	assert.Equal(t, amqp.Persistent, ch.out[0].msg.DeliveryMode)
	assert.JSONEq(t, `{"to":"a@b.com"}`, string(ch.out[0].msg.Body))
}

func TestDispatch_ExhaustedJobIsParked(t *testing.T) {
	acker, ch := &fakeAck{}, &fakeChannel{}
	dispatch(context.Background(), ch, "emails", 5, delivery(acker, int64(4)), retry, helpers.NewNopLogger())

	assert.True(t, acker.acked)
	require.Len(t, ch.out, 1)
	assert.Equal(t, "emails.dead", ch.out[0].key)
}

func TestDispatch_RetryPublishFailureRequeues(t *testing.T) {
	acker, ch := &fakeAck{}, &fakeChannel{err: errors.New("channel closed")}
	dispatch(context.Background(), ch, "emails", 5, delivery(acker, nil), retry, helpers.NewNopLogger())

	assert.False(t, acker.acked)
	assert.True(t, acker.nacked)
	assert.True(t, acker.requeued)
}

func TestDispatch_AckAndDrop(t *testing.T) {
	acker, ch := &fakeAck{}, &fakeChannel{}
	dispatch(context.Background(), ch, "emails", 5, delivery(acker, nil), ack, helpers.NewNopLogger())
	assert.True(t, acker.acked)
	assert.Empty(t, ch.out)

	dropped := &fakeAck{}
	dispatch(context.Background(), ch, "emails", 5, delivery(dropped, nil), drop, helpers.NewNopLogger())
	assert.True(t, dropped.nacked)
	assert.False(t, dropped.requeued)
	assert.Empty(t, ch.out)
}

func TestConsumerTag(t *testing.T) {
	assert.Equal(t, "courses-email-worker", consumerTag("courses"))
}
