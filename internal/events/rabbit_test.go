package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	exchange string
	key      string
	msg      amqp.Publishing
	closed   bool
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.exchange, f.key, f.msg = exchange, key, msg
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestRabbitPublisher_Publish(t *testing.T) {
	ch := &fakeChannel{}
	p := newRabbitPublisherWithChannel(ch, "jobcards")

	at := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	err := p.Publish(context.Background(), Event{Name: "job_card.completed", JobCardID: "j1", CompanyID: "c1", OccurredAt: at})
	require.NoError(t, err)

	assert.Equal(t, "jobcards", ch.exchange)
	assert.Equal(t, "job_card.completed", ch.key)
	assert.Equal(t, "application/json", ch.msg.ContentType)
	assert.Equal(t, amqp.Persistent, ch.msg.DeliveryMode)
	assert.Equal(t, at, ch.msg.Timestamp)

	var got Event
	require.NoError(t, json.Unmarshal(ch.msg.Body, &got))
	assert.Equal(t, "j1", got.JobCardID)
	assert.Equal(t, "c1", got.CompanyID)

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func TestRabbitPublisher_RequiresName(t *testing.T) {
	p := newRabbitPublisherWithChannel(&fakeChannel{}, "jobcards")
	assert.Error(t, p.Publish(context.Background(), Event{}))
}

func TestNoop(t *testing.T) {
	var p Publisher = Noop{}
	assert.NoError(t, p.Publish(context.Background(), Event{Name: "x"}))
	assert.NoError(t, p.Close())
}
