package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/restaurant-orders/internal/model"
)

type fakeChannel struct {
	exchange string
	key      string
	msg      amqp.Publishing
	err      error
	closed   bool
	seq      uint64
}

func (c *fakeChannel) GetNextPublishSeqNo() uint64 {
	return c.seq + 1
}

func (c *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	c.exchange, c.key, c.msg = exchange, key, msg
	if c.err != nil {
		return c.err
	}
	c.seq++
	return nil
}

func (c *fakeChannel) Close() error {
	c.closed = true
	return nil
}

var sampleEvent = model.StatusChange{
	OrderID:    "ORD-001",
	From:       model.OrderStatusNew,
	To:         model.OrderStatusKitchen,
	Actor:      "Sarah Johnson",
	OccurredAt: time.Date(2024, 3, 1, 19, 56, 0, 0, time.UTC),
	Revision:   2,
}

func TestPublishStatusChange(t *testing.T) {
	ch := &fakeChannel{}
	p := &Publisher{ch: ch}

	require.NoError(t, p.PublishStatusChange(context.Background(), sampleEvent))

	assert.Equal(t, Exchange, ch.exchange)
	assert.Equal(t, "order.status.kitchen", ch.key)
	assert.Equal(t, amqp.Persistent, ch.msg.DeliveryMode)
	assert.Equal(t, "application/json", ch.msg.ContentType)
	assert.Equal(t, "ORD-001-2", ch.msg.MessageId)

	var body map[string]any
	require.NoError(t, json.Unmarshal(ch.msg.Body, &body))
	assert.Equal(t, "ORD-001", body["order_id"])
	assert.Equal(t, "new", body["from"])
	assert.Equal(t, "kitchen", body["to"])
	assert.Equal(t, "Sarah Johnson", body["actor"])
	assert.Equal(t, "2024-03-01T19:56:00Z", body["occurred_at"])
	assert.EqualValues(t, 2, body["revision"])
}

func TestPublishStatusChange_WaitsForConfirm(t *testing.T) {
	tests := []struct {
		name    string
		ack     bool
		wantErr bool
	}{
		{"ack", true, false},
		{"nack", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acks := make(chan amqp.Confirmation, 1)
			acks <- amqp.Confirmation{DeliveryTag: 1, Ack: tt.ack}
			p := &Publisher{ch: &fakeChannel{}, acks: acks}

			err := p.PublishStatusChange(context.Background(), sampleEvent)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPublishStatusChange_SkipsLateConfirmations(t *testing.T) {
	acks := make(chan amqp.Confirmation, 4)
	p := &Publisher{ch: &fakeChannel{}, acks: acks}

	publish := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		return p.PublishStatusChange(ctx, sampleEvent)
	}

	require.ErrorIs(t, publish(), context.DeadlineExceeded)

	// подтверждение первой публикации пришло после истечения ожидания
	acks <- amqp.Confirmation{DeliveryTag: 1, Ack: true}
	require.ErrorIs(t, publish(), context.DeadlineExceeded, "late ack of tag 1 must not confirm tag 2")

	acks <- amqp.Confirmation{DeliveryTag: 2, Ack: true}
	acks <- amqp.Confirmation{DeliveryTag: 3, Ack: false}
	assert.ErrorIs(t, publish(), ErrNack)

	acks <- amqp.Confirmation{DeliveryTag: 4, Ack: true}
	assert.NoError(t, publish())
}

func TestPublishStatusChange_ConfirmationsClosed(t *testing.T) {
	acks := make(chan amqp.Confirmation)
	close(acks)
	p := &Publisher{ch: &fakeChannel{}, acks: acks}

	err := p.PublishStatusChange(context.Background(), sampleEvent)
	assert.ErrorIs(t, err, amqp.ErrClosed)
}

func TestPublishStatusChange_LostConfirmation(t *testing.T) {
	acks := make(chan amqp.Confirmation, 1)
	acks <- amqp.Confirmation{DeliveryTag: 5, Ack: true}
	p := &Publisher{ch: &fakeChannel{}, acks: acks}

	err := p.PublishStatusChange(context.Background(), sampleEvent)
	assert.Error(t, err)
}

func TestPublishStatusChange_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := &Publisher{ch: &fakeChannel{}, acks: make(chan amqp.Confirmation)}
	err := p.PublishStatusChange(ctx, sampleEvent)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPublishStatusChange_ChannelError(t *testing.T) {
	p := &Publisher{ch: &fakeChannel{err: errors.New("channel closed")}}

	err := p.PublishStatusChange(context.Background(), sampleEvent)
	assert.Error(t, err)
}

func TestClose(t *testing.T) {
	ch := &fakeChannel{}
	p := &Publisher{ch: ch}

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}
