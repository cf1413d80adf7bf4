// Package events публикует события жизненного цикла заказов в RabbitMQ.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/mmeshcher/restaurant-orders/internal/model"
)

// Exchange задаёт topic-обменник, в который публикуются события заказов.
const Exchange = "orders_topic"

// RoutingKey возвращает ключ маршрутизации события смены статуса, например "order.status.kitchen".
func RoutingKey(status model.OrderStatus) string {
	return "order.status." + string(status)
}

// ErrNack возвращается, если брокер не принял сообщение.
var ErrNack = errors.New("publish NACK from broker")

type channel interface {
	GetNextPublishSeqNo() uint64
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher отправляет события о смене статуса с подтверждением от брокера.
type Publisher struct {
	conn *amqp.Connection
	ch   channel

	acks <-chan amqp.Confirmation
	mu   sync.Mutex
}

// Подтверждения публикаций, на которые уже истекло ожидание, остаются в буфере
// до следующей публикации.
const confirmBuffer = 16

// Dial подключается к брокеру, объявляет обменник и включает подтверждения публикаций.
func Dial(url string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(Exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("enable confirms: %w", err)
	}
	acks := ch.NotifyPublish(make(chan amqp.Confirmation, confirmBuffer))

	return &Publisher{conn: conn, ch: ch, acks: acks}, nil
}

// Close закрывает канал и соединение.
func (p *Publisher) Close() error {
	var errs []error
	if p.ch != nil {
		errs = append(errs, p.ch.Close())
	}
	if p.conn != nil {
		errs = append(errs, p.conn.Close())
	}
	return errors.Join(errs...)
}

// PublishStatusChange публикует событие и ждёт подтверждения брокера или отмены ctx.
// Подтверждения сопоставляются с публикацией по delivery tag, запоздавшие
// подтверждения прежних публикаций пропускаются.
func (p *Publisher) PublishStatusChange(ctx context.Context, ev model.StatusChange) error {
	msg, err := newPublishing(ev)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	tag := p.ch.GetNextPublishSeqNo()
	if err := p.ch.PublishWithContext(ctx, Exchange, RoutingKey(ev.To), false, false, msg); err != nil {
		return fmt.Errorf("publish status change: %w", err)
	}

	if p.acks == nil {
		return nil
	}
	return p.waitConfirm(ctx, tag)
}

func (p *Publisher) waitConfirm(ctx context.Context, tag uint64) error {
	for {
		select {
		case conf, ok := <-p.acks:
			if !ok {
				return fmt.Errorf("wait confirmation for tag %d: %w", tag, amqp.ErrClosed)
			}
			switch {
			case conf.DeliveryTag < tag:
				continue
			case conf.DeliveryTag > tag:
				return fmt.Errorf("confirmation for tag %d was lost, got tag %d", tag, conf.DeliveryTag)
			case !conf.Ack:
				return fmt.Errorf("tag %d: %w", tag, ErrNack)
			default:
				return nil
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func newPublishing(ev model.StatusChange) (amqp.Publishing, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal status change: %w", err)
	}

	return amqp.Publishing{
		DeliveryMode:  amqp.Persistent,
		ContentType:   "application/json",
		MessageId:     fmt.Sprintf("%s-%d", ev.OrderID, ev.Revision),
		CorrelationId: ev.OrderID,
		Timestamp:     time.Now().UTC(),
		Headers: amqp.Table{
			"x-source": "restaurant-orders",
		},
		Body: body,
	}, nil
}
