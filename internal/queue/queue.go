package queue

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
)

const DefaultPublishTimeout = 5 * time.Second

// Publisher sends JSON messages to named queues.
type Publisher interface {
	Publish(ctx context.Context, queue string, msg interface{}) error
}

// Confirmation is the broker's answer to one published message.
type Confirmation interface {
	WaitContext(ctx context.Context) (bool, error)
}

// Channel is the part of an AMQP channel the publisher needs. Channels
// handed to RabbitMQ must already be in confirm mode.
type Channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	Publish(ctx context.Context, queue string, msg amqp.Publishing) (Confirmation, error)
	IsClosed() bool
	Close() error
}

// RabbitMQ publishes persistent JSON messages on durable queues and waits
// for the broker to confirm each one. A closed channel is replaced on the
// next call.
type RabbitMQ struct {
	mu       sync.Mutex
	open     func() (Channel, error)
	release  func() error
	channel  Channel
	declared map[string]bool
	timeout  time.Duration
}

// NewRabbitMQ builds a publisher over channels from open. release runs on
// Close after the current channel is closed and may be nil.
func NewRabbitMQ(open func() (Channel, error), release func() error) *RabbitMQ {
	return &RabbitMQ{
		open:     open,
		release:  release,
		declared: map[string]bool{},
		timeout:  DefaultPublishTimeout,
	}
}

func Dial(url string) (*RabbitMQ, error) {
	c := &connector{url: url}
	r := NewRabbitMQ(c.channel, c.close)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := r.current(); err != nil {
		c.close()
		return nil, err
	}
	return r, nil
}

// Declare makes sure the durable queue exists.
func (r *RabbitMQ) Declare(queue string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch, err := r.current()
	if err != nil {
		return err
	}
	return r.declare(ch, queue)
}

// current returns an open channel, opening a new one when the last one was
// closed by the broker or a channel error. Callers hold mu.
func (r *RabbitMQ) current() (Channel, error) {
	if r.channel != nil && !r.channel.IsClosed() {
		return r.channel, nil
	}
	ch, err := r.open()
	if err != nil {
		return nil, errors.Wrap(err, "failed to open channel")
	}
	r.channel = ch
	// declarations are per broker, but a new channel may follow a broker restart
	r.declared = map[string]bool{}
	return ch, nil
}

func (r *RabbitMQ) declare(ch Channel, queue string) error {
	if r.declared[queue] {
		return nil
	}
	_, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return errors.Wrapf(err, "failed to declare queue %s", queue)
	}
	r.declared[queue] = true
	return nil
}

func (r *RabbitMQ) Publish(ctx context.Context, queue string, msg interface{}) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return errors.Wrap(err, "unable to encode message")
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	confirm, err := r.send(ctx, queue, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		return err
	}
	acked, err := confirm.WaitContext(ctx)
	if err != nil {
		return errors.Wrapf(err, "no confirmation from broker for %s", queue)
	}
	if !acked {
		return errors.Errorf("broker rejected message for %s", queue)
	}
	return nil
}

func (r *RabbitMQ) send(ctx context.Context, queue string, msg amqp.Publishing) (Confirmation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch, err := r.current()
	if err != nil {
		return nil, err
	}
	if err := r.declare(ch, queue); err != nil {
		return nil, err
	}
	confirm, err := ch.Publish(ctx, queue, msg)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to publish to %s", queue)
	}
	return confirm, nil
}

func (r *RabbitMQ) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var err error
	if r.channel != nil && !r.channel.IsClosed() {
		err = r.channel.Close()
	}
	if r.release != nil {
		if rerr := r.release(); err == nil {
			err = rerr
		}
	}
	return err
}

// connector owns the broker connection and redials it when it drops.
type connector struct {
	url  string
	conn *amqp.Connection
}

func (c *connector) channel() (Channel, error) {
	if c.conn == nil || c.conn.IsClosed() {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			return nil, errors.Wrap(err, "failed to connect to rabbitmq")
		}
		c.conn = conn
	}
	ch, err := c.conn.Channel()
	if err != nil {
		return nil, err
	}
	if err := ch.Confirm(false); err != nil {
		ch.Close()
		return nil, errors.Wrap(err, "failed to enable publisher confirms")
	}
	return amqpChannel{ch}, nil
}

func (c *connector) close() error {
	if c.conn == nil || c.conn.IsClosed() {
		return nil
	}
	return c.conn.Close()
}

type amqpChannel struct {
	*amqp.Channel
}

func (c amqpChannel) Publish(ctx context.Context, queue string, msg amqp.Publishing) (Confirmation, error) {
	confirm, err := c.PublishWithDeferredConfirmWithContext(ctx, "", queue, false, false, msg)
	if err != nil {
		return nil, err
	}
	if confirm == nil {
		return nil, errors.New("channel is not in confirm mode")
	}
	return confirm, nil
}
