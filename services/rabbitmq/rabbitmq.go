package rabbitmq

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"nutrimatch-go-worker/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

const reconnectInterval = 60 * time.Second

var ErrNotConnected = errors.New("rabbitmq channel is not open")

//Connection is the connection created
type Connection struct {
	name    string
	Conn    *amqp.Connection
	Channel *amqp.Channel
	Queues  []string
	Err     chan error
	ApiErr  chan error
	log     *logrus.Entry

	// amqp channels are not safe for concurrent publishing
	publishMu sync.Mutex
}

var (
	poolMu         sync.Mutex
	connectionPool = make(map[string]*Connection)
)

//NewConnection returns the new connection object
func NewConnection(name string, queues []string, log *logrus.Entry) *Connection {
	poolMu.Lock()
	defer poolMu.Unlock()
	if c, ok := connectionPool[name]; ok {
		return c
	}
	c := &Connection{
		name:   name,
		Queues: queues,
		Err:    make(chan error, 1),
		ApiErr: make(chan error, 1),
		log:    log.WithField("connection", name),
	}
	connectionPool[name] = c
	return c
}

//GetConnection returns the connection which was instantiated
func GetConnection(name string) *Connection {
	poolMu.Lock()
	defer poolMu.Unlock()
	return connectionPool[name]
}

func (c *Connection) Connect() error {
	var err error
	c.Conn, err = amqp.Dial(utils.EnvConfig.RabbitMQ.Domain)
	if err != nil {
		return fmt.Errorf("Error in creating rabbitmq connection with %s : %s", utils.EnvConfig.RabbitMQ.Domain, err.Error())
	}
	go func() {
		<-c.Conn.NotifyClose(make(chan *amqp.Error)) //Listen to NotifyClose
		notify(c.Err, errors.New("Connection Closed"))
		notify(c.ApiErr, errors.New("Api detect Connection Closed"))
	}()
	channel, err := c.Conn.Channel()
	if err != nil {
		return fmt.Errorf("Channel: %s", err)
	}
	c.publishMu.Lock()
	c.Channel = channel
	c.publishMu.Unlock()
	return nil
}

// notify drops the signal when one is already pending.
func notify(ch chan error, err error) {
	select {
	case ch <- err:
	default:
	}
}

func (c *Connection) BindQueue() error {
	for _, q := range c.Queues {
		if _, err := c.Channel.QueueDeclare(q, false, false, false, false, nil); err != nil {
			return fmt.Errorf("error in declaring the queue %s", err)
		}
	}
	return nil
}

//Reconnect reconnects the connection
func (c *Connection) Reconnect() error {
	if err := c.Connect(); err != nil {
		return err
	}
	if err := c.BindQueue(); err != nil {
		return err
	}
	return nil
}

func (c *Connection) Consume() (map[string]<-chan amqp.Delivery, error) {
	m := make(map[string]<-chan amqp.Delivery)
	for _, q := range c.Queues {
		deliveries, err := c.Channel.Consume(q, "", true, false, false, false, nil)
		if err != nil {
			return nil, err
		}
		m[q] = deliveries
	}
	return m, nil
}

// Publish sends body as a JSON message to queue on the default exchange.
func (c *Connection) Publish(queue string, body []byte) error {
	c.publishMu.Lock()
	defer c.publishMu.Unlock()
	if c.Channel == nil {
		return ErrNotConnected
	}
	err := c.Channel.Publish("", queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		MessageId:    uuid.NewString(),
		Timestamp:    time.Now(),
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish to %s: %w", queue, err)
	}
	return nil
}

// HandleConsumedDeliveries runs fn over the deliveries of every queue and
// restarts them all on a fresh channel whenever the connection drops.
func (c *Connection) HandleConsumedDeliveries(deliveries map[string]<-chan amqp.Delivery, fn func(*Connection, string, <-chan amqp.Delivery)) {
	for {
		for q, delivery := range deliveries {
			c.log.WithField("queue", q).Info("consuming")
			go fn(c, q, delivery)
		}
		err := <-c.Err
		c.log.WithField("error_message", err.Error()).Error("connection lost")
		for {
			if err := c.Reconnect(); err != nil {
				c.log.WithField("error_message", err.Error()).Error("reconnect failed")
				time.Sleep(reconnectInterval)
				continue
			}
			consumed, err := c.Consume()
			if err != nil {
				c.log.WithField("error_message", err.Error()).Warn("consume failed, try again")
				time.Sleep(reconnectInterval)
				continue
			}
			c.log.Info("reconnected")
			deliveries = consumed
			break
		}
	}
}
