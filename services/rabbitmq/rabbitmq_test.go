package rabbitmq

import (
	"errors"
	"io/ioutil"
	"testing"

	"github.com/sirupsen/logrus"
)

func discardLogger() *logrus.Entry {
	logger := logrus.New()
	logger.Out = ioutil.Discard
	return logrus.NewEntry(logger)
}

func TestNewConnectionReusesPooledConnection(t *testing.T) {
	first := NewConnection("pool-test", []string{"consumption"}, discardLogger())
	second := NewConnection("pool-test", []string{"feedback"}, discardLogger())
	if first != second {
		t.Fatal("same name should return the pooled connection")
	}
	if GetConnection("pool-test") != first {
		t.Error("GetConnection should return the pooled connection")
	}
	if len(first.Queues) != 1 || first.Queues[0] != "consumption" {
		t.Errorf("queues = %v, want the first registration", first.Queues)
	}
	if GetConnection("missing") != nil {
		t.Error("unknown name should return nil")
	}
}

func TestPublishWithoutChannel(t *testing.T) {
	c := NewConnection("publish-test", nil, discardLogger())
	if err := c.Publish("feedback", []byte(`{}`)); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Publish() error = %v, want ErrNotConnected", err)
	}
}

func TestNotifyDropsWhenPending(t *testing.T) {
	ch := make(chan error, 1)
	notify(ch, errors.New("first"))
	notify(ch, errors.New("second"))
	if err := <-ch; err.Error() != "first" {
		t.Errorf("pending signal = %v, want first", err)
	}
	select {
	case err := <-ch:
		t.Errorf("unexpected second signal %v", err)
	default:
	}
}
