package mypubsub

import (
	"context"
	"os"
	"sync"

	"github.com/MarcGrol/cartbackend/lib/mylog"
)

func init() {
	if os.Getenv("GOOGLE_CLOUD_PROJECT") == "" {
		New = func(c context.Context) (PubSub, func(), error) {
			return NewFake(), func() {}, nil
		}
	}
}

// FakePubSub keeps published messages in memory, per topic.
type FakePubSub struct {
	sync.Mutex
	Topics map[string][]string
	logger mylog.Logger
}

func NewFake() *FakePubSub {
	return &FakePubSub{
		Topics: map[string][]string{},
		logger: mylog.New("pubsub"),
	}
}

func (ps *FakePubSub) CreateTopic(c context.Context, topic string) error {
	ps.Lock()
	defer ps.Unlock()

	if _, exists := ps.Topics[topic]; !exists {
		ps.Topics[topic] = []string{}
	}
	return nil
}

func (ps *FakePubSub) Publish(c context.Context, topic string, data string) error {
	ps.Lock()
	defer ps.Unlock()

	ps.Topics[topic] = append(ps.Topics[topic], data)
	ps.logger.Log(c, topic, mylog.SeverityDebug, "Published on topic %s: %s", topic, data)

	return nil
}

func (ps *FakePubSub) Published(topic string) []string {
	ps.Lock()
	defer ps.Unlock()

	return append([]string{}, ps.Topics[topic]...)
}
