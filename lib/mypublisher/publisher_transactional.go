package mypublisher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/cartbackend/lib/mycontext"
	"github.com/MarcGrol/cartbackend/lib/myevents"
	"github.com/MarcGrol/cartbackend/lib/myhttp"
	"github.com/MarcGrol/cartbackend/lib/mylog"
	"github.com/MarcGrol/cartbackend/lib/mypubsub"
	"github.com/MarcGrol/cartbackend/lib/myqueue"
	"github.com/MarcGrol/cartbackend/lib/mystore"
	"github.com/MarcGrol/cartbackend/lib/mytime"
	"github.com/MarcGrol/cartbackend/lib/myuuid"
)

// transactionalPublisher implements the outbox pattern: Publish only stores the envelope and
// queues a trigger, so it can take part in the caller's transaction. The trigger pushes all
// pending envelopes to pubsub.
type transactionalPublisher struct {
	outbox    mystore.Store[myevents.EventEnvelope]
	queue     myqueue.TaskQueuer
	enveloper enveloper
	pubsub    mypubsub.PubSub
	logger    mylog.Logger
}

func New(c context.Context, pubsub mypubsub.PubSub, queue myqueue.TaskQueuer, nower mytime.Nower, uuider myuuid.UUIDer) (*transactionalPublisher, func(), error) {
	store, storeCleanup, err := mystore.New[myevents.EventEnvelope](c)
	if err != nil {
		return nil, nil, err
	}

	return &transactionalPublisher{
		outbox:    store,
		queue:     queue,
		enveloper: newEnveloper(nower, uuider),
		pubsub:    pubsub,
		logger:    mylog.New("publisher"),
	}, storeCleanup, nil
}

func (p *transactionalPublisher) RegisterEndpoints(c context.Context, router *mux.Router) {
	router.HandleFunc("/pubsub/{topic}/{uid}", p.processTriggerPage()).Methods("PUT")
}

func (p *transactionalPublisher) CreateTopic(c context.Context, topicName string) error {
	return p.pubsub.CreateTopic(c, topicName)
}

func (p *transactionalPublisher) Publish(c context.Context, topic string, event myevents.Event) error {
	envelope, err := p.enveloper.do(topic, event)
	if err != nil {
		return fmt.Errorf("error creating envelope: %s", err)
	}

	err = p.outbox.Put(c, envelope.UID, envelope)
	if err != nil {
		return fmt.Errorf("error storing envelope: %s", err)
	}

	err = p.queue.Enqueue(c, myqueue.Task{
		UID:            envelope.UID,
		WebhookURLPath: fmt.Sprintf("/pubsub/%s/%s", envelope.Topic, envelope.UID),
		Payload:        []byte{},
	})
	if err != nil {
		return fmt.Errorf("error queueing publication-trigger %s: %s", envelope.UID, err)
	}

	p.logger.Log(c, envelope.AggregateUID, mylog.SeverityInfo, "Enqueued event %s", envelope)

	return nil
}

func (p *transactionalPublisher) processTriggerPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(p.logger)

		err := p.processTrigger(c, mux.Vars(r)["topic"], mux.Vars(r)["uid"])
		if err != nil {
			responseWriter.WriteError(c, w, 1, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, myhttp.SuccessResponse{
			Message: "Successfully processed trigger",
		})
	}
}

// processTrigger publishes every pending envelope, not only the one that triggered it.
func (p *transactionalPublisher) processTrigger(c context.Context, topicName string, uid string) error {
	p.logger.Log(c, uid, mylog.SeverityDebug, "Processing trigger for event %s on topic %s", uid, topicName)

	return p.outbox.RunInTransaction(c, func(c context.Context) error {
		envelopes, err := p.outbox.Query(c, []mystore.Filter{{Field: "Published", Compare: "=", Value: false}}, "CreatedAt")
		if err != nil {
			return fmt.Errorf("error fetching envelopes: %s", err)
		}

		// not every store backend honours filters and ordering
		sort.SliceStable(envelopes, func(i, j int) bool {
			return envelopes[i].CreatedAt.Before(envelopes[j].CreatedAt)
		})

		for _, envelope := range envelopes {
			if envelope.Published {
				continue
			}

			jsonBytes, err := json.Marshal(envelope)
			if err != nil {
				return fmt.Errorf("error serializing envelope %s: %s", envelope.UID, err)
			}

			err = p.pubsub.Publish(c, envelope.Topic, string(jsonBytes))
			if err != nil {
				return fmt.Errorf("error publishing envelope %s: %s", envelope.UID, err)
			}

			envelope.Published = true
			err = p.outbox.Put(c, envelope.UID, envelope)
			if err != nil {
				return fmt.Errorf("error storing envelope %s: %s", envelope.UID, err)
			}
		}
		return nil
	})
}
