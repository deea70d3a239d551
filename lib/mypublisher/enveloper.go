package mypublisher

import (
	"encoding/json"
	"fmt"

	"github.com/MarcGrol/cartbackend/lib/myevents"
	"github.com/MarcGrol/cartbackend/lib/mytime"
	"github.com/MarcGrol/cartbackend/lib/myuuid"
)

type enveloper struct {
	nower  mytime.Nower
	uuider myuuid.UUIDer
}

func newEnveloper(nower mytime.Nower, uuider myuuid.UUIDer) enveloper {
	return enveloper{
		nower:  nower,
		uuider: uuider,
	}
}

// Identical cart events can legitimately occur more than once (add, remove, add again),
// so envelopes get a fresh uid instead of a checksum of their content.
func (e enveloper) do(topic string, event myevents.Event) (myevents.EventEnvelope, error) {
	jsonPayload, err := json.Marshal(event)
	if err != nil {
		return myevents.EventEnvelope{}, fmt.Errorf("error marshalling event-payload: %s", err)
	}

	return myevents.EventEnvelope{
		UID:           e.uuider.Create(),
		CreatedAt:     e.nower.Now(),
		Topic:         topic,
		AggregateUID:  event.GetAggregateName(),
		EventTypeName: event.GetEventTypeName(),
		EventPayload:  string(jsonPayload),
		Published:     false,
	}, nil
}
