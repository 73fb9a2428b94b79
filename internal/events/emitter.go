package events

import (
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

// Sink = producer satu topic (internal/kafka.Producer memenuhi ini).
type Sink interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// Emitter membungkus payload jadi envelope v1 lalu publish ke sink topic-nya.
// Emit pada *Emitter nil = no-op, biar service bisa jalan tanpa kafka (test, CLI).
type Emitter struct {
	Name  string // nama producer di envelope
	sinks map[string]Sink
}

func NewEmitter(name string) *Emitter {
	return &Emitter{Name: name, sinks: map[string]Sink{}}
}

func (e *Emitter) Register(topic string, s Sink) *Emitter {
	e.sinks[topic] = s
	return e
}

func (e *Emitter) Emit(topic, eventType, correlationID string, payload any) {
	if e == nil {
		return
	}
	sink, ok := e.sinks[topic]
	if !ok {
		log.Printf("events: no sink for topic %s, drop %s", topic, eventType)
		return
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		log.Printf("events: marshal %s: %v", eventType, err)
		return
	}
	env := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      e.Name,
		CorrelationID: correlationID,
		Payload:       raw,
	}
	b, err := json.Marshal(env)
	if err != nil {
		log.Printf("events: marshal envelope: %v", err)
		return
	}
	sink.Publish(PartitionKey(correlationID), b,
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
