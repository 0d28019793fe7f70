// Package pubsub publishes crawl events to Google Cloud Pub/Sub.
package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"cloud.google.com/go/pubsub"
)

// Attributer is implemented by payloads that carry Pub/Sub message attributes.
type Attributer interface {
	Attributes() map[string]string
}

// topicHandle is the slice of *pubsub.Topic the publisher uses.
type topicHandle interface {
	Publish(ctx context.Context, data []byte, attrs map[string]string) (string, error)
	Stop()
}

type clientTopic struct {
	topic *pubsub.Topic
}

func (t clientTopic) Publish(ctx context.Context, data []byte, attrs map[string]string) (string, error) {
	result := t.topic.Publish(ctx, &pubsub.Message{Data: data, Attributes: attrs})
	id, err := result.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("publish message: %w", err)
	}
	return id, nil
}

func (t clientTopic) Stop() {
	t.topic.Stop()
}

// Publisher marshals payloads to JSON and publishes them, caching one topic
// handle per topic ID.
type Publisher struct {
	openTopic    func(id string) topicHandle
	defaultTopic string

	mu     sync.Mutex
	topics map[string]topicHandle
}

// New creates a Publisher on an existing client. defaultTopic is used when
// Publish is called with an empty topic.
func New(client *pubsub.Client, defaultTopic string) (*Publisher, error) {
	if client == nil {
		return nil, fmt.Errorf("pubsub client is required")
	}
	return newWithOpener(func(id string) topicHandle {
		return clientTopic{topic: client.Topic(id)}
	}, defaultTopic), nil
}

func newWithOpener(open func(id string) topicHandle, defaultTopic string) *Publisher {
	return &Publisher{
		openTopic:    open,
		defaultTopic: defaultTopic,
		topics:       make(map[string]topicHandle),
	}
}

// Publish sends payload as a JSON message and returns the server message ID.
func (p *Publisher) Publish(ctx context.Context, topic string, payload any) (string, error) {
	if topic == "" {
		topic = p.defaultTopic
	}
	if topic == "" {
		return "", fmt.Errorf("pubsub topic is not configured")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}
	attrs := map[string]string{"content_type": "application/json"}
	if a, ok := payload.(Attributer); ok {
		for k, v := range a.Attributes() {
			attrs[k] = v
		}
	}
	return p.topic(topic).Publish(ctx, data, attrs)
}

// Close flushes and stops every opened topic.
func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for id, t := range p.topics {
		t.Stop()
		delete(p.topics, id)
	}
}

func (p *Publisher) topic(id string) topicHandle {
	p.mu.Lock()
	defer p.mu.Unlock()
	t, ok := p.topics[id]
	if !ok {
		t = p.openTopic(id)
		p.topics[id] = t
	}
	return t
}
