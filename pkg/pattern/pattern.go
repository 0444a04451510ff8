// Package pattern adds MQTT-style wildcard topic matching ("+" for one
// level, "#" for the remaining levels) on top of pkg/mqp's literal-key
// registry: a subscriber names a pattern instead of an exact key, and is
// lazily attached to every concrete topic, past or future, that matches
// it.
package pattern

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/asemenov/mqp/pkg/mqp"
)

const (
	separator          = "/"
	singleLevelWild    = "+"
	multiLevelWild     = "#"
)

// ErrInvalidPattern is returned by SubscribePattern for a malformed
// pattern: an empty string, or a "#" that isn't the last level.
var ErrInvalidPattern = errors.New("pattern: invalid pattern")

// Validate reports whether pattern is well-formed.
func Validate(pattern string) error {
	if pattern == "" {
		return ErrInvalidPattern
	}
	parts := strings.Split(pattern, separator)
	for i, part := range parts {
		if part == multiLevelWild && i != len(parts)-1 {
			return ErrInvalidPattern
		}
	}
	return nil
}

// Match reports whether topic matches pattern under MQTT wildcard rules.
func Match(pattern, topic string) bool {
	if pattern == multiLevelWild {
		return true
	}
	return matchParts(strings.Split(pattern, separator), strings.Split(topic, separator))
}

func matchParts(patternParts, topicParts []string) bool {
	pi, ti := 0, 0
	for pi < len(patternParts) {
		switch patternParts[pi] {
		case multiLevelWild:
			return true // must be last part; Validate enforces that at subscribe time
		case singleLevelWild:
			if ti >= len(topicParts) {
				return false
			}
			pi++
			ti++
		default:
			if ti >= len(topicParts) || patternParts[pi] != topicParts[ti] {
				return false
			}
			pi++
			ti++
		}
	}
	return ti == len(topicParts)
}

// Registry wraps an mqp.Registry[string, V], adding pattern subscriptions
// alongside its ordinary literal-key ones.
type Registry[V any] struct {
	inner *mqp.Registry[string, V]

	mu           sync.Mutex
	patterns     map[string]map[mqp.ConsumerID]mqp.Consumer[string, V]
	topics       map[string]struct{}
	attachedByID map[mqp.ConsumerID]map[string]struct{}
}

// New builds a pattern-aware registry on top of pool.
func New[V any](pool mqp.Pool, opts ...mqp.Option[string, V]) *Registry[V] {
	return &Registry[V]{
		inner:        mqp.NewRegistry[string, V](pool, opts...),
		patterns:     make(map[string]map[mqp.ConsumerID]mqp.Consumer[string, V]),
		topics:       make(map[string]struct{}),
		attachedByID: make(map[mqp.ConsumerID]map[string]struct{}),
	}
}

// Subscribe attaches consumer to the literal key, bypassing pattern
// matching entirely. It delegates directly to the underlying registry.
func (r *Registry[V]) Subscribe(key string, id mqp.ConsumerID, consumer mqp.Consumer[string, V]) (mqp.Subscription, error) {
	return r.inner.Subscribe(key, id, consumer)
}

// Unsubscribe detaches a literal-key subscription made via Subscribe.
func (r *Registry[V]) Unsubscribe(key string, id mqp.ConsumerID) {
	r.inner.Unsubscribe(key, id)
}

// SubscribePattern attaches consumer, identified by id, to every current
// and future topic matching pattern. Two patterns from the same id that
// both match a topic still result in exactly one cursor on that topic,
// since attachment goes through the underlying registry's own
// double-subscribe handling.
func (r *Registry[V]) SubscribePattern(pattern string, id mqp.ConsumerID, consumer mqp.Consumer[string, V]) (mqp.Subscription, error) {
	if err := Validate(pattern); err != nil {
		return nil, err
	}
	if consumer == nil {
		return nil, mqp.ErrNilConsumer
	}

	r.mu.Lock()
	if r.patterns[pattern] == nil {
		r.patterns[pattern] = make(map[mqp.ConsumerID]mqp.Consumer[string, V])
	}
	r.patterns[pattern][id] = consumer

	var toAttach []string
	for topic := range r.topics {
		if Match(pattern, topic) {
			if _, already := r.attachedByID[id][topic]; !already {
				toAttach = append(toAttach, topic)
			}
		}
	}
	r.mu.Unlock()

	for _, topic := range toAttach {
		if err := r.attach(topic, id, consumer); err != nil {
			return nil, err
		}
	}

	return &patternSubscription[V]{registry: r, pattern: pattern, id: id}, nil
}

func (r *Registry[V]) attach(topic string, id mqp.ConsumerID, consumer mqp.Consumer[string, V]) error {
	if _, err := r.inner.Subscribe(topic, id, consumer); err != nil {
		return err
	}
	r.mu.Lock()
	if r.attachedByID[id] == nil {
		r.attachedByID[id] = make(map[string]struct{})
	}
	r.attachedByID[id][topic] = struct{}{}
	r.mu.Unlock()
	return nil
}

// unsubscribePattern removes id's registration for pattern and detaches
// it from any topic no longer matched by any of id's remaining patterns.
func (r *Registry[V]) unsubscribePattern(pattern string, id mqp.ConsumerID) {
	r.mu.Lock()
	if subs, ok := r.patterns[pattern]; ok {
		delete(subs, id)
		if len(subs) == 0 {
			delete(r.patterns, pattern)
		}
	}

	stillNeeded := make(map[string]struct{})
	for p, subs := range r.patterns {
		if _, ok := subs[id]; !ok {
			continue
		}
		for topic := range r.topics {
			if Match(p, topic) {
				stillNeeded[topic] = struct{}{}
			}
		}
	}

	var toDetach []string
	for topic := range r.attachedByID[id] {
		if _, needed := stillNeeded[topic]; !needed {
			toDetach = append(toDetach, topic)
		}
	}
	for _, topic := range toDetach {
		delete(r.attachedByID[id], topic)
	}
	r.mu.Unlock()

	for _, topic := range toDetach {
		r.inner.Unsubscribe(topic, id)
	}
}

// Publish enqueues value under topic, lazily attaching any pattern
// subscriber seeing this exact topic for the first time before delivery.
func (r *Registry[V]) Publish(topic string, value V) {
	r.mu.Lock()
	_, known := r.topics[topic]
	var newAttachments []struct {
		id       mqp.ConsumerID
		consumer mqp.Consumer[string, V]
	}
	if !known {
		r.topics[topic] = struct{}{}
		for pattern, subs := range r.patterns {
			if !Match(pattern, topic) {
				continue
			}
			for id, consumer := range subs {
				if _, already := r.attachedByID[id][topic]; already {
					continue
				}
				newAttachments = append(newAttachments, struct {
					id       mqp.ConsumerID
					consumer mqp.Consumer[string, V]
				}{id, consumer})
			}
		}
	}
	r.mu.Unlock()

	for _, a := range newAttachments {
		r.attach(topic, a.id, a.consumer)
	}

	r.inner.Enqueue(topic, value)
}

// Close shuts down the underlying registry.
func (r *Registry[V]) Close(ctx context.Context) error {
	return r.inner.Close(ctx)
}

type patternSubscription[V any] struct {
	registry *Registry[V]
	pattern  string
	id       mqp.ConsumerID
	once     sync.Once
}

func (s *patternSubscription[V]) Unsubscribe() {
	s.once.Do(func() {
		s.registry.unsubscribePattern(s.pattern, s.id)
	})
}
