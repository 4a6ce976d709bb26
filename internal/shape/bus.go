/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package shape

import "annotcanvas/internal/vector"

// Topic names a shape notification.
type Topic string

const (
	TopicPositionChanged Topic = "positionChanged"
	TopicNameChange      Topic = "nameChange"
	TopicRotationChanged Topic = "rotationChanged"
	TopicRedraw          Topic = "redraw"
)

// Event is delivered to listeners. Points is set for positionChanged and
// Rotation for rotationChanged.
type Event struct {
	Topic    Topic
	Shape    Shape
	Points   []vector.Pt
	Rotation float64
	Name     string
}

// Observer receives every topic a shape publishes.
type Observer interface {
	OnShapeEvent(Event)
}

type listener struct {
	topic Topic
	fn    func(Event)
}

// Bus is a per-shape synchronous notifier. Listeners run in registration order
// on the publishing goroutine.
type Bus struct {
	observers []Observer
	listeners []listener
}

// Observe attaches o for all topics. It reports false, and does nothing, when o
// is already attached.
func (b *Bus) Observe(o Observer) bool {
	for _, cur := range b.observers {
		if cur == o {
			return false
		}
	}
	b.observers = append(b.observers, o)
	return true
}

// Observing reports whether o is attached.
func (b *Bus) Observing(o Observer) bool {
	for _, cur := range b.observers {
		if cur == o {
			return true
		}
	}
	return false
}

// Subscribe registers fn for a single topic.
func (b *Bus) Subscribe(topic Topic, fn func(Event)) {
	b.listeners = append(b.listeners, listener{topic: topic, fn: fn})
}

// HasListeners reports whether anything is attached.
func (b *Bus) HasListeners() bool { return len(b.observers)+len(b.listeners) > 0 }

// Publish delivers ev to observers first, then topic listeners.
func (b *Bus) Publish(ev Event) {
	for _, o := range b.observers {
		o.OnShapeEvent(ev)
	}
	for _, l := range b.listeners {
		if l.topic == ev.Topic {
			l.fn(ev)
		}
	}
}
