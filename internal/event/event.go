// Package event 發佈寫入路徑的領域事件。
// 發佈者由 wire 注入，不存在全域 emitter。
package event

import (
	"context"
	"sync"
	"time"
)

type Name string

const (
	RoleCreated       Name = "role.created"
	RoleUpdated       Name = "role.updated"
	RoleDeleted       Name = "role.deleted"
	ResourceCreated   Name = "resource.created"
	ResourceUpdated   Name = "resource.updated"
	ResourceDeleted   Name = "resource.deleted"
	PermissionCreated Name = "permission.created"
	PermissionUpdated Name = "permission.updated"
	PermissionDeleted Name = "permission.deleted"
	UserCreated       Name = "user.created"
	UserUpdated       Name = "user.updated"
	UserDeleted       Name = "user.deleted"
)

type Event struct {
	Name       Name      `json:"name"`
	EntityID   string    `json:"entityId"`
	ActorID    string    `json:"actorId,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
	Payload    any       `json:"payload,omitempty"`
}

func New(name Name, entityID, actorID string, payload any) Event {
	return Event{
		Name:       name,
		EntityID:   entityID,
		ActorID:    actorID,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }

// Recorder 記錄所有事件，測試用
type Recorder struct {
	mu     sync.Mutex
	events []Event
	Err    error
}

func (r *Recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return r.Err
}

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func (r *Recorder) Names() []Name {
	var names []Name
	for _, e := range r.Events() {
		names = append(names, e.Name)
	}
	return names
}
