// Package events carries entity change notifications between the API
// layer and its subscribers (operation log, suggest index, mail
// notifier) over an in-process bus.
package events

import (
	"github.com/asaskevich/EventBus"
)

const (
	TopicEntityMutated = "storeadmin:entity:mutated"
	TopicOrderPaid     = "storeadmin:order:paid"
)

// Action names what happened to an entity.
type Action string

const (
	ActionCreated  Action = "created"
	ActionUpdated  Action = "updated"
	ActionDeleted  Action = "deleted"
	ActionImported Action = "imported"
)

// EntityMutation describes one admin mutation of a store scoped entity.
type EntityMutation struct {
	StoreID  int64
	Resource string // plural resource path segment, e.g. "billboards"
	EntityID int64
	Name     string // display name or label of the entity
	Action   Action
	OprIP    string
}

// OrderPaid is published when the payment webhook settles an order.
type OrderPaid struct {
	StoreID    int64
	OrderID    int64
	Phone      string
	Address    string
	TotalCents int64
}

// Bus wraps the process-wide event bus with typed publish/subscribe.
type Bus struct {
	bus EventBus.Bus
}

func NewBus() *Bus {
	return &Bus{bus: EventBus.New()}
}

func (b *Bus) PublishMutation(m EntityMutation) {
	b.bus.Publish(TopicEntityMutated, m)
}

// SubscribeMutation registers fn for entity mutations. Handlers run
// asynchronously; transactional ordering is preserved per subscriber.
func (b *Bus) SubscribeMutation(fn func(EntityMutation)) error {
	return b.bus.SubscribeAsync(TopicEntityMutated, fn, true)
}

func (b *Bus) PublishOrderPaid(p OrderPaid) {
	b.bus.Publish(TopicOrderPaid, p)
}

func (b *Bus) SubscribeOrderPaid(fn func(OrderPaid)) error {
	return b.bus.SubscribeAsync(TopicOrderPaid, fn, true)
}

// WaitAsync blocks until queued async handlers have drained. Used by
// shutdown and tests.
func (b *Bus) WaitAsync() {
	b.bus.WaitAsync()
}
