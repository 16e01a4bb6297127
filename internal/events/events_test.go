package events

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_MutationRoundtrip(t *testing.T) {
	bus := NewBus()

	var (
		mu  sync.Mutex
		got []EntityMutation
	)
	err := bus.SubscribeMutation(func(m EntityMutation) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, m)
	})
	require.NoError(t, err)

	bus.PublishMutation(EntityMutation{
		StoreID:  3,
		Resource: "billboards",
		EntityID: 17,
		Name:     "Hero",
		Action:   ActionCreated,
		OprIP:    "10.0.0.9",
	})
	bus.PublishMutation(EntityMutation{
		StoreID:  3,
		Resource: "billboards",
		EntityID: 17,
		Action:   ActionDeleted,
	})
	bus.WaitAsync()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 2)
	assert.Equal(t, ActionCreated, got[0].Action)
	assert.Equal(t, "Hero", got[0].Name)
	assert.Equal(t, "10.0.0.9", got[0].OprIP)
	assert.Equal(t, ActionDeleted, got[1].Action)
}

func TestBus_MutationFansOutToAllSubscribers(t *testing.T) {
	bus := NewBus()

	var (
		mu     sync.Mutex
		first  int
		second int
	)
	require.NoError(t, bus.SubscribeMutation(func(EntityMutation) {
		mu.Lock()
		first++
		mu.Unlock()
	}))
	require.NoError(t, bus.SubscribeMutation(func(EntityMutation) {
		mu.Lock()
		second++
		mu.Unlock()
	}))

	bus.PublishMutation(EntityMutation{StoreID: 1, Resource: "sizes", EntityID: 2, Action: ActionUpdated})
	bus.WaitAsync()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, first)
	assert.Equal(t, 1, second)
}

func TestBus_OrderPaidRoundtrip(t *testing.T) {
	bus := NewBus()

	var (
		mu  sync.Mutex
		got []OrderPaid
	)
	require.NoError(t, bus.SubscribeOrderPaid(func(p OrderPaid) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, p)
	}))

	bus.PublishOrderPaid(OrderPaid{
		StoreID:    5,
		OrderID:    900,
		Phone:      "+1 555 0101",
		Address:    "1 Main St",
		TotalCents: 4599,
	})
	bus.WaitAsync()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 1)
	assert.Equal(t, int64(900), got[0].OrderID)
	assert.Equal(t, int64(4599), got[0].TotalCents)
}

func TestBus_TopicsAreIndependent(t *testing.T) {
	bus := NewBus()

	var (
		mu        sync.Mutex
		mutations int
	)
	require.NoError(t, bus.SubscribeMutation(func(EntityMutation) {
		mu.Lock()
		mutations++
		mu.Unlock()
	}))

	bus.PublishOrderPaid(OrderPaid{StoreID: 1, OrderID: 2})
	bus.WaitAsync()

	mu.Lock()
	defer mu.Unlock()
	assert.Zero(t, mutations)
}
