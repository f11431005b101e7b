package events

import (
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestBusDeliversToAllSubscribers(t *testing.T) {
	bus := NewBus()

	var got []int
	bus.SubscribeOrderCreated(func(event OrderCreated) {
		got = append(got, 1)
	})
	bus.SubscribeOrderCreated(func(event OrderCreated) {
		got = append(got, 2)
	})

	bus.PublishOrderCreated(OrderCreated{OrderID: 1})

	assert.Equal(t, []int{1, 2}, got, "handlers run in subscription order")
}

func TestBusSeparatesEventTypes(t *testing.T) {
	bus := NewBus()

	var created, changed int
	bus.SubscribeOrderCreated(func(event OrderCreated) { created++ })
	bus.SubscribeOrderStatusChanged(func(event OrderStatusChanged) { changed++ })

	bus.PublishOrderCreated(OrderCreated{OrderID: 1})
	bus.PublishOrderStatusChanged(OrderStatusChanged{OrderID: 1, From: "processing", To: "shipped"})
	bus.PublishOrderStatusChanged(OrderStatusChanged{OrderID: 1, From: "shipped", To: "delivered"})

	assert.Equal(t, 1, created)
	assert.Equal(t, 2, changed)
}

func TestBusConcurrentPublish(t *testing.T) {
	bus := NewBus()

	var mu sync.Mutex
	count := 0
	bus.SubscribeOrderCreated(func(event OrderCreated) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			bus.PublishOrderCreated(OrderCreated{OrderID: id, CreatedAt: time.Now()})
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 20, count)
}

func TestFanoutPublishesToAll(t *testing.T) {
	first := NewBus()
	second := NewBus()

	var a, b bool
	first.SubscribeOrderCreated(func(event OrderCreated) { a = true })
	second.SubscribeOrderCreated(func(event OrderCreated) { b = true })

	fanout := Fanout{first, second}
	fanout.PublishOrderCreated(OrderCreated{
		OrderID:     1,
		TotalAmount: decimal.RequireFromString("25.00"),
	})

	assert.True(t, a)
	assert.True(t, b)
}
