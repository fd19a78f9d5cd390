package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/catalogomaker/backend/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrderFixture(notifier *recordingNotifier) (OrderService, *memOrders) {
	catalogs := newMemCatalogs(model.Catalog{ID: "loja-1", OwnerAccountID: "owner", Name: "Doces da Ana", WhatsAppPhone: "5511999990000"})
	products := &memProducts{products: []model.Product{
		{ID: "p1", CatalogID: "loja-1", OwnerAccountID: "owner", Name: "Bolo", PriceCents: 2500},
		{ID: "p2", CatalogID: "loja-1", OwnerAccountID: "owner", Name: "Brigadeiro", PriceCents: 350},
		{ID: "px", CatalogID: "other", OwnerAccountID: "someone", Name: "Alheio", PriceCents: 1},
	}}
	orders := &memOrders{}
	return NewOrderService(orders, catalogs, products, notifier, zerolog.Nop()), orders
}

func TestPlaceOrderPricesFromStore(t *testing.T) {
	notifier := &recordingNotifier{}
	svc, orders := newOrderFixture(notifier)

	o, err := svc.Place(context.Background(), "loja-1", PlaceOrderInput{
		CustomerName:  "Carla",
		CustomerPhone: "5511988887777",
		Items:         []OrderLine{{ProductID: "p1", Quantity: 1}, {ProductID: "p2", Quantity: 4}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2500+4*350), o.TotalCents)
	assert.Equal(t, model.OrderStatusPending, o.Status)
	assert.Equal(t, "owner", o.CatalogOwnerAccountID)
	require.Len(t, orders.orders, 1)

	require.Eventually(t, func() bool { return notifier.sent() == 1 }, time.Second, 10*time.Millisecond)
	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	assert.Equal(t, "5511999990000", notifier.phone)
	assert.Contains(t, notifier.text, "Novo pedido em Doces da Ana")
	assert.Contains(t, notifier.text, "Total: R$ 39,00")
}

func TestPlaceOrderRejects(t *testing.T) {
	cases := map[string]PlaceOrderInput{
		"no customer":        {CustomerPhone: "1", Items: []OrderLine{{ProductID: "p1", Quantity: 1}}},
		"no items":           {CustomerName: "C", CustomerPhone: "1"},
		"zero quantity":      {CustomerName: "C", CustomerPhone: "1", Items: []OrderLine{{ProductID: "p1", Quantity: 0}}},
		"unknown product":    {CustomerName: "C", CustomerPhone: "1", Items: []OrderLine{{ProductID: "nope", Quantity: 1}}},
		"other catalog item": {CustomerName: "C", CustomerPhone: "1", Items: []OrderLine{{ProductID: "px", Quantity: 1}}},
		"excessive quantity": {CustomerName: "C", CustomerPhone: "1", Items: []OrderLine{{ProductID: "p1", Quantity: maxItemQuantity + 1}}},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			svc, orders := newOrderFixture(&recordingNotifier{})
			_, err := svc.Place(context.Background(), "loja-1", in)
			assert.ErrorIs(t, err, ErrValidation)
			assert.Empty(t, orders.orders)
		})
	}
}

func TestPlaceOrderUnknownCatalog(t *testing.T) {
	svc, _ := newOrderFixture(&recordingNotifier{})
	_, err := svc.Place(context.Background(), "missing", PlaceOrderInput{
		CustomerName: "C", CustomerPhone: "1", Items: []OrderLine{{ProductID: "p1", Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPlaceOrderNotificationFailureIsIgnored(t *testing.T) {
	notifier := &recordingNotifier{err: errors.New("session offline")}
	svc, orders := newOrderFixture(notifier)
	_, err := svc.Place(context.Background(), "loja-1", PlaceOrderInput{
		CustomerName: "C", CustomerPhone: "1", Items: []OrderLine{{ProductID: "p1", Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Len(t, orders.orders, 1)
	assert.Eventually(t, func() bool { return notifier.sent() == 1 }, time.Second, 10*time.Millisecond)
}

func TestPlaceOrderDoesNotWaitForNotification(t *testing.T) {
	notifier := &recordingNotifier{release: make(chan struct{})}
	svc, orders := newOrderFixture(notifier)
	ctx, cancel := context.WithCancel(context.Background())

	placed := make(chan error, 1)
	go func() {
		_, err := svc.Place(ctx, "loja-1", PlaceOrderInput{
			CustomerName: "C", CustomerPhone: "1", Items: []OrderLine{{ProductID: "p1", Quantity: 1}},
		})
		placed <- err
	}()

	select {
	case err := <-placed:
		require.NoError(t, err)
	case <-time.After(time.Second):
		close(notifier.release)
		t.Fatal("Place blocked on the WhatsApp notification")
	}
	assert.Len(t, orders.orders, 1)
	assert.Zero(t, notifier.sent())

	// The request is over; the notification still goes out.
	cancel()
	close(notifier.release)
	require.Eventually(t, func() bool { return notifier.sent() == 1 }, time.Second, 10*time.Millisecond)
	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	assert.NoError(t, notifier.ctxErr)
}

func TestPlaceOrderWithoutMerchantPhoneSkipsNotification(t *testing.T) {
	catalogs := newMemCatalogs(model.Catalog{ID: "loja-2", OwnerAccountID: "owner", Name: "Sem Zap"})
	products := &memProducts{products: []model.Product{{ID: "p1", CatalogID: "loja-2", OwnerAccountID: "owner", Name: "Bolo", PriceCents: 100}}}
	notifier := &recordingNotifier{}
	svc := NewOrderService(&memOrders{}, catalogs, products, notifier, zerolog.Nop())

	_, err := svc.Place(context.Background(), "loja-2", PlaceOrderInput{
		CustomerName: "C", CustomerPhone: "1", Items: []OrderLine{{ProductID: "p1", Quantity: 1}},
	})
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, notifier.sent())
}

func TestListOrdersEmptyIsNotNil(t *testing.T) {
	svc, _ := newOrderFixture(&recordingNotifier{})
	orders, err := svc.ListByOwner(context.Background(), "owner")
	require.NoError(t, err)
	assert.NotNil(t, orders)
	assert.Empty(t, orders)
}

func TestFormatBRL(t *testing.T) {
	assert.Equal(t, "R$ 0,05", formatBRL(5))
	assert.Equal(t, "R$ 1234,50", formatBRL(123450))
}
