package services

import (
	"testing"

	"github.com/pasturelink/pasturelink-backend/internal/apierr"
	"github.com/pasturelink/pasturelink-backend/internal/types"
)

func TestCreateOrder(t *testing.T) {
	env := newTestEnv(t)

	order, err := env.orders.CreateOrder(env.producerCtx(), CreateOrderInput{
		ProcessorOrgID: env.processorOrg.ID,
		AnimalType:     types.AnimalPork,
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if order.Status != types.OrderStatusRequested {
		t.Fatalf("new order status = %q", order.Status)
	}
	if order.HeadCount != 1 {
		t.Fatalf("head count defaulted to %d, want 1", order.HeadCount)
	}
	if order.ProducerOrgID != env.producerOrg.ID {
		t.Fatalf("producer org = %s", order.ProducerOrgID)
	}
}

func TestCreateOrderValidation(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.orders.CreateOrder(env.producerCtx(), CreateOrderInput{
		ProcessorOrgID: env.processorOrg.ID,
		AnimalType:     "bison",
	})
	if !apierr.IsCode(err, apierr.CodeInvalidArgument) {
		t.Fatalf("unknown animal should be rejected, got %v", err)
	}

	// A producer org cannot be the processing side of an order.
	_, err = env.orders.CreateOrder(env.producerCtx(), CreateOrderInput{
		ProcessorOrgID: env.producerOrg.ID,
		AnimalType:     types.AnimalBeef,
	})
	if !apierr.IsCode(err, apierr.CodeInvalidArgument) {
		t.Fatalf("non-processor org should be rejected, got %v", err)
	}

	_, err = env.orders.CreateOrder(env.processorCtx(), CreateOrderInput{
		ProcessorOrgID: env.processorOrg.ID,
		AnimalType:     types.AnimalBeef,
	})
	if !apierr.IsCode(err, apierr.CodeNotAuthorized) {
		t.Fatalf("processor-initiated order should be rejected, got %v", err)
	}
}

func TestGetOrderParties(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.orders.GetOrder(env.producerCtx(), env.order.ID); err != nil {
		t.Fatalf("producer read: %v", err)
	}
	if _, err := env.orders.GetOrder(env.processorCtx(), env.order.ID); err != nil {
		t.Fatalf("processor read: %v", err)
	}
}

func TestListOrdersScopedToOrg(t *testing.T) {
	env := newTestEnv(t)

	producerOrders, err := env.orders.ListOrders(env.producerCtx())
	if err != nil {
		t.Fatalf("list as producer: %v", err)
	}
	if len(producerOrders) != 1 {
		t.Fatalf("producer sees %d orders, want 1", len(producerOrders))
	}
	processorOrders, err := env.orders.ListOrders(env.processorCtx())
	if err != nil {
		t.Fatalf("list as processor: %v", err)
	}
	if len(processorOrders) != 1 {
		t.Fatalf("processor sees %d orders, want 1", len(processorOrders))
	}
}
