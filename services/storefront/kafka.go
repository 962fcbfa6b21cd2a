package main

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/storefoundry/go-storefront-platform/shared/models"
)

// OrderEvent is the message published when a customer places an order.
type OrderEvent struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenant_id"`
	OrderID     uuid.UUID `json:"order_id"`
	EventType   string    `json:"event_type"`
	TotalAmount float64   `json:"total_amount"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewOrderPlacedEvent builds the event for a freshly created order.
func NewOrderPlacedEvent(order *models.Order) OrderEvent {
	return OrderEvent{
		ID:          uuid.NewString(),
		TenantID:    order.SellingTenantID,
		OrderID:     order.ID,
		EventType:   "order_placed",
		TotalAmount: order.TotalAmount,
		Timestamp:   time.Now(),
	}
}

// OrderEventProducer publishes order events through a worker pool so
// checkout never blocks on the broker.
type OrderEventProducer struct {
	writer       *kafka.Writer
	eventChan    chan OrderEvent
	workerCount  int
	shutdownChan chan struct{}
	wg           sync.WaitGroup
}

// NewOrderEventProducer creates a producer with a buffered queue and a
// fixed worker pool.
func NewOrderEventProducer(broker string) (*OrderEventProducer, error) {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(broker),
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		BatchSize:    100,
	}

	p := &OrderEventProducer{
		writer:       writer,
		eventChan:    make(chan OrderEvent, 1000),
		workerCount:  10,
		shutdownChan: make(chan struct{}),
	}

	p.startWorkers()

	return p, nil
}

func (p *OrderEventProducer) startWorkers() {
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.orderEventWorker(i)
	}

	logrus.Infof("Started %d order event workers", p.workerCount)
}

func (p *OrderEventProducer) orderEventWorker(id int) {
	defer p.wg.Done()

	for {
		select {
		case event := <-p.eventChan:
			if err := p.sendOrderEventSync(event); err != nil {
				logrus.Errorf("Worker %d failed to send order event: %v", id, err)
			}
		case <-p.shutdownChan:
			logrus.Infof("Worker %d shutting down", id)
			return
		}
	}
}

// SendOrderEvent queues an order event asynchronously (non-blocking). A
// full queue drops the event; the order itself is already persisted, so
// only the notification is lost.
func (p *OrderEventProducer) SendOrderEvent(event OrderEvent) error {
	select {
	case p.eventChan <- event:
		return nil
	default:
		return fmt.Errorf("order event queue full, event dropped")
	}
}

// sendOrderEventSync writes one event to Kafka (called by workers).
func (p *OrderEventProducer) sendOrderEventSync(event OrderEvent) error {
	message, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	msg := kafka.Message{
		Topic: "order-events",
		Key:   []byte(event.TenantID),
		Value: message,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "tenant_id", Value: []byte(event.TenantID)},
			{Key: "order_id", Value: []byte(event.OrderID.String())},
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write order event to Kafka: %w", err)
	}

	return nil
}

// Close gracefully shuts down the producer and its workers.
func (p *OrderEventProducer) Close() error {
	logrus.Info("Order event producer shutting down...")

	close(p.shutdownChan)
	p.wg.Wait()
	close(p.eventChan)

	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close Kafka writer: %w", err)
	}

	logrus.Info("Order event producer shutdown complete")
	return nil
}
