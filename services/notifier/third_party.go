package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// SellerNotifyClient pushes order notifications to the external endpoint
// sellers have wired up (webhook relays, messaging integrations).
type SellerNotifyClient struct {
	endpoint    string
	httpClient  *http.Client
	connected   bool
	lastSuccess time.Time
	lastError   error
	mutex       sync.RWMutex
}

// NewSellerNotifyClient creates a new seller notification client
func NewSellerNotifyClient(endpoint string) *SellerNotifyClient {
	return &SellerNotifyClient{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		connected: false,
	}
}

// SendOrderNotification delivers one order event to the seller endpoint
func (c *SellerNotifyClient) SendOrderNotification(event OrderEvent) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	payload := map[string]interface{}{
		"event_type": event.EventType,
		"data":       event,
		"timestamp":  time.Now(),
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		c.lastError = fmt.Errorf("failed to marshal order event: %w", err)
		return err
	}

	req, err := http.NewRequest("POST", c.endpoint+"/notifications", bytes.NewBuffer(jsonData))
	if err != nil {
		c.lastError = fmt.Errorf("failed to create request: %w", err)
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tenant-ID", event.TenantID)
	req.Header.Set("X-Order-ID", event.OrderID.String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.lastError = fmt.Errorf("failed to send order notification: %w", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.lastError = fmt.Errorf("seller endpoint returned status %d", resp.StatusCode)
		return c.lastError
	}

	c.connected = true
	c.lastSuccess = time.Now()
	c.lastError = nil
	return nil
}

// GetStatus returns the current connection status
func (c *SellerNotifyClient) GetStatus() map[string]interface{} {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	status := map[string]interface{}{
		"connected":    c.connected,
		"endpoint":     c.endpoint,
		"last_success": c.lastSuccess,
	}
	if c.lastError != nil {
		status["last_error"] = c.lastError.Error()
	}
	return status
}
