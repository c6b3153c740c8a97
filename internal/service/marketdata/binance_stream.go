package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"FinBoard/internal/domain/models"
	drepo "FinBoard/internal/domain/repository"

	"github.com/gorilla/websocket"
)

// StreamClient implements a TickStream backed by the Binance miniTicker
// WebSocket feed. Subscribed streams carry exchange symbols (BTCUSDT); ticks
// are emitted under the dashboard symbol (BTC).
type StreamClient struct {
	websocketURL   string
	symbols        []string
	reconnectDelay time.Duration
	pingInterval   time.Duration

	conn      *websocket.Conn
	connected bool
}

// NewStream creates a new Binance tick stream.
func NewStream(websocketURL string, symbols []string, reconnectDelay, pingInterval time.Duration) drepo.TickStream {
	return &StreamClient{
		websocketURL:   websocketURL,
		symbols:        symbols,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
	}
}

// Connect establishes the WebSocket connection.
func (c *StreamClient) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.websocketURL, nil)
	if err != nil {
		return fmt.Errorf("binance connect: %w", err)
	}
	c.conn = conn
	c.connected = true
	log.Printf("binance: connected")
	return nil
}

// Subscribe subscribes to the miniTicker stream of every configured symbol.
func (c *StreamClient) Subscribe(ctx context.Context) error {
	if c.conn == nil || !c.connected {
		return fmt.Errorf("binance not connected")
	}
	streams := make([]string, len(c.symbols))
	for i, s := range c.symbols {
		streams[i] = strings.ToLower(NormalizeCryptoSymbol(s)) + "@miniTicker"
	}
	msg := map[string]interface{}{"method": "SUBSCRIBE", "params": streams, "id": 1}
	if err := c.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	log.Printf("binance: subscribed %s", strings.Join(streams, ","))
	return nil
}

type miniTicker struct {
	Event  string `json:"e"`
	Time   int64  `json:"E"` // ms
	Symbol string `json:"s"`
	Close  string `json:"c"`
	Volume string `json:"v"`
}

// Read streams Tick events and errors.
func (c *StreamClient) Read(ctx context.Context) (<-chan *models.Tick, <-chan error) {
	ticks := make(chan *models.Tick, 1024)
	errs := make(chan error, 1)

	// ping loop
	go func() {
		ticker := time.NewTicker(c.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if c.conn != nil {
					_ = c.conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	// read loop
	go func() {
		defer close(ticks)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if c.conn == nil {
					errs <- fmt.Errorf("binance conn nil")
					return
				}
				_, b, err := c.conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("binance read: %w", err)
					return
				}
				var m miniTicker
				if err := json.Unmarshal(b, &m); err != nil {
					// ignore non-ticker frames
					continue
				}
				if m.Event != "24hrMiniTicker" {
					continue
				}
				price, err := strconv.ParseFloat(m.Close, 64)
				if err != nil {
					continue
				}
				volume, _ := strconv.ParseFloat(m.Volume, 64)
				tick := &models.Tick{
					Symbol:    DashboardSymbol(m.Symbol),
					Timestamp: m.Time / 1000,
					Price:     price,
					Volume:    volume,
				}
				select {
				case ticks <- tick:
				default:
					// drop on backpressure
				}
			}
		}
	}()

	return ticks, errs
}

// DashboardSymbol maps an exchange symbol back to the dashboard one by
// stripping the USDT quote suffix.
func DashboardSymbol(exchange string) string {
	return strings.TrimSuffix(strings.ToUpper(exchange), "USDT")
}

// Reconnect closes and reconnects.
func (c *StreamClient) Reconnect(ctx context.Context) error {
	_ = c.Close()
	time.Sleep(c.reconnectDelay)
	if err := c.Connect(ctx); err != nil {
		return err
	}
	return c.Subscribe(ctx)
}

// Close closes the WS connection.
func (c *StreamClient) Close() error {
	c.connected = false
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (c *StreamClient) IsConnected() bool { return c.connected }
