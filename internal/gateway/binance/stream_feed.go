package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/quantasea/coinsentry/internal/domain"
)

const (
	// pongWait is the time allowed to read the next message from the peer.
	pongWait = 60 * time.Second

	// pingPeriod sends pings to the peer at this interval. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// reconnectDelay is the base delay before attempting to reconnect.
	reconnectDelay = 2 * time.Second

	// maxReconnectDelay caps the exponential backoff for reconnection.
	maxReconnectDelay = 60 * time.Second
)

// StreamFeed subscribes to the Binance combined miniTicker stream for the
// mapped exchange pairs and keeps the quote cache warm with the latest close
// price for each symbol. It reconnects on disconnect, so a dropped stream
// only means cycles fall back to the REST gateway until the cache entry is
// repopulated.
type StreamFeed struct {
	streamURL string
	pairToSym map[string]string
	cache     domain.QuoteCache
	logger    *slog.Logger
	closeOnce sync.Once
	done      chan struct{}
}

// NewStreamFeed creates a feed for the given symbol map. symbolMap maps
// portfolio symbols to exchange pairs, the same map the REST client uses.
func NewStreamFeed(streamURL string, symbolMap map[string]string, cache domain.QuoteCache, logger *slog.Logger) *StreamFeed {
	pairToSym := make(map[string]string, len(symbolMap))
	for sym, pair := range symbolMap {
		pairToSym[pair] = sym
	}
	return &StreamFeed{
		streamURL: streamURL,
		pairToSym: pairToSym,
		cache:     cache,
		logger:    logger.With(slog.String("component", "binance_stream")),
		done:      make(chan struct{}),
	}
}

// Run connects and consumes ticker messages until ctx is cancelled or Close
// is called. Reconnects with exponential backoff on disconnect.
func (f *StreamFeed) Run(ctx context.Context) error {
	if len(f.pairToSym) == 0 {
		f.logger.Info("no pairs to subscribe, exiting")
		return nil
	}

	delay := reconnectDelay
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-f.done:
			return nil
		default:
		}

		err := f.runConnection(ctx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		f.logger.Warn("binance stream disconnected, reconnecting",
			slog.String("error", err.Error()),
			slog.Duration("delay", delay))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-f.done:
			return nil
		case <-time.After(delay):
		}

		delay *= 2
		if delay > maxReconnectDelay {
			delay = maxReconnectDelay
		}
	}
}

// combinedURL builds the combined-stream URL subscribing every mapped pair to
// its miniTicker channel.
func (f *StreamFeed) combinedURL() string {
	streams := make([]string, 0, len(f.pairToSym))
	for pair := range f.pairToSym {
		streams = append(streams, strings.ToLower(pair)+"@miniTicker")
	}
	return f.streamURL + "/stream?streams=" + strings.Join(streams, "/")
}

type streamEnvelope struct {
	Stream string     `json:"stream"`
	Data   miniTicker `json:"data"`
}

type miniTicker struct {
	Symbol string `json:"s"`
	Close  string `json:"c"`
}

func (f *StreamFeed) runConnection(ctx context.Context) error {
	dialer := websocket.Dialer{
		HandshakeTimeout: 15 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, f.combinedURL(), nil)
	if err != nil {
		return fmt.Errorf("binance/stream: connect: %w", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	// Close the connection when ctx ends so the blocking read returns.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-f.done:
			_ = conn.Close()
		case <-stop:
		}
	}()

	go f.pingLoop(conn, stop)

	f.logger.Info("binance stream subscribed", slog.Int("pairs", len(f.pairToSym)))

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("binance/stream: %w: %v", domain.ErrWSDisconnect, err)
		}
		conn.SetReadDeadline(time.Now().Add(pongWait))
		f.handleMessage(ctx, message)
	}
}

func (f *StreamFeed) pingLoop(conn *websocket.Conn, stop <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			deadline := time.Now().Add(10 * time.Second)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		}
	}
}

func (f *StreamFeed) handleMessage(ctx context.Context, message []byte) {
	var env streamEnvelope
	if err := json.Unmarshal(message, &env); err != nil {
		f.logger.Warn("binance stream: bad message", slog.String("error", err.Error()))
		return
	}

	sym, ok := f.pairToSym[env.Data.Symbol]
	if !ok {
		return
	}

	price, err := strconv.ParseFloat(env.Data.Close, 64)
	if err != nil {
		f.logger.Warn("binance stream: bad close price",
			slog.String("pair", env.Data.Symbol),
			slog.String("value", env.Data.Close))
		return
	}

	if err := f.cache.Set(ctx, domain.KindPrice, sym, price, domain.PriceTTL); err != nil {
		f.logger.WarnContext(ctx, "binance stream: cache set failed",
			slog.String("symbol", sym),
			slog.String("error", err.Error()))
	}
}

// Close stops the feed.
func (f *StreamFeed) Close() {
	f.closeOnce.Do(func() { close(f.done) })
}
