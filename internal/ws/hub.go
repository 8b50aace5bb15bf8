package ws

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Hub fans submission events out to connected WebSocket clients. Run must be
// running for Register, Unregister and Broadcast to make progress.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mutex      sync.RWMutex
	logger     *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 1024),
		register:   make(chan *Client, 128),
		unregister: make(chan *Client, 128),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run serves the hub until ctx is cancelled, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mutex.Unlock()
			return

		case client := <-h.register:
			if client == nil {
				continue
			}
			h.mutex.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mutex.Unlock()
			h.logger.Info("ws connected", zap.String("client_id", client.id), zap.Int("total_clients", total))

		case client := <-h.unregister:
			if client == nil {
				continue
			}
			if h.remove(client) {
				h.logger.Info("ws disconnected", zap.String("client_id", client.id), zap.Int("total_clients", h.ClientCount()))
			}

		case message := <-h.broadcast:
			h.mutex.RLock()
			clientsSnapshot := make([]*Client, 0, len(h.clients))
			for c := range h.clients {
				clientsSnapshot = append(clientsSnapshot, c)
			}
			h.mutex.RUnlock()

			for _, client := range clientsSnapshot {
				select {
				case client.send <- message:
				default:
					if h.remove(client) {
						h.logger.Warn("ws client dropped", zap.String("client_id", client.id), zap.String("reason", "send_buffer_full"))
					}
				}
			}
			h.logger.Debug("ws broadcast", zap.Int("clients", len(clientsSnapshot)))
		}
	}
}

func (h *Hub) remove(client *Client) bool {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if _, ok := h.clients[client]; !ok {
		return false
	}
	delete(h.clients, client)
	close(client.send)
	return true
}

// Done is closed once Run has returned.
func (h *Hub) Done() <-chan struct{} {
	if h == nil {
		return nil
	}
	return h.done
}

func (h *Hub) Register(client *Client) {
	if h == nil {
		return
	}
	select {
	case h.register <- client:
	case <-h.done:
	}
}

func (h *Hub) Unregister(client *Client) {
	if h == nil {
		return
	}
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) Broadcast(message []byte) {
	if h == nil {
		return
	}
	select {
	case h.broadcast <- message:
	default:
		h.logger.Warn("ws broadcast dropped", zap.String("reason", "buffer_full"))
	}
}

func (h *Hub) ClientCount() int {
	if h == nil {
		return 0
	}
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}
