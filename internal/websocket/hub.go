package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"ship-framework-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ClusterChannel carries messages between instances sharing one Redis.
const ClusterChannel = "ship_cluster_events"

type clusterMessage struct {
	Origin      string          `json:"origin"`
	WorkspaceID string          `json:"workspace_id"`
	Message     json.RawMessage `json:"message"`
}

// Hub fans stream events out to the open sockets of each workspace.
type Hub struct {
	// workspace -> open sockets (several tabs or devices)
	peers map[uuid.UUID][]*Peer

	register   chan *Peer
	unregister chan *Peer
	// closed when Run returns
	done chan struct{}

	mu sync.RWMutex

	// Redis connection for cross-instance delivery. Nil on a single instance.
	rdb *redis.Client
	// instance tags outgoing cluster messages so they are not delivered twice
	instance string

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Peer),
		unregister: make(chan *Peer),
		done:       make(chan struct{}),
		peers:      make(map[uuid.UUID][]*Peer),
		rdb:        rdb,
		instance:   uuid.NewString(),
		logger:     log,
	}
}

func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case p := <-h.register:
			h.mu.Lock()
			h.peers[p.workspaceID] = append(h.peers[p.workspaceID], p)
			h.mu.Unlock()
			h.logger.Info("Hub", "Peer registered", map[string]interface{}{"workspace_id": p.workspaceID})

		case p := <-h.unregister:
			h.remove(p)
		}
	}
}

// attach registers p, reporting false once the hub has stopped.
func (h *Hub) attach(p *Peer) bool {
	select {
	case h.register <- p:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) detach(p *Peer) {
	select {
	case h.unregister <- p:
	case <-h.done:
	}
}

func (h *Hub) remove(p *Peer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	peers := h.peers[p.workspaceID]
	for i, other := range peers {
		if other == p {
			h.peers[p.workspaceID] = append(peers[:i], peers[i+1:]...)
			close(p.outbox)
			break
		}
	}
	if len(h.peers[p.workspaceID]) == 0 {
		delete(h.peers, p.workspaceID)
		h.logger.Info("Hub", "Workspace has no more peers", map[string]interface{}{"workspace_id": p.workspaceID})
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ws, peers := range h.peers {
		for _, p := range peers {
			close(p.outbox)
		}
		delete(h.peers, ws)
	}
}

// Send delivers data to every connection of the workspace, on this instance
// and, through Redis, on the others. Implements service.WorkspaceDelivery.
func (h *Hub) Send(workspaceID uuid.UUID, data []byte) {
	h.deliver(workspaceID, data)

	if h.rdb != nil {
		payload, _ := json.Marshal(clusterMessage{
			Origin:      h.instance,
			WorkspaceID: workspaceID.String(),
			Message:     data,
		})
		if err := h.rdb.Publish(context.Background(), ClusterChannel, payload).Err(); err != nil {
			h.logger.Warn("Hub", "Cluster publish failed", map[string]interface{}{"error": err.Error()})
		}
	}
}

// Connected returns how many connections the workspace has on this instance.
func (h *Hub) Connected(workspaceID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.peers[workspaceID])
}

func (h *Hub) deliver(workspaceID uuid.UUID, data []byte) {
	var slow []*Peer

	h.mu.RLock()
	for _, p := range h.peers[workspaceID] {
		select {
		case p.outbox <- data:
		default:
			slow = append(slow, p)
		}
	}
	h.mu.RUnlock()

	for _, p := range slow {
		h.logger.Warn("Hub", "Peer outbox full, dropping connection", map[string]interface{}{"workspace_id": workspaceID})
		h.detach(p)
	}
}

// subscribeToRedis relays messages published by other instances to the
// local connections of their workspace until ctx is done.
func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, ClusterChannel)
	defer pubsub.Close()
	h.relayCluster(ctx, pubsub.Channel())
}

// relayCluster returns when ctx is done or msgs is closed.
func (h *Hub) relayCluster(ctx context.Context, msgs <-chan *redis.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			var payload clusterMessage
			if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
				h.logger.Warn("Hub", "Cluster message parse error", map[string]interface{}{"error": err.Error()})
				continue
			}
			if payload.Origin == h.instance {
				continue
			}
			workspaceID, err := uuid.Parse(payload.WorkspaceID)
			if err != nil {
				continue
			}
			h.deliver(workspaceID, payload.Message)
		}
	}
}
