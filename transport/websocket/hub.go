package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/rburdet/portfolio/internal/entity"
	"github.com/rburdet/portfolio/internal/usecase"
)

const sweepPeriod = time.Minute

type inboundEvent struct {
	client *Client
	raw    []byte
}

// Hub runs the gateway's single event loop. It is the only goroutine that
// touches the room manager and the broadcast groups, so one inbound event
// is handled fully, broadcast included, before the next one starts.
type Hub struct {
	logger     *slog.Logger
	manager    *usecase.RoomManager
	idleTTL    time.Duration
	sweepEvery time.Duration

	clients map[*Client]bool
	groups  map[string]map[*Client]bool // room id -> subscribers

	inbound    chan inboundEvent
	register   chan *Client
	unregister chan *Client

	handlers map[string]func(client *Client, payload json.RawMessage)
}

func NewHub(logger *slog.Logger, manager *usecase.RoomManager, idleTTL time.Duration) *Hub {
	hub := &Hub{
		logger:     logger.With("component", "ws_hub"),
		manager:    manager,
		idleTTL:    idleTTL,
		sweepEvery: sweepPeriod,

		clients: make(map[*Client]bool),
		groups:  make(map[string]map[*Client]bool),

		inbound:    make(chan inboundEvent),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}

	hub.handlers = map[string]func(*Client, json.RawMessage){
		actionCreateBoard: hub.handleCreateBoard,
		actionJoinBoard:   hub.handleJoinBoard,
		actionMakeMove:    hub.handleMakeMove,
		actionResetGame:   hub.handleResetGame,
	}

	return hub
}

// Run - drains the hub's channels until the context is canceled.
func (that *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(that.sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case client := <-that.register:
			that.clients[client] = true
			that.logger.Info("client connected", "connID", client.id)

		case client := <-that.unregister:
			that.dropClient(client)

		case event := <-that.inbound:
			that.dispatch(event)

		case <-ticker.C:
			that.sweepIdleRooms()

		case <-ctx.Done():
			that.drain()
			return
		}
	}
}

// drain - keeps the hub's channels serviced after shutdown so in-flight
// client pumps can exit instead of blocking on a loop that is gone.
func (that *Hub) drain() {
	go func() {
		for {
			select {
			case <-that.register:
			case <-that.unregister:
			case <-that.inbound:
			}
		}
	}()
}

// dispatch - decodes the envelope and routes it to the action's handler.
// Malformed input answers the sender privately and changes nothing.
func (that *Hub) dispatch(event inboundEvent) {
	if !that.clients[event.client] {
		return
	}

	var message Message
	if err := json.Unmarshal(event.raw, &message); err != nil {
		that.logger.Error("failed to unmarshal message", "connID", event.client.id, "error", err)
		that.sendError(event.client, "Malformed message")
		return
	}

	handler, ok := that.handlers[message.Action]
	if !ok {
		that.logger.Error("unknown action", "connID", event.client.id, "action", message.Action)
		that.sendError(event.client, "Unknown action")
		return
	}

	handler(event.client, message.Payload)
}

// dropClient - disconnect handling: vacates the client's seats and tells
// whoever is left in each surviving room. Deleted rooms broadcast nothing.
func (that *Hub) dropClient(client *Client) {
	if !that.clients[client] {
		return
	}
	delete(that.clients, client)
	close(client.send)

	affected := that.manager.RemoveConnection(client.id)
	for _, room := range affected {
		group, ok := that.groups[room.ID]
		if !ok {
			continue
		}
		delete(group, client)

		if room.IsEmpty() {
			delete(that.groups, room.ID)
			continue
		}

		that.broadcast(room.ID, actionPlayerLeft, room.Occupants())
	}

	that.logger.Info("client disconnected", "connID", client.id)
}

func (that *Hub) sweepIdleRooms() {
	for _, room := range that.manager.SweepIdle(that.idleTTL) {
		that.broadcast(room.ID, actionError, "Board expired")
		delete(that.groups, room.ID)
	}
}

func (that *Hub) subscribe(roomID string, client *Client) {
	if !that.clients[client] {
		return
	}

	group, ok := that.groups[roomID]
	if !ok {
		group = make(map[*Client]bool)
		that.groups[roomID] = group
	}
	group[client] = true
}

// send - queues one message for a single client. A client that cannot keep
// up with its buffer is dropped rather than allowed to stall the loop, and
// every later send to it inside the same event is a no-op: its channel is
// already closed.
func (that *Hub) send(client *Client, action string, payload any) {
	if !that.clients[client] {
		return
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		that.logger.Error("failed to marshal payload", "action", action, "error", err)
		return
	}

	data, err := json.Marshal(Message{Action: action, Payload: raw})
	if err != nil {
		that.logger.Error("failed to marshal message", "action", action, "error", err)
		return
	}

	select {
	case client.send <- data:
	default:
		that.dropClient(client)
	}
}

func (that *Hub) sendError(client *Client, reason string) {
	that.send(client, actionError, reason)
}

func (that *Hub) sendGameState(client *Client, game *entity.Game) {
	that.send(client, actionGameState, newGameStatePayload(game))
}

func (that *Hub) broadcast(roomID, action string, payload any) {
	for client := range that.groups[roomID] {
		that.send(client, action, payload)
	}
}

func (that *Hub) broadcastGameState(room *entity.Room) {
	that.broadcast(room.ID, actionGameState, newGameStatePayload(room.Game))
}
