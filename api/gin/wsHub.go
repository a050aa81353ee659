package gin

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	logger "github.com/multiversx/mx-chain-logger-go"

	"github.com/klever-io/klv-composite-oracle-go/composer"
)

var log = logger.GetOrCreate("klv-composite-oracle-go/api/gin")

const clientSendBufferSize = 16

// priceUpdateMessage is the wire format pushed to websocket subscribers
type priceUpdateMessage struct {
	Asset     string `json:"asset"`
	Price     string `json:"price"`
	IsAlive   bool   `json:"isAlive"`
	Timestamp int64  `json:"timestamp"`
}

// wsHub fans composed price updates out to all connected websocket clients.
// It implements the composer.PriceNotifee interface, so the price monitor can
// push to it like to any other notifee.
type wsHub struct {
	upgrader websocket.Upgrader

	mut     sync.RWMutex
	clients map[*websocket.Conn]chan []byte
}

// NewWsHub will create a new wsHub instance
func NewWsHub() *wsHub {
	return &wsHub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		clients: make(map[*websocket.Conn]chan []byte),
	}
}

// PricesChanged serializes the price changes and broadcasts them to every
// connected client. A client too slow to drain its buffer is disconnected
// rather than allowed to block the broadcast.
func (hub *wsHub) PricesChanged(_ context.Context, priceChanges []*composer.ArgsPriceChanged) error {
	messages := make([]priceUpdateMessage, 0, len(priceChanges))
	for _, priceChange := range priceChanges {
		messages = append(messages, priceUpdateMessage{
			Asset:     priceChange.Asset.Hex(),
			Price:     priceChange.Price.String(),
			IsAlive:   priceChange.IsAlive,
			Timestamp: priceChange.Timestamp,
		})
	}

	payload, err := json.Marshal(messages)
	if err != nil {
		return err
	}

	hub.mut.RLock()
	defer hub.mut.RUnlock()

	for conn, send := range hub.clients {
		select {
		case send <- payload:
		default:
			log.Debug("dropping slow websocket client", "remote", conn.RemoteAddr().String())
			go hub.removeClient(conn)
		}
	}

	return nil
}

// handleConnection upgrades the request and serves the client until it disconnects
func (hub *wsHub) handleConnection(writer http.ResponseWriter, request *http.Request) {
	conn, err := hub.upgrader.Upgrade(writer, request, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", "error", err.Error())
		return
	}

	send := make(chan []byte, clientSendBufferSize)

	hub.mut.Lock()
	hub.clients[conn] = send
	hub.mut.Unlock()

	go hub.writeLoop(conn, send)
	hub.readLoop(conn)
}

func (hub *wsHub) writeLoop(conn *websocket.Conn, send chan []byte) {
	for payload := range send {
		err := conn.WriteMessage(websocket.TextMessage, payload)
		if err != nil {
			hub.removeClient(conn)
			return
		}
	}
}

func (hub *wsHub) readLoop(conn *websocket.Conn) {
	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			hub.removeClient(conn)
			return
		}
	}
}

func (hub *wsHub) removeClient(conn *websocket.Conn) {
	hub.mut.Lock()
	send, found := hub.clients[conn]
	delete(hub.clients, conn)
	hub.mut.Unlock()

	if found {
		close(send)
		_ = conn.Close()
	}
}

// close disconnects all clients
func (hub *wsHub) close() {
	hub.mut.Lock()
	conns := make([]*websocket.Conn, 0, len(hub.clients))
	for conn := range hub.clients {
		conns = append(conns, conn)
	}
	hub.mut.Unlock()

	for _, conn := range conns {
		hub.removeClient(conn)
	}
}

// IsInterfaceNil returns true if there is no value under the interface
func (hub *wsHub) IsInterfaceNil() bool {
	return hub == nil
}
