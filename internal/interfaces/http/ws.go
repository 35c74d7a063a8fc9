package httpinterface

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// EventHub broadcasts marketplace events to the connected websocket clients.
// It implements ports.Publisher so the pubsub service can fan out to it the
// same way it does for webhooks.
type EventHub struct {
	lock    sync.Mutex
	clients map[*websocket.Conn]struct{}
}

// NewEventHub returns a hub with no connected clients.
func NewEventHub() *EventHub {
	return &EventHub{clients: map[*websocket.Conn]struct{}{}}
}

// Publish implements the ports.Publisher interface. A client failing to
// receive is dropped, delivery is best effort.
func (h *EventHub) Publish(topic, message string) error {
	envelope, _ := json.Marshal(map[string]interface{}{
		"topic": topic,
		"data":  json.RawMessage(message),
	})

	h.lock.Lock()
	defer h.lock.Unlock()

	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, envelope); err != nil {
			log.WithError(err).Debug("dropping slow websocket client")
			conn.Close()
			delete(h.clients, conn)
		}
	}
	return nil
}

func (h *EventHub) add(conn *websocket.Conn) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.clients[conn] = struct{}{}
}

func (h *EventHub) remove(conn *websocket.Conn) {
	h.lock.Lock()
	defer h.lock.Unlock()

	if _, ok := h.clients[conn]; ok {
		conn.Close()
		delete(h.clients, conn)
	}
}

func (s *Server) streamEvents(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	s.eventHub.add(conn)

	// Reads are discarded, the socket only exists to push events. The read
	// loop detects the client going away.
	go func() {
		defer s.eventHub.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
