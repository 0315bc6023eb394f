package webservice

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ohowland/caseform/internal/pkg/msg"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// wsClient is one connected /events subscriber.
type wsClient struct {
	id   uuid.UUID
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
}

// wsHub subscribes to both conversion topics and fans each completed
// record out to connected websocket clients as JSON.
type wsHub struct {
	mux     *sync.RWMutex
	pid     uuid.UUID
	inbox   <-chan msg.Msg
	clients map[uuid.UUID]*wsClient
}

func newWSHub(system msg.Publisher) (*wsHub, error) {
	pid, err := uuid.NewUUID()
	if err != nil {
		return nil, err
	}

	inbox := make(chan msg.Msg, 50)

	chConverted, err := system.Subscribe(pid, msg.Converted)
	if err != nil {
		return nil, err
	}
	go redirectMsg(chConverted, inbox)

	chReversed, err := system.Subscribe(pid, msg.Reversed)
	if err != nil {
		return nil, err
	}
	go redirectMsg(chReversed, inbox)

	hub := &wsHub{
		mux:     &sync.RWMutex{},
		pid:     pid,
		inbox:   inbox,
		clients: make(map[uuid.UUID]*wsClient),
	}
	go hub.run()
	return hub, nil
}

func redirectMsg(chIn <-chan msg.Msg, chOut chan<- msg.Msg) {
	for m := range chIn {
		chOut <- m
	}
}

func (hub *wsHub) run() {
	for m := range hub.inbox {
		data, err := json.Marshal(m.Payload())
		if err != nil {
			log.Println("[Webservice] event marshal:", err)
			continue
		}
		hub.broadcast(data)
	}
}

// broadcast never blocks. A client with a full send buffer misses the
// message.
func (hub *wsHub) broadcast(data []byte) {
	hub.mux.RLock()
	defer hub.mux.RUnlock()

	for _, c := range hub.clients {
		select {
		case c.send <- data:
		default:
		}
	}
}

func (hub *wsHub) add(c *wsClient) {
	hub.mux.Lock()
	defer hub.mux.Unlock()
	hub.clients[c.id] = c
}

func (hub *wsHub) remove(c *wsClient) {
	hub.mux.Lock()
	defer hub.mux.Unlock()
	delete(hub.clients, c.id)
}

// EventsHandler upgrades the connection and streams conversion records
// until the peer hangs up.
func (h *Handler) EventsHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("[Webservice] upgrade:", err)
		return
	}

	c := &wsClient{
		id:   uuid.New(),
		conn: conn,
		send: make(chan []byte, 16),
		done: make(chan struct{}),
	}
	h.events.add(c)

	go readPump(h.events, c)
	go writePump(c)
}

func readPump(hub *wsHub, c *wsClient) {
	defer func() {
		hub.remove(c)
		close(c.done)
		c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func writePump(c *wsClient) {
	for {
		select {
		case data := <-c.send:
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}
