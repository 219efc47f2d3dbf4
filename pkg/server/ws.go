package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/meetborg/joinbot/pkg/events"
	"github.com/meetborg/joinbot/pkg/log"
)

const (
	wsWriteTimeout = 5 * time.Second
	wsReadTimeout  = 3 * time.Minute
	wsPingInterval = 60 * time.Second
)

// eventStreamServer streams session events to WebSocket observers.
type eventStreamServer struct {
	upgrader     websocket.Upgrader
	bus          *events.Bus
	clients      map[string]*wsClient
	clientsMutex sync.RWMutex
}

func newEventStreamServer(bus *events.Bus) *eventStreamServer {
	return &eventStreamServer{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		bus:     bus,
		clients: make(map[string]*wsClient),
	}
}

// HandleConnection upgrades the request and streams events until the client
// disconnects.
func (s *eventStreamServer) HandleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Errorf("Failed to upgrade WebSocket connection: %v", err)
		return
	}

	client := newWSClient(conn, s.bus)
	s.addClient(client)
	log.Infof("Event stream client connected: %s", client.id)

	client.process()

	s.removeClient(client.id)
	log.Infof("Event stream client disconnected: %s", client.id)
}

func (s *eventStreamServer) addClient(client *wsClient) {
	s.clientsMutex.Lock()
	defer s.clientsMutex.Unlock()
	s.clients[client.id] = client
}

func (s *eventStreamServer) removeClient(id string) {
	s.clientsMutex.Lock()
	defer s.clientsMutex.Unlock()
	delete(s.clients, id)
}

// wsClient is one observer connection.
type wsClient struct {
	id         string
	conn       *websocket.Conn
	bus        *events.Bus
	subscriber *events.Subscriber
	sendChan   chan []byte
	stopChan   chan struct{}
}

func newWSClient(conn *websocket.Conn, bus *events.Bus) *wsClient {
	return &wsClient{
		id:       conn.RemoteAddr().String(),
		conn:     conn,
		bus:      bus,
		sendChan: make(chan []byte, 100),
		stopChan: make(chan struct{}),
	}
}

func (c *wsClient) process() {
	c.subscriber = events.NewSubscriber(c.id, 100)
	c.bus.Subscribe(c.subscriber)
	defer c.bus.Unsubscribe(c.id)

	go c.writePump()
	go c.readPump()

	for ev := range c.subscriber.Channel {
		data, err := json.Marshal(ev)
		if err != nil {
			log.Errorf("Failed to marshal event: %v", err)
			continue
		}
		select {
		case c.sendChan <- data:
		default:
			log.Warnf("Dropping event for client %s (send channel full)", c.id)
		}
	}
}

// writePump pumps events from the send channel to the connection and keeps
// it alive with periodic pings.
func (c *wsClient) writePump() {
	defer func() {
		c.conn.Close()
		close(c.stopChan)
	}()

	pingTicker := time.NewTicker(wsPingInterval)
	defer pingTicker.Stop()

	for {
		select {
		case message, ok := <-c.sendChan:
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Errorf("Error writing event to WebSocket: %v", err)
				return
			}

		case <-pingTicker.C:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Errorf("Error sending ping to WebSocket: %v", err)
				return
			}

		case <-c.stopChan:
			return
		}
	}
}

// readPump drains the connection and resets the read deadline on any
// traffic, pongs included.
func (c *wsClient) readPump() {
	defer func() {
		c.subscriber.Close()
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
		return nil
	})

	for {
		_, _, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Errorf("WebSocket read error: %v", err)
			}
			break
		}
		c.conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	}
}
