package ws

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 256
)

// AttendancePayload is pushed to lecturer/admin dashboards when a
// participant joins or leaves a lecture room, or the room state changes.
type AttendancePayload struct {
	RoomID      uint      `json:"room_id"`
	RoomName    string    `json:"room_name"`
	Participant string    `json:"participant"`
	FullName    string    `json:"full_name,omitempty"`
	Event       string    `json:"event"` // joined, left, started, ended
	At          time.Time `json:"at"`
}

type attendanceMessage struct {
	roomID  uint
	payload []byte
}

// AttendanceHub fans lecture-room presence events out to subscribed
// websocket clients, scoped by room ownership.
type AttendanceHub struct {
	register   chan *attendanceClient
	unregister chan *attendanceClient
	broadcast  chan attendanceMessage
	clients    map[*attendanceClient]struct{}
}

func NewAttendanceHub() *AttendanceHub {
	return &AttendanceHub{
		register:   make(chan *attendanceClient),
		unregister: make(chan *attendanceClient),
		broadcast:  make(chan attendanceMessage, 256),
		clients:    make(map[*attendanceClient]struct{}),
	}
}

func (h *AttendanceHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = struct{}{}
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				client.conn.Close()
			}
		case msg := <-h.broadcast:
			for client := range h.clients {
				if !client.allowAll {
					if _, ok := client.allowedRooms[msg.roomID]; !ok {
						continue
					}
				}
				select {
				case client.send <- msg.payload:
				default:
					delete(h.clients, client)
					close(client.send)
					client.conn.Close()
				}
			}
		}
	}
}

// Broadcast pushes a presence event to every client watching the room.
func (h *AttendanceHub) Broadcast(payload AttendancePayload) {
	if h == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("ws: failed to marshal payload: %v", err)
		return
	}
	h.broadcast <- attendanceMessage{roomID: payload.RoomID, payload: data}
}

type attendanceClient struct {
	hub          *AttendanceHub
	conn         *websocket.Conn
	send         chan []byte
	allowedRooms map[uint]struct{}
	allowAll     bool
}

func newAttendanceClient(hub *AttendanceHub, conn *websocket.Conn, allowed map[uint]struct{}, allowAll bool) *attendanceClient {
	return &attendanceClient{
		hub:          hub,
		conn:         conn,
		send:         make(chan []byte, sendBufferSize),
		allowedRooms: allowed,
		allowAll:     allowAll,
	}
}

func (c *attendanceClient) readPump() {
	defer func() {
		c.hub.unregister <- c
	}()
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (c *attendanceClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			if _, err := w.Write(msg); err != nil {
				return
			}
			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
