// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 5 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 8) / 10

	// If more than this many messages are queued for sending, the
	// socket is congested and messages may be dropped
	socketCongestionThreshold = 5

	// Allows ~1 second of snapshots to back up before close
	socketBufferSize = 32

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // TODO: Read domain env var and actually enforce similarity
	},
	HandshakeTimeout: time.Second,
	ReadBufferSize:   maxMessageSize,
	WriteBufferSize:  4096,
}

// SocketClient is a middleman between the websocket connection and a room.
// Until the peer sends a joinRoom it belongs to no room and every other
// inbound is dropped.
type SocketClient struct {
	ClientData
	registry *RoomRegistry
	conn     *websocket.Conn
	send     chan outbound
	once     sync.Once
	counter  int // counts up every send
}

// Create a SocketClient from a connection
func NewSocketClient(registry *RoomRegistry, conn *websocket.Conn) *SocketClient {
	return &SocketClient{
		registry: registry,
		conn:     conn,
		send:     make(chan outbound, socketBufferSize),
	}
}

func (client *SocketClient) Bot() bool {
	return false
}

func (client *SocketClient) Close() {
	close(client.send)
}

func (client *SocketClient) Data() *ClientData {
	return &client.ClientData
}

func (client *SocketClient) Destroy() {
	client.once.Do(func() {
		if room := client.Room; room != nil {
			// Needs to go through when called on the room goroutine.
			select {
			case room.unregister <- client:
			default:
				go func() {
					room.unregister <- client
				}()
			}
		}

		_ = client.conn.Close()
	})
}

func (client *SocketClient) Init() {}

// Start runs the pumps. Called once by the HTTP handler, before any room
// registration.
func (client *SocketClient) Start() {
	go client.writePump()
	go client.readPump()
}

func (client *SocketClient) Send(message outbound) {
	// How many messages there are in excess of a reasonable amount
	congestion := len(client.send) - socketCongestionThreshold

	// The closer the buffer is to being full, the more messages
	// we drop on the floor (to give the socket a chance to
	// catch up)
	client.counter++
	if congestion > 1 && client.counter%congestion != 0 {
		// Snapshots are absolute state, so a dropped one is recovered
		// by the next. Event-based messages always go through.
		if _, snapshot := message.(ServerSnapshot); snapshot {
			return
		}
	}

	select {
	case client.send <- message:
	default:
		// Not responsive
		log.Debug().Msg("socket client is not responsive")
		client.Destroy()
	}
}

func (client *SocketClient) readPump() {
	defer client.Destroy()
	client.conn.SetReadLimit(maxMessageSize)
	_ = client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		_ = client.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, r, err := client.conn.NextReader()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Debug().Err(err).Msg("socket close error")
			}
			break
		}

		var message Message
		err = json.NewDecoder(r).Decode(&message)
		if err != nil {
			log.Debug().Err(err).Msg("socket decode error")
			break
		}

		switch data := message.Data.(type) {
		case InvalidInbound:
			log.Debug().Str("type", string(data.messageType)).Msg("invalid message type received")
		case JoinRoom:
			// Handled off the room goroutine; Room is set before any
			// other inbound can reference it.
			if client.Room == nil {
				client.registry.Join(client, data)
			}
		default:
			if room := client.Room; room != nil {
				room.inbound <- SignedInbound{Client: client, inbound: message.Data.(inbound)}
			}
		}
	}
}

func (client *SocketClient) writePump() {
	pingTicker := time.NewTicker(pingPeriod)

	defer func() {
		if err := recover(); err != nil {
			log.Debug().Interface("err", err).Msg("socket send error")
		}
		pingTicker.Stop()
		client.Destroy()
	}()

	for {
		select {
		case out, ok := <-client.send:
			_ = client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The room closed the channel.
				_ = client.conn.WriteMessage(websocket.CloseMessage, nil)
				panic("room closed channel")
			}

			w, err := client.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				panic(err)
			}

			// Wrap with Message to marshal type
			if err = json.NewEncoder(w).Encode(Message{Data: out}); err != nil {
				panic(err)
			}

			out.Pool()

			if err = w.Close(); err != nil {
				panic(err)
			}
		case <-pingTicker.C:
			_ = client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
