package ws

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"dungeonsync.gg/internal/session"
)

type Server struct {
	sess *session.Session
	hub  *Hub
	log  *log.Logger

	queueSize int
	nextConn  atomic.Uint64

	upgrader websocket.Upgrader
}

func NewServer(sess *session.Session, hub *Hub, queueSize int, logger *log.Logger) *Server {
	return &Server{
		sess:      sess,
		hub:       hub,
		log:       logger,
		queueSize: queueSize,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		peer := newPeer(fmt.Sprintf("peer_%06d", s.nextConn.Add(1)), s.hub, s.queueSize)
		s.hub.add(peer)
		s.log.Printf("client connected: %s", peer.id)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case b, ok := <-peer.out:
					if !ok {
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		s.sess.Opened() <- peer

		// Reader loop. A silent but open transport is treated as present
		// indefinitely; only a read error counts as a close.
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				break
			}
			s.sess.Inbox() <- session.Envelope{Peer: peer, Data: msg}
		}

		// Cleanup.
		s.hub.remove(peer.id)
		s.sess.Closed() <- peer.id
		s.log.Printf("client disconnected: %s", peer.id)
	}
}
