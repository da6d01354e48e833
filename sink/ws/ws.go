// SPDX-License-Identifier: EPL-2.0

// Package ws streams the bridge output to websocket clients.
//
// Every client first receives a JSON header:
//
//	{"rate":44100,"channels":2,"format":"f32le"}
//
// followed by one binary message per block holding interleaved
// little-endian float32 samples. Slow clients lose their oldest blocks
// instead of holding up the bridge.
package ws

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/decred/slog"
	"github.com/gorilla/websocket"

	"github.com/ik5/audbridge/internal/pacing"
	"github.com/ik5/audbridge/sink"
)

const (
	clientQueue  = 8
	writeTimeout = 2 * time.Second
)

var log = slog.Disabled

// UseLogger sets the package logger.
func UseLogger(logger slog.Logger) {
	log = logger
}

// Header is the first message sent to each client.
type Header struct {
	Rate     int    `json:"rate"`
	Channels int    `json:"channels"`
	Format   string `json:"format"`
}

type client struct {
	conn *websocket.Conn
	out  chan []byte
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() { close(c.out) })
}

// Sink is both a sink.Sink and an http.Handler. When an address is given,
// Configure starts a server on it; otherwise mount the Sink on your own mux.
type Sink struct {
	addr     string
	upgrader websocket.Upgrader

	mtx      sync.Mutex
	header   *Header
	clients  map[*client]struct{}
	dropped  uint64
	server   *http.Server
	listener net.Listener
	closed   bool

	pacer *pacing.Pacer
}

func New(addr string) *Sink {
	return &Sink{
		addr:    addr,
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

func (s *Sink) Configure(rate, channels int) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.closed {
		return sink.ErrClosed
	}

	s.header = &Header{Rate: rate, Channels: channels, Format: "f32le"}
	s.pacer = pacing.New(rate)

	if s.addr == "" || s.listener != nil {
		return nil
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("ws sink: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/", s)
	s.listener = ln
	s.server = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("ws sink server: %v", err)
		}
	}()
	log.Infof("Streaming on ws://%s/", ln.Addr())

	return nil
}

// Addr is the listening address once configured.
func (s *Sink) Addr() net.Addr {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.listener == nil {
		return nil
	}

	return s.listener.Addr()
}

// Clients is the number of connected clients.
func (s *Sink) Clients() int {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return len(s.clients)
}

// Dropped counts blocks discarded for slow clients.
func (s *Sink) Dropped() uint64 {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return s.dropped
}

func (s *Sink) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mtx.Lock()
	header := s.header
	s.mtx.Unlock()

	if header == nil {
		http.Error(w, "stream not configured", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnf("upgrade: %v", err)
		return
	}

	c := &client{conn: conn, out: make(chan []byte, clientQueue)}
	if err := conn.WriteJSON(header); err != nil {
		log.Warnf("ws header: %v", err)
		conn.Close()
		return
	}

	s.mtx.Lock()
	if s.closed {
		s.mtx.Unlock()
		conn.Close()
		return
	}
	s.clients[c] = struct{}{}
	s.mtx.Unlock()
	log.Debugf("Client %s connected", r.RemoteAddr)

	go s.writeLoop(c)

	// Drain client messages so close frames are seen.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	s.remove(c)
	log.Debugf("Client %s gone", r.RemoteAddr)
}

func (s *Sink) writeLoop(c *client) {
	defer c.conn.Close()

	for msg := range c.out {
		c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.BinaryMessage, msg); err != nil {
			log.Debugf("ws write: %v", err)
			s.remove(c)
			return
		}
	}
}

func (s *Sink) remove(c *client) {
	s.mtx.Lock()
	delete(s.clients, c)
	s.mtx.Unlock()

	c.close()
}

// Write broadcasts the block and then waits until it is due in real time.
func (s *Sink) Write(ctx context.Context, frames []float32) error {
	s.mtx.Lock()
	if s.closed {
		s.mtx.Unlock()
		return sink.ErrClosed
	}
	if s.header == nil {
		s.mtx.Unlock()
		return sink.ErrNotConfigured
	}
	channels := s.header.Channels
	if len(frames)%channels != 0 {
		s.mtx.Unlock()
		return sink.ErrBadBlock
	}

	if len(s.clients) > 0 {
		msg := encode(frames)
		for c := range s.clients {
			select {
			case c.out <- msg:
			default:
				// Drop oldest, add newest.
				select {
				case <-c.out:
				default:
				}
				c.out <- msg
				s.dropped++
			}
		}
	}
	pacer := s.pacer
	s.mtx.Unlock()

	if !pacer.Wait(ctx.Done(), len(frames)/channels) {
		return ctx.Err()
	}

	return nil
}

func (s *Sink) Latency() time.Duration { return 0 }

func (s *Sink) Close() error {
	s.mtx.Lock()
	if s.closed {
		s.mtx.Unlock()
		return nil
	}
	s.closed = true

	for c := range s.clients {
		delete(s.clients, c)
		c.close()
	}
	server := s.server
	s.mtx.Unlock()

	if server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			return server.Close()
		}
	}

	return nil
}

func encode(frames []float32) []byte {
	out := make([]byte, 4*len(frames))
	for i, f := range frames {
		binary.LittleEndian.PutUint32(out[4*i:], math.Float32bits(f))
	}

	return out
}

// Decode turns a binary block message back into samples.
func Decode(msg []byte) []float32 {
	out := make([]float32, len(msg)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(msg[4*i:]))
	}

	return out
}

func init() {
	sink.Register("ws", func(path string, _ sink.Options) (sink.Sink, error) {
		if path == "" {
			path = "127.0.0.1:8090"
		}
		return New(path), nil
	})
}
