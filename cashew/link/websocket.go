// Package link carries the serial port over a network connection, so two
// emulators can talk as if a link cable was plugged between them.
package link

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	bufferSize   = 256
	closeTimeout = time.Second
)

// ErrClosed is returned by Accept once the server is closed.
var ErrClosed = errors.New("link closed")

// Peer is one end of the cable. It implements serial.Link: every transmitted
// byte is sent as a binary message, received bytes queue until polled.
type Peer struct {
	conn *websocket.Conn
	send chan byte
	recv chan byte
	done chan struct{}

	closeOnce sync.Once
}

func newPeer(conn *websocket.Conn) *Peer {
	p := &Peer{
		conn: conn,
		send: make(chan byte, bufferSize),
		recv: make(chan byte, bufferSize),
		done: make(chan struct{}),
	}
	go p.readPump()
	go p.writePump()
	return p
}

// Transmit queues a byte for the peer. It never blocks: when the queue is
// full or the connection is gone the byte is dropped.
func (p *Peer) Transmit(value byte) {
	select {
	case <-p.done:
	case p.send <- value:
	default:
		slog.Warn("Link send queue full, dropping byte", "value", value)
	}
}

// Receive returns the next byte sent by the peer, false if none arrived yet.
func (p *Peer) Receive() (byte, bool) {
	select {
	case b := <-p.recv:
		return b, true
	default:
		return 0, false
	}
}

// Done is closed when the connection ends.
func (p *Peer) Done() <-chan struct{} {
	return p.done
}

// RemoteAddr returns the network address of the other end.
func (p *Peer) RemoteAddr() net.Addr {
	return p.conn.RemoteAddr()
}

// Close terminates the connection.
func (p *Peer) Close() error {
	var err error
	p.closeOnce.Do(func() {
		close(p.done)
		_ = p.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(closeTimeout))
		err = p.conn.Close()
	})
	return err
}

func (p *Peer) readPump() {
	defer p.Close()

	for {
		_, message, err := p.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Debug("Link read ended", "remote", p.conn.RemoteAddr().String(), "err", err)
			}
			return
		}

		for _, b := range message {
			select {
			case p.recv <- b:
			default:
				slog.Warn("Link receive queue full, dropping byte", "value", b)
			}
		}
	}
}

func (p *Peer) writePump() {
	for {
		select {
		case <-p.done:
			return
		case b := <-p.send:
			if err := p.conn.WriteMessage(websocket.BinaryMessage, []byte{b}); err != nil {
				slog.Debug("Link write failed", "remote", p.conn.RemoteAddr().String(), "err", err)
				p.Close()
				return
			}
		}
	}
}

// Server accepts cable connections over HTTP.
type Server struct {
	upgrader websocket.Upgrader
	peers    chan *Peer
	done     chan struct{}
	once     sync.Once
}

// NewServer creates a Server, to be mounted as an http.Handler.
func NewServer() *Server {
	return &Server{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		peers: make(chan *Peer),
		done:  make(chan struct{}),
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("Link upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}

	peer := newPeer(conn)
	select {
	case s.peers <- peer:
		slog.Info("Link connected", "remote", r.RemoteAddr)
	case <-s.done:
		peer.Close()
	case <-r.Context().Done():
		peer.Close()
	}
}

// Accept waits for the next peer to connect.
func (s *Server) Accept(ctx context.Context) (*Peer, error) {
	select {
	case peer := <-s.peers:
		return peer, nil
	case <-s.done:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close stops accepting peers.
func (s *Server) Close() {
	s.once.Do(func() { close(s.done) })
}

// Listen serves on address and waits for a single peer to connect.
// The listener is shut down when the returned Peer is closed.
func Listen(ctx context.Context, address string) (*Peer, error) {
	ln, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("link listen: %w", err)
	}

	srv := NewServer()
	hs := &http.Server{Handler: srv}
	go func() {
		if err := hs.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Link server failed", "err", err)
		}
	}()
	slog.Info("Waiting for link peer", "address", ln.Addr().String())

	peer, err := srv.Accept(ctx)
	if err != nil {
		srv.Close()
		hs.Close()
		return nil, fmt.Errorf("link accept: %w", err)
	}
	go func() {
		<-peer.Done()
		srv.Close()
		hs.Close()
	}()
	return peer, nil
}

// Dial connects to a peer waiting on url (ws://host:port/).
func Dial(ctx context.Context, url string) (*Peer, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("link dial %s: %w", url, err)
	}
	slog.Info("Link connected", "remote", url)
	return newPeer(conn), nil
}
