package fastview

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	channerics "github.com/niceyeti/channerics/channels"
	"golang.org/x/sync/errgroup"
)

const (
	writeWait      = time.Second
	maxMessageSize = 8192

	pubResolution  = 100 * time.Millisecond
	pingResolution = 200 * time.Millisecond
	pongWait       = pingResolution * 4

	readDeadline     = time.Second
	writeDeadline    = time.Second
	closeGracePeriod = 10 * time.Second
)

var upgrader = websocket.Upgrader{}

// Client publishes a stream of idempotent updates to a single browser tab
// over a websocket: intervening values received faster than pubResolution
// are dropped, since only the latest fully specifies the client's new view.
type Client[T any] struct {
	updates <-chan T
	ws      *websock
	rootCtx context.Context
}

// NewClient upgrades r/w to a websocket and returns a publisher bound to it.
func NewClient[T any](
	updates <-chan T,
	w http.ResponseWriter,
	r *http.Request,
) (*Client[T], error) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil, err
	}
	return &Client[T]{
		updates: updates,
		ws:      newWebsock(conn),
		rootCtx: r.Context(),
	}, nil
}

// Sync runs the read, ping/pong liveness, and publish loops concurrently
// until the client disconnects or the request context is cancelled.
func (c *Client[T]) Sync() error {
	group, groupCtx := errgroup.WithContext(c.rootCtx)
	group.Go(func() error { return c.readMessages(groupCtx) })
	group.Go(func() error { return c.pingPong(groupCtx) })
	group.Go(func() error { return c.publish(groupCtx) })
	return group.Wait()
}

// ErrPongDeadlineExceeded is returned when a client stops answering pings.
var ErrPongDeadlineExceeded = errors.New("fastview: pong deadline exceeded, client presumed gone")

func (c *Client[T]) pingPong(ctx context.Context) error {
	pong := make(chan struct{})
	defer close(pong)
	c.ws.Conn().SetPongHandler(func(string) error {
		pong <- struct{}{}
		return nil
	})

	ticker := channerics.NewTicker(ctx.Done(), pingResolution)
	lastPong := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker:
			if time.Since(lastPong) > pongWait {
				return ErrPongDeadlineExceeded
			}
			if err := c.ping(ctx); err != nil {
				return err
			}
		case <-pong:
			lastPong = time.Now()
		}
	}
}

func (c *Client[T]) ping(ctx context.Context) error {
	return c.ws.Write(ctx, func(conn *websocket.Conn) error {
		if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
			if isUnexpectedClose(err) {
				return fmt.Errorf("ping failed: %w", err)
			}
		}
		return nil
	})
}

// readMessages drains (and discards) client messages so the gorilla/websocket
// library's ping/pong handlers keep firing; any read error tears the
// connection down.
func (c *Client[T]) readMessages(ctx context.Context) error {
	for {
		err := c.ws.Read(ctx, func(conn *websocket.Conn) error {
			_, _, readErr := conn.ReadMessage()
			return readErr
		})
		if err != nil {
			return err
		}
	}
}

func (c *Client[T]) publish(ctx context.Context) error {
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-c.updates:
			if !ok {
				return nil
			}
			if time.Since(last) < pubResolution {
				continue
			}
			last = time.Now()
			err := c.ws.Write(ctx, func(conn *websocket.Conn) error {
				if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
					return fmt.Errorf("set write deadline: %w", err)
				}
				if err := conn.WriteJSON(update); err != nil && isUnexpectedClose(err) {
					return fmt.Errorf("publish: %w", err)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
	}
}

func isUnexpectedClose(err error) bool {
	return err != nil && websocket.IsUnexpectedCloseError(
		err, websocket.CloseNormalClosure, websocket.CloseGoingAway)
}

// ErrSockCongestion is returned when too many goroutines are already
// waiting to read or write a given websocket.
var ErrSockCongestion = errors.New("fastview: websocket operation congested")

// websock serializes concurrent reads and writes on one underlying
// connection, since gorilla/websocket permits at most one of each at a time.
type websock struct {
	readSem  chan struct{}
	writeSem chan struct{}
	conn     *websocket.Conn
}

func newWebsock(conn *websocket.Conn) *websock {
	return &websock{
		readSem:  make(chan struct{}, 1),
		writeSem: make(chan struct{}, 1),
		conn:     conn,
	}
}

// Conn returns the underlying connection for non-concurrent setup only
// (e.g. registering handlers before Sync starts).
func (s *websock) Conn() *websocket.Conn { return s.conn }

// Close sends a close frame and tears the connection down after a grace
// period, once no reader or writer remains active.
func (s *websock) Close() {
	s.readSem <- struct{}{}
	s.writeSem <- struct{}{}
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	time.Sleep(closeGracePeriod)
	s.conn.Close()
}

func (s *websock) Read(ctx context.Context, readFn func(*websocket.Conn) error) error {
	select {
	case <-ctx.Done():
		return nil
	case s.readSem <- struct{}{}:
		defer func() { <-s.readSem }()
		return readFn(s.conn)
	case <-time.After(readDeadline):
		return ErrSockCongestion
	}
}

func (s *websock) Write(ctx context.Context, writeFn func(*websocket.Conn) error) error {
	select {
	case <-ctx.Done():
		return nil
	case s.writeSem <- struct{}{}:
		defer func() { <-s.writeSem }()
		return writeFn(s.conn)
	case <-time.After(writeDeadline):
		return ErrSockCongestion
	}
}
