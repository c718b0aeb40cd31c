package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	channerics "github.com/niceyeti/channerics/channels"
	"golang.org/x/sync/errgroup"

	"snakeevo/internal/trainer"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = time.Second
	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

var (
	pingPeriod = 2 * time.Second
	// Number of pings to tolerate losing before concluding the peer is gone.
	pongWait = pingPeriod * 4
)

var upgrader = websocket.Upgrader{}

// ErrPongDeadlineExceeded means the peer stopped answering pings
var ErrPongDeadlineExceeded = errors.New("client disconnect, pong deadline exceeded")

// client publishes snapshots to one websocket peer. Reads and writes are
// serialized separately since the connection allows one of each at a time.
type client struct {
	updates <-chan trainer.Snapshot
	ws      *websocket.Conn
	writeMu sync.Mutex
	rootCtx context.Context
}

func newClient(updates <-chan trainer.Snapshot, w http.ResponseWriter, r *http.Request) (*client, error) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}
	ws.SetReadLimit(maxMessageSize)

	return &client{
		updates: updates,
		ws:      ws,
		rootCtx: r.Context(),
	}, nil
}

// Sync runs the reader, the pinger and the publisher until one of them fails
// or the peer disconnects
func (cli *client) Sync() error {
	group, groupCtx := errgroup.WithContext(cli.rootCtx)

	group.Go(func() error {
		return cli.readMessages()
	})
	group.Go(func() error {
		return cli.pingPong(groupCtx)
	})
	group.Go(func() error {
		return cli.publish(groupCtx)
	})

	return group.Wait()
}

// Close sends a close frame and drops the connection
func (cli *client) Close() {
	_ = cli.write(func(ws *websocket.Conn) error {
		return ws.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait))
	})
	cli.ws.Close()
}

func (cli *client) write(fn func(*websocket.Conn) error) error {
	cli.writeMu.Lock()
	defer cli.writeMu.Unlock()
	return fn(cli.ws)
}

// readMessages discards client messages; it keeps the pong handler running.
// Read errors are permanent, and the connection is closed by the caller.
func (cli *client) readMessages() error {
	for {
		if _, _, err := cli.ws.ReadMessage(); err != nil {
			return err
		}
	}
}

// pingPong runs the liveness check. It requires readMessages to be running so
// the pong handler is called.
func (cli *client) pingPong(ctx context.Context) error {
	pong := make(chan struct{}, 1)
	cli.ws.SetPongHandler(func(_ string) error {
		select {
		case pong <- struct{}{}:
		default:
		}
		return nil
	})

	// the reader only returns once its deadline passes, whichever way we exit
	defer func() { _ = cli.ws.SetReadDeadline(time.Now()) }()

	pinger := channerics.NewTicker(ctx.Done(), pingPeriod)
	lastPong := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-pinger:
			if time.Since(lastPong) > pongWait {
				return ErrPongDeadlineExceeded
			}
			err := cli.write(func(ws *websocket.Conn) error {
				return ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			})
			if err != nil {
				return fmt.Errorf("ping failed: %w", err)
			}
		case <-pong:
			lastPong = time.Now()
		}
	}
}

func (cli *client) publish(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case snap := <-cli.updates:
			err := cli.write(func(ws *websocket.Conn) error {
				if err := ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
					return fmt.Errorf("failed to set deadline: %w", err)
				}
				return ws.WriteJSON(snap)
			})
			if err != nil {
				return fmt.Errorf("publish failed: %w", err)
			}
		}
	}
}

func isClosure(err error) bool {
	return err != nil && websocket.IsCloseError(
		err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway)
}
