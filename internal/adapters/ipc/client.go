package ipc

import (
	"context"
	"io"
	"net"
	"runtime"

	"go.trai.ch/zerr"

	"github.com/remake-build/remake/internal/core/domain"
	"github.com/remake-build/remake/internal/core/ports"
)

// Client delivers one build request to a coordinating server and waits
// for the verdict byte.
type Client struct {
	log ports.Logger
}

// NewClient returns a requester.
func NewClient(log ports.Logger) *Client {
	return &Client{log: log}
}

// Request connects to addr, sends jobID and targets, and blocks until the
// server replies. The context bounds the dial and, when it carries a
// deadline, the whole exchange.
func (c *Client) Request(ctx context.Context, addr string, jobID int, targets []string) (bool, error) {
	network, address := dialSpec(addr)
	var d net.Dialer
	conn, err := d.DialContext(ctx, network, address)
	if err != nil {
		return false, zerr.With(zerr.Wrap(err, domain.ErrRequestFailed.Error()), "addr", addr)
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	c.log.Debug("requesting targets", "addr", addr, "job", jobID, "targets", len(targets))
	if err := writeRequest(conn, jobID, targets); err != nil {
		return false, err
	}
	var reply [1]byte
	if _, err := io.ReadFull(conn, reply[:]); err != nil {
		return false, zerr.Wrap(err, domain.ErrRequestFailed.Error())
	}
	return reply[0] != 0, nil
}

func dialSpec(addr string) (string, string) {
	if runtime.GOOS == "windows" {
		return "tcp", net.JoinHostPort("127.0.0.1", addr)
	}
	return "unix", addr
}
