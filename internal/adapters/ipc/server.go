package ipc

import (
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"

	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"

	"github.com/remake-build/remake/internal/core/domain"
	"github.com/remake-build/remake/internal/core/ports"
)

// Listener accepts sub-requests from running scripts. On UNIX-like
// systems it binds a socket file inside a fresh temporary directory; on
// Windows it binds a loopback TCP port and advertises the port number.
type Listener struct {
	ln   net.Listener
	addr string
	dir  string
	log  ports.Logger

	reqs     chan ports.BuildRequest
	done     chan struct{}
	handlers errgroup.Group

	closeOnce sync.Once
	closeErr  error
}

// Listen binds the request socket and starts accepting.
func Listen(log ports.Logger) (*Listener, error) {
	l := &Listener{
		log:  log,
		reqs: make(chan ports.BuildRequest),
		done: make(chan struct{}),
	}
	if runtime.GOOS == "windows" {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return nil, zerr.Wrap(err, domain.ErrListenFailed.Error())
		}
		l.ln = ln
		l.addr = strconv.Itoa(ln.Addr().(*net.TCPAddr).Port)
	} else {
		dir, err := os.MkdirTemp("", "remake-")
		if err != nil {
			return nil, zerr.Wrap(err, domain.ErrListenFailed.Error())
		}
		path := filepath.Join(dir, "sock")
		ln, err := net.Listen("unix", path)
		if err != nil {
			_ = os.RemoveAll(dir)
			return nil, zerr.Wrap(err, domain.ErrListenFailed.Error())
		}
		l.ln = ln
		l.addr = path
		l.dir = dir
	}
	l.log.Debug("listening for sub-requests", "addr", l.addr)
	go l.accept()
	return l, nil
}

// Addr returns the address children reach the server under.
func (l *Listener) Addr() string {
	return l.addr
}

// Requests returns the stream of decoded requests. The channel is closed
// once the listener has shut down and every in-flight connection handler
// has finished.
func (l *Listener) Requests() <-chan ports.BuildRequest {
	return l.reqs
}

// Close stops accepting, unblocks connection handlers, and removes the
// socket. Connections already handed to the coordinator keep their Reply
// callbacks working until the process exits.
func (l *Listener) Close() error {
	l.closeOnce.Do(func() {
		close(l.done)
		l.closeErr = l.ln.Close()
		if l.dir != "" {
			_ = os.RemoveAll(l.dir)
		}
	})
	return l.closeErr
}

func (l *Listener) accept() {
	defer func() {
		_ = l.handlers.Wait()
		close(l.reqs)
	}()
	for {
		conn, err := l.ln.Accept()
		if err != nil {
			return
		}
		l.handlers.Go(func() error {
			l.handle(conn)
			return nil
		})
	}
}

func (l *Listener) handle(conn net.Conn) {
	jobID, targets, err := readRequest(conn)
	if err != nil {
		l.log.Warn("ill-formed client message", "error", err.Error())
		_ = conn.Close()
		return
	}
	var once sync.Once
	req := ports.BuildRequest{
		JobID:   jobID,
		Targets: targets,
		Reply: func(ok bool) {
			once.Do(func() {
				status := []byte{0}
				if ok {
					status[0] = 1
				}
				_, _ = conn.Write(status)
				_ = conn.Close()
			})
		},
	}
	select {
	case l.reqs <- req:
	case <-l.done:
		_ = conn.Close()
	}
}
