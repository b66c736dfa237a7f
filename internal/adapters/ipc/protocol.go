// Package ipc carries build requests between running scripts and the
// coordinating server over a local socket.
package ipc

import (
	"bufio"
	"encoding/binary"
	"io"

	"go.trai.ch/zerr"

	"github.com/remake-build/remake/internal/core/domain"
)

// Wire format: 4 bytes little-endian signed job id, zero or more
// NUL-terminated target names, then one empty name as terminator. The
// reply is a single byte, 1 for success.

func writeRequest(w io.Writer, jobID int, targets []string) error {
	size := 5
	for _, t := range targets {
		size += len(t) + 1
	}
	buf := make([]byte, 4, size)
	binary.LittleEndian.PutUint32(buf, uint32(int32(jobID)))
	for _, t := range targets {
		buf = append(buf, t...)
		buf = append(buf, 0)
	}
	buf = append(buf, 0)
	if _, err := w.Write(buf); err != nil {
		return zerr.Wrap(err, domain.ErrRequestFailed.Error())
	}
	return nil
}

func readRequest(r io.Reader) (int, []string, error) {
	in := bufio.NewReader(r)
	var head [4]byte
	if _, err := io.ReadFull(in, head[:]); err != nil {
		return 0, nil, zerr.Wrap(err, "truncated request header")
	}
	jobID := int(int32(binary.LittleEndian.Uint32(head[:])))
	var targets []string
	for {
		name, err := in.ReadString(0)
		if err != nil {
			return 0, nil, zerr.Wrap(err, "truncated request body")
		}
		name = name[:len(name)-1]
		if name == "" {
			return jobID, targets, nil
		}
		targets = append(targets, name)
	}
}
