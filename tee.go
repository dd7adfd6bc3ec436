package fetch

import (
	"io"
	"sync"
)

// teeBroadcast is a pull-based broadcast adapter for cloning a
// pull-based stream source into two independent consumers: it buffers chunks
// consumed by the faster side until the slower side reads them,
// rather than requiring both sides to be read in lockstep like
// io.TeeReader does.
type teeBroadcast struct {
	mu      sync.Mutex
	src     io.Reader
	bufA    []byte
	bufB    []byte
	err     error
	errSeen [2]bool
	closed  [2]bool
}

func newTeeBroadcast(src io.Reader) *teeBroadcast {
	return &teeBroadcast{src: src}
}

func (t *teeBroadcast) branchA() io.Reader { return &teeBranch{bc: t, idx: 0} }
func (t *teeBroadcast) branchB() io.Reader { return &teeBranch{bc: t, idx: 1} }

func (t *teeBroadcast) read(idx int, p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	own, other := &t.bufA, &t.bufB
	if idx == 1 {
		own, other = &t.bufB, &t.bufA
	}

	if len(*own) > 0 {
		n := copy(p, *own)
		*own = (*own)[n:]
		return n, nil
	}
	if t.err != nil {
		t.errSeen[idx] = true
		return 0, t.err
	}

	buf := make([]byte, max(len(p), 4096))
	n, err := t.src.Read(buf)
	if n > 0 {
		*other = append(*other, buf[:n]...)
		take := n
		if take > len(p) {
			take = len(p)
		}
		copy(p, buf[:take])
		if take < n {
			// more than the caller asked for arrived in this chunk;
			// keep the surplus for this branch's own next read.
			*own = append(*own, buf[take:n]...)
		}
		if err != nil {
			t.err = err
		}
		return take, nil
	}
	if err != nil {
		t.err = err
		t.errSeen[idx] = true
		return 0, err
	}
	return 0, nil
}

// closeBranch marks one branch done; the shared source is released
// only once both branches have closed, since the slower consumer may
// still be draining buffered chunks.
func (t *teeBroadcast) closeBranch(idx int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed[idx] {
		return nil
	}
	t.closed[idx] = true
	if t.closed[0] && t.closed[1] {
		if c, ok := t.src.(io.Closer); ok {
			return c.Close()
		}
	}
	return nil
}

type teeBranch struct {
	bc  *teeBroadcast
	idx int
}

func (b *teeBranch) Read(p []byte) (int, error) {
	return b.bc.read(b.idx, p)
}

func (b *teeBranch) Close() error {
	return b.bc.closeBranch(b.idx)
}
