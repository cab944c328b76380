// ABOUTME: sync.Pool of bytes.Buffer shared by the input decoder and the output writer
// ABOUTME: Oversized buffers are dropped instead of pooled so one large paste does not pin memory

package pool

import (
	"bytes"
	"sync"
)

// maxPooledCap is the largest buffer capacity returned to the pool.
const maxPooledCap = 64 << 10

var bytesBufferPool = sync.Pool{
	New: func() any {
		return new(bytes.Buffer)
	},
}

// GetBytesBuffer returns an empty bytes.Buffer from the pool.
func GetBytesBuffer() *bytes.Buffer {
	buf := bytesBufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

// PutBytesBuffer returns buf to the pool. The caller must not use buf afterwards.
func PutBytesBuffer(buf *bytes.Buffer) {
	if buf == nil || buf.Cap() > maxPooledCap {
		return
	}
	buf.Reset()
	bytesBufferPool.Put(buf)
}
