package pool

import (
	"io"
	"sync"
)

// Default sizing for pooled document buffers. Job data documents typically
// decompress to a few hundred KiB; buffers that grow past the threshold are
// dropped instead of returned so one pathological document cannot pin memory.
const (
	DocBufferDefaultSize  = 256 * 1024      // 256KiB
	DocBufferMaxThreshold = 8 * 1024 * 1024 // 8MiB
)

// ByteBuffer is a reusable byte buffer for loading document bytes.
//
// The underlying slice is exported so callers can hand the accumulated bytes
// to the tokenizer without copying. The buffer must not be returned to a pool
// while any such slice is still in use.
type ByteBuffer struct {
	// B is the underlying byte slice.
	B []byte
}

// NewByteBuffer creates a ByteBuffer with the given initial capacity.
func NewByteBuffer(capacity int) *ByteBuffer {
	return &ByteBuffer{
		B: make([]byte, 0, capacity),
	}
}

// Bytes returns the accumulated bytes. The slice aliases the buffer.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Len returns the number of accumulated bytes.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// Cap returns the capacity of the underlying slice.
func (bb *ByteBuffer) Cap() int {
	return cap(bb.B)
}

// Reset empties the buffer while keeping its allocation for reuse.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// Write appends data to the buffer, growing it as needed.
func (bb *ByteBuffer) Write(data []byte) (int, error) {
	bb.B = append(bb.B, data...)
	return len(data), nil
}

// ReadFrom reads r until EOF, appending everything read to the buffer.
// It lets io.Copy and decompressing readers fill the buffer directly.
func (bb *ByteBuffer) ReadFrom(r io.Reader) (int64, error) {
	var total int64
	for {
		if len(bb.B) == cap(bb.B) {
			bb.grow()
		}
		n, err := r.Read(bb.B[len(bb.B):cap(bb.B)])
		bb.B = bb.B[:len(bb.B)+n]
		total += int64(n)
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}

// grow extends the buffer capacity: doubling while small, +25% once it is
// large enough that doubling would overshoot typical document sizes.
func (bb *ByteBuffer) grow() {
	growBy := cap(bb.B)
	if growBy == 0 {
		growBy = DocBufferDefaultSize
	} else if growBy > 4*DocBufferDefaultSize {
		growBy = cap(bb.B) / 4
	}

	next := make([]byte, len(bb.B), cap(bb.B)+growBy)
	copy(next, bb.B)
	bb.B = next
}

// ByteBufferPool pools ByteBuffers to minimize allocations across scans.
//
// Buffers whose capacity exceeds maxThreshold are discarded on Put so the
// pool converges on buffers sized for typical documents.
type ByteBufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewByteBufferPool creates a pool handing out buffers of the given default
// size. A maxThreshold of 0 disables the discard limit.
func NewByteBufferPool(defaultSize int, maxThreshold int) *ByteBufferPool {
	return &ByteBufferPool{
		pool: sync.Pool{
			New: func() any {
				return NewByteBuffer(defaultSize)
			},
		},
		maxThreshold: maxThreshold,
	}
}

// Get retrieves an empty ByteBuffer from the pool.
func (bbp *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := bbp.pool.Get().(*ByteBuffer)
	return bb
}

// Put returns a ByteBuffer to the pool for reuse.
func (bbp *ByteBufferPool) Put(bb *ByteBuffer) {
	if bb == nil {
		return
	}

	if bbp.maxThreshold > 0 && cap(bb.B) > bbp.maxThreshold {
		return
	}

	bb.Reset()
	bbp.pool.Put(bb)
}

var docDefaultPool = NewByteBufferPool(DocBufferDefaultSize, DocBufferMaxThreshold)

// GetDocBuffer retrieves a ByteBuffer from the default document pool.
func GetDocBuffer() *ByteBuffer {
	return docDefaultPool.Get()
}

// PutDocBuffer returns a ByteBuffer to the default document pool.
func PutDocBuffer(bb *ByteBuffer) {
	docDefaultPool.Put(bb)
}
