package corsair

import (
	"sync"
)

// indexBuf is a pooled int64 slice used as scratch for gather index
// resolution. Callers must release() it once the indices have been
// consumed; take and appendTakeRow both copy, so a buffer never
// outlives the operation that borrowed it.
type indexBuf struct {
	data []int64
	pool *sync.Pool
}

// release returns the buffer to its pool for reuse
func (b *indexBuf) release() {
	if b.pool != nil && b.data != nil {
		b.pool.Put(b)
	}
}

// Pool sizes - we use power-of-2 buckets for efficiency
var (
	indexPools [32]*sync.Pool // pools for sizes 2^0 to 2^31
	poolInit   sync.Once
)

func initPools() {
	poolInit.Do(func() {
		for i := range indexPools {
			size := 1 << i
			indexPools[i] = &sync.Pool{
				New: func() interface{} {
					return &indexBuf{
						data: make([]int64, size),
					}
				},
			}
		}
	})
}

// getBucket returns the pool bucket index for a given size
func getBucket(size int) int {
	if size <= 0 {
		return 0
	}
	// Find the smallest power of 2 >= size
	bucket := 0
	n := size - 1
	for n > 0 {
		n >>= 1
		bucket++
	}
	if bucket >= 32 {
		bucket = 31
	}
	return bucket
}

// getIndexBuf gets an index buffer from the pool with at least 'size' capacity
func getIndexBuf(size int) *indexBuf {
	initPools()
	bucket := getBucket(size)
	pool := indexPools[bucket]
	buf := pool.Get().(*indexBuf)
	buf.pool = pool

	// Ensure correct size (pool may have larger capacity)
	poolSize := 1 << bucket
	if len(buf.data) != size {
		buf.data = buf.data[:size]
	}
	// If we need more than pool size, allocate new
	if size > poolSize {
		buf.data = make([]int64, size)
	}

	return buf
}
