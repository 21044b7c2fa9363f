package brand

import (
	cryptoRand "crypto/rand"
	"io"
	mathRand "math/rand"
	"sync"
)

// brand - bindable-random - the process-wide random source used for all key
// generation. Tests swap it for a deterministic reader to pin golden vectors.

var (
	mu     sync.Mutex
	source io.Reader = cryptoRand.Reader
)

// https://github.com/dustin/randbo
type randbo struct {
	mathRand.Source
}

// NewFrom creates a reader from your own rand.Source
func NewFrom(src mathRand.Source) io.Reader {
	return &randbo{src}
}

// Read satisfies io.Reader
func (r *randbo) Read(p []byte) (n int, err error) {
	todo := len(p)
	offset := 0
	for {
		val := int64(r.Int63())
		for i := 0; i < 8; i++ {
			p[offset] = byte(val)
			todo--
			if todo == 0 {
				return len(p), nil
			}
			offset++
			val >>= 8
		}
	}
}

// SetReader installs r as the process random source and returns a restore
// function. Only tests should call this.
func SetReader(r io.Reader) func() {
	mu.Lock()
	defer mu.Unlock()
	prev := source
	source = r
	return func() {
		mu.Lock()
		defer mu.Unlock()
		source = prev
	}
}

func Read(b []byte) (n int, err error) {
	return io.ReadFull(Reader(), b)
}

func Reader() io.Reader {
	mu.Lock()
	defer mu.Unlock()
	return source
}
