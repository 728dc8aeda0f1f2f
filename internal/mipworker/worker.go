// Package mipworker computes thin-slab axial MIPs off the UI context so
// slider interaction stays responsive. One worker serves one active
// volume; a volume switch re-initializes the worker and cancels
// everything in flight.
package mipworker

import (
	"errors"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/prateek-tiwarii/synpacs/internal/mpr"
	"github.com/prateek-tiwarii/synpacs/internal/volume"
)

var (
	// ErrNotInitialized is returned for compute requests before Init.
	ErrNotInitialized = errors.New("mip worker not initialized")
	// ErrCancelled resolves every request pending across a volume
	// switch or Close. Expected and recoverable.
	ErrCancelled = errors.New("mip request cancelled")
)

// InternalError wraps unexpected worker-side failures.
type InternalError struct {
	Message string
}

func (e *InternalError) Error() string { return "mip worker: " + e.Message }

// SliceResult is one computed slab MIP.
type SliceResult struct {
	Z            int
	SlabHalfSize int
	RequestID    uint64
	Pixels       []int16
}

// cacheCap bounds the per-(slice,slab) result cache.
const cacheCap = 200

func cacheKey(z, slab int) string { return fmt.Sprintf("%d_%d", z, slab) }

// Worker is the UI-side handle. All exported methods are safe to call
// from the UI context; the compute loop runs on its own goroutine.
type Worker struct {
	in   chan message
	quit chan struct{}

	mu       sync.Mutex
	cache    *lru.Cache[string, []int16]
	pending  map[uint64]*Future
	nextID   uint64
	gen      uint64
	ready    bool
	closed   bool
	slices   int
	onResult func(SliceResult)
}

type msgKind int

const (
	msgInit msgKind = iota
	msgSlice
	msgBatch
)

type message struct {
	kind msgKind
	gen  uint64

	// init
	vol     *volume.Volume
	readyCh chan struct{}

	// compute
	z    int
	slab int
	id   uint64

	// batch
	indices []int
}

// New starts the worker goroutine. onResult receives every streamed
// batch result; it may be nil when only single-slice futures are used.
func New(onResult func(SliceResult)) *Worker {
	w := &Worker{
		in:       make(chan message, 64),
		quit:     make(chan struct{}),
		pending:  make(map[uint64]*Future),
		onResult: onResult,
	}
	cache, err := lru.New[string, []int16](cacheCap)
	if err != nil {
		panic(err)
	}
	w.cache = cache
	go w.loop()
	return w
}

// Init hands a volume buffer to the worker and blocks until the worker
// replies ready. The buffer ownership moves to the worker: the caller
// must not write to data afterwards. Calling Init again is the volume
// switch: the cache is purged and every pending request is rejected
// with ErrCancelled before the new buffer is installed.
func (w *Worker) Init(cols, rows, slices int, data []int16) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrCancelled
	}
	w.gen++
	gen := w.gen
	w.cache.Purge()
	w.rejectPendingLocked(ErrCancelled)
	w.slices = slices
	w.ready = true
	w.mu.Unlock()

	vol := &volume.Volume{Cols: cols, Rows: rows, Slices: slices, Data: data}
	readyCh := make(chan struct{})
	w.in <- message{kind: msgInit, gen: gen, vol: vol, readyCh: readyCh}
	<-readyCh
	return nil
}

// ComputeSlice requests the slab MIP at z. Cache hits resolve the
// returned future immediately with the cached buffer; misses enqueue a
// compute.
func (w *Worker) ComputeSlice(z, slabHalfSize int) *Future {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return resolvedFuture(SliceResult{}, ErrCancelled)
	}
	if !w.ready {
		w.mu.Unlock()
		return resolvedFuture(SliceResult{}, ErrNotInitialized)
	}
	w.nextID++
	id := w.nextID
	if pixels, ok := w.cache.Get(cacheKey(z, slabHalfSize)); ok {
		w.mu.Unlock()
		return resolvedFuture(SliceResult{Z: z, SlabHalfSize: slabHalfSize, RequestID: id, Pixels: pixels}, nil)
	}
	f := newFuture()
	w.pending[id] = f
	gen := w.gen
	w.mu.Unlock()

	w.in <- message{kind: msgSlice, gen: gen, z: z, slab: slabHalfSize, id: id}
	return f
}

// ComputeBatch enqueues several slices fire-and-forget; results stream
// to the onResult callback in request order, interleaving with later
// single-slice replies.
func (w *Worker) ComputeBatch(indices []int, slabHalfSize int) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrCancelled
	}
	if !w.ready {
		w.mu.Unlock()
		return ErrNotInitialized
	}
	w.nextID++
	id := w.nextID
	gen := w.gen
	w.mu.Unlock()

	w.in <- message{kind: msgBatch, gen: gen, indices: append([]int(nil), indices...), slab: slabHalfSize, id: id}
	return nil
}

// Prefetch warms the cache around the cursor z0: for each distance d in
// [1, radius] it enqueues z0+d then z0-d (superior bias), skipping
// out-of-range and already-cached slices. One batch message carries the
// whole set.
func (w *Worker) Prefetch(z0, radius, slabHalfSize int) error {
	w.mu.Lock()
	if !w.ready {
		w.mu.Unlock()
		return ErrNotInitialized
	}
	var indices []int
	for d := 1; d <= radius; d++ {
		for _, z := range []int{z0 + d, z0 - d} {
			if z < 0 || z >= w.slices {
				continue
			}
			if w.cache.Contains(cacheKey(z, slabHalfSize)) {
				continue
			}
			indices = append(indices, z)
		}
	}
	w.mu.Unlock()

	if len(indices) == 0 {
		return nil
	}
	return w.ComputeBatch(indices, slabHalfSize)
}

// Close terminates the worker and fails any in-flight request with
// ErrCancelled.
func (w *Worker) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	w.gen++
	w.rejectPendingLocked(ErrCancelled)
	w.mu.Unlock()
	close(w.quit)
}

func (w *Worker) rejectPendingLocked(err error) {
	for id, f := range w.pending {
		f.resolve(SliceResult{}, err)
		delete(w.pending, id)
	}
}

// loop is the worker goroutine: it owns the transferred volume copy
// and replies in FIFO order within each request stream.
func (w *Worker) loop() {
	var vol *volume.Volume
	for {
		var msg message
		select {
		case <-w.quit:
			return
		case msg = <-w.in:
		}

		if stale := func() bool {
			w.mu.Lock()
			defer w.mu.Unlock()
			return msg.gen != w.gen
		}(); stale && msg.kind != msgInit {
			continue
		}

		switch msg.kind {
		case msgInit:
			vol = msg.vol
			close(msg.readyCh)

		case msgSlice:
			w.deliver(msg, w.compute(vol, msg.z, msg.slab))

		case msgBatch:
			for _, z := range msg.indices {
				m := msg
				m.z = z
				w.deliver(m, w.compute(vol, z, msg.slab))
			}
		}
	}
}

func (w *Worker) compute(vol *volume.Volume, z, slab int) []int16 {
	if vol == nil {
		return nil
	}
	return mpr.ExtractMIP(vol, mpr.Axial, float64(z), slab)
}

func (w *Worker) deliver(msg message, pixels []int16) {
	w.mu.Lock()
	if msg.gen != w.gen {
		w.mu.Unlock()
		return
	}

	res := SliceResult{Z: msg.z, SlabHalfSize: msg.slab, RequestID: msg.id}
	var err error
	if pixels == nil {
		err = &InternalError{Message: fmt.Sprintf("no volume for slice %d", msg.z)}
	} else {
		res.Pixels = pixels
		w.cache.Add(cacheKey(msg.z, msg.slab), pixels)
	}

	f, isPending := w.pending[msg.id]
	if isPending {
		delete(w.pending, msg.id)
	}
	cb := w.onResult
	w.mu.Unlock()

	if isPending {
		f.resolve(res, err)
		return
	}
	// Batch results stream to the subscriber.
	if cb != nil && err == nil {
		cb(res)
	}
}
