package dispatcher

import (
	"sync"
	"time"
)

// Handler is one installed change handler. Its debounce state (timer,
// pending path and generation) is private to it, so a replaced handler's
// timer can never fire into the new configuration.
type Handler struct {
	d        *Dispatcher
	debounce time.Duration
	limit    bool

	mu      sync.Mutex
	timer   *time.Timer
	pending string
	gen     uint64
	stopped bool
}

func newHandler(d *Dispatcher, cfg Config) *Handler {
	return &Handler{d: d, debounce: cfg.Debounce, limit: cfg.LimitProcessing}
}

// HandleChange implements ChangeHandler.
func (h *Handler) HandleChange(path string) {
	if h.debounce <= 0 {
		h.mu.Lock()
		stopped := h.stopped
		h.mu.Unlock()
		if !stopped {
			h.d.start(path, h.limit)
		}
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		return
	}
	h.gen++
	gen := h.gen
	h.pending = path
	if h.timer != nil {
		h.timer.Stop()
	}
	h.timer = time.AfterFunc(h.debounce, func() { h.flush(gen) })
}

// Pending returns the path waiting for the debounce window, if any.
func (h *Handler) Pending() (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pending, h.timer != nil
}

func (h *Handler) flush(gen uint64) {
	h.mu.Lock()
	if h.stopped || gen != h.gen {
		h.mu.Unlock()
		return
	}
	path := h.pending
	h.pending = ""
	h.timer = nil
	h.mu.Unlock()

	h.d.start(path, h.limit)
}

func (h *Handler) stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stopped = true
	h.gen++
	h.pending = ""
	if h.timer != nil {
		h.timer.Stop()
		h.timer = nil
	}
}
