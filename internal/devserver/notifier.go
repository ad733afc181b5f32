package devserver

import "sync"

// reloadHub fans out reload events to connected browsers. Each event
// carries the changed component paths joined by commas.
type reloadHub struct {
	mu      sync.RWMutex
	clients map[chan string]struct{}
}

func newReloadHub() *reloadHub {
	return &reloadHub{clients: make(map[chan string]struct{})}
}

// subscribe returns a channel that receives reload events. Callers must
// unsubscribe when done.
func (h *reloadHub) subscribe() chan string {
	ch := make(chan string, 1)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *reloadHub) unsubscribe(ch chan string) {
	h.mu.Lock()
	delete(h.clients, ch)
	h.mu.Unlock()
	close(ch)
}

// broadcast delivers event to every client without blocking. A client
// whose buffer is full already has a reload pending and skips this one.
func (h *reloadHub) broadcast(event string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.clients {
		select {
		case ch <- event:
		default:
		}
	}
}

func (h *reloadHub) count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
