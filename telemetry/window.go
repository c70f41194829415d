package telemetry

// positionWindow is a fixed-capacity ring buffer holding the most recent
// positions for one device. When full, pushing evicts the oldest entry.
type positionWindow struct {
	buf   []Vec3
	head  int
	count int
}

func newPositionWindow(capacity int) *positionWindow {
	return &positionWindow{
		buf: make([]Vec3, capacity),
	}
}

func (w *positionWindow) push(p Vec3) {
	w.buf[w.head] = p
	w.head = (w.head + 1) % len(w.buf)
	if w.count < len(w.buf) {
		w.count++
	}
}

func (w *positionWindow) len() int {
	return w.count
}

// snapshot returns the windowed positions ordered oldest first.
func (w *positionWindow) snapshot() []Vec3 {
	out := make([]Vec3, 0, w.count)
	start := w.head - w.count
	if start < 0 {
		start += len(w.buf)
	}
	for i := 0; i < w.count; i++ {
		out = append(out, w.buf[(start+i)%len(w.buf)])
	}
	return out
}

func (w *positionWindow) clear() {
	w.head = 0
	w.count = 0
}
