package trace

import (
	"bufio"
	"io"
	"sync"
)

// StreamTracer writes each event as it is emitted. Output is buffered;
// Flush or Close push it to the underlying writer.
type StreamTracer struct {
	mu     sync.Mutex
	out    io.Writer
	bw     *bufio.Writer
	level  Level
	format Format
	err    error // first write error; later events are discarded
}

func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	return &StreamTracer{out: w, bw: bufio.NewWriter(w), level: level, format: format}
}

func (t *StreamTracer) Emit(ev *Event) {
	if ev == nil || !t.level.ShouldEmit(ev.Scope) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return
	}
	ev.Seq = nextSeq()
	if _, err := t.bw.Write(FormatEvent(ev, t.format)); err != nil {
		t.err = err
	}
}

// Flush reports the first write error, if any.
func (t *StreamTracer) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return t.err
	}
	t.err = t.bw.Flush()
	return t.err
}

func (t *StreamTracer) Close() error {
	ferr := t.Flush()
	if c, ok := t.out.(io.Closer); ok {
		if err := c.Close(); err != nil && ferr == nil {
			return err
		}
	}
	return ferr
}

func (t *StreamTracer) Level() Level  { return t.level }
func (t *StreamTracer) Enabled() bool { return t.level > LevelOff }
