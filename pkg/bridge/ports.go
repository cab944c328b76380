// ABOUTME: Ports is the app core's only view of the host: input, timer, resize, output, exit.
// ABOUTME: Every method is safe from any goroutine and none of them block on the terminal.

package bridge

import (
	"context"
	"sync"

	"github.com/mauromedda/termport/pkg/tui/frame"
	"github.com/mauromedda/termport/pkg/tui/input"
	"github.com/mauromedda/termport/pkg/tui/output"
	"github.com/mauromedda/termport/pkg/tui/terminal"
)

// App is a pluggable application core. Run should return once ctx is done.
// Returning nil without calling Exit ends the run with code 0; returning an
// error or panicking ends it with code 1.
type App interface {
	Run(ctx context.Context, ports *Ports) error
}

// AppFunc adapts a function to App.
type AppFunc func(ctx context.Context, ports *Ports) error

// Run calls f(ctx, ports).
func (f AppFunc) Run(ctx context.Context, ports *Ports) error {
	return f(ctx, ports)
}

// Ports connects an App to a running Bridge.
type Ports struct {
	input  chan input.Event
	timer  chan frame.Tick
	resize chan terminal.Size
	out    *output.Writer
	term   terminal.Terminal
	exit   func(exitRequest)

	sizeMu   sync.Mutex
	lastSize terminal.Size
}

// Input delivers input events in byte order. It is closed once the input
// stream ends; the run then ends with code 0 when the app returns, or after
// the drain timeout, unless the app requested another exit first.
func (p *Ports) Input() <-chan input.Event {
	return p.input
}

// Timer delivers animation ticks. The next tick is not scheduled until the
// current one has been received. Never closed; nothing arrives when the
// timer is disabled.
func (p *Ports) Timer() <-chan frame.Tick {
	return p.timer
}

// Resize delivers the latest terminal size after a resize. Older sizes not
// yet received are replaced.
func (p *Ports) Resize() <-chan terminal.Size {
	return p.resize
}

// Write queues p for the terminal and returns immediately. Output appears in
// call order. After a write failure or once draining has finished, data is
// dropped.
func (p *Ports) Write(b []byte) {
	_, _ = p.out.Write(b)
}

// WriteString is Write for strings.
func (p *Ports) WriteString(s string) {
	_, _ = p.out.WriteString(s)
}

// Exit asks the bridge to terminate with code. Only the first request of a
// run takes effect; Exit returns immediately either way.
func (p *Ports) Exit(code int) {
	p.exit(exitRequest{code: code, reason: "app exit"})
}

// Size returns the current terminal size, or the last known one when the
// terminal cannot be queried.
func (p *Ports) Size() terminal.Size {
	p.sizeMu.Lock()
	defer p.sizeMu.Unlock()

	if w, h, err := p.term.Size(); err == nil && w > 0 && h > 0 {
		p.lastSize = terminal.Size{Width: w, Height: h}
	}
	return p.lastSize
}

// publishResize replaces any undelivered size with sz.
func (p *Ports) publishResize(sz terminal.Size) {
	p.sizeMu.Lock()
	p.lastSize = sz
	p.sizeMu.Unlock()

	for {
		select {
		case p.resize <- sz:
			return
		default:
		}
		select {
		case <-p.resize:
		default:
		}
	}
}
