// ABOUTME: Counter is the demo app core driven through bridge ports: keys change a number, ticks spin a spinner
// ABOUTME: Update is pure and View renders with lipgloss; Run wires both to the input, timer, resize, and exit ports

package counter

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/mauromedda/termport/pkg/bridge"
	"github.com/mauromedda/termport/pkg/tui/key"
	"github.com/mauromedda/termport/pkg/tui/terminal"
)

const (
	enterScreen = "\x1b[?1049h\x1b[?25l"
	leaveScreen = "\x1b[?25h\x1b[?1049l"
	clearScreen = "\x1b[H\x1b[2J"

	// ticksPerFrame slows the spinner to about 10 Hz at 60 ticks per second.
	ticksPerFrame = 6
	maxKeyLabel   = 24
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const helpText = "up/+/k increment · down/-/j decrement · r reset · q quit · ctrl+d exit with count"

var (
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("6")).
			Padding(0, 2)
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5"))
	countStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// Counter holds the demo state. It is owned by the goroutine running Run.
type Counter struct {
	count   int
	lastKey string
	ticks   uint64
	size    terminal.Size
}

// New returns a Counter at zero.
func New() *Counter {
	return &Counter{lastKey: "none"}
}

// Count returns the current value.
func (c *Counter) Count() int {
	return c.count
}

// Update applies one key. When quit is true the app should exit with code.
func (c *Counter) Update(k key.Key) (code int, quit bool) {
	if k.Type != key.KeyPaste && k.Type != key.KeyMouse && k.Type != key.KeyReport {
		c.lastKey = runewidth.Truncate(k.String(), maxKeyLabel, "…")
	}

	switch {
	case k == key.CtrlC, k.Type == key.KeyEscape, isRune(k, 'q'):
		return 0, true
	case k == key.CtrlD:
		return ExitCode(c.count), true
	case k.Type == key.KeyUp, isRune(k, '+'), isRune(k, 'k'):
		c.count++
	case k.Type == key.KeyDown, isRune(k, '-'), isRune(k, 'j'):
		c.count--
	case isRune(k, 'r'):
		c.count = 0
	}
	return 0, false
}

// Tick advances the spinner and reports whether its frame changed.
func (c *Counter) Tick() bool {
	c.ticks++
	return c.ticks%ticksPerFrame == 0
}

// Resize records a new terminal size.
func (c *Counter) Resize(sz terminal.Size) {
	c.size = sz
}

// View renders the counter box, fitted to the terminal width.
func (c *Counter) View() string {
	inner := c.size.Width - 8 // border and padding
	if inner < 10 {
		inner = 10
	}
	spinner := spinnerFrames[(c.ticks/ticksPerFrame)%uint64(len(spinnerFrames))]

	lines := []string{
		titleStyle.Render("termport counter"),
		"",
		"count: " + countStyle.Render(fmt.Sprintf("%d", c.count)),
		"",
		fmt.Sprintf("%s last key: %s", spinner, c.lastKey),
		dimStyle.Render(fmt.Sprintf("terminal: %dx%d", c.size.Width, c.size.Height)),
		dimStyle.Render(runewidth.Truncate(helpText, inner, "…")),
	}
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// Run drives the counter until the user quits, input ends, or ctx is done.
func (c *Counter) Run(ctx context.Context, ports *bridge.Ports) error {
	c.size = ports.Size()
	ports.WriteString(enterScreen)
	c.draw(ports)

	for {
		select {
		case <-ctx.Done():
			ports.WriteString(leaveScreen)
			return nil

		case ev, ok := <-ports.Input():
			if !ok {
				ports.WriteString(leaveScreen)
				return nil
			}
			code, quit := c.Update(key.Parse(ev.Data))
			if quit {
				ports.WriteString(leaveScreen)
				ports.Exit(code)
				return nil
			}
			c.draw(ports)

		case <-ports.Timer():
			if c.Tick() {
				c.draw(ports)
			}

		case sz := <-ports.Resize():
			c.Resize(sz)
			c.draw(ports)
		}
	}
}

func (c *Counter) draw(ports *bridge.Ports) {
	// Raw mode disables output post-processing, so lines need explicit CRs.
	ports.WriteString(clearScreen + strings.ReplaceAll(c.View(), "\n", "\r\n"))
}

// ExitCode clamps a count into the 0..255 range a process can return.
func ExitCode(count int) int {
	return max(0, min(count, 255))
}

func isRune(k key.Key, r rune) bool {
	return k.Type == key.KeyRune && k.Rune == r && !k.Ctrl && !k.Alt
}
