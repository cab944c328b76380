// ABOUTME: Pre-sets the lipgloss background so styling never queries the terminal
// ABOUTME: Import (with _) from any binary that renders with lipgloss while the bridge owns stdin

package termfix

import "github.com/charmbracelet/lipgloss"

func init() {
	// Without an explicit answer lipgloss asks the terminal for its
	// background colour (OSC 11) the first time an adaptive colour is
	// rendered. The reply arrives on stdin, where the input reader would
	// hand it to the app as ordinary key events.
	lipgloss.SetHasDarkBackground(true)
}
