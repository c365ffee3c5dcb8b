package views

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"
)

// StatusBar displays the backend target, key hints, and flash messages.
type StatusBar struct {
	*tview.TextView
	backend    string
	hints      []string
	loading    bool
	flash      string
	flashLevel string
}

// NewStatusBar creates the status bar.
func NewStatusBar() *StatusBar {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(tview.Styles.MoreContrastBackgroundColor)

	return &StatusBar{TextView: tv}
}

// SetBackend updates the backend URL display.
func (sb *StatusBar) SetBackend(url string) {
	sb.backend = url
	sb.render()
}

// SetHints updates the key hint list.
func (sb *StatusBar) SetHints(hints []string) {
	sb.hints = hints
	sb.render()
}

// SetLoading toggles the in-flight ask indicator.
func (sb *StatusBar) SetLoading(v bool) {
	sb.loading = v
	sb.render()
}

// SetFlash sets a transient message. Empty clears it.
func (sb *StatusBar) SetFlash(msg, level string) {
	sb.flash = msg
	sb.flashLevel = level
	sb.render()
}

func (sb *StatusBar) render() {
	sb.Clear()

	busy := " "
	if sb.loading {
		busy = "[green]~[-]"
	}

	line := fmt.Sprintf(" [::b]%s[-:-:-] %s | %s", sb.backend, busy, strings.Join(sb.hints, " "))
	if sb.flash != "" {
		color := "navajowhite"
		if sb.flashLevel == "error" {
			color = "orangered"
		}
		line += fmt.Sprintf(" | [%s]%s[-]", color, tview.Escape(sb.flash))
	}

	_, _ = fmt.Fprint(sb, line)
}
