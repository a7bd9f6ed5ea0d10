// Package progress provides enrich.Notifier implementations for the CLI.
package progress

import (
	"sync"

	"github.com/pterm/pterm"

	"github.com/matsen/citegraph/internal/enrich"
)

// Terminal renders progress as a pterm spinner and asks for confirmation
// interactively.
type Terminal struct {
	mu        sync.Mutex
	spinner   *pterm.SpinnerPrinter
	assumeYes bool
}

// NewTerminal creates a Terminal notifier. With assumeYes the confirmation
// prompt is shown but answered automatically.
func NewTerminal(assumeYes bool) *Terminal {
	return &Terminal{assumeYes: assumeYes}
}

// Update starts or advances the spinner. Error and done statuses end it.
func (t *Terminal) Update(status enrich.Status, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch status {
	case enrich.StatusLoading:
		if t.spinner != nil {
			t.spinner.UpdateText(message)
			return
		}
		spinner, err := pterm.DefaultSpinner.
			WithStyle(pterm.NewStyle(pterm.FgCyan)).
			WithRemoveWhenDone(false).
			Start(message)
		if err != nil {
			pterm.Info.Println(message)
			return
		}
		t.spinner = spinner
	case enrich.StatusError:
		if t.spinner != nil {
			t.spinner.Fail(message)
			t.spinner = nil
			return
		}
		pterm.Error.Println(message)
	case enrich.StatusDone:
		if t.spinner != nil {
			t.spinner.Success(message)
			t.spinner = nil
			return
		}
		pterm.Success.Println(message)
	}
}

// Alert shows a warning.
func (t *Terminal) Alert(title, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopLocked()
	pterm.Warning.WithPrefix(pterm.Prefix{Text: title, Style: pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)}).Println(message)
}

// Confirm pauses the spinner and asks a yes/no question. Any prompt error
// counts as a decline.
func (t *Terminal) Confirm(title, message string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopLocked()
	pterm.DefaultSection.WithLevel(2).Println(title)
	if t.assumeYes {
		pterm.Info.Println(message)
		return true
	}

	ok, err := pterm.DefaultInteractiveConfirm.
		WithDefaultValue(false).
		Show(message)
	if err != nil {
		return false
	}
	return ok
}

// Close stops a running spinner.
func (t *Terminal) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

func (t *Terminal) stopLocked() {
	if t.spinner == nil {
		return
	}
	_ = t.spinner.Stop()
	t.spinner = nil
}
