package console

import (
	"context"
	"errors"
	"sync"
)

// ErrConfirmInFlight is returned when Confirm is called on a closed
// dialog or while the action from this opening is still running.
var ErrConfirmInFlight = errors.New("console: confirm already in flight")

// ConfirmAction runs the destructive operation behind a dialog.
type ConfirmAction func(ctx context.Context) (Outcome, error)

// ConfirmDialog models the "Are you sure?" modal in front of deletes.
// Confirm runs the action at most once per opening.
type ConfirmDialog struct {
	Title       string
	Description string

	mu     sync.Mutex
	open   bool
	fired  bool
	action ConfirmAction
}

// NewConfirmDialog builds a closed dialog around action.
func NewConfirmDialog(action ConfirmAction) *ConfirmDialog {
	return &ConfirmDialog{
		Title:       "Are you sure?",
		Description: "This action cannot be undone.",
		action:      action,
	}
}

// Open shows the dialog and re-arms Confirm.
func (d *ConfirmDialog) Open() {
	d.mu.Lock()
	d.open = true
	d.fired = false
	d.mu.Unlock()
}

// Cancel hides the dialog without running the action.
func (d *ConfirmDialog) Cancel() {
	d.mu.Lock()
	d.open = false
	d.mu.Unlock()
}

// IsOpen reports whether the dialog is showing.
func (d *ConfirmDialog) IsOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open
}

// Confirm runs the action once per opening. A second call before the
// first finishes, or a call on a closed dialog, returns
// ErrConfirmInFlight without touching the action. When the action
// itself refuses to start (a busy form), the error propagates and the
// dialog re-arms so the user can retry. The dialog closes whenever the
// outcome asks for it.
func (d *ConfirmDialog) Confirm(ctx context.Context) (Outcome, error) {
	d.mu.Lock()
	if !d.open || d.fired {
		d.mu.Unlock()
		return Outcome{}, ErrConfirmInFlight
	}
	d.fired = true
	action := d.action
	d.mu.Unlock()

	out, err := action(ctx)
	if err != nil {
		d.mu.Lock()
		d.fired = false
		d.mu.Unlock()
		return Outcome{}, err
	}
	if out.CloseDialog {
		d.Cancel()
	}
	return out, nil
}
