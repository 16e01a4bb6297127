package console

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/merchkit/storeadmin/pkg/client"
	"github.com/spf13/cast"
)

// ErrSubmitInFlight is returned when a submit or delete starts while a
// previous one on the same form has not finished.
var ErrSubmitInFlight = errors.New("console: request already in flight")

// ToastError is the generic failure toast.
const ToastError = "Something went wrong."

// Status classifies a submit or delete attempt.
type Status int

const (
	StatusInvalid Status = iota // field validation failed, nothing sent
	StatusSaved
	StatusDeleted
	StatusFailed
)

// Toast is a notification the caller shows once, then discards.
type Toast struct {
	Level   string `json:"level"` // "success" or "error"
	Message string `json:"message"`
}

func successToast(msg string) Toast { return Toast{Level: "success", Message: msg} }
func errorToast(msg string) Toast   { return Toast{Level: "error", Message: msg} }

// Outcome tells the caller everything a finished attempt produced.
// The toast travels here instead of through shared notification state,
// so concurrent forms cannot clobber each other's messages.
type Outcome struct {
	Status      Status      `json:"status"`
	Toast       Toast       `json:"toast"`
	FieldErrors FieldErrors `json:"field_errors,omitempty"`
	Redirect    string      `json:"redirect,omitempty"`
	Refresh     bool        `json:"refresh"`
	CloseDialog bool        `json:"close_dialog"`
}

// API is the slice of the admin client the form needs.
type API interface {
	Create(ctx context.Context, storeID int64, resource string, payload Values) (Values, error)
	Update(ctx context.Context, storeID int64, resource string, id int64, payload Values) error
	Remove(ctx context.Context, storeID int64, resource string, id int64) error
}

// ClientAPI adapts the HTTP client to the form API.
func ClientAPI(c *client.Client) API { return clientAPI{c} }

type clientAPI struct {
	c *client.Client
}

func (a clientAPI) Create(ctx context.Context, storeID int64, resource string, payload Values) (Values, error) {
	return a.c.Create(ctx, storeID, resource, payload)
}

func (a clientAPI) Update(ctx context.Context, storeID int64, resource string, id int64, payload Values) error {
	return a.c.Update(ctx, storeID, resource, id, payload)
}

func (a clientAPI) Remove(ctx context.Context, storeID int64, resource string, id int64) error {
	return a.c.Remove(ctx, storeID, resource, id)
}

// Form drives one entity form instance. At most one submit or delete
// runs at a time; attempts started while busy fail fast with
// ErrSubmitInFlight and never reach the network.
type Form struct {
	Spec     FormSpec
	Mode     Mode
	StoreID  int64
	EntityID int64

	api  API
	mu   sync.Mutex
	busy bool
}

// NewForm builds a form for one resource instance. entityID is zero in
// create mode.
func NewForm(spec FormSpec, mode Mode, storeID, entityID int64, api API) *Form {
	return &Form{Spec: spec, Mode: mode, StoreID: storeID, EntityID: entityID, api: api}
}

// Busy reports whether a submit or delete is currently running.
func (f *Form) Busy() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.busy
}

func (f *Form) begin() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.busy {
		return false
	}
	f.busy = true
	return true
}

func (f *Form) end() {
	f.mu.Lock()
	f.busy = false
	f.mu.Unlock()
}

func (f *Form) listPath() string {
	if f.Spec.Resource.Name == ResourceStores.Name {
		return "/"
	}
	return fmt.Sprintf("/%d/%s", f.StoreID, f.Spec.Resource.Name)
}

// Submit validates values and saves them. Validation failures return
// StatusInvalid with field errors and skip the network entirely. The
// busy flag resets on every path.
func (f *Form) Submit(ctx context.Context, values Values) (Outcome, error) {
	if !f.begin() {
		return Outcome{}, ErrSubmitInFlight
	}
	defer f.end()

	if errs := Validate(f.Spec, values); !errs.Empty() {
		return Outcome{Status: StatusInvalid, FieldErrors: errs}, nil
	}

	r := f.Spec.Resource
	if f.Mode.IsEdit() {
		if err := f.api.Update(ctx, f.StoreID, r.Name, f.EntityID, values); err != nil {
			return failedOutcome(err), nil
		}
		out := Outcome{
			Status:   StatusSaved,
			Toast:    successToast(f.Mode.SuccessToast(r)),
			Redirect: f.listPath(),
			Refresh:  true,
		}
		if r.Name == ResourceStores.Name {
			// the settings page stays put after a rename
			out.Redirect = ""
		}
		return out, nil
	}

	created, err := f.api.Create(ctx, f.StoreID, r.Name, values)
	if err != nil {
		return failedOutcome(err), nil
	}
	out := Outcome{
		Status:   StatusSaved,
		Toast:    successToast(f.Mode.SuccessToast(r)),
		Redirect: f.listPath(),
		Refresh:  true,
	}
	if r.Name == ResourceStores.Name {
		if id := cast.ToInt64(created["id"]); id != 0 {
			out.Redirect = fmt.Sprintf("/%d", id)
		}
	}
	return out, nil
}

// Delete removes the entity behind the form. Whatever happens, the
// confirm dialog closes and the busy flag resets, so a failed delete
// leaves the form usable.
func (f *Form) Delete(ctx context.Context) (Outcome, error) {
	if !f.begin() {
		return Outcome{}, ErrSubmitInFlight
	}
	defer f.end()

	r := f.Spec.Resource
	if err := f.api.Remove(ctx, f.StoreID, r.Name, f.EntityID); err != nil {
		out := failedOutcome(err)
		out.CloseDialog = true
		return out, nil
	}
	return Outcome{
		Status:      StatusDeleted,
		Toast:       successToast(r.DeletedToast()),
		Redirect:    f.listPath(),
		Refresh:     true,
		CloseDialog: true,
	}, nil
}

// failedOutcome maps a client error to a toast. Dependency conflicts
// carry the server's guard message, everything else gets the generic
// failure toast.
func failedOutcome(err error) Outcome {
	var conflict *client.ConflictError
	if errors.As(err, &conflict) && conflict.Message != "" {
		return Outcome{Status: StatusFailed, Toast: errorToast(conflict.Message)}
	}
	return Outcome{Status: StatusFailed, Toast: errorToast(ToastError)}
}
