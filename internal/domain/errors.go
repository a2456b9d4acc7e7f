package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrScreenNotFound indicates the screen content could not be loaded.
	ErrScreenNotFound = errors.New("screen not found")
	// ErrSessionNotFound is returned when a play session has not been entered.
	ErrSessionNotFound = errors.New("play session not found")
	// ErrInvalidScreen flags structurally malformed screen content at the
	// ingestion boundary.
	ErrInvalidScreen = errors.New("invalid screen content")
	// ErrUnknownContentType flags an unrecognized type tag at validation time.
	ErrUnknownContentType = errors.New("unknown content type")
	// ErrScreenCompleted is returned for actions applied after a screen
	// reached its terminal state.
	ErrScreenCompleted = errors.New("screen already completed")
	// ErrNoButton is returned for a button press on a screen without one,
	// or before the button became eligible.
	ErrNoButton = errors.New("no button available")
	// ErrNoSelection is returned for a select action on a screen without a
	// selection item.
	ErrNoSelection = errors.New("no selection on screen")
	// ErrNoPendingPopup is returned for a popup choice when no gate popup
	// is waiting.
	ErrNoPendingPopup = errors.New("no pending loading popup")
)

// RequiredInputError blocks button-driven advancement while a required
// input is empty. Entered state is never discarded by this condition.
type RequiredInputError struct {
	Key string
}

func (e *RequiredInputError) Error() string {
	return fmt.Sprintf("required input %q is empty", e.Key)
}
