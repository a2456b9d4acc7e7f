package screen

import "time"

// Event is one discrete user action (or timer tick) applied to a player.
// State transitions happen only through Reduce; there are no callback side
// channels.
type Event interface {
	isEvent()
}

// SelectOption picks or toggles an option. With InBranch false it always
// targets the screen selection of the original content, even while a branch
// is active; that is what lets a changed answer clear the branch. InBranch
// true targets the first selection of the active conditional screen.
type SelectOption struct {
	OptionID string
	InBranch bool
}

// EditInput stores one input value under its response key.
type EditInput struct {
	Key      string
	Value    string
	InBranch bool
}

// PressButton activates the trailing button of whichever content is
// currently rendered (branch content when a branch is active).
type PressButton struct{}

// ChoosePopupOption resolves the pending loading popup so progress resumes.
type ChoosePopupOption struct {
	OptionID string
}

// AdvanceGates is the periodic timer tick feeding gate progress. It is the
// only autonomous event source; everything else is user-triggered.
type AdvanceGates struct {
	Elapsed time.Duration
}

func (SelectOption) isEvent()      {}
func (EditInput) isEvent()         {}
func (PressButton) isEvent()       {}
func (ChoosePopupOption) isEvent() {}
func (AdvanceGates) isEvent()      {}
