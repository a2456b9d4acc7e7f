package screen

import (
	"funnel-player-service/internal/domain"
)

// PlayState is the per-screen lifecycle: Playing until every gate clears,
// Ready once the screen is fully revealed, Completed after the button fires
// or a radio pick auto-advances. Completed is terminal; moving to the next
// screen is the caller's job.
type PlayState string

const (
	StatePlaying   PlayState = "playing"
	StateReady     PlayState = "ready"
	StateCompleted PlayState = "completed"
)

// Player interprets one screen: it owns the per-play state (selection,
// inputs, gate progress, active branch) and turns user events into
// normalized ScreenResponse values. All transitions run through Reduce;
// the player itself is not safe for concurrent use, callers serialize.
type Player struct {
	main        *frame
	branch      *frame
	branchKey   string
	branchValue any
	completed   bool
}

// NewPlayer builds a fresh player over validated screen content. Per-play
// state always starts empty; re-entering a screen id means a new player.
func NewPlayer(content domain.ScreenContent) (*Player, error) {
	if content.Content == nil {
		return nil, domain.ErrInvalidScreen
	}
	return &Player{main: newFrame(content)}, nil
}

// State derives the lifecycle phase from the active frame.
func (p *Player) State() PlayState {
	if p.completed {
		return StateCompleted
	}
	if p.activeFrame().revealed() {
		return StateReady
	}
	return StatePlaying
}

// GatesPending reports whether the active frame still has an incomplete
// visible gate, i.e. whether timer ticks are still needed.
func (p *Player) GatesPending() bool {
	if p.completed {
		return false
	}
	_, _, _, ok := p.activeFrame().pendingGate()
	return ok
}

func (p *Player) activeFrame() *frame {
	if p.branch != nil {
		return p.branch
	}
	return p.main
}

// Reduce applies one event and returns the outward response it produced, if
// any. Plain timer ticks that complete nothing return (nil, nil).
func (p *Player) Reduce(ev Event) (*domain.ScreenResponse, error) {
	if p.completed {
		if _, tick := ev.(AdvanceGates); tick {
			return nil, nil
		}
		return nil, domain.ErrScreenCompleted
	}

	switch e := ev.(type) {
	case SelectOption:
		return p.selectOption(e)
	case EditInput:
		return p.editInput(e)
	case PressButton:
		return p.pressButton()
	case ChoosePopupOption:
		return p.choosePopup(e)
	case AdvanceGates:
		return p.advanceGates(e)
	}
	return nil, nil
}

func (p *Player) selectOption(e SelectOption) (*domain.ScreenResponse, error) {
	if e.InBranch {
		if p.branch == nil {
			return nil, domain.ErrNoSelection
		}
		sel := p.branch.selection()
		if sel == nil {
			return nil, domain.ErrNoSelection
		}
		p.branch.selected = Select(sel.Mode, p.branch.selected, e.OptionID)
		return &domain.ScreenResponse{
			ResponseKey:    p.respKey(sel.ResponseKey),
			Selected:       copyIDs(p.branch.selected),
			Branch:         p.branchValue,
			IsIntermediate: true,
		}, nil
	}

	sel := p.main.selection()
	if sel == nil {
		return nil, domain.ErrNoSelection
	}
	p.main.selected = Select(sel.Mode, p.main.selected, e.OptionID)

	if len(sel.ConditionalScreens) > 0 {
		if err := p.resolveBranch(sel); err != nil {
			return nil, err
		}
	}

	resp := &domain.ScreenResponse{
		ResponseKey:    p.respKey(sel.ResponseKey),
		Selected:       copyIDs(p.main.selected),
		Branch:         p.branchValue,
		IsIntermediate: true,
	}
	if AutoAdvances(sel, p.main.button != nil) {
		p.completed = true
		resp.IsIntermediate = false
	}
	return resp, nil
}

// resolveBranch recomputes the active conditional screen from the latest
// selected value. Malformed conditional content is a recoverable error: the
// original screen stays displayed and no branch state changes.
func (p *Player) resolveBranch(sel *domain.SelectionItem) error {
	content, key, raw := ResolveBranch(sel, p.main.selected)
	if content == nil {
		p.branch = nil
		p.branchKey = ""
		p.branchValue = nil
		return nil
	}
	if p.branch != nil && p.branchKey == key {
		return nil // same branch, keep its state
	}
	if err := domain.ValidateConditional(*content); err != nil {
		return err
	}
	p.branch = newFrame(*content)
	p.branchKey = key
	p.branchValue = raw
	return nil
}

func (p *Player) editInput(e EditInput) (*domain.ScreenResponse, error) {
	f := p.main
	if e.InBranch && p.branch != nil {
		f = p.branch
	}
	f.inputs[e.Key] = e.Value
	return &domain.ScreenResponse{
		ResponseKey:    p.respKey(e.Key),
		InputValues:    map[string]string{e.Key: e.Value},
		IsIntermediate: true,
	}, nil
}

func (p *Player) pressButton() (*domain.ScreenResponse, error) {
	f := p.activeFrame()
	if f.button == nil || !f.buttonEligible() {
		return nil, domain.ErrNoButton
	}
	if key := f.requiredMissing(); key != "" {
		return nil, &domain.RequiredInputError{Key: key}
	}

	if p.branch != nil {
		// The branch is consumed by continuing past it: report under the
		// branch button's text and the original selection's response key,
		// then clear the override.
		resp := &domain.ScreenResponse{
			ResponseKey: p.mainSelectionKey(),
			Selected:    copyIDs(p.main.selected),
			Branch:      p.branchValue,
			Button:      f.button.Text,
		}
		p.branch = nil
		p.branchKey = ""
		p.branchValue = nil
		p.completed = true
		return resp, nil
	}

	resp := &domain.ScreenResponse{
		ResponseKey: p.respKey(""),
		Button:      f.button.Text,
		InputValues: f.aggregateInputs(),
	}
	if f.selection() != nil {
		resp.Selected = copyIDs(f.selected)
	}
	p.completed = true
	return resp, nil
}

func (p *Player) choosePopup(e ChoosePopupOption) (*domain.ScreenResponse, error) {
	f := p.activeFrame()
	_, gate, item, ok := f.pendingGate()
	if !ok || !gate.waitingOnPopup(item) {
		return nil, domain.ErrNoPendingPopup
	}
	gate.resolvePopup(e.OptionID)
	return &domain.ScreenResponse{
		ResponseKey:    p.respKey(item.ResponseKey),
		Selected:       []string{e.OptionID},
		IsIntermediate: true,
	}, nil
}

func (p *Player) advanceGates(e AdvanceGates) (*domain.ScreenResponse, error) {
	f := p.activeFrame()
	_, gate, item, ok := f.pendingGate()
	if !ok {
		return nil, nil
	}
	if !gate.advance(item, e.Elapsed) {
		return nil, nil
	}
	// Gate completion reveals the next item(s); report it so the caller can
	// persist progress.
	return &domain.ScreenResponse{
		ResponseKey:    p.respKey(item.ResponseKey),
		IsIntermediate: true,
	}, nil
}

// respKey falls back to the screen's own id when the acting item declares no
// response key.
func (p *Player) respKey(itemKey string) string {
	if itemKey != "" {
		return itemKey
	}
	return p.main.screen.ID
}

func (p *Player) mainSelectionKey() string {
	if sel := p.main.selection(); sel != nil {
		return p.respKey(sel.ResponseKey)
	}
	return p.main.screen.ID
}
