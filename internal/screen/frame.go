package screen

import (
	"fmt"
	"strings"

	"funnel-player-service/internal/domain"
)

// frame is the per-play state for one content list: the original screen or
// an activated conditional screen. A branch gets its own fresh frame while
// the original frame is retained underneath, so clearing the branch reverts
// cleanly.
type frame struct {
	screen    domain.ScreenContent
	items     []domain.ContentItem // content minus the trailing button
	button    *domain.ButtonItem
	selAt     int // index of the first selection item, -1 if none
	selected  []string
	inputs    map[string]string
	inputKeys map[int]string // item index -> response key
	gates     map[int]*gateState
}

func newFrame(screen domain.ScreenContent) *frame {
	items, button := ExtractButton(screen.Content)
	f := &frame{
		screen:    screen,
		items:     items,
		button:    button,
		selAt:     -1,
		inputs:    make(map[string]string),
		inputKeys: make(map[int]string),
		gates:     make(map[int]*gateState),
	}
	for i, item := range items {
		switch {
		case item.Selection != nil:
			if f.selAt < 0 {
				f.selAt = i
			}
		case item.Input != nil:
			key := item.Input.ResponseKey
			if key == "" {
				key = fmt.Sprintf("input-%d", i)
			}
			f.inputKeys[i] = key
		case item.Loading != nil:
			f.gates[i] = &gateState{}
		}
	}
	return f
}

func (f *frame) selection() *domain.SelectionItem {
	if f.selAt < 0 {
		return nil
	}
	return f.items[f.selAt].Selection
}

func (f *frame) completedGates() map[int]bool {
	done := make(map[int]bool, len(f.gates))
	for i, g := range f.gates {
		if g.done {
			done[i] = true
		}
	}
	return done
}

func (f *frame) visible() int {
	return VisiblePrefix(f.items, f.completedGates())
}

func (f *frame) buttonEligible() bool {
	return f.button != nil && ButtonEligible(f.items, f.completedGates())
}

// revealed reports whether every item is visible and every gate complete.
func (f *frame) revealed() bool {
	return ButtonEligible(f.items, f.completedGates())
}

// pendingGate returns the first visible gate that has not completed.
func (f *frame) pendingGate() (int, *gateState, *domain.LoadingItem, bool) {
	visible := f.visible()
	for i := 0; i < visible; i++ {
		item := f.items[i]
		if item.Loading == nil {
			continue
		}
		g := f.gates[i]
		if !g.done {
			return i, g, item.Loading, true
		}
	}
	return 0, nil, nil, false
}

// requiredMissing returns the response key of the first required input whose
// stored value is empty after trimming, or "" when all pass.
func (f *frame) requiredMissing() string {
	for i, item := range f.items {
		if item.Input == nil || !item.Input.Required {
			continue
		}
		key := f.inputKeys[i]
		if strings.TrimSpace(f.inputs[key]) == "" {
			return key
		}
	}
	return ""
}

// aggregateInputs collects the non-empty values of every declared input.
func (f *frame) aggregateInputs() map[string]string {
	if len(f.inputKeys) == 0 {
		return nil
	}
	out := make(map[string]string, len(f.inputKeys))
	for _, key := range f.inputKeys {
		if v := f.inputs[key]; strings.TrimSpace(v) != "" {
			out[key] = v
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func copyIDs(ids []string) []string {
	if ids == nil {
		return nil
	}
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}
