package screen

import "funnel-player-service/internal/domain"

// GateView exposes the runtime progress of one loading item for rendering.
// Popup is set only while progress is paused waiting on a choice.
type GateView struct {
	Index    int                  `json:"index"`
	Progress int                  `json:"progress"`
	Popup    *domain.LoadingPopup `json:"popup,omitempty"`
	Done     bool                 `json:"done"`
}

// SelectionView is the screen selection placed in its resolved slot,
// together with its live state and the response card for the latest pick.
type SelectionView struct {
	Index    int                  `json:"index"`
	Item     domain.SelectionItem `json:"item"`
	Position domain.Position      `json:"position"`
	Selected []string             `json:"selected,omitempty"`
	Card     *domain.ResponseCard `json:"card,omitempty"`
}

// View is one render cycle's output: the visible prefix with the screen
// selection and trailing button pulled into their own slots. When a branch
// is active the view is built from the conditional screen instead.
type View struct {
	ScreenID  string               `json:"screenId"`
	State     PlayState            `json:"state"`
	Branch    any                  `json:"branch,omitempty"`
	Items     []domain.ContentItem `json:"items"`
	Selection *SelectionView       `json:"selection,omitempty"`
	Button    *domain.ButtonItem   `json:"button,omitempty"`
	Gates     []GateView           `json:"gates,omitempty"`
	Gap       int                  `json:"gap,omitempty"`
	Padding   int                  `json:"padding,omitempty"`
}

// View computes the current render state. Only the first selection item gets
// the dedicated slot; any further selections stay in Items in place.
// Unrecognized items produce no output and are skipped without failing the
// render. The button appears only once every gate up to the end of the list
// has completed.
func (p *Player) View() View {
	f := p.activeFrame()
	visible := f.visible()

	v := View{
		ScreenID: p.main.screen.ID,
		State:    p.State(),
		Branch:   p.branchValue,
		Gap:      f.screen.Gap,
		Padding:  f.screen.Padding,
	}

	v.Items = make([]domain.ContentItem, 0, visible)
	for i := 0; i < visible; i++ {
		item := f.items[i]
		if !item.Known() {
			continue
		}
		if i == f.selAt {
			continue
		}
		if item.Input != nil && item.Input.ResponseKey == "" {
			// Inputs are addressed by response key over the wire, so an
			// undeclared key is rendered as its derived one.
			in := *item.Input
			in.ResponseKey = f.inputKeys[i]
			item.Input = &in
		}
		v.Items = append(v.Items, item)
	}

	if f.selAt >= 0 && f.selAt < visible {
		sel := f.items[f.selAt].Selection
		sv := &SelectionView{
			Index:    f.selAt,
			Item:     *sel,
			Position: ResolvePosition(sel, f.button != nil),
			Selected: copyIDs(f.selected),
		}
		if card, ok := CurrentResponseCard(f.selected, sel.ResponseCards); ok {
			sv.Card = &card
		}
		v.Selection = sv
	}

	if f.buttonEligible() && !p.completed {
		v.Button = f.button
	}

	for i := 0; i < visible; i++ {
		item := f.items[i]
		if item.Loading == nil {
			continue
		}
		g := f.gates[i]
		gv := GateView{Index: i, Progress: int(g.progress), Done: g.done}
		if g.waitingOnPopup(item.Loading) {
			gv.Popup = item.Loading.Popup
		}
		v.Gates = append(v.Gates, gv)
	}
	return v
}
