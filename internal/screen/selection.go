package screen

import "funnel-player-service/internal/domain"

// Select applies one pick to the current selection state and returns the new
// state. Radio mode replaces the whole selection; checkbox mode toggles
// membership. Pure function, no side effects: re-picking a selected id is a
// no-op under radio and a deselect under checkbox.
func Select(mode domain.SelectionMode, current []string, optionID string) []string {
	if mode == domain.ModeRadio {
		return []string{optionID}
	}
	out := make([]string, 0, len(current)+1)
	removed := false
	for _, id := range current {
		if id == optionID {
			removed = true
			continue
		}
		out = append(out, id)
	}
	if !removed {
		out = append(out, optionID)
	}
	return out
}

// CurrentResponseCard resolves the inline card for the most recently added
// selected id. With multiple checkbox picks only the latest pick's card is
// shown; earlier picks never merge in.
func CurrentResponseCard(selected []string, cards map[string]domain.ResponseCard) (domain.ResponseCard, bool) {
	if len(selected) == 0 || len(cards) == 0 {
		return domain.ResponseCard{}, false
	}
	card, ok := cards[selected[len(selected)-1]]
	return card, ok
}

// AutoAdvances reports whether a pick completes the screen on its own:
// radio mode, no trailing button, and no conditional-screen branching.
// A button or a branch map means the user must act further.
func AutoAdvances(sel *domain.SelectionItem, hasButton bool) bool {
	return sel.Mode == domain.ModeRadio && !hasButton && len(sel.ConditionalScreens) == 0
}

// ResolvePosition derives the selection's slot: its explicit position, else
// bottom when the screen has no button, else top.
func ResolvePosition(sel *domain.SelectionItem, hasButton bool) domain.Position {
	if sel.Position != "" {
		return sel.Position
	}
	if !hasButton {
		return domain.PositionBottom
	}
	return domain.PositionTop
}
