package screen

import (
	"time"

	"funnel-player-service/internal/domain"
)

// gateState tracks the runtime progress of one loading item. Progress only
// ever moves forward; a declared popup pauses it at the trigger threshold
// until one of the popup's options is chosen.
type gateState struct {
	progress    float64 // percent, 0..100
	popupShown  bool
	popupChoice string
	done        bool
}

// waitingOnPopup reports whether progress is paused on an unresolved popup.
func (g *gateState) waitingOnPopup(item *domain.LoadingItem) bool {
	return item.Popup != nil && g.popupShown && g.popupChoice == ""
}

// advance moves progress by the elapsed wall time against the item's
// declared duration. Returns true when the gate completes on this call.
func (g *gateState) advance(item *domain.LoadingItem, elapsed time.Duration) bool {
	if g.done || g.waitingOnPopup(item) {
		return false
	}

	next := 100.0
	if item.Duration > 0 {
		delta := float64(elapsed.Milliseconds()) / float64(item.Duration) * 100
		next = g.progress + delta
	}

	if p := item.Popup; p != nil && g.popupChoice == "" {
		threshold := float64(p.TriggerAtPercent)
		if next >= threshold {
			g.progress = threshold
			g.popupShown = true
			return false
		}
	}

	if next >= 100 {
		g.progress = 100
		g.done = true
		return true
	}
	g.progress = next
	return false
}

// resolvePopup records the chosen popup option so progress can resume.
func (g *gateState) resolvePopup(optionID string) {
	g.popupChoice = optionID
}
