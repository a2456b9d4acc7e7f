package screen

import "funnel-player-service/internal/domain"

// ResolveBranch maps the latest selected value of a branching selection to
// its conditional screen. Matching is done on the string form of the value
// (numeric values are stringified first). A miss clears any active branch:
// changing the answer away from a branching option reverts to the normal
// screen. The returned raw value is the non-stringified selected value, for
// outward reporting.
func ResolveBranch(sel *domain.SelectionItem, selected []string) (content *domain.ScreenContent, key string, raw any) {
	if len(sel.ConditionalScreens) == 0 || len(selected) == 0 {
		return nil, "", nil
	}
	latest := selected[len(selected)-1]

	key = latest
	raw = any(latest)
	for i, opt := range sel.Options {
		if opt.Identity(i) != latest {
			continue
		}
		if opt.Value != nil {
			key = domain.StringifyValue(opt.Value)
			raw = opt.Value
		}
		break
	}

	screen, ok := sel.ConditionalScreens[key]
	if !ok {
		return nil, "", nil
	}
	return &screen, key, raw
}
