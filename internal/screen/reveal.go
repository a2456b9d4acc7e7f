package screen

import "funnel-player-service/internal/domain"

// ExtractButton splits the trailing call to action from a content list. The
// button renders last regardless of where it sits in the source list; the
// remaining items keep their order. Gate indices are taken against the
// returned list, with the button excluded.
func ExtractButton(content []domain.ContentItem) ([]domain.ContentItem, *domain.ButtonItem) {
	var button *domain.ButtonItem
	items := make([]domain.ContentItem, 0, len(content))
	for _, item := range content {
		if item.Button != nil && button == nil {
			button = item.Button
			continue
		}
		items = append(items, item)
	}
	return items, button
}

// VisiblePrefix computes how many leading items of a button-extracted
// content list are revealed. Each item is included as it is reached; an
// uncompleted loading item is the last visible one. Reveal is monotonic and
// left to right: completing a gate only ever grows the prefix.
func VisiblePrefix(items []domain.ContentItem, completed map[int]bool) int {
	for i, item := range items {
		if item.Loading != nil && !completed[i] {
			return i + 1
		}
	}
	return len(items)
}

// ButtonEligible reports whether the trailing button may be shown: the whole
// list is revealed and every loading gate has completed.
func ButtonEligible(items []domain.ContentItem, completed map[int]bool) bool {
	return VisiblePrefix(items, completed) == len(items)
}
