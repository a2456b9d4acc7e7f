package domain

import "strings"

// SubstitutePlaceholders replaces literal string tokens in image sources and
// markup across the whole screen tree, including carousel children, cards,
// response cards, and conditional screens. The authored screen is not
// mutated; a substituted copy is returned. This is a pre-processing step for
// the external editor's tokens (e.g. an image-URL placeholder), applied
// before content reaches the player.
func SubstitutePlaceholders(screen ScreenContent, subs map[string]string) ScreenContent {
	if len(subs) == 0 {
		return screen
	}
	pairs := make([]string, 0, len(subs)*2)
	for token, value := range subs {
		pairs = append(pairs, token, value)
	}
	r := strings.NewReplacer(pairs...)
	return substituteScreen(screen, r)
}

func substituteScreen(screen ScreenContent, r *strings.Replacer) ScreenContent {
	out := screen
	out.Content = substituteItems(screen.Content, r)
	return out
}

func substituteItems(items []ContentItem, r *strings.Replacer) []ContentItem {
	out := make([]ContentItem, len(items))
	for i, item := range items {
		out[i] = substituteItem(item, r)
	}
	return out
}

func substituteItem(item ContentItem, r *strings.Replacer) ContentItem {
	switch {
	case item.Image != nil:
		img := *item.Image
		img.Src = r.Replace(img.Src)
		item.Image = &img
	case item.Text != nil:
		txt := *item.Text
		txt.Markup = r.Replace(txt.Markup)
		item.Text = &txt
	case item.Heading != nil:
		h := *item.Heading
		h.Markup = r.Replace(h.Markup)
		item.Heading = &h
	case item.Card != nil:
		card := *item.Card
		card.Title = r.Replace(card.Title)
		card.Text = r.Replace(card.Text)
		card.ImageSrc = r.Replace(card.ImageSrc)
		item.Card = &card
	case item.Carousel != nil:
		car := *item.Carousel
		car.Items = substituteItems(car.Items, r)
		item.Carousel = &car
	case item.Selection != nil:
		item.Selection = substituteSelection(item.Selection, r)
	}
	return item
}

func substituteSelection(sel *SelectionItem, r *strings.Replacer) *SelectionItem {
	out := *sel
	out.Options = make([]Option, len(sel.Options))
	for i, opt := range sel.Options {
		opt.Label = r.Replace(opt.Label)
		opt.ImageSrc = r.Replace(opt.ImageSrc)
		opt.Description = r.Replace(opt.Description)
		out.Options[i] = opt
	}
	if len(sel.ResponseCards) > 0 {
		out.ResponseCards = make(map[string]ResponseCard, len(sel.ResponseCards))
		for id, card := range sel.ResponseCards {
			card.Title = r.Replace(card.Title)
			card.Text = r.Replace(card.Text)
			out.ResponseCards[id] = card
		}
	}
	if len(sel.ConditionalScreens) > 0 {
		out.ConditionalScreens = make(map[string]ScreenContent, len(sel.ConditionalScreens))
		for key, screen := range sel.ConditionalScreens {
			out.ConditionalScreens[key] = substituteScreen(screen, r)
		}
	}
	return &out
}
