package domain

import (
	"encoding/json"
	"fmt"
)

// maxContentDepth bounds carousel/conditional-screen nesting so malformed
// input cannot drive unbounded recursion.
const maxContentDepth = 16

// ParseScreen decodes and validates one screen document coming from the
// external editor/storage boundary. Errors name the offending field or
// index; a screen that fails here is never partially rendered.
func ParseScreen(data []byte) (ScreenContent, error) {
	var probe struct {
		ID      json.RawMessage `json:"id"`
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return ScreenContent{}, fmt.Errorf("%w: not a JSON object: %v", ErrInvalidScreen, err)
	}
	var id string
	if len(probe.ID) == 0 || json.Unmarshal(probe.ID, &id) != nil {
		return ScreenContent{}, fmt.Errorf("%w: id must be a string", ErrInvalidScreen)
	}
	if len(probe.Content) == 0 || probe.Content[0] != '[' {
		return ScreenContent{}, fmt.Errorf("%w: screen %q: content must be an array", ErrInvalidScreen, id)
	}

	var screen ScreenContent
	if err := json.Unmarshal(data, &screen); err != nil {
		return ScreenContent{}, fmt.Errorf("%w: screen %q: %v", ErrInvalidScreen, id, err)
	}
	if err := screen.Validate(); err != nil {
		return ScreenContent{}, err
	}
	return screen, nil
}

// Validate enforces the structural rules for authored screens: known type
// tags only, at most one button, unique option identities per selection,
// well-formed conditional screens, bounded nesting.
func (s ScreenContent) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("%w: id must be a non-empty string", ErrInvalidScreen)
	}
	if s.Content == nil {
		return fmt.Errorf("%w: screen %q: content must be an array", ErrInvalidScreen, s.ID)
	}
	return validateContent(fmt.Sprintf("screen %q", s.ID), s.Content, 0)
}

// ValidateConditional applies the structural rule for conditional screens:
// an ordered list of known content items. Unlike top-level screens a
// conditional screen may omit its id.
func ValidateConditional(s ScreenContent) error {
	if s.Content == nil {
		return fmt.Errorf("%w: conditional screen: content must be an array", ErrInvalidScreen)
	}
	return validateContent("conditional screen", s.Content, 0)
}

func validateContent(ctx string, content []ContentItem, depth int) error {
	if depth > maxContentDepth {
		return fmt.Errorf("%w: %s: content nested deeper than %d levels", ErrInvalidScreen, ctx, maxContentDepth)
	}

	buttons := 0
	for i, item := range content {
		at := fmt.Sprintf("%s: content[%d]", ctx, i)
		if !item.Known() {
			return fmt.Errorf("%w: %s: %q", ErrUnknownContentType, at, item.unknownType)
		}
		switch {
		case item.Button != nil:
			buttons++
			if buttons > 1 {
				return fmt.Errorf("%w: %s: more than one button item", ErrInvalidScreen, at)
			}
		case item.Input != nil:
			if err := validateInput(at, item.Input); err != nil {
				return err
			}
		case item.Carousel != nil:
			if err := validateContent(at, item.Carousel.Items, depth+1); err != nil {
				return err
			}
		case item.Selection != nil:
			if err := validateSelection(at, item.Selection, depth); err != nil {
				return err
			}
		case item.Loading != nil:
			if err := validateLoading(at, item.Loading); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateInput(at string, in *InputItem) error {
	switch in.Kind {
	case "", InputText, InputEmail, InputTel, InputNumber, InputPassword, InputURL:
		return nil
	}
	return fmt.Errorf("%w: %s: unknown input kind %q", ErrInvalidScreen, at, in.Kind)
}

func validateSelection(at string, sel *SelectionItem, depth int) error {
	switch sel.Mode {
	case ModeRadio, ModeCheckbox:
	default:
		return fmt.Errorf("%w: %s: unknown selection mode %q", ErrInvalidScreen, at, sel.Mode)
	}
	switch sel.Position {
	case "", PositionTop, PositionMiddle, PositionBottom:
	default:
		return fmt.Errorf("%w: %s: unknown position %q", ErrInvalidScreen, at, sel.Position)
	}

	// Identities must be unique within this selection's own option list;
	// uniqueness is not checked across selections on the same screen.
	seen := make(map[string]int, len(sel.Options))
	for i, opt := range sel.Options {
		id := opt.Identity(i)
		if prev, dup := seen[id]; dup {
			return fmt.Errorf("%w: %s: options[%d] duplicates identity %q of options[%d]", ErrInvalidScreen, at, i, id, prev)
		}
		seen[id] = i
	}

	for key, screen := range sel.ConditionalScreens {
		if screen.Content == nil {
			return fmt.Errorf("%w: %s: conditionalScreens[%q]: content must be an array", ErrInvalidScreen, at, key)
		}
		branchCtx := fmt.Sprintf("%s: conditionalScreens[%q]", at, key)
		if err := validateContent(branchCtx, screen.Content, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func validateLoading(at string, l *LoadingItem) error {
	if l.Duration < 0 {
		return fmt.Errorf("%w: %s: negative loading duration %d", ErrInvalidScreen, at, l.Duration)
	}
	if p := l.Popup; p != nil {
		if p.TriggerAtPercent < 0 || p.TriggerAtPercent > 100 {
			return fmt.Errorf("%w: %s: popup triggerAtPercent %d out of range", ErrInvalidScreen, at, p.TriggerAtPercent)
		}
		if len(p.Options) == 0 {
			return fmt.Errorf("%w: %s: popup declares no options", ErrInvalidScreen, at)
		}
	}
	return nil
}
