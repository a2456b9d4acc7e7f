package screen

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	"funnel-player-service/internal/domain"
)

func mustPlayer(t *testing.T, content domain.ScreenContent) *Player {
	t.Helper()
	p, err := NewPlayer(content)
	if err != nil {
		t.Fatalf("new player: %v", err)
	}
	return p
}

func gatedScreen() domain.ScreenContent {
	return domain.ScreenContent{
		ID: "analyzing",
		Content: []domain.ContentItem{
			{Heading: &domain.HeadingItem{Markup: "Working"}},
			{Loading: &domain.LoadingItem{
				Duration: 1000,
				Popup: &domain.LoadingPopup{
					TriggerAtPercent: 50,
					Title:            "Quick check",
					Options: []domain.PopupOption{
						{ID: "yes", Label: "Yes"},
						{ID: "no", Label: "No"},
					},
				},
			}},
			{Button: &domain.ButtonItem{Text: "Next"}},
		},
	}
}

func TestGatedScreenEndToEnd(t *testing.T) {
	p := mustPlayer(t, gatedScreen())

	view := p.View()
	if len(view.Items) != 2 || view.Items[1].Loading == nil {
		t.Fatalf("expected heading and loading visible, got %d items", len(view.Items))
	}
	if view.Button != nil {
		t.Fatalf("button must be withheld while the gate is open")
	}
	if view.State != StatePlaying {
		t.Fatalf("expected playing, got %s", view.State)
	}

	// 500ms of ticks reaches the popup threshold and pauses there.
	for i := 0; i < 5; i++ {
		if resp, err := p.Reduce(AdvanceGates{Elapsed: 100 * time.Millisecond}); err != nil || resp != nil {
			t.Fatalf("tick %d: resp=%v err=%v", i, resp, err)
		}
	}
	view = p.View()
	if len(view.Gates) != 1 || view.Gates[0].Progress != 50 || view.Gates[0].Popup == nil {
		t.Fatalf("expected gate paused at 50 with popup, got %+v", view.Gates)
	}

	// Progress stays paused until the popup is resolved.
	if _, err := p.Reduce(AdvanceGates{Elapsed: time.Second}); err != nil {
		t.Fatalf("paused tick: %v", err)
	}
	if got := p.View().Gates[0].Progress; got != 50 {
		t.Fatalf("expected progress still 50 while paused, got %d", got)
	}

	resp, err := p.Reduce(ChoosePopupOption{OptionID: "yes"})
	if err != nil {
		t.Fatalf("popup choice: %v", err)
	}
	if !resp.IsIntermediate || !reflect.DeepEqual(resp.Selected, []string{"yes"}) {
		t.Fatalf("expected intermediate popup response, got %+v", resp)
	}

	// Remaining 500ms completes the gate and reveals the button.
	var completed *domain.ScreenResponse
	for i := 0; i < 5; i++ {
		r, err := p.Reduce(AdvanceGates{Elapsed: 100 * time.Millisecond})
		if err != nil {
			t.Fatalf("tick: %v", err)
		}
		if r != nil {
			completed = r
		}
	}
	if completed == nil || completed.ResponseKey != "analyzing" || !completed.IsIntermediate {
		t.Fatalf("expected gate completion response, got %+v", completed)
	}

	view = p.View()
	if view.State != StateReady {
		t.Fatalf("expected ready after gate completion, got %s", view.State)
	}
	if view.Button == nil || view.Button.Text != "Next" {
		t.Fatalf("expected button eligible, got %+v", view.Button)
	}

	resp, err = p.Reduce(PressButton{})
	if err != nil {
		t.Fatalf("button: %v", err)
	}
	if resp.Button != "Next" || resp.IsIntermediate {
		t.Fatalf("expected final button response, got %+v", resp)
	}
	if p.State() != StateCompleted {
		t.Fatalf("expected completed, got %s", p.State())
	}
}

func TestButtonBeforeGateCompletionRejected(t *testing.T) {
	p := mustPlayer(t, gatedScreen())
	if _, err := p.Reduce(PressButton{}); !errors.Is(err, domain.ErrNoButton) {
		t.Fatalf("expected ErrNoButton while gated, got %v", err)
	}
}

func TestRequiredInputGatesButton(t *testing.T) {
	p := mustPlayer(t, domain.ScreenContent{
		ID: "signup",
		Content: []domain.ContentItem{
			{Input: &domain.InputItem{ResponseKey: "email", Required: true, Kind: domain.InputEmail}},
			{Input: &domain.InputItem{ResponseKey: "nickname"}},
			{Button: &domain.ButtonItem{Text: "Sign up"}},
		},
	})

	_, err := p.Reduce(PressButton{})
	var reqErr *domain.RequiredInputError
	if !errors.As(err, &reqErr) || reqErr.Key != "email" {
		t.Fatalf("expected required error for email, got %v", err)
	}
	if p.State() == StateCompleted {
		t.Fatalf("rejected press must not complete the screen")
	}

	// Whitespace-only values do not pass the check, and entered state is kept.
	if _, err := p.Reduce(EditInput{Key: "email", Value: "   "}); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if _, err = p.Reduce(PressButton{}); !errors.As(err, &reqErr) {
		t.Fatalf("expected required error for whitespace value, got %v", err)
	}

	if _, err := p.Reduce(EditInput{Key: "email", Value: "bo@example.com"}); err != nil {
		t.Fatalf("edit: %v", err)
	}
	resp, err := p.Reduce(PressButton{})
	if err != nil {
		t.Fatalf("button: %v", err)
	}
	if resp.ResponseKey != "signup" || resp.Button != "Sign up" {
		t.Fatalf("expected screen-id response key and button text, got %+v", resp)
	}
	if !reflect.DeepEqual(resp.InputValues, map[string]string{"email": "bo@example.com"}) {
		t.Fatalf("expected aggregated inputs, got %v", resp.InputValues)
	}
}

func TestRadioAutoAdvance(t *testing.T) {
	p := mustPlayer(t, domain.ScreenContent{
		ID: "mood",
		Content: []domain.ContentItem{
			{Selection: &domain.SelectionItem{
				Mode:        domain.ModeRadio,
				ResponseKey: "mood",
				Options:     []domain.Option{{ID: "good"}, {ID: "bad"}},
			}},
		},
	})

	resp, err := p.Reduce(SelectOption{OptionID: "good"})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if resp.IsIntermediate {
		t.Fatalf("radio pick without button or branches must complete, got %+v", resp)
	}
	if resp.ResponseKey != "mood" || !reflect.DeepEqual(resp.Selected, []string{"good"}) {
		t.Fatalf("unexpected response %+v", resp)
	}
	if p.State() != StateCompleted {
		t.Fatalf("expected completed, got %s", p.State())
	}

	if _, err := p.Reduce(SelectOption{OptionID: "bad"}); !errors.Is(err, domain.ErrScreenCompleted) {
		t.Fatalf("expected terminal state to reject actions, got %v", err)
	}
}

func TestCheckboxSelectionDoesNotAutoAdvance(t *testing.T) {
	p := mustPlayer(t, domain.ScreenContent{
		ID: "topics",
		Content: []domain.ContentItem{
			{Selection: &domain.SelectionItem{
				Mode:    domain.ModeCheckbox,
				Options: []domain.Option{{ID: "a"}, {ID: "b"}},
				ResponseCards: map[string]domain.ResponseCard{
					"b": {Title: "B it is"},
				},
			}},
		},
	})

	if _, err := p.Reduce(SelectOption{OptionID: "a"}); err != nil {
		t.Fatalf("select: %v", err)
	}
	resp, err := p.Reduce(SelectOption{OptionID: "b"})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if !resp.IsIntermediate {
		t.Fatalf("checkbox picks are intermediate, got %+v", resp)
	}

	view := p.View()
	if view.Selection == nil || view.Selection.Card == nil || view.Selection.Card.Title != "B it is" {
		t.Fatalf("expected latest pick's card, got %+v", view.Selection)
	}
	if view.Selection.Position != domain.PositionBottom {
		t.Fatalf("expected bottom position without button, got %s", view.Selection.Position)
	}
	if p.State() == StateCompleted {
		t.Fatalf("checkbox selection must not complete the screen")
	}
}

func branchScreen() domain.ScreenContent {
	return domain.ScreenContent{
		ID: "goal",
		Content: []domain.ContentItem{
			{Heading: &domain.HeadingItem{Markup: "Pick"}},
			{Selection: &domain.SelectionItem{
				Mode:        domain.ModeRadio,
				ResponseKey: "goal",
				Options:     []domain.Option{{ID: "other"}, {ID: "learn"}},
				ConditionalScreens: map[string]domain.ScreenContent{
					"other": {
						ID: "goal-other",
						Content: []domain.ContentItem{
							{Heading: &domain.HeadingItem{Markup: "Tell us more"}},
							{Input: &domain.InputItem{ResponseKey: "details"}},
							{Button: &domain.ButtonItem{Text: "Continue"}},
						},
					},
				},
			}},
		},
	}
}

func TestBranchActivationAndClear(t *testing.T) {
	p := mustPlayer(t, branchScreen())

	resp, err := p.Reduce(SelectOption{OptionID: "other"})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if resp.Branch != "other" || !resp.IsIntermediate {
		t.Fatalf("expected intermediate branch response, got %+v", resp)
	}

	view := p.View()
	if view.Branch != "other" {
		t.Fatalf("expected active branch in view, got %v", view.Branch)
	}
	if len(view.Items) != 2 || view.Items[0].Heading.Markup != "Tell us more" {
		t.Fatalf("expected conditional content rendered, got %+v", view.Items)
	}
	if view.Button == nil || view.Button.Text != "Continue" {
		t.Fatalf("expected the branch's own button, got %+v", view.Button)
	}

	// Changing the answer away from the branching option reverts cleanly.
	if _, err := p.Reduce(SelectOption{OptionID: "learn"}); err != nil {
		t.Fatalf("select: %v", err)
	}
	view = p.View()
	if view.Branch != nil {
		t.Fatalf("expected branch cleared, got %v", view.Branch)
	}
	if view.Items[0].Heading.Markup != "Pick" {
		t.Fatalf("expected original screen restored, got %+v", view.Items[0])
	}
}

func TestBranchConsumedByItsButton(t *testing.T) {
	p := mustPlayer(t, branchScreen())

	if _, err := p.Reduce(SelectOption{OptionID: "other"}); err != nil {
		t.Fatalf("select: %v", err)
	}
	if _, err := p.Reduce(EditInput{Key: "details", Value: "something", InBranch: true}); err != nil {
		t.Fatalf("edit: %v", err)
	}

	resp, err := p.Reduce(PressButton{})
	if err != nil {
		t.Fatalf("branch button: %v", err)
	}
	if resp.ResponseKey != "goal" {
		t.Fatalf("branch completion must report the original selection's key, got %q", resp.ResponseKey)
	}
	if resp.Button != "Continue" || resp.Branch != "other" {
		t.Fatalf("expected branch button text and branch value, got %+v", resp)
	}
	if !reflect.DeepEqual(resp.Selected, []string{"other"}) {
		t.Fatalf("expected original selection reported, got %v", resp.Selected)
	}
	if resp.IsIntermediate {
		t.Fatalf("branch completion is final")
	}
	if p.State() != StateCompleted {
		t.Fatalf("expected completed, got %s", p.State())
	}
}

func TestOnlyFirstSelectionGetsSlot(t *testing.T) {
	p := mustPlayer(t, domain.ScreenContent{
		ID: "multi",
		Content: []domain.ContentItem{
			{Selection: &domain.SelectionItem{
				Mode:     domain.ModeRadio,
				Position: domain.PositionMiddle,
				Options:  []domain.Option{{ID: "a"}},
			}},
			{Selection: &domain.SelectionItem{
				Mode:     domain.ModeRadio,
				Position: domain.PositionTop,
				Options:  []domain.Option{{ID: "x"}},
			}},
			{Button: &domain.ButtonItem{Text: "Go"}},
		},
	})

	view := p.View()
	if view.Selection == nil || view.Selection.Index != 0 {
		t.Fatalf("expected first selection in the slot, got %+v", view.Selection)
	}
	if view.Selection.Position != domain.PositionMiddle {
		t.Fatalf("expected the first selection's position honored, got %s", view.Selection.Position)
	}
	// The second selection renders inertly in place.
	if len(view.Items) != 1 || view.Items[0].Selection == nil {
		t.Fatalf("expected second selection among items, got %+v", view.Items)
	}
}

func TestUnknownItemSkippedAtRender(t *testing.T) {
	var unknown domain.ContentItem
	if err := json.Unmarshal([]byte(`{"type":"hologram"}`), &unknown); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	p := mustPlayer(t, domain.ScreenContent{
		ID: "s1",
		Content: []domain.ContentItem{
			{Heading: &domain.HeadingItem{Markup: "hi"}},
			unknown,
			{Text: &domain.TextItem{Markup: "still here"}},
		},
	})
	view := p.View()
	if len(view.Items) != 2 {
		t.Fatalf("expected unknown item skipped, got %d items", len(view.Items))
	}
	if view.Items[1].Text == nil || view.Items[1].Text.Markup != "still here" {
		t.Fatalf("rendering must continue past the unknown item, got %+v", view.Items)
	}
}

func TestVisiblePrefixSurvivesJSONRoundTrip(t *testing.T) {
	content := gatedScreen()
	p1 := mustPlayer(t, content)

	data, err := json.Marshal(content)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	parsed, err := domain.ParseScreen(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	p2 := mustPlayer(t, parsed)

	v1, v2 := p1.View(), p2.View()
	if len(v1.Items) != len(v2.Items) {
		t.Fatalf("visible prefix diverged after round trip: %d != %d", len(v1.Items), len(v2.Items))
	}
	for i := range v1.Items {
		if v1.Items[i].Type() != v2.Items[i].Type() {
			t.Fatalf("items[%d] diverged: %s != %s", i, v1.Items[i].Type(), v2.Items[i].Type())
		}
	}
}

func TestSelectWithoutSelectionRejected(t *testing.T) {
	p := mustPlayer(t, domain.ScreenContent{
		ID:      "plain",
		Content: []domain.ContentItem{{Text: &domain.TextItem{Markup: "hi"}}},
	})
	if _, err := p.Reduce(SelectOption{OptionID: "a"}); !errors.Is(err, domain.ErrNoSelection) {
		t.Fatalf("expected ErrNoSelection, got %v", err)
	}
	if _, err := p.Reduce(ChoosePopupOption{OptionID: "a"}); !errors.Is(err, domain.ErrNoPendingPopup) {
		t.Fatalf("expected ErrNoPendingPopup, got %v", err)
	}
}

func TestUndeclaredInputAddressableByDerivedKey(t *testing.T) {
	p := mustPlayer(t, domain.ScreenContent{
		ID: "feedback",
		Content: []domain.ContentItem{
			{Heading: &domain.HeadingItem{Markup: "Anything else?"}},
			{Input: &domain.InputItem{Required: true}},
			{Button: &domain.ButtonItem{Text: "Send"}},
		},
	})

	var derived string
	for _, item := range p.View().Items {
		if item.Input != nil {
			derived = item.Input.ResponseKey
		}
	}
	if derived != "input-1" {
		t.Fatalf("expected rendered input to carry its derived key, got %q", derived)
	}

	if _, err := p.Reduce(PressButton{}); err == nil {
		t.Fatalf("expected required input to block the button")
	}
	if _, err := p.Reduce(EditInput{Key: derived, Value: "more drills"}); err != nil {
		t.Fatalf("edit: %v", err)
	}
	resp, err := p.Reduce(PressButton{})
	if err != nil {
		t.Fatalf("button: %v", err)
	}
	if resp.InputValues[derived] != "more drills" {
		t.Fatalf("expected aggregated value under %q, got %+v", derived, resp.InputValues)
	}
}

func TestEmptyEditKeyFallsBackToScreenID(t *testing.T) {
	p := mustPlayer(t, domain.ScreenContent{
		ID: "feedback",
		Content: []domain.ContentItem{
			{Input: &domain.InputItem{ResponseKey: "notes"}},
			{Button: &domain.ButtonItem{Text: "Send"}},
		},
	})
	resp, err := p.Reduce(EditInput{Value: "hi"})
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if resp.ResponseKey != "feedback" {
		t.Fatalf("expected screen id fallback, got %q", resp.ResponseKey)
	}
}
