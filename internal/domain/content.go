package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ItemType tags one variant of the content union.
type ItemType string

const (
	TypeImage     ItemType = "image"
	TypeText      ItemType = "text"
	TypeHeading   ItemType = "heading"
	TypeInput     ItemType = "input"
	TypeCarousel  ItemType = "carousel"
	TypeSelection ItemType = "selection"
	TypeCard      ItemType = "card"
	TypeButton    ItemType = "button"
	TypeLoading   ItemType = "loading"
)

// SelectionMode controls single vs multi pick semantics.
type SelectionMode string

const (
	ModeRadio    SelectionMode = "radio"
	ModeCheckbox SelectionMode = "checkbox"
)

// Position is the slot a selection occupies relative to the rest of the screen.
type Position string

const (
	PositionTop    Position = "top"
	PositionMiddle Position = "middle"
	PositionBottom Position = "bottom"
)

// InputKind constrains the value a text input accepts.
type InputKind string

const (
	InputText     InputKind = "text"
	InputEmail    InputKind = "email"
	InputTel      InputKind = "tel"
	InputNumber   InputKind = "number"
	InputPassword InputKind = "password"
	InputURL      InputKind = "url"
)

// OptionVariant picks the visual treatment of a selection option.
type OptionVariant string

const (
	VariantSquare    OptionVariant = "square"
	VariantImageCard OptionVariant = "imageCard"
	VariantFlat      OptionVariant = "flat"
)

// CardVariant picks one of the fixed presentational card records.
type CardVariant string

const (
	CardQuotation CardVariant = "quotation"
	CardMessage   CardVariant = "message"
	CardInfo      CardVariant = "info"
	CardContainer CardVariant = "container"
)

// ImageItem is purely presentational and carries no state.
type ImageItem struct {
	Src    string `json:"src"`
	Shape  string `json:"shape,omitempty"`
	Border string `json:"border,omitempty"`
	Align  string `json:"align,omitempty"`
}

type TextItem struct {
	Markup string `json:"markup"`
	Align  string `json:"align,omitempty"`
}

type HeadingItem struct {
	Markup string `json:"markup"`
	Level  int    `json:"level,omitempty"`
}

// InputItem collects one text value under ResponseKey. An empty ResponseKey
// is defaulted from the item's position at play time.
type InputItem struct {
	ResponseKey string    `json:"responseKey,omitempty"`
	Required    bool      `json:"required,omitempty"`
	Kind        InputKind `json:"kind,omitempty"`
	Placeholder string    `json:"placeholder,omitempty"`
}

// CarouselItem nests an ordered sequence of content items; a carousel item
// may itself contain another carousel.
type CarouselItem struct {
	Direction string        `json:"direction,omitempty"`
	Items     []ContentItem `json:"items"`
}

// GridLayout is the rows-by-cols shape of a selection grid.
type GridLayout struct {
	Rows int `json:"rows,omitempty"`
	Cols int `json:"cols,omitempty"`
}

// Option is one pickable entry of a selection. Its identity is ID, else the
// string form of Value, else its index within the option list.
type Option struct {
	ID          string        `json:"id,omitempty"`
	Value       any           `json:"value,omitempty"`
	Variant     OptionVariant `json:"variant,omitempty"`
	Label       string        `json:"label,omitempty"`
	Emoji       string        `json:"emoji,omitempty"`
	ImageSrc    string        `json:"imageSrc,omitempty"`
	Description string        `json:"description,omitempty"`
}

// Identity resolves the stable id used for selection state and card lookup.
func (o Option) Identity(index int) string {
	if o.ID != "" {
		return o.ID
	}
	if o.Value != nil {
		return StringifyValue(o.Value)
	}
	return strconv.Itoa(index)
}

// StringifyValue renders an option value the way branch keys are matched:
// numbers lose their decimal point when integral (2 -> "2").
func StringifyValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// ResponseCard is the inline display shown next to a selection once an
// option is chosen.
type ResponseCard struct {
	Title string `json:"title,omitempty"`
	Text  string `json:"text,omitempty"`
	Emoji string `json:"emoji,omitempty"`
}

// SelectionItem is the interactive option grid. ConditionalScreens maps the
// string form of an option value to a full replacement screen.
type SelectionItem struct {
	Mode               SelectionMode            `json:"mode"`
	Layout             GridLayout               `json:"layout"`
	Options            []Option                 `json:"options"`
	ResponseCards      map[string]ResponseCard  `json:"responseCards,omitempty"`
	ConditionalScreens map[string]ScreenContent `json:"conditionalScreens,omitempty"`
	Position           Position                 `json:"position,omitempty"`
	ResponseKey        string                   `json:"responseKey,omitempty"`
}

type CardItem struct {
	Variant  CardVariant `json:"variant"`
	Title    string      `json:"title,omitempty"`
	Text     string      `json:"text,omitempty"`
	Author   string      `json:"author,omitempty"`
	ImageSrc string      `json:"imageSrc,omitempty"`
}

// ButtonItem is the trailing call to action. It renders last regardless of
// its position in the source list.
type ButtonItem struct {
	Text  string `json:"text"`
	Width string `json:"width,omitempty"`
}

type PopupOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// LoadingPopup pauses gate progress at TriggerAtPercent until one of its
// options is chosen.
type LoadingPopup struct {
	TriggerAtPercent int           `json:"triggerAtPercent"`
	Title            string        `json:"title,omitempty"`
	Description      string        `json:"description,omitempty"`
	Options          []PopupOption `json:"options"`
}

// LoadingItem gates everything after it in source order until its progress
// reaches 100%. Duration is in milliseconds.
type LoadingItem struct {
	Duration    int           `json:"duration"`
	Popup       *LoadingPopup `json:"popup,omitempty"`
	ResponseKey string        `json:"responseKey,omitempty"`
}

// ContentItem is the closed union over all screen content variants. Exactly
// one variant pointer is set on well-formed items; items decoded with an
// unrecognized type tag keep all variants nil and only record the tag.
type ContentItem struct {
	Image     *ImageItem
	Text      *TextItem
	Heading   *HeadingItem
	Input     *InputItem
	Carousel  *CarouselItem
	Selection *SelectionItem
	Card      *CardItem
	Button    *ButtonItem
	Loading   *LoadingItem

	unknownType string
}

// Type reports the variant tag, or the raw unrecognized tag for items that
// failed to decode into a known variant.
func (c ContentItem) Type() ItemType {
	switch {
	case c.Image != nil:
		return TypeImage
	case c.Text != nil:
		return TypeText
	case c.Heading != nil:
		return TypeHeading
	case c.Input != nil:
		return TypeInput
	case c.Carousel != nil:
		return TypeCarousel
	case c.Selection != nil:
		return TypeSelection
	case c.Card != nil:
		return TypeCard
	case c.Button != nil:
		return TypeButton
	case c.Loading != nil:
		return TypeLoading
	}
	return ItemType(c.unknownType)
}

// Known reports whether the item decoded into a recognized variant.
// Unrecognized items are rejected by Validate and skipped by the renderer.
func (c ContentItem) Known() bool {
	return c.Image != nil || c.Text != nil || c.Heading != nil ||
		c.Input != nil || c.Carousel != nil || c.Selection != nil ||
		c.Card != nil || c.Button != nil || c.Loading != nil
}

func (c *ContentItem) UnmarshalJSON(data []byte) error {
	var probe struct {
		Type ItemType `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	*c = ContentItem{}
	switch probe.Type {
	case TypeImage:
		c.Image = &ImageItem{}
		return json.Unmarshal(data, c.Image)
	case TypeText:
		c.Text = &TextItem{}
		return json.Unmarshal(data, c.Text)
	case TypeHeading:
		c.Heading = &HeadingItem{}
		return json.Unmarshal(data, c.Heading)
	case TypeInput:
		c.Input = &InputItem{}
		return json.Unmarshal(data, c.Input)
	case TypeCarousel:
		c.Carousel = &CarouselItem{}
		return json.Unmarshal(data, c.Carousel)
	case TypeSelection:
		c.Selection = &SelectionItem{}
		return json.Unmarshal(data, c.Selection)
	case TypeCard:
		c.Card = &CardItem{}
		return json.Unmarshal(data, c.Card)
	case TypeButton:
		c.Button = &ButtonItem{}
		return json.Unmarshal(data, c.Button)
	case TypeLoading:
		c.Loading = &LoadingItem{}
		return json.Unmarshal(data, c.Loading)
	default:
		c.unknownType = string(probe.Type)
		return nil
	}
}

func (c ContentItem) MarshalJSON() ([]byte, error) {
	switch {
	case c.Image != nil:
		return marshalTagged(TypeImage, c.Image)
	case c.Text != nil:
		return marshalTagged(TypeText, c.Text)
	case c.Heading != nil:
		return marshalTagged(TypeHeading, c.Heading)
	case c.Input != nil:
		return marshalTagged(TypeInput, c.Input)
	case c.Carousel != nil:
		return marshalTagged(TypeCarousel, c.Carousel)
	case c.Selection != nil:
		return marshalTagged(TypeSelection, c.Selection)
	case c.Card != nil:
		return marshalTagged(TypeCard, c.Card)
	case c.Button != nil:
		return marshalTagged(TypeButton, c.Button)
	case c.Loading != nil:
		return marshalTagged(TypeLoading, c.Loading)
	}
	return json.Marshal(struct {
		Type string `json:"type"`
	}{Type: c.unknownType})
}

func marshalTagged(t ItemType, v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	tag := []byte(`{"type":` + strconv.Quote(string(t)))
	if len(raw) == 2 { // "{}"
		return append(tag, '}'), nil
	}
	tag = append(tag, ',')
	return append(tag, raw[1:]...), nil
}

// ScreenContent is one authored screen: a stable id plus an ordered content
// list and layout spacing. Authored data is immutable once validated;
// per-play state lives in the player, never here.
type ScreenContent struct {
	ID      string        `json:"id"`
	Content []ContentItem `json:"content"`
	Gap     int           `json:"gap,omitempty"`
	Padding int           `json:"padding,omitempty"`
}
