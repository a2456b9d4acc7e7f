package domain

// ScreenResponse is the normalized outward event describing what the user
// did on a screen. It is shaped for direct JSON serialization; the calling
// navigation layer adds screen index and timing fields on top.
type ScreenResponse struct {
	ResponseKey    string            `json:"responseKey"`
	Selected       []string          `json:"selected,omitempty"`
	Branch         any               `json:"branch,omitempty"`
	Button         string            `json:"button,omitempty"`
	InputValues    map[string]string `json:"inputValues,omitempty"`
	IsIntermediate bool              `json:"isIntermediate,omitempty"`
}
