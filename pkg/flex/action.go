package flex

// Action types accepted by the message API.
const (
	ActionURI            = "uri"
	ActionPostback       = "postback"
	ActionMessage        = "message"
	ActionDatetimePicker = "datetimepicker"
	ActionCamera         = "camera"
	ActionCameraRoll     = "cameraRoll"
	ActionLocation       = "location"
	ActionRichMenuSwitch = "richmenuswitch"
)

// ActionTypes lists every action type in display order.
var ActionTypes = []string{
	ActionURI, ActionPostback, ActionMessage, ActionDatetimePicker,
	ActionCamera, ActionCameraRoll, ActionLocation, ActionRichMenuSwitch,
}

// Action is the flattened union of every action variant. Which fields are
// meaningful depends on Type.
type Action struct {
	Type  string `json:"type"`
	Label string `json:"label,omitempty"`

	// uri
	URI    string  `json:"uri,omitempty"`
	AltURI *AltURI `json:"altUri,omitempty"`

	// postback, datetimepicker, richmenuswitch
	Data        string `json:"data,omitempty"`
	DisplayText string `json:"displayText,omitempty"`

	// message, postback
	Text string `json:"text,omitempty"`

	// datetimepicker
	Mode    string `json:"mode,omitempty"`
	Initial string `json:"initial,omitempty"`
	Max     string `json:"max,omitempty"`
	Min     string `json:"min,omitempty"`

	// richmenuswitch
	RichMenuAliasID string `json:"richMenuAliasId,omitempty"`
}

type AltURI struct {
	Desktop string `json:"desktop"`
}

// clone returns an independent copy of a, or nil.
func (a *Action) clone() *Action {
	if a == nil {
		return nil
	}
	cp := *a
	if a.AltURI != nil {
		alt := *a.AltURI
		cp.AltURI = &alt
	}
	return &cp
}
