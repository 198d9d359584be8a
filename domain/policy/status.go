package policy

// StatusStyle is how a policy status badge is presented
type StatusStyle struct {
	Label string `json:"label"`
	Color string `json:"color"`
	Known bool   `json:"known"`
}

// Badge colors
const (
	ColorGreen   = "green"
	ColorOrange  = "orange"
	ColorBlue    = "blue"
	ColorRed     = "red"
	ColorNeutral = "neutral"
)

var statusStyles = map[string]StatusStyle{
	StatusInForce:    {Label: StatusInForce, Color: ColorGreen, Known: true},
	StatusSuperseded: {Label: StatusSuperseded, Color: ColorOrange, Known: true},
	StatusPlanned:    {Label: StatusPlanned, Color: ColorBlue, Known: true},
	StatusEnded:      {Label: StatusEnded, Color: ColorRed, Known: true},
}

// StatusStyleOf maps any status string to a style. Unrecognized statuses
// get the neutral color and keep their own text as the label.
func StatusStyleOf(status string) StatusStyle {
	if style, ok := statusStyles[status]; ok {
		return style
	}
	label := status
	if label == "" {
		label = "Unknown"
	}
	return StatusStyle{Label: label, Color: ColorNeutral}
}
