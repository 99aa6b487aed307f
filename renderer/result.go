package renderer

// Result holds the output of a render.
type Result struct {
	Output   string    `json:"output"`
	Warnings []Warning `json:"warnings,omitempty"`
}

// WarningType categorizes render warnings.
type WarningType string

const (
	WarningStrippedLink         WarningType = "stripped_link"
	WarningStrippedImage        WarningType = "stripped_image"
	WarningMalformedTarget      WarningType = "malformed_target"
	WarningInvalidSchemePattern WarningType = "invalid_scheme_pattern"
	WarningHookFailed           WarningType = "hook_failed"
	WarningUnknownNode          WarningType = "unknown_node"
)

// Warning represents content that was neutralized or degraded while
// rendering. Warnings never prevent output from being produced.
type Warning struct {
	Type     WarningType `json:"type"`
	NodeType string      `json:"nodeType,omitempty"`
	Message  string      `json:"message"`
}
