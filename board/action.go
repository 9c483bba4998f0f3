package board

import "strings"

// ActionKind is the legacy three-way classification of a button action kept
// for formats that know nothing richer. It is always computed from the
// semantic action, never stored, so the two representations cannot diverge.
type ActionKind int

const (
	KindSpeak ActionKind = iota
	KindNavigate
	KindAction
)

func (k ActionKind) String() string {
	switch k {
	case KindNavigate:
		return "NAVIGATE"
	case KindAction:
		return "ACTION"
	default:
		return "SPEAK"
	}
}

// Category groups intents by the kind of capability they need from a format.
type Category int

const (
	Communication Category = iota
	Navigation
	TextEditing
	SystemControl
	Media
	// Access covers switch-scanning control intents.
	Access
	Custom
)

func (c Category) String() string {
	switch c {
	case Communication:
		return "Communication"
	case Navigation:
		return "Navigation"
	case TextEditing:
		return "TextEditing"
	case SystemControl:
		return "SystemControl"
	case Media:
		return "Media"
	case Access:
		return "Accessibility"
	default:
		return "Custom"
	}
}

// Intent is the closed set of abstract action meanings observed across all
// supported formats. Formats that cannot express an intent natively fall back
// per SemanticAction.Fallback.
type Intent int

const (
	SpeakText Intent = iota
	SpeakNow
	StopSpeech
	InsertText
	NavigateTo
	GoBack
	GoHome
	NavigateKeyboard
	DeleteWord
	DeleteLetter
	ClearText
	CopyText
	PasteText
	SendKeys
	MouseClick
	PlaySound
	PlayVideo
	ScanNext
	ScanSelect
	Correction
	PlatformSpecific
)

var intentNames = map[Intent]string{
	SpeakText:        "speakText",
	SpeakNow:         "speakNow",
	StopSpeech:       "stopSpeech",
	InsertText:       "insertText",
	NavigateTo:       "navigateTo",
	GoBack:           "goBack",
	GoHome:           "goHome",
	NavigateKeyboard: "navigateKeyboard",
	DeleteWord:       "deleteWord",
	DeleteLetter:     "deleteLetter",
	ClearText:        "clearText",
	CopyText:         "copyText",
	PasteText:        "pasteText",
	SendKeys:         "sendKeys",
	MouseClick:       "mouseClick",
	PlaySound:        "playSound",
	PlayVideo:        "playVideo",
	ScanNext:         "scanNext",
	ScanSelect:       "scanSelect",
	Correction:       "correction",
	PlatformSpecific: "platformSpecific",
}

func (i Intent) String() string {
	if s, ok := intentNames[i]; ok {
		return s
	}
	return "platformSpecific"
}

// CategoryOf returns the category an intent belongs to.
func CategoryOf(i Intent) Category {
	switch i {
	case SpeakText, SpeakNow, StopSpeech:
		return Communication
	case InsertText, DeleteWord, DeleteLetter, ClearText, CopyText, PasteText, Correction:
		return TextEditing
	case NavigateTo, GoBack, GoHome, NavigateKeyboard:
		return Navigation
	case SendKeys, MouseClick:
		return SystemControl
	case PlaySound, PlayVideo:
		return Media
	case ScanNext, ScanSelect:
		return Access
	default:
		return Custom
	}
}

// CommandParam is a single key/value pair of a native command. Order matters
// to some formats, so parameters are kept as a list, not a map.
type CommandParam struct {
	Key   string
	Value string
}

// NativeCommand is the concrete, format-specific shape of an action: an
// opaque command id plus ordered parameters.
type NativeCommand struct {
	ID     string
	Params []CommandParam
}

// Param returns the value of the first parameter with the given key.
func (c NativeCommand) Param(key string) (string, bool) {
	for _, p := range c.Params {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// Grammar carries morphology metadata attached to text payloads by formats
// that support grammatical transformations.
type Grammar struct {
	PartOfSpeech string
	Person       string
	Number       string
	VerbState    string
}

func (g *Grammar) IsZero() bool {
	return g == nil || (g.PartOfSpeech == "" && g.Person == "" && g.Number == "" && g.VerbState == "")
}

// SymbolRun pairs literal text with an optional symbol image, forming one run
// of a rich-text payload.
type SymbolRun struct {
	Text  string
	Image string
}

// RichText is an ordered sequence of symbol runs. The flat text form is the
// concatenation of all run texts.
type RichText struct {
	Runs []SymbolRun
}

func (r *RichText) Text() string {
	if r == nil {
		return ""
	}
	var sb strings.Builder
	for _, run := range r.Runs {
		sb.WriteString(run.Text)
	}
	return sb.String()
}

// Fallback describes what a consuming format should do with an intent it
// cannot express natively.
type Fallback struct {
	Kind         ActionKind
	Message      string
	TargetPageID string
}

// SemanticAction is the single canonical representation of what a button
// does. Platform holds, per format name, the native command exactly as it was
// read, so re-encoding to the same format reproduces the original command
// even when the semantic mapping is lossy.
type SemanticAction struct {
	Category Category
	Intent   Intent

	// Text is the primary payload: spoken/inserted text, keystrokes for
	// SendKeys, media locator for PlaySound/PlayVideo.
	Text string

	// Target is the page id or page name for navigation intents.
	Target string

	Rich     *RichText
	Grammar  *Grammar
	Platform map[string]NativeCommand
	Fallback *Fallback
}

// NewAction builds an action with the category derived from the intent.
func NewAction(intent Intent) *SemanticAction {
	return &SemanticAction{Category: CategoryOf(intent), Intent: intent}
}

// SetPlatform records the verbatim native command for a format.
func (a *SemanticAction) SetPlatform(format string, cmd NativeCommand) {
	if a.Platform == nil {
		a.Platform = make(map[string]NativeCommand)
	}
	a.Platform[format] = cmd
}

// Kind projects the button action onto the legacy three-way classification.
// Buttons without an action speak their message.
func (b *Button) Kind() ActionKind {
	if b.Action == nil {
		return KindSpeak
	}
	switch b.Action.Intent {
	case SpeakText, SpeakNow, InsertText:
		return KindSpeak
	case NavigateTo, GoBack, GoHome, NavigateKeyboard:
		return KindNavigate
	default:
		return KindAction
	}
}
