package board

// Style fields are three-state: inherited (unset), explicit, or forced.
// Inherited means "no opinion" - the shared style record or the consuming
// format's defaults apply. Forced marks an explicit per-cell override that
// must supersede any shared record on formats distinguishing the two;
// inline-only formats treat explicit and forced the same way.

type FieldState int

const (
	FieldInherited FieldState = iota
	FieldExplicit
	FieldForced
)

type TextField struct {
	State FieldState
	Value string
}

func Text(v string) TextField       { return TextField{State: FieldExplicit, Value: v} }
func ForcedText(v string) TextField { return TextField{State: FieldForced, Value: v} }

func (f TextField) Set() bool { return f.State != FieldInherited }

type IntField struct {
	State FieldState
	Value int
}

func Int(v int) IntField       { return IntField{State: FieldExplicit, Value: v} }
func ForcedInt(v int) IntField { return IntField{State: FieldForced, Value: v} }

func (f IntField) Set() bool { return f.State != FieldInherited }

type BoolField struct {
	State FieldState
	Value bool
}

func Bool(v bool) BoolField       { return BoolField{State: FieldExplicit, Value: v} }
func ForcedBool(v bool) BoolField { return BoolField{State: FieldForced, Value: v} }

func (f BoolField) Set() bool { return f.State != FieldInherited }

// Style is the canonical visual description of a page or button. Every field
// is optional; an inherited field means "unspecified", never "default".
type Style struct {
	BackColor   TextField
	FontColor   TextField
	BorderColor TextField
	BorderWidth IntField
	FontSize    IntField
	FontFamily  TextField
	FontWeight  TextField
	FontStyle   TextField
	Underline   BoolField
	LabelAbove  BoolField
	Transparent BoolField
}

// IsZero reports whether no field carries a value.
func (s *Style) IsZero() bool {
	if s == nil {
		return true
	}
	return !s.BackColor.Set() && !s.FontColor.Set() && !s.BorderColor.Set() &&
		!s.BorderWidth.Set() && !s.FontSize.Set() && !s.FontFamily.Set() &&
		!s.FontWeight.Set() && !s.FontStyle.Set() && !s.Underline.Set() &&
		!s.LabelAbove.Set() && !s.Transparent.Set()
}
