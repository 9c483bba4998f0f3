package commands

import (
	"aacc/board"
)

// Grid container command vocabulary. Command ids and parameter keys follow
// the container's native naming; the fixed tables below double as the
// intent ⇄ command lookup used by both decode and encode.

// Known parameter keys of the grid container vocabulary.
const (
	ParamGrid     = "grid"
	ParamText     = "text"
	ParamKeys     = "keys"
	ParamButton   = "button"
	ParamFile     = "file"
	ParamVerbPart = "verbPart"
	ParamPerson   = "person"
	ParamNumber   = "number"
)

const (
	cmdSpeak          = "Action.Speak"
	cmdSpeakNow       = "Speech.SpeakNow"
	cmdStopSpeech     = "Speech.Stop"
	cmdInsertText     = "Action.InsertText"
	cmdJumpTo         = "Jump.To"
	cmdJumpBack       = "Jump.Back"
	cmdJumpHome       = "Jump.Home"
	cmdJumpKeyboard   = "Jump.Keyboard"
	cmdDeleteWord     = "Action.DeleteWord"
	cmdDeleteLetter   = "Action.DeleteLetter"
	cmdClear          = "Action.Clear"
	cmdCopy           = "Action.Copy"
	cmdPaste          = "Action.Paste"
	cmdKeyboard       = "ComputerControl.Keyboard"
	cmdClick          = "ComputerControl.Click"
	cmdPlaySound      = "Media.PlaySound"
	cmdPlayVideo      = "Media.PlayVideo"
	cmdScanNext       = "Scanning.Next"
	cmdScanSelect     = "Scanning.Select"
	cmdCorrection     = "Text.Correction"
	cmdVerbMorphology = "Grammar.VerbMorphology"
)

// simple commands carry no parameters in either direction
var gridsetSimple = map[board.Intent]string{
	board.StopSpeech:       cmdStopSpeech,
	board.GoBack:           cmdJumpBack,
	board.GoHome:           cmdJumpHome,
	board.NavigateKeyboard: cmdJumpKeyboard,
	board.DeleteWord:       cmdDeleteWord,
	board.DeleteLetter:     cmdDeleteLetter,
	board.ClearText:        cmdClear,
	board.CopyText:         cmdCopy,
	board.PasteText:        cmdPaste,
	board.ScanNext:         cmdScanNext,
	board.ScanSelect:       cmdScanSelect,
	board.Correction:       cmdCorrection,
}

var gridsetSimpleIntents = invert(gridsetSimple)

func invert(m map[board.Intent]string) map[string]board.Intent {
	out := make(map[string]board.Intent, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

type gridsetVocabulary struct{}

func (gridsetVocabulary) toNative(a *board.SemanticAction) (board.NativeCommand, bool) {
	if id, ok := gridsetSimple[a.Intent]; ok {
		return board.NativeCommand{ID: id}, true
	}
	switch a.Intent {
	case board.SpeakText:
		return withParam(cmdSpeak, ParamText, a.Text), true
	case board.SpeakNow:
		return withParam(cmdSpeakNow, ParamText, a.Text), true
	case board.InsertText:
		return withParam(cmdInsertText, ParamText, a.Text), true
	case board.NavigateTo:
		return withParam(cmdJumpTo, ParamGrid, a.Target), true
	case board.SendKeys:
		return withParam(cmdKeyboard, ParamKeys, a.Text), true
	case board.MouseClick:
		return withParam(cmdClick, ParamButton, a.Text), true
	case board.PlaySound:
		return withParam(cmdPlaySound, ParamFile, a.Text), true
	case board.PlayVideo:
		return withParam(cmdPlayVideo, ParamFile, a.Text), true
	case board.PlatformSpecific:
		if !a.Grammar.IsZero() {
			return verbMorphology(a.Grammar), true
		}
		return board.NativeCommand{}, false
	default:
		return board.NativeCommand{}, false
	}
}

func (gridsetVocabulary) fromNative(cmd board.NativeCommand) *board.SemanticAction {
	if intent, ok := gridsetSimpleIntents[cmd.ID]; ok {
		return board.NewAction(intent)
	}
	switch cmd.ID {
	case cmdSpeak:
		a := board.NewAction(board.SpeakText)
		a.Text, _ = cmd.Param(ParamText)
		return a
	case cmdSpeakNow:
		a := board.NewAction(board.SpeakNow)
		a.Text, _ = cmd.Param(ParamText)
		return a
	case cmdInsertText:
		a := board.NewAction(board.InsertText)
		a.Text, _ = cmd.Param(ParamText)
		return a
	case cmdJumpTo:
		a := board.NewAction(board.NavigateTo)
		a.Target, _ = cmd.Param(ParamGrid)
		return a
	case cmdKeyboard:
		a := board.NewAction(board.SendKeys)
		a.Text, _ = cmd.Param(ParamKeys)
		return a
	case cmdClick:
		a := board.NewAction(board.MouseClick)
		a.Text, _ = cmd.Param(ParamButton)
		return a
	case cmdPlaySound:
		a := board.NewAction(board.PlaySound)
		a.Text, _ = cmd.Param(ParamFile)
		return a
	case cmdPlayVideo:
		a := board.NewAction(board.PlayVideo)
		a.Text, _ = cmd.Param(ParamFile)
		return a
	case cmdVerbMorphology:
		a := board.NewAction(board.PlatformSpecific)
		g := &board.Grammar{}
		g.VerbState, _ = cmd.Param(ParamVerbPart)
		g.Person, _ = cmd.Param(ParamPerson)
		g.Number, _ = cmd.Param(ParamNumber)
		a.Grammar = g
		return a
	default:
		// unknown vocabulary - carried through the platform bag only
		return board.NewAction(board.PlatformSpecific)
	}
}

func withParam(id, key, value string) board.NativeCommand {
	if value == "" {
		return board.NativeCommand{ID: id}
	}
	return board.NativeCommand{ID: id, Params: []board.CommandParam{{Key: key, Value: value}}}
}

// verbMorphology emits only the parameters that are present; with none
// present the command carries no parameter list at all.
func verbMorphology(g *board.Grammar) board.NativeCommand {
	cmd := board.NativeCommand{ID: cmdVerbMorphology}
	if g.VerbState != "" {
		cmd.Params = append(cmd.Params, board.CommandParam{Key: ParamVerbPart, Value: g.VerbState})
	}
	if g.Person != "" {
		cmd.Params = append(cmd.Params, board.CommandParam{Key: ParamPerson, Value: g.Person})
	}
	if g.Number != "" {
		cmd.Params = append(cmd.Params, board.CommandParam{Key: ParamNumber, Value: g.Number})
	}
	return cmd
}
