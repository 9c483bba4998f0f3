// Package commands maps abstract action intents onto the concrete command
// vocabulary of each target format and back. The mapping is intentionally
// asymmetric: decoding always records the original native command verbatim in
// the action's per-format bag, so re-encoding to the same format reproduces
// the exact command even when the semantic mapping is lossy. Re-encoding
// through a different format only preserves category and intent; native
// parameters are regenerated from the action payload.
package commands

import (
	"fmt"

	"aacc/board"
)

// vocabulary is one format's command table.
type vocabulary interface {
	toNative(a *board.SemanticAction) (board.NativeCommand, bool)
	fromNative(cmd board.NativeCommand) *board.SemanticAction
}

var vocabularies = map[string]vocabulary{
	"gridset": gridsetVocabulary{},
}

// ToNative returns the native command for an action in the given format. When
// the format has no native equivalent for the intent, the action's declared
// fallback is encoded as the format's closest legacy command instead. An
// unknown format is an error raised before anything else.
func ToNative(format string, a *board.SemanticAction) (board.NativeCommand, error) {
	voc, ok := vocabularies[format]
	if !ok {
		return board.NativeCommand{}, fmt.Errorf("no command vocabulary for format %q", format)
	}
	if a == nil {
		return board.NativeCommand{}, fmt.Errorf("nil action")
	}
	// verbatim pass-through wins: the action came from this very format
	if cmd, ok := a.Platform[format]; ok {
		return cmd, nil
	}
	if cmd, ok := voc.toNative(a); ok {
		return cmd, nil
	}
	return fallbackCommand(voc, a), nil
}

// FromNative builds a semantic action from a native command, recording the
// command verbatim for lossless same-format round trips.
func FromNative(format string, cmd board.NativeCommand) (*board.SemanticAction, error) {
	voc, ok := vocabularies[format]
	if !ok {
		return nil, fmt.Errorf("no command vocabulary for format %q", format)
	}
	a := voc.fromNative(cmd)
	a.SetPlatform(format, cmd)
	return a, nil
}

// fallbackCommand encodes the declared fallback through the same vocabulary.
// Without a declared fallback the action degrades to speaking its payload.
func fallbackCommand(voc vocabulary, a *board.SemanticAction) board.NativeCommand {
	fb := a.Fallback
	if fb == nil {
		fb = &board.Fallback{Kind: board.KindSpeak, Message: a.Text}
	}
	var sub board.SemanticAction
	switch fb.Kind {
	case board.KindNavigate:
		sub = board.SemanticAction{Category: board.Navigation, Intent: board.NavigateTo, Target: fb.TargetPageID}
	default:
		sub = board.SemanticAction{Category: board.Communication, Intent: board.SpeakText, Text: fb.Message}
	}
	cmd, ok := voc.toNative(&sub)
	if !ok {
		// every vocabulary is required to express plain speech
		panic("vocabulary cannot express speak fallback")
	}
	return cmd
}
