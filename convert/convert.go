// Package convert defines the surface every board format codec implements
// and the registry the CLI resolves codecs through. Codecs are pure functions
// over bytes and documents: they read their input fully into memory, build
// output fresh, and retain nothing between calls, so independent conversions
// are safe to run concurrently.
package convert

import (
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"aacc/board"
	"aacc/common"
)

// Options carries the injected capabilities of a codec call. The zero value
// is usable: a nop logger and uuid-based id generation.
type Options struct {
	Log *zap.Logger

	// IDs supplies ids when the input format has no stable ids of its own.
	IDs board.IDGenerator

	// TargetLanguage, when set during translation application, is recorded
	// in formats that track the board language.
	TargetLanguage string

	// BuiltinAssets resolves bracket-prefixed built-in asset names to an
	// archive path. Without a handler such references stay unresolved,
	// which is not an error.
	BuiltinAssets func(ref board.SymbolRef) (string, bool)
}

// Normalized returns a copy with all absent capabilities filled in.
func (o *Options) Normalized() *Options {
	out := Options{}
	if o != nil {
		out = *o
	}
	if out.Log == nil {
		out.Log = zap.NewNop()
	}
	if out.IDs == nil {
		out.IDs = board.UUIDs{}
	}
	return &out
}

// Codec converts between one file format and the canonical document model.
type Codec interface {
	Format() common.Format

	Decode(data []byte, opts *Options) (*board.Document, error)
	Encode(doc *board.Document, opts *Options) ([]byte, error)

	// ExtractText returns every translatable text of the input (captions,
	// spoken text, vocabulary items, board description) in document order.
	ExtractText(data []byte, opts *Options) ([]string, error)

	// ApplyTranslations rewrites matched texts in place and returns the
	// repackaged input; it is a same-format round trip.
	ApplyTranslations(data []byte, translations map[string]string, opts *Options) ([]byte, error)
}

// Registry resolves format names and file extensions to codecs.
type Registry struct {
	codecs map[string]Codec
}

func NewRegistry() *Registry {
	return &Registry{codecs: make(map[string]Codec)}
}

func (r *Registry) Register(c Codec) {
	r.codecs[c.Format().Name()] = c
}

// Lookup returns the codec registered under the format name.
func (r *Registry) Lookup(name string) (Codec, error) {
	if c, ok := r.codecs[name]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// Detect picks a codec by the file's extension.
func (r *Registry) Detect(path string) (Codec, error) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, c := range r.codecs {
		if c.Format().Ext() == ext {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: no codec for extension %q", ErrUnknownFormat, ext)
}

// Formats lists registered format names.
func (r *Registry) Formats() []string {
	out := make([]string, 0, len(r.codecs))
	for name := range r.codecs {
		out = append(out, name)
	}
	return out
}
