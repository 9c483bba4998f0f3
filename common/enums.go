// Package common keeps enums shared between the CLI surface and the codecs
// so that neither has to import the other.
package common

import "fmt"

// Format identifies a supported board file format.
type Format int

const (
	FormatGridset Format = iota
	FormatOPML
)

// Name is the registry key of the format.
func (f Format) Name() string {
	switch f {
	case FormatGridset:
		return "gridset"
	case FormatOPML:
		return "opml"
	default:
		// this should never happen
		panic("unsupported format requested")
	}
}

func (f Format) String() string {
	return f.Name()
}

// Ext is the conventional file extension of the format.
func (f Format) Ext() string {
	switch f {
	case FormatGridset:
		return ".gridset"
	case FormatOPML:
		return ".opml"
	default:
		// this should never happen
		panic("unsupported format requested")
	}
}

// ParseFormat maps a format name to its enum value.
func ParseFormat(name string) (Format, error) {
	switch name {
	case "gridset":
		return FormatGridset, nil
	case "opml":
		return FormatOPML, nil
	default:
		return 0, fmt.Errorf("%s is not a valid Format", name)
	}
}

// FormatNames lists all registered format names for help output.
func FormatNames() []string {
	return []string{FormatGridset.Name(), FormatOPML.Name()}
}
