// Package common keeps enumerations shared by configuration and processing
// packages, so neither has to import the other to name a format.
package common

//go:generate go tool go-enum --marshal --names -f enums.go

// Specification of requested output type.
// ENUM(formatted, plain, pdf)
type OutputFmt int

func (o OutputFmt) Ext() string {
	switch o {
	case OutputFmtFormatted, OutputFmtPlain:
		return ".txt"
	case OutputFmtPdf:
		return ".pdf"
	default:
		// this should never happen
		panic("unsupported format requested")
	}
}

// Specification of how sources are imported.
// ENUM(auto, card, lorebook, multiple)
type ImportMode int

// Single reports whether mode expects exactly one source file.
func (m ImportMode) Single() bool {
	return m == ImportModeCard || m == ImportModeLorebook
}
