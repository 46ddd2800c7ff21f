package entity

import "strings"

// AnalysisValues maps canonical field keys to raw value strings
type AnalysisValues map[string]string

// Clone returns an independent copy
func (v AnalysisValues) Clone() AnalysisValues {
	if v == nil {
		return nil
	}
	out := make(AnalysisValues, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// AnalysisSource tags where a mapping came from
type AnalysisSource string

const (
	SourcePDF  AnalysisSource = "pdf"
	SourceForm AnalysisSource = "form_webapp"

	editedPrefix = "edited_from_"
)

// IsEdited reports whether the mapping was produced by a manual edit
func (s AnalysisSource) IsEdited() bool {
	return strings.HasPrefix(string(s), editedPrefix)
}

// Origin returns the source before any manual edits
func (s AnalysisSource) Origin() AnalysisSource {
	return AnalysisSource(strings.TrimPrefix(string(s), editedPrefix))
}

// Edited returns the tag for a manual edit of this source.
// Editing an edited mapping keeps the first origin.
func (s AnalysisSource) Edited() AnalysisSource {
	return AnalysisSource(editedPrefix + string(s.Origin()))
}

// DisplayName returns the human readable source name used in headers
func (s AnalysisSource) DisplayName() string {
	var name string
	switch s.Origin() {
	case SourcePDF:
		name = "PDF файла"
	case SourceForm:
		name = "онлайн формы"
	default:
		name = "данных"
	}
	if s.IsEdited() {
		name += " (отредактировано)"
	}
	return name
}

// KnownSources lists every source tag the bot can produce
func KnownSources() []AnalysisSource {
	return []AnalysisSource{
		SourcePDF,
		SourceForm,
		SourcePDF.Edited(),
		SourceForm.Edited(),
	}
}
