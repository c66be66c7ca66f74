package models

// FieldType is the closed set of input kinds a form field may have.
type FieldType string

const (
	FieldShortText      FieldType = "short_text"
	FieldLongText       FieldType = "long_text"
	FieldMultipleChoice FieldType = "multiple_choice"
	FieldCheckboxes     FieldType = "checkboxes"
	FieldDropdown       FieldType = "dropdown"
	FieldImage          FieldType = "image"
	FieldFileUpload     FieldType = "file_upload"
	FieldSectionBreak   FieldType = "section_break"
	FieldDivider        FieldType = "divider"
)

// Valid reports whether t is a known field type.
func (t FieldType) Valid() bool {
	switch t {
	case FieldShortText, FieldLongText, FieldMultipleChoice, FieldCheckboxes, FieldDropdown,
		FieldImage, FieldFileUpload, FieldSectionBreak, FieldDivider:
		return true
	}
	return false
}

// IsLayout reports whether the field only affects presentation and never
// carries a submitted value.
func (t FieldType) IsLayout() bool {
	return t == FieldSectionBreak || t == FieldDivider
}

type Field struct {
	ID          string    `json:"id"`
	Type        FieldType `json:"type"`
	Label       string    `json:"label"`
	Required    bool      `json:"required,omitempty"`
	Options     []string  `json:"options,omitempty"`
	Description string    `json:"description,omitempty"`
	Placeholder string    `json:"placeholder,omitempty"`
}

// DataFields returns the fields that collect values, in form order.
func (l FieldList) DataFields() []Field {
	out := make([]Field, 0, len(l))
	for _, f := range l {
		if !f.Type.IsLayout() {
			out = append(out, f)
		}
	}
	return out
}
