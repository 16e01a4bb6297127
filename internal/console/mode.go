package console

// Values carries form field values keyed by field name.
type Values map[string]any

// Mode says whether a form creates a new record or edits an existing
// one. It is a closed two-variant type: the edit variant always carries
// the record being edited, so callers never branch on a nil check.
type Mode struct {
	edit   bool
	record Values
}

// CreateMode returns the create variant.
func CreateMode() Mode {
	return Mode{}
}

// EditMode returns the edit variant prefilled with record.
func EditMode(record Values) Mode {
	if record == nil {
		record = Values{}
	}
	return Mode{edit: true, record: record}
}

// IsEdit reports whether the form edits an existing record.
func (m Mode) IsEdit() bool { return m.edit }

// Record returns the record under edit. The second result is false in
// create mode, and no record is returned.
func (m Mode) Record() (Values, bool) {
	if !m.edit {
		return nil, false
	}
	return m.record, true
}

// Initial returns the value the named field starts with: the record's
// value in edit mode, the field default otherwise.
func (m Mode) Initial(field FieldSpec) any {
	if m.edit {
		if v, okv := m.record[field.Name]; okv {
			return v
		}
	}
	return field.Default
}

// Title derives the page heading for the given resource.
func (m Mode) Title(r Resource) string {
	if m.edit {
		return "Edit " + r.Singular
	}
	return "Create " + r.Singular
}

// Description derives the page subheading.
func (m Mode) Description(r Resource) string {
	if m.edit {
		return "Edit a " + r.Singular
	}
	return "Add a new " + r.Singular
}

// ActionLabel derives the submit button text.
func (m Mode) ActionLabel() string {
	if m.edit {
		return "Save changes"
	}
	return "Create"
}

// SuccessToast derives the toast shown after a successful save.
func (m Mode) SuccessToast(r Resource) string {
	if m.edit {
		return r.TitleSingular() + " updated."
	}
	return r.TitleSingular() + " created."
}
