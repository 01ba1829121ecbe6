// Package display holds the format-neutral views that commands hand to a
// renderer.
package display

// View is the result of a command. Terminal and text renderers show the
// title, the table and the message. The JSON renderer encodes Data when it
// is set, so scripts get the full document instead of the table cells.
type View struct {
	Title   string     `json:"title,omitempty"`
	Headers []string   `json:"headers,omitempty"`
	Rows    [][]string `json:"rows,omitempty"`
	Message string     `json:"message,omitempty"`
	Data    any        `json:"data,omitempty"`
}

// NewTable creates a view with a title and column headers
func NewTable(title string, headers ...string) *View {
	return &View{Title: title, Headers: headers}
}

// AddRow appends a row to the table
func (v *View) AddRow(cells ...string) *View {
	v.Rows = append(v.Rows, cells)
	return v
}

// WithMessage sets the trailing message
func (v *View) WithMessage(msg string) *View {
	v.Message = msg
	return v
}

// WithData sets the machine-readable payload
func (v *View) WithData(data any) *View {
	v.Data = data
	return v
}

// Message creates a view carrying only a message
func Message(msg string) *View {
	return &View{Message: msg}
}

// IsEmpty reports whether the view has nothing to show
func (v *View) IsEmpty() bool {
	return v == nil || (v.Title == "" && len(v.Rows) == 0 && v.Message == "" && v.Data == nil)
}
