// Package trace holds the rows a skip-trace upload file is built from.
package trace

// Row is one line of a skip-trace upload: the first prospect of a
// property plus its mailing and property addresses. Absent relations
// leave their fields empty.
type Row struct {
	FirstName       string
	LastName        string
	MailAddress     string
	MailCity        string
	MailZip         string
	PropertyAddress string
	PropertyCity    string
	PropertyState   string
	PropertyZip     string
}

// Header is the upload file's column order. The enrichment provider maps
// columns by position, so Values must stay aligned with it.
func Header() []string {
	return []string{
		"First Name",
		"Last Name",
		"Mail Address",
		"Mail City",
		"Mail Zip",
		"Property Address",
		"Property City",
		"Property State",
		"Property Zip",
	}
}

// Values renders the row in Header order.
func (r Row) Values() []string {
	return []string{
		r.FirstName,
		r.LastName,
		r.MailAddress,
		r.MailCity,
		r.MailZip,
		r.PropertyAddress,
		r.PropertyCity,
		r.PropertyState,
		r.PropertyZip,
	}
}
