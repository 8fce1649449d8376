package ingest

import (
	"github.com/sells-group/leadflow/internal/model"
)

// Row is one decoded table row, keyed by column header. Keys are
// case-sensitive; the recognized columns are name, email, phone,
// status, and notes.
type Row map[string]string

// naSentinels are cell values that common tabular parsers emit for
// empty or not-a-value cells. They are treated the same as a missing
// column.
var naSentinels = map[string]struct{}{
	"":     {},
	"NaN":  {},
	"nan":  {},
	"N/A":  {},
	"n/a":  {},
	"null": {},
	"NULL": {},
	"None": {},
}

func fieldValue(row Row, key string) (string, bool) {
	v, ok := row[key]
	if !ok {
		return "", false
	}
	if _, na := naSentinels[v]; na {
		return "", false
	}
	return v, true
}

// Normalize converts one heterogeneous row into a lead record. It is a
// pure function of the row. The second return value is false when the
// row has no usable name, in which case the row is skipped entirely.
// Status defaults to model.DefaultStatus when absent; email, phone and
// notes default to empty strings.
func Normalize(row Row) (model.Lead, bool) {
	name, ok := fieldValue(row, "name")
	if !ok {
		return model.Lead{}, false
	}

	lead := model.Lead{
		Name:   name,
		Status: model.DefaultStatus,
	}
	if email, ok := fieldValue(row, "email"); ok {
		lead.Email = email
	}
	if phone, ok := fieldValue(row, "phone"); ok {
		lead.Phone = phone
	}
	if status, ok := fieldValue(row, "status"); ok {
		lead.Status = status
	}
	if notes, ok := fieldValue(row, "notes"); ok {
		lead.Notes = notes
	}

	return lead, true
}
