package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadflow/internal/model"
)

func TestNormalize_FullRow(t *testing.T) {
	lead, ok := Normalize(Row{
		"name":   "Acme Corp",
		"email":  "sales@acme.com",
		"phone":  "555-0101",
		"status": "Contacted",
		"notes":  "Very interested in the premium tier",
	})
	require.True(t, ok)
	assert.Equal(t, "Acme Corp", lead.Name)
	assert.Equal(t, "sales@acme.com", lead.Email)
	assert.Equal(t, "555-0101", lead.Phone)
	assert.Equal(t, "Contacted", lead.Status)
	assert.Equal(t, "Very interested in the premium tier", lead.Notes)
}

func TestNormalize_MissingNameSkips(t *testing.T) {
	_, ok := Normalize(Row{"email": "x@y.com", "notes": "no name here"})
	assert.False(t, ok)
}

func TestNormalize_BlankNameSkips(t *testing.T) {
	_, ok := Normalize(Row{"name": "", "email": "x@y.com"})
	assert.False(t, ok)
}

func TestNormalize_NASentinelsTreatedAsAbsent(t *testing.T) {
	for _, sentinel := range []string{"NaN", "nan", "N/A", "n/a", "null", "NULL", "None"} {
		t.Run(sentinel, func(t *testing.T) {
			_, ok := Normalize(Row{"name": sentinel})
			assert.False(t, ok, "sentinel name should skip the row")

			lead, ok := Normalize(Row{"name": "Acme", "status": sentinel, "email": sentinel})
			require.True(t, ok)
			assert.Equal(t, model.DefaultStatus, lead.Status)
			assert.Equal(t, "", lead.Email)
		})
	}
}

func TestNormalize_Defaults(t *testing.T) {
	lead, ok := Normalize(Row{"name": "Acme"})
	require.True(t, ok)
	assert.Equal(t, model.DefaultStatus, lead.Status)
	assert.Equal(t, "", lead.Email)
	assert.Equal(t, "", lead.Phone)
	assert.Equal(t, "", lead.Notes)
	assert.Equal(t, model.Sentiment(""), lead.Sentiment) // classification happens later
}

func TestNormalize_StatusDefaultOnlyWhenAbsent(t *testing.T) {
	lead, ok := Normalize(Row{"name": "Acme", "status": "Closed Won"})
	require.True(t, ok)
	assert.Equal(t, "Closed Won", lead.Status)
}

func TestNormalize_CaseSensitiveKeys(t *testing.T) {
	// "Name" is not "name"; the row has no usable name.
	_, ok := Normalize(Row{"Name": "Acme"})
	assert.False(t, ok)
}

func TestNormalize_Pure(t *testing.T) {
	row := Row{"name": "Acme", "notes": "fine"}
	first, ok1 := Normalize(row)
	second, ok2 := Normalize(row)
	require.True(t, ok1)
	require.True(t, ok2)
	assert.Equal(t, first, second)
	// Input row untouched.
	assert.Equal(t, Row{"name": "Acme", "notes": "fine"}, row)
}
