package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCSVRoundTrip(t *testing.T) {
	headers := []string{"sku", "qty", "note"}
	rows := []map[string]any{
		{"sku": "WID-1", "qty": float64(42), "note": "fragile, keep upright"},
		{"sku": "WID-2", "qty": nil, "note": `said "urgent"`},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, headers, rows))

	gotHeaders, gotRows, err := ParseCSV(&buf)
	require.NoError(t, err)
	require.Equal(t, headers, gotHeaders)
	require.Len(t, gotRows, 2)
	require.Equal(t, "WID-1", gotRows[0]["sku"])
	require.Equal(t, float64(42), gotRows[0]["qty"])
	require.Equal(t, "fragile, keep upright", gotRows[0]["note"])
	require.Nil(t, gotRows[1]["qty"])
	require.Equal(t, `said "urgent"`, gotRows[1]["note"])
}

func TestWriteCSVEscaping(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, []string{"a"}, []map[string]any{{"a": "x,y"}})
	require.NoError(t, err)
	require.Contains(t, buf.String(), `"x,y"`)
}

func TestWriteCSVJSONStringify(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, []string{"meta"}, []map[string]any{
		{"meta": map[string]any{"k": "v"}},
	})
	require.NoError(t, err)
	require.Contains(t, buf.String(), `"{""k"":""v""}"`)
}

func TestParseCSVEmptyInput(t *testing.T) {
	headers, rows, err := ParseCSV(strings.NewReader(""))
	require.NoError(t, err)
	require.Nil(t, headers)
	require.Nil(t, rows)
}
