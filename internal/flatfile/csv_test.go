package flatfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatRows(t *testing.T) {
	rows := [][]string{
		{"id", "title"},
		{"l1", `Tent, "large"`},
		{"l2", ""},
	}

	t.Run("minimal quoting", func(t *testing.T) {
		got, err := formatRows(rows, ',', false)
		require.NoError(t, err)
		assert.Equal(t, "id,title\nl1,\"Tent, \"\"large\"\"\"\nl2,\n", string(got))
	})

	t.Run("quote all", func(t *testing.T) {
		got, err := formatRows(rows, ',', true)
		require.NoError(t, err)
		assert.Equal(t, "\"id\",\"title\"\n\"l1\",\"Tent, \"\"large\"\"\"\n\"l2\",\"\"\n", string(got))
	})

	t.Run("single empty cell survives", func(t *testing.T) {
		got, err := formatRows([][]string{{"note"}, {""}}, ',', false)
		require.NoError(t, err)
		parsed, err := parseRows(got, ',')
		require.NoError(t, err)
		assert.Equal(t, [][]string{{"note"}, {""}}, parsed)
	})
}

func TestParseRowsRoundTrip(t *testing.T) {
	rows := [][]string{
		{"id", "body"},
		{"m1", "line one\nline two"},
		{"m2", "semi;colon"},
		{"m3", `"quoted"`},
	}
	for _, quoteAll := range []bool{false, true} {
		data, err := formatRows(rows, ';', quoteAll)
		require.NoError(t, err)
		got, err := parseRows(data, ';')
		require.NoError(t, err)
		assert.Equal(t, rows, got, "quoteAll=%v", quoteAll)
	}
}

func TestParseRowsRagged(t *testing.T) {
	got, err := parseRows([]byte("a,b,c\n1\n1,2,3,4\n"), ',')
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b", "c"}, {"1"}, {"1", "2", "3", "4"}}, got)
}

func TestParseRowsMalformed(t *testing.T) {
	_, err := parseRows([]byte("a,b\n\"unterminated,2\n"), ',')
	assert.Error(t, err)
}
