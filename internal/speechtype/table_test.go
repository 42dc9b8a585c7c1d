package speechtype

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ppiankov/parlasf/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = "https://www.althingi.is/altext/raeda/146/rad20170124T153112.html\tfyrirspurn\n" +
	"http://www.althingi.is/altext/raeda/120/120.html\tumræður utan dagskrár\n"

func TestResolve(t *testing.T) {
	table, err := Read(strings.NewReader(sample))
	require.NoError(t, err)

	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			name:   "exact match after scheme normalization",
			source: "http://www.althingi.is/altext/raeda/146/rad20170124T153112.html",
			want:   "fyrirspurn",
		},
		{
			name:   "query is ignored",
			source: "http://www.althingi.is/altext/raeda/146/rad20170124T153112.html?x=1",
			want:   "fyrirspurn",
		},
		{
			name:   "numeric fallback",
			source: "http://www.althingi.is/dba-bin/raeda.pl?lthing=120&raeda=120",
			want:   "umræður utan dagskrár",
		},
		{
			name:   "numeric fallback without entry",
			source: "http://www.althingi.is/dba-bin/raeda.pl?lthing=120&raeda=999",
			want:   model.NoSpeechType,
		},
		{
			name:   "single numeric value",
			source: "http://www.althingi.is/raeda.pl?lthing=120",
			want:   model.NoSpeechType,
		},
		{
			name:   "no numbers",
			source: "http://example.org/speech",
			want:   model.NoSpeechType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, table.Resolve(tt.source))
		})
	}
}

func TestTypes(t *testing.T) {
	table := Table{"a": "x", "b": "y", "c": "x"}
	assert.Equal(t, []string{"x", "y"}, table.Types())
}

func TestTypes_StableOrder(t *testing.T) {
	table := Table{
		"http://a": "um fundarstjórn",
		"http://b": "andsvar",
		"http://c": "svar",
		"http://d": "fyrirspurn",
		"http://e": "ræða",
		"http://f": "flutningsræða",
	}
	want := []string{"andsvar", "flutningsræða", "fyrirspurn", "ræða", "svar", "um fundarstjórn"}
	for i := 0; i < 20; i++ {
		require.Equal(t, want, table.Types())
	}
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	table := Table{"http://a": "svar", "http://b": "ræða"}

	require.NoError(t, Write(&buf, []string{"http://b", "http://a"}, table))
	assert.Equal(t, "http://b\træða\nhttp://a\tsvar\n", buf.String())
}
