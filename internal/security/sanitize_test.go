package security

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/folio-labs/portfolio-api/internal/apperr"
)

func TestClean(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain text untouched", "Tom's portfolio & blog", "Tom's portfolio & blog"},
		{"line comment", "admin'--", "admin'"},
		{"block comment", "a /* hidden */ b", "a  b"},
		{"trailing semicolon", "value;  ", "value"},
		{"inner semicolon kept", "a; b", "a; b"},
		{"extended procedures", "XP_cmdshell sp_who", "cmdshell who"},
		{"exec words", "exec foo EXECUTE bar", "foo  bar"},
		{"exec inside word kept", "executive", "executive"},
		{"script stripped", "<script>alert(1)</script>hello", "hello"},
		{"tags stripped", "<b>bold</b> text", "bold text"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Clean(tc.in))
		})
	}
}

func TestInspect(t *testing.T) {
	t.Run("accepts ordinary values", func(t *testing.T) {
		assert.NoError(t, Inspect("title", "Select a theme for the landing page"))
		assert.NoError(t, Inspect("title", strings.Repeat("a", MaxValueLength)))
	})

	t.Run("rejects statements", func(t *testing.T) {
		for _, v := range []string{
			"1; DROP TABLE users",
			"select * from projects",
			"UNION SELECT password FROM users",
			"insert into x values (1)",
			"update projects set title = 'x'",
			"grant all to public",
			"truncate table presenter",
		} {
			err := Inspect("title", v)
			require.Error(t, err, v)

			var ae *apperr.Error
			require.True(t, errors.As(err, &ae))
			assert.Equal(t, apperr.EInvalid, ae.Code)
			require.Len(t, ae.Details, 1)
			assert.Equal(t, "title", ae.Details[0].Field)
			assert.NotContains(t, ae.Details[0].Message, v)
		}
	})

	t.Run("rejects oversized values", func(t *testing.T) {
		err := Inspect("description", strings.Repeat("é", MaxValueLength+1))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid input data")
	})

	t.Run("rejects NUL", func(t *testing.T) {
		assert.Error(t, Inspect("title", "abc\x00def"))
	})
}

func TestDenylistedIdiomNeverForwarded(t *testing.T) {
	for _, in := range []string{
		"1; DROP TABLE users",
		"x'; DROP TABLE users;--",
		"a -- comment",
		"EXEC xp_cmdshell 'dir'",
	} {
		cleaned := Clean(in)
		err := Inspect("field", cleaned)
		if err == nil {
			assert.NotEqual(t, in, cleaned, "value %q forwarded unchanged", in)
			assert.False(t, MatchesStatement(cleaned))
		}
	}
}

func TestSuspicious(t *testing.T) {
	p, ok := Suspicious("/api/../etc/passwd")
	assert.True(t, ok)
	assert.Equal(t, `\.\.`, p)

	_, ok = Suspicious("javascript:alert(1)")
	assert.True(t, ok)

	_, ok = Suspicious("a normal request body")
	assert.False(t, ok)
}

func TestScrub(t *testing.T) {
	body := map[string]any{
		"title": "<i>Hello</i> world;",
		"tags":  []any{"go", "sp_x"},
		"meta":  map[string]any{"note": "fine"},
		"count": float64(3),
	}

	out, err := Scrub("", body)
	require.NoError(t, err)

	m := out.(map[string]any)
	assert.Equal(t, "Hello world", m["title"])
	assert.Equal(t, []any{"go", "x"}, m["tags"])
	assert.Equal(t, float64(3), m["count"])

	_, err = Scrub("", map[string]any{"meta": map[string]any{"q": "select 1 from dual"}})
	require.Error(t, err)

	var ae *apperr.Error
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, "meta.q", ae.Details[0].Field)
}

func TestScrubValues(t *testing.T) {
	values := map[string][]string{"title": {"ok--"}, "page": {"1"}}
	require.NoError(t, ScrubValues(values))
	assert.Equal(t, "ok", values["title"][0])

	assert.Error(t, ScrubValues(map[string][]string{"q": {"drop the table"}}))
}
