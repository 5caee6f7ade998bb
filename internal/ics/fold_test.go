package ics

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"
)

func TestUnfold_LineTerminators(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Line
	}{
		{
			name:  "CRLF",
			input: "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nEND:VCALENDAR\r\n",
			want:  []Line{{1, "BEGIN:VCALENDAR"}, {2, "VERSION:2.0"}, {3, "END:VCALENDAR"}},
		},
		{
			name:  "LF without trailing newline",
			input: "BEGIN:VCALENDAR\nVERSION:2.0\nEND:VCALENDAR",
			want:  []Line{{1, "BEGIN:VCALENDAR"}, {2, "VERSION:2.0"}, {3, "END:VCALENDAR"}},
		},
		{
			name:  "space and tab continuations",
			input: "DESCRIPTION:one\r\n  two\r\n\tthree\r\nUID:x\r\n",
			want:  []Line{{1, "DESCRIPTION:one twothree"}, {4, "UID:x"}},
		},
		{
			name:  "whitespace-only continuation keeps empty value",
			input: "DESCRIPTION:\r\n \r\nUID:x\r\n",
			want:  []Line{{1, "DESCRIPTION:"}, {3, "UID:x"}},
		},
		{
			name:  "blank lines are ignored",
			input: "UID:a\r\n\r\n\r\nUID:b\r\n",
			want:  []Line{{1, "UID:a"}, {4, "UID:b"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Unfold([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnfold_FoldInsideMultiByteCharacter(t *testing.T) {
	logical := "SUMMARY:日本語の会議 – Café ☃"

	// Fold at every byte offset after the name, including offsets that land
	// inside a UTF-8 sequence.
	for cut := len("SUMMARY:") + 1; cut < len(logical); cut++ {
		raw := logical[:cut] + "\r\n " + logical[cut:] + "\r\n"
		lines, err := Unfold([]byte(raw))
		require.NoError(t, err, "cut at %d", cut)
		require.Len(t, lines, 1)
		assert.Equal(t, logical, lines[0].Text, "cut at %d", cut)
	}
}

func TestUnfold_Errors(t *testing.T) {
	_, err := Unfold([]byte(" leading continuation\r\n"))
	var mpe *MalformedPropertyError
	require.ErrorAs(t, err, &mpe)
	assert.Equal(t, 1, mpe.Line)

	_, err = Unfold([]byte("UID:a\r\nSUMMARY:\xff\xfe\r\n"))
	var uee *UnsupportedEncodingError
	require.ErrorAs(t, err, &uee)
	assert.Equal(t, 2, uee.Line)
}

func TestFold(t *testing.T) {
	t.Run("short line untouched", func(t *testing.T) {
		assert.Equal(t, []string{"UID:abc"}, Fold("UID:abc"))
	})

	t.Run("exactly the limit is not folded", func(t *testing.T) {
		line := "X:" + strings.Repeat("a", FoldLimit-2)
		assert.Equal(t, []string{line}, Fold(line))
	})

	inputs := map[string]string{
		"ascii":     "DESCRIPTION:" + strings.Repeat("0123456789", 30),
		"multibyte": "SUMMARY:" + strings.Repeat("é☃日", 60),
		"escapes":   "DESCRIPTION:" + strings.Repeat(`a\,`, 100),
		"slashes":   "DESCRIPTION:" + strings.Repeat(`\\n`, 100),
	}
	for name, line := range inputs {
		t.Run(name, func(t *testing.T) {
			parts := Fold(line)
			require.Greater(t, len(parts), 1)

			var joined strings.Builder
			for i, p := range parts {
				assert.LessOrEqual(t, len(p), FoldLimit, "part %d", i)
				if i > 0 {
					require.True(t, strings.HasPrefix(p, " "))
					p = p[1:]
				}
				assert.True(t, utf8.ValidString(p), "part %d splits a character", i)
				assert.False(t, strings.HasSuffix(p, `\`) && !strings.HasSuffix(p, `\\`), "part %d ends inside an escape", i)
				joined.WriteString(p)
			}
			assert.Equal(t, line, joined.String())

			lines, err := Unfold([]byte(strings.Join(parts, "\r\n") + "\r\n"))
			require.NoError(t, err)
			require.Len(t, lines, 1)
			assert.Equal(t, line, lines[0].Text)
		})
	}
}

func TestDecode(t *testing.T) {
	doc := "BEGIN:VCALENDAR\r\nSUMMARY:Grüße\r\nEND:VCALENDAR\r\n"

	t.Run("no BOM passes through", func(t *testing.T) {
		out, err := Decode([]byte(doc))
		require.NoError(t, err)
		assert.Equal(t, doc, string(out))
	})

	t.Run("UTF-8 BOM is stripped", func(t *testing.T) {
		out, err := Decode(append([]byte{0xEF, 0xBB, 0xBF}, doc...))
		require.NoError(t, err)
		assert.Equal(t, doc, string(out))
	})

	t.Run("UTF-16 with BOM is transcoded", func(t *testing.T) {
		enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
		in, err := enc.Bytes([]byte(doc))
		require.NoError(t, err)

		out, err := Decode(in)
		require.NoError(t, err)
		assert.Equal(t, doc, string(out))
	})
}
