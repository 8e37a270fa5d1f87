package charset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"
)

func TestResolve(t *testing.T) {
	testcases := []struct {
		desc  string
		input string

		wantNil bool
		wantErr bool
	}{
		{
			desc:  "utf-8",
			input: "text/html; charset=utf-8",
		},
		{
			desc:  "latin-1 label",
			input: "text/plain; charset=iso-8859-1",
		},
		{
			desc:    "no charset parameter",
			input:   "application/json",
			wantNil: true,
		},
		{
			desc:    "empty header",
			input:   "",
			wantNil: true,
		},
		{
			desc:    "unknown charset label",
			input:   "text/plain; charset=bogus-charset",
			wantErr: true,
		},
		{
			desc:    "malformed parameter",
			input:   "text/plain; =bad",
			wantErr: true,
		},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			enc, err := Resolve(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			if tc.wantNil {
				assert.Nil(t, enc)
				return
			}
			assert.NotNil(t, enc)
		})
	}
}

func TestResolveUTF8(t *testing.T) {
	enc, err := Resolve("text/html; charset=UTF-8")
	require.NoError(t, err)
	assert.Equal(t, unicode.UTF8, enc)
}

func TestDefault(t *testing.T) {
	assert.Equal(t, unicode.UTF8, Default())
}

func TestIsText(t *testing.T) {
	assert.True(t, IsText("text/html; charset=utf-8"))
	assert.True(t, IsText("text/plain"))
	assert.False(t, IsText("application/json"))
	assert.False(t, IsText(""))
}
