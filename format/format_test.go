package format

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTemplates(t *testing.T) {
	t.Run("record", func(t *testing.T) {
		buf := &bytes.Buffer{}
		err := ParseTemplate(RecordTemplate).Execute(buf, struct {
			Index                       uint64
			Kind, Entity, Parent, Owner string
		}{Index: 3, Kind: "add_widget", Entity: "w1", Parent: "b1", Owner: "0123456789abcdef"})
		require.NoError(t, err)
		require.Contains(t, buf.String(), "w1")
		require.Contains(t, buf.String(), " in b1 ")
		require.Contains(t, buf.String(), "01234567")
		require.NotContains(t, buf.String(), "89abcdef")
	})
	t.Run("shorten keeps short strings", func(t *testing.T) {
		shorten := FuncMap["shorten"].(func(string) string)
		require.Equal(t, "abc", shorten("abc"))
	})
}
