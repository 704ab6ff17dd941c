package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/aretw0/canopy/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleLayout = `{"sitecore": {"route": {"name": "home", "placeholders": {
	"zeta": [{"uid": "1", "componentName": "Hero"}],
	"alpha": [{"uid": "2", "componentName": "Card"}]
}}}}`

func TestReadLayout_Stdin(t *testing.T) {
	layout, err := ReadLayout("-", strings.NewReader(sampleLayout))
	require.NoError(t, err)
	assert.Equal(t, "home", layout.Sitecore.Route.Name)
	assert.Equal(t, []string{"zeta", "alpha"}, layout.Placeholders().Names())
}

func TestReadLayout_File(t *testing.T) {
	layout, err := ReadLayout(writeFile(t, "layout.json", sampleLayout), nil)
	require.NoError(t, err)
	main, ok := layout.Placeholders().Get("zeta")
	require.True(t, ok)
	require.Len(t, main, 1)
	assert.Equal(t, "Hero", main[0].(*domain.ComponentRendering).ComponentName)
}

func TestReadLayout_Errors(t *testing.T) {
	_, err := ReadLayout("does-not-exist.json", nil)
	assert.ErrorContains(t, err, "failed to open layout")

	_, err = ReadLayout("-", strings.NewReader("{"))
	assert.ErrorContains(t, err, "failed to decode layout")
}

func TestWriteOutput_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteOutput(&buf, map[string]int{"a": 1}, FormatJSON))
	assert.JSONEq(t, `{"a": 1}`, buf.String())
}

func TestWriteOutput_YAMLKeepsKeyOrder(t *testing.T) {
	layout, err := ReadLayout("-", strings.NewReader(sampleLayout))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteOutput(&buf, layout.Placeholders(), FormatYAML))

	out := buf.String()
	assert.Less(t, strings.Index(out, "zeta:"), strings.Index(out, "alpha:"))
	assert.Contains(t, out, "componentName: Hero")
	assert.NotContains(t, out, "{")
	// Strings that read as other types stay quoted.
	buf.Reset()
	require.NoError(t, WriteOutput(&buf, map[string]string{"uid": "1"}, FormatYAML))
	assert.Equal(t, "uid: \"1\"\n", buf.String())
}

func TestWriteOutput_UnknownFormat(t *testing.T) {
	err := WriteOutput(&bytes.Buffer{}, 1, "toml")
	assert.ErrorContains(t, err, `unknown output format "toml"`)
}
