package catalog

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()

	fields := c.Fields()
	require.NotEmpty(t, fields)
	assert.Equal(t, "hemoglobin", fields[0].Key)
	assert.Equal(t, "hematology", fields[0].Group)
	assert.Len(t, c.Groups(), 3)

	assert.True(t, c.Known("wbc"))
	assert.True(t, c.Known("urine_yeast"))
	assert.False(t, c.Known("unicorn_level"))

	assert.Equal(t, "Гемоглобин (Hb)", c.Label("hemoglobin"))
	assert.Equal(t, "Гемоглобин (Hb)", c.PromptDescription("hemoglobin"))
	assert.Equal(t, "Нейтрофилы (NEU) процент", c.PromptDescription("neutrophils_pct"))
}

func TestGenericLabel(t *testing.T) {
	assert.Equal(t, "Unicorn level", GenericLabel("unicorn_level"))
	assert.Equal(t, "Ферритин", GenericLabel("ферритин"))
	assert.Equal(t, "", GenericLabel(""))
	assert.Equal(t, "Unicorn level", Default().Label("unicorn_level"))
}

func TestFilter(t *testing.T) {
	known, unknown := Default().Filter(map[string]string{
		"hemoglobin": "140",
		"zeta":       "1",
		"alpha":      "2",
	})

	assert.Equal(t, map[string]string{"hemoglobin": "140"}, known)
	assert.Equal(t, []string{"alpha", "zeta"}, unknown)
}

func TestOrdered(t *testing.T) {
	got := Default().Ordered(map[string]string{
		"wbc":        "6.1",
		"zeta":       "1",
		"hemoglobin": "140",
		"alpha":      "2",
	})

	want := []Entry{
		{Key: "hemoglobin", Label: "Гемоглобин (Hb)", Value: "140"},
		{Key: "wbc", Label: "Лейкоциты (WBC)", Value: "6.1"},
		{Key: "alpha", Label: "Alpha", Value: "2"},
		{Key: "zeta", Label: "Zeta", Value: "1"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Ordered() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRejectsDuplicates(t *testing.T) {
	_, err := Parse([]byte(`
groups:
  - name: a
    fields:
      - {key: x, label: X}
      - {key: x, label: Y}
`))
	require.Error(t, err)
}

func TestParseDefaultsPromptToLabel(t *testing.T) {
	c, err := Parse([]byte(`
groups:
  - name: a
    fields:
      - {key: some_key}
`))
	require.NoError(t, err)
	assert.Equal(t, "Some key", c.Label("some_key"))
	assert.Equal(t, "Some key", c.PromptDescription("some_key"))
}
