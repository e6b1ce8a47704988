package data_test

import (
	"testing"

	"github.com/mwantia/vcat/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLike(t *testing.T) {
	tests := []struct {
		value   string
		pattern string
		want    bool
	}{
		{"molecule.xyz", "%.xyz", true},
		{"molecule.xyz", "mol%", true},
		{"molecule.xyz", "%cule%", true},
		{"molecule.xyz", "%.txt", false},
		{"a1", "a_", true},
		{"a12", "a_", false},
		{"", "%", true},
		{"", "_", false},
		{"50%", `50\%`, true},
		{"500", `50\%`, false},
		{"a_b", `a\_b`, true},
		{"axb", `a\_b`, false},
		{"Org", "org", false},
	}

	for _, tt := range tests {
		t.Run(tt.value+" like "+tt.pattern, func(t *testing.T) {
			assert.Equal(t, tt.want, data.Like(tt.value, tt.pattern))
		})
	}
}

func TestEscapeLike(t *testing.T) {
	for _, s := range []string{"plain", "100%", "a_b", `back\slash`} {
		assert.True(t, data.Like(s, data.EscapeLike(s)), s)
	}
	assert.False(t, data.Like("axb", data.EscapeLike("a_b")))
}

func TestParseOperator(t *testing.T) {
	for input, want := range map[string]data.Operator{
		"=":        data.OpEqual,
		"eq":       data.OpEqual,
		"<>":       data.OpNotEqual,
		"LIKE":     data.OpLike,
		"not like": data.OpNotLike,
		"lt":       data.OpLess,
		">":        data.OpGreater,
	} {
		op, err := data.ParseOperator(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, op, input)
	}

	_, err := data.ParseOperator("~")
	assert.ErrorIs(t, err, data.ErrInvalid)
}

func TestNode_HasMetadata(t *testing.T) {
	node := data.NewDataObject("/tempZone/home/rods/a.xyz")
	node.AddMetadata(data.NewAVU("class", "organic"))
	node.AddMetadata(data.NewAVU("mass", "12", "u"))

	assert.True(t, node.HasMetadata(nil))
	assert.True(t, node.HasMetadata(data.AttributeIs("class", data.OpLike, "%org%")))
	assert.True(t, node.HasMetadata([]data.Criterion{
		data.NewCriterion(data.FieldAttribute, data.OpEqual, "mass"),
		data.NewCriterion(data.FieldUnit, data.OpEqual, "u"),
	}))

	// Criteria must hold for one single triple
	assert.False(t, node.HasMetadata([]data.Criterion{
		data.NewCriterion(data.FieldAttribute, data.OpEqual, "class"),
		data.NewCriterion(data.FieldUnit, data.OpEqual, "u"),
	}))
}

func TestNode_RemoveMetadata(t *testing.T) {
	node := data.NewCollection("/tempZone/home/rods")
	avu := data.NewAVU("project", "alpha")
	node.AddMetadata(avu)
	node.AddMetadata(avu)

	assert.True(t, node.RemoveMetadata(avu))
	assert.False(t, node.HasAVU(avu))
	assert.False(t, node.RemoveMetadata(avu))
}
