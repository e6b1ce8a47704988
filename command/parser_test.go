package command_test

import (
	"testing"

	"github.com/mwantia/vcat/command"
	"github.com/mwantia/vcat/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFlagSet() *command.CommandFlagSet {
	return command.NewFlagSet(
		&command.CommandFlag{Name: "recursive", Short: "r", Type: command.FlagBool},
		&command.CommandFlag{Name: "force", Short: "f", Type: command.FlagBool},
		&command.CommandFlag{Name: "name", Short: "n", Type: command.FlagString},
		&command.CommandFlag{Name: "maxdepth", Type: command.FlagInt, Default: int64(-1)},
		&command.CommandFlag{Name: "meta", Short: "m", Type: command.FlagStringSlice},
	)
}

func TestParser_Parse(t *testing.T) {
	args, err := command.NewParser(testFlagSet()).Parse([]string{
		"-rf", "--name=*.xyz", "data", "-m", "a=b", "--meta", "class like %org%", "--maxdepth", "-1", "--", "-literal",
	})
	require.NoError(t, err)

	assert.True(t, args.Bool("recursive"))
	assert.True(t, args.Bool("force"))
	assert.Equal(t, "*.xyz", args.String("name"))
	assert.Equal(t, int64(-1), args.Int("maxdepth"))
	assert.Equal(t, []string{"a=b", "class like %org%"}, args.Strings("meta"))
	assert.Equal(t, []string{"data", "-literal"}, args.Args)
}

func TestParser_Defaults(t *testing.T) {
	args, err := command.NewParser(testFlagSet()).Parse(nil)
	require.NoError(t, err)

	assert.False(t, args.Bool("recursive"))
	assert.Equal(t, int64(-1), args.Int("maxdepth"))
	assert.Empty(t, args.Strings("meta"))
	assert.Empty(t, args.Args)
}

func TestParser_ShortValue(t *testing.T) {
	args, err := command.NewParser(testFlagSet()).Parse([]string{"-rn*.txt", "x"})
	require.NoError(t, err)

	assert.True(t, args.Bool("recursive"))
	assert.Equal(t, "*.txt", args.String("name"))
	assert.Equal(t, []string{"x"}, args.Args)
}

func TestParser_Errors(t *testing.T) {
	tests := map[string][]string{
		"unknown long":  {"--bogus"},
		"unknown short": {"-x"},
		"missing value": {"--name"},
		"bad int":       {"--maxdepth", "deep"},
	}

	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := command.NewParser(testFlagSet()).Parse(raw)
			assert.ErrorIs(t, err, data.ErrInvalid)
		})
	}

	required := command.NewFlagSet(&command.CommandFlag{Name: "avu", Short: "a", Type: command.FlagString, Required: true})
	_, err := command.NewParser(required).Parse(nil)
	assert.ErrorIs(t, err, data.ErrInvalid)
}

func TestParseCondition(t *testing.T) {
	tests := []struct {
		expr     string
		expected []data.Criterion
	}{
		{"class=organic", data.AttributeIs("class", data.OpEqual, "organic")},
		{"class like %org%", data.AttributeIs("class", data.OpLike, "%org%")},
		{"class not like %org%", data.AttributeIs("class", data.OpNotLike, "%org%")},
		{"title = two words", data.AttributeIs("title", data.OpEqual, "two words")},
		{"size > 100", data.AttributeIs("size", data.OpGreater, "100")},
	}

	for _, test := range tests {
		t.Run(test.expr, func(t *testing.T) {
			criteria, err := command.ParseCondition(test.expr)
			require.NoError(t, err)
			assert.Equal(t, test.expected, criteria)
		})
	}

	for _, expr := range []string{"", "novalue", "a b", "class maybe x"} {
		_, err := command.ParseCondition(expr)
		assert.ErrorIs(t, err, data.ErrInvalid, expr)
	}
}

func TestParseAVU(t *testing.T) {
	avu, err := command.ParseAVU("weight=12=kg")
	require.NoError(t, err)
	assert.Equal(t, data.NewAVU("weight", "12", "kg"), avu)

	avu, err = command.ParseAVU("project=vcat")
	require.NoError(t, err)
	assert.Equal(t, data.NewAVU("project", "vcat"), avu)

	for _, expr := range []string{"", "attr", "=value", "attr="} {
		_, err := command.ParseAVU(expr)
		assert.ErrorIs(t, err, data.ErrInvalid, expr)
	}
}
