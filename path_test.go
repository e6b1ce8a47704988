package vcat_test

import (
	"testing"

	"github.com/mwantia/vcat/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePath(t *testing.T) {
	s := newTestSession(t)

	tests := []struct {
		input    string
		expected string
	}{
		{"/", "/"},
		{"/tempZone//home/./rods/", testHome},
		{"~", testHome},
		{"~/", testHome},
		{"~/tmp", testHome + "/tmp"},
		{"~tmp", testHome + "/tmp"},
		{"tmp", testHome + "/tmp"},
		{"./tmp/", testHome + "/tmp"},
		{"..", "/tempZone/home"},
		{"../../../..", "/"},
		{"", testHome},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			abs, err := s.ResolvePath(test.input)
			require.NoError(t, err)
			assert.Equal(t, test.expected, abs)

			again, err := s.ResolvePath(abs)
			require.NoError(t, err)
			assert.Equal(t, abs, again, "resolution is idempotent")
		})
	}

	_, err := s.ResolvePath("tmp\x00x")
	assert.ErrorIs(t, err, data.ErrResolution)
}

func TestResolvePath_EquivalentForms(t *testing.T) {
	s := newTestSession(t)
	s.mkdir(t, "tmp")

	forms := make([]string, 0)
	for _, p := range []string{"~/tmp/", "tmp", "./tmp"} {
		abs, err := s.ResolvePath(p)
		require.NoError(t, err)
		forms = append(forms, abs)
	}

	require.NoError(t, s.ChangeDirectory(t.Context(), "~/tmp"))
	abs, err := s.ResolvePath(".")
	require.NoError(t, err)
	forms = append(forms, abs)

	for _, form := range forms {
		assert.Equal(t, testHome+"/tmp", form)
	}
}

func TestChangeDirectory(t *testing.T) {
	ctx := t.Context()
	s := newTestSession(t)
	s.mkdir(t, "tmp/sub")
	s.put(t, "file.txt", "x")

	require.NoError(t, s.ChangeDirectory(ctx, "tmp"))
	assert.Equal(t, testHome+"/tmp", s.Cwd())

	require.NoError(t, s.ChangeDirectory(ctx, "sub"))
	assert.Equal(t, testHome+"/tmp/sub", s.Cwd())

	err := s.ChangeDirectory(ctx, "missing")
	assert.ErrorIs(t, err, data.ErrPrecondition)
	assert.Equal(t, testHome+"/tmp/sub", s.Cwd(), "failed change keeps the working collection")

	err = s.ChangeDirectory(ctx, "~/file.txt")
	assert.ErrorIs(t, err, data.ErrPrecondition)

	require.NoError(t, s.ChangeDirectory(ctx, "~"))
	assert.Equal(t, s.Home(), s.Cwd())
}
