package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", prefsFile)
	p := LoadFile(path)
	assert.Equal(t, 1280.0, p.FloatWithFallback(KeyWindowWidth, 1280))
	assert.True(t, p.Bool(KeyMaintainAspect, true))

	p.SetFloat(KeyWindowWidth, 1440)
	p.SetString(KeyLastDir, "/tmp/pictures")
	p.SetBool(KeyMaintainAspect, false)
	require.NoError(t, p.Save())

	q := LoadFile(path)
	assert.Equal(t, 1440.0, q.Float(KeyWindowWidth))
	assert.Equal(t, "/tmp/pictures", q.String(KeyLastDir))
	assert.False(t, q.Bool(KeyMaintainAspect, true))
}

func TestSaveIfChanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), prefsFile)
	p := LoadFile(path)

	require.NoError(t, p.SaveIfChanged())
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "nothing to save yet")

	p.SetString(KeyLastDir, "/a")
	require.NoError(t, p.SaveIfChanged())
	_, err = os.Stat(path)
	require.NoError(t, err)

	require.NoError(t, os.Remove(path))
	p.SetString(KeyLastDir, "/a")
	require.NoError(t, p.SaveIfChanged())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "unchanged value is not a change")
}

func TestCorruptFileYieldsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), prefsFile)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	p := LoadFile(path)
	assert.Equal(t, "", p.String(KeyLastDir))
	assert.Equal(t, path, p.Path())
}
