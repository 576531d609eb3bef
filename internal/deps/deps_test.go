package deps

import (
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubLookPath(t *testing.T, fn func(string) (string, error)) {
	t.Helper()
	orig := lookPath
	lookPath = fn
	t.Cleanup(func() { lookPath = orig })
}

func stubFontList(t *testing.T, fn func() (string, error)) {
	t.Helper()
	orig := runFontList
	runFontList = fn
	t.Cleanup(func() { runFontList = orig })
}

func TestCheckBinaryFound(t *testing.T) {
	stubLookPath(t, func(bin string) (string, error) {
		return "/usr/bin/" + bin, nil
	})

	res := CheckMultiplexer()
	assert.Equal(t, StatusOK, res.Status)
	assert.Equal(t, "/usr/bin/tmux", res.Message)
}

func TestCheckBinaryMissing(t *testing.T) {
	stubLookPath(t, func(bin string) (string, error) {
		return "", &exec.Error{Name: bin, Err: exec.ErrNotFound}
	})

	res := CheckRenderer()
	assert.Equal(t, StatusMissing, res.Status)
	assert.Contains(t, res.Message, "textimg")
}

func TestRendererAvailable(t *testing.T) {
	stubLookPath(t, func(bin string) (string, error) {
		return "/usr/local/bin/" + bin, nil
	})
	require.NoError(t, RendererAvailable())

	stubLookPath(t, func(bin string) (string, error) {
		return "", exec.ErrNotFound
	})
	err := RendererAvailable()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRendererMissing))
}

func TestCheckFont(t *testing.T) {
	stubFontList(t, func() (string, error) {
		return "DejaVu Sans Mono\nNoto Sans\n", nil
	})
	res := CheckFont()
	assert.Equal(t, StatusOK, res.Status)

	stubFontList(t, func() (string, error) {
		return "Noto Sans\n", nil
	})
	res = CheckFont()
	assert.Equal(t, StatusMissing, res.Status)
	assert.Contains(t, res.Message, "DejaVu Sans Mono")

	stubFontList(t, func() (string, error) {
		return "", errors.New("fc-list: not found")
	})
	res = CheckFont()
	assert.Equal(t, StatusMissing, res.Status)
}

func TestRunAllNeverStopsEarly(t *testing.T) {
	stubLookPath(t, func(bin string) (string, error) {
		return "", exec.ErrNotFound
	})
	stubFontList(t, func() (string, error) {
		return "", errors.New("fc-list: not found")
	})

	results := RunAll()
	require.Len(t, results, 3)
	for _, r := range results {
		assert.Equal(t, StatusMissing, r.Status, r.Name)
	}
	assert.True(t, AnyMissing(results))
}

func TestAnyMissingAllOK(t *testing.T) {
	results := []CheckResult{
		{Name: "multiplexer", Status: StatusOK},
		{Name: "renderer", Status: StatusOK},
	}
	assert.False(t, AnyMissing(results))
}
