package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixturePath(t *testing.T) {
	path := FixturePath("creditagricole", "login_page")

	assert.True(t, filepath.IsAbs(path))
	assert.Equal(t, "login_page.html", filepath.Base(path))
	assert.Contains(t, path, filepath.Join("bank", "creditagricole", "testdata", "fixtures"))
}

func TestRecordingPath(t *testing.T) {
	path := RecordingPath("creditagricole", "login-success")

	assert.Equal(t, "login-success.har.json", filepath.Base(path))
	assert.Equal(t, "recordings", filepath.Base(filepath.Dir(path)))
}

func TestModeFromEnv(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want TestMode
	}{
		{name: "unset defaults to mock", env: "", want: TestModeMock},
		{name: "replay", env: "replay", want: TestModeReplay},
		{name: "live", env: "live", want: TestModeLive},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("SCRAPER_TEST_MODE", tc.env)
			assert.Equal(t, tc.want, Mode())
		})
	}
}
