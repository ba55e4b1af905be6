package browser

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLaunchArgsHeadless(t *testing.T) {
	l := NewLauncher(LauncherConfig{CDPAddress: "127.0.0.1", CDPPort: 9333, ProfileDir: "/tmp/p", Headless: true})
	args := l.launchArgs()

	assert.Contains(t, args, "--remote-debugging-port=9333")
	assert.Contains(t, args, "--user-data-dir=/tmp/p")
	assert.Contains(t, args, "--window-size=1920,1080")
	assert.Contains(t, args, "--headless=new")
	assert.Equal(t, "about:blank", args[len(args)-1])
}

func TestLaunchArgsSkipsMissingExtension(t *testing.T) {
	l := NewLauncher(LauncherConfig{CDPAddress: "127.0.0.1", CDPPort: 9333, ExtensionPath: filepath.Join(t.TempDir(), "missing")})
	for _, a := range l.launchArgs() {
		assert.NotContains(t, a, "--load-extension")
	}
	assert.NotContains(t, l.launchArgs(), "--headless=new")
}

func TestLaunchArgsLoadsExtension(t *testing.T) {
	ext := t.TempDir()
	l := NewLauncher(LauncherConfig{CDPAddress: "127.0.0.1", CDPPort: 9333, ExtensionPath: ext})
	assert.Contains(t, l.launchArgs(), "--load-extension="+ext)
}

func TestDetectBrowserExplicit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chrome")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755))

	got, err := detectBrowser(path)
	require.NoError(t, err)
	assert.Equal(t, path, got)

	_, err = detectBrowser(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestLaunchUnknownKind(t *testing.T) {
	_, err := Launch(context.Background(), Options{Kind: "netscape"})
	assert.ErrorContains(t, err, "unsupported browser kind")
}

func TestLauncherURL(t *testing.T) {
	l := NewLauncher(LauncherConfig{CDPAddress: "127.0.0.1", CDPPort: 9222})
	assert.Equal(t, "http://127.0.0.1:9222", l.URL())
	assert.Zero(t, l.PID())
	assert.False(t, l.Running())
}
