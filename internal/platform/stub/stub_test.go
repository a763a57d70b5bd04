package stub

import (
	"context"
	"testing"

	"github.com/darkawower/duskctl/internal/platform"
	"github.com/stretchr/testify/assert"
)

func TestStubPlatform(t *testing.T) {
	p := New()

	// Verify it implements Platform interface
	var _ platform.Platform = p

	assert.NotEmpty(t, p.Name())
	assert.False(t, p.IsSupported())
}

func TestStubDesktopService(t *testing.T) {
	svc := New().Desktop()
	ctx := context.Background()

	err := svc.SetTheme(ctx, platform.Same("Ambiant-MATE"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not supported")

	_, err = svc.CurrentTheme(ctx)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not supported")
}

func TestStubAutostartService(t *testing.T) {
	svc := New().Autostart()

	assert.False(t, svc.IsSupported())

	err := svc.Install(platform.AutostartConfig{})
	assert.Error(t, err)

	err = svc.Uninstall("test")
	assert.Error(t, err)

	_, err = svc.Status("test")
	assert.Error(t, err)
}

func TestStubNotifierService(t *testing.T) {
	err := New().Notifier().Notify(context.Background(), "summary", "body")
	assert.Error(t, err)
}

func TestStubRegistered(t *testing.T) {
	p := platform.NewFor("openbsd", platform.Options{})
	assert.False(t, p.IsSupported())
	_, ok := p.(*Platform)
	assert.True(t, ok)
}
