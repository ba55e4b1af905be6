package browser

import (
	"context"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
)

func TestFirefoxNavigateRejectsSpentDeadline(t *testing.T) {
	d := &firefoxDriver{}

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(500*time.Microsecond))
	defer cancel()
	time.Sleep(time.Millisecond)
	assert.ErrorIs(t, d.Navigate(ctx, "https://example.com"), context.DeadlineExceeded)

	ctx, cancel = context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()
	assert.ErrorIs(t, d.Navigate(ctx, "https://example.com"), context.DeadlineExceeded)
}

func TestFirefoxNavigateWithoutActiveTab(t *testing.T) {
	d := &firefoxDriver{pages: map[string]playwright.Page{}}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	assert.ErrorIs(t, d.Navigate(ctx, "https://example.com"), ErrUnknownTab)
}
