package carexpert

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"
)

// Page is the live tab an extractor drives. It is satisfied by *tabpool.Page.
type Page interface {
	Evaluate(ctx context.Context, expression string, out any) error
	HTML(ctx context.Context) (string, error)
}

// clickButtonJS clicks the first button whose text contains the argument.
const clickButtonJS = `(() => {
	const b = [...document.querySelectorAll('button')].find(b => b.textContent.includes(%s));
	if (!b) return false;
	b.scrollIntoView({block: 'center'});
	b.click();
	return true;
})()`

// expandAccordionsJS opens every collapsed accordion and returns how many it clicked.
const expandAccordionsJS = `(() => {
	let n = 0;
	document.querySelectorAll("button[data-testid='accordion-header-button']").forEach(b => {
		if (b.getAttribute('aria-expanded') !== 'true') { b.click(); n++; }
	});
	return n;
})()`

// clickExpandersJS clicks visible "Show"/"Expand" buttons on spec pages.
const clickExpandersJS = `(() => {
	let n = 0;
	document.querySelectorAll('button').forEach(b => {
		const t = b.textContent || '';
		if (!/Show|Expand|expand/.test(t) || b.offsetParent === null) return;
		b.click(); n++;
	});
	return n;
})()`

const scrollHeightJS = `document.body.scrollHeight`

const configWidthJS = `(() => {
	const c = document.querySelector('#scrollable-configuration-sticky-header');
	if (!c) return null;
	return {scroll: c.scrollWidth, client: c.clientWidth};
})()`

const setConfigScrollJS = `(() => {
	const c = document.querySelector('#scrollable-configuration-sticky-header');
	if (c) c.scrollLeft = %d;
	return true;
})()`

func (s *Scraper) pause(ctx context.Context, d time.Duration) {
	d = time.Duration(float64(d) * s.DelayScale)
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// clickButton clicks a button by its text. A missing button is not an error.
func (s *Scraper) clickButton(ctx context.Context, page Page, text string) bool {
	var clicked bool
	if err := page.Evaluate(ctx, fmt.Sprintf(clickButtonJS, strconv.Quote(text)), &clicked); err != nil {
		slog.Warn("could not click button", "text", text, "error", err)
		return false
	}
	if clicked {
		s.pause(ctx, 2*time.Second)
	}
	return clicked
}

func (s *Scraper) expandAccordions(ctx context.Context, page Page) int {
	var n int
	if err := page.Evaluate(ctx, expandAccordionsJS, &n); err != nil {
		slog.Warn("could not expand accordions", "error", err)
		return 0
	}
	if n > 0 {
		s.pause(ctx, time.Second)
	}
	return n
}

func (s *Scraper) clickExpanders(ctx context.Context, page Page) {
	var n int
	if err := page.Evaluate(ctx, clickExpandersJS, &n); err != nil {
		slog.Warn("could not click expand buttons", "error", err)
		return
	}
	if n > 0 {
		s.pause(ctx, time.Second)
	}
}

// scrollPage scrolls to the bottom until the document stops growing, then
// back to the top, so lazy sections render.
func (s *Scraper) scrollPage(ctx context.Context, page Page, maxScrolls int) {
	var last int
	if err := page.Evaluate(ctx, scrollHeightJS, &last); err != nil {
		slog.Warn("could not read page height", "error", err)
		return
	}
	scrolls := 0
	for ; scrolls < maxScrolls; scrolls++ {
		if err := page.Evaluate(ctx, `window.scrollTo(0, document.body.scrollHeight) || true`, nil); err != nil {
			slog.Warn("scroll failed", "error", err)
			return
		}
		s.pause(ctx, 2*time.Second)
		var height int
		if err := page.Evaluate(ctx, scrollHeightJS, &height); err != nil || height == last {
			break
		}
		last = height
	}
	_ = page.Evaluate(ctx, `window.scrollTo(0, 0) || true`, nil)
	s.pause(ctx, time.Second)
	slog.Debug("page scrolled", "scrolls", scrolls)
}

// scrollConfigurations walks the horizontal configurations strip so every
// lazily rendered variant card is in the DOM.
func (s *Scraper) scrollConfigurations(ctx context.Context, page Page) {
	var w *struct {
		Scroll int `json:"scroll"`
		Client int `json:"client"`
	}
	if err := page.Evaluate(ctx, configWidthJS, &w); err != nil || w == nil {
		slog.Warn("configurations container not scrollable", "error", err)
		return
	}
	step := w.Client / 2
	if step <= 0 {
		step = 200
	}
	for pos := 0; pos < w.Scroll; pos += step {
		if err := page.Evaluate(ctx, fmt.Sprintf(setConfigScrollJS, pos), nil); err != nil {
			return
		}
		s.pause(ctx, 500*time.Millisecond)
	}
	_ = page.Evaluate(ctx, fmt.Sprintf(setConfigScrollJS, w.Scroll), nil)
	s.pause(ctx, time.Second)
	_ = page.Evaluate(ctx, fmt.Sprintf(setConfigScrollJS, 0), nil)
	s.pause(ctx, time.Second)
}
