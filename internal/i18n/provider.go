// Package i18n is the Localization Provider: the active language, its text
// direction, and translated message lookup.
package i18n

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"gaming-storefront/internal/domain"
)

const (
	DirLTR = "ltr"
	DirRTL = "rtl"
)

var (
	supported = []language.Tag{language.English, language.Arabic}
	matcher   = language.NewMatcher(supported)
)

// LanguageStore persists the chosen language between runs.
type LanguageStore interface {
	Language(ctx context.Context) (string, error)
	SetLanguage(ctx context.Context, lang string) error
}

// Provider exposes the active language. Safe for concurrent use.
type Provider struct {
	mu      sync.RWMutex
	tag     language.Tag
	printer *message.Printer
	prefs   LanguageStore
}

// New creates a Provider starting in fallback (any BCP 47 tag; unsupported
// tags resolve to English). prefs may be nil.
func New(prefs LanguageStore, fallback string) *Provider {
	tag := Match(fallback)
	return &Provider{tag: tag, printer: message.NewPrinter(tag), prefs: prefs}
}

// Match resolves a raw language tag to one of the supported languages.
func Match(raw string) language.Tag {
	t, err := language.Parse(raw)
	if err != nil {
		return language.English
	}
	_, idx, conf := matcher.Match(t)
	if conf == language.No {
		return language.English
	}
	return supported[idx]
}

// Hydrate applies the persisted language preference, if any.
func (p *Provider) Hydrate(ctx context.Context) error {
	if p.prefs == nil {
		return nil
	}
	raw, err := p.prefs.Language(ctx)
	if err != nil {
		return fmt.Errorf("i18n: read language preference: %w", err)
	}
	if raw != "" {
		p.set(Match(raw))
	}
	return nil
}

// SetLanguage switches and persists the language. It returns the code that
// was actually applied.
func (p *Provider) SetLanguage(ctx context.Context, raw string) (string, error) {
	tag := Match(raw)
	p.set(tag)
	code := tag.String()
	if p.prefs != nil {
		if err := p.prefs.SetLanguage(ctx, code); err != nil {
			return code, fmt.Errorf("i18n: persist language preference: %w", err)
		}
	}
	return code, nil
}

func (p *Provider) set(tag language.Tag) {
	p.mu.Lock()
	p.tag = tag
	p.printer = message.NewPrinter(tag)
	p.mu.Unlock()
}

// Language returns "en" or "ar".
func (p *Provider) Language() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.tag.String()
}

// Direction returns the text direction of the active language.
func (p *Provider) Direction() string {
	if p.Language() == "ar" {
		return DirRTL
	}
	return DirLTR
}

// T translates key with fmt-style args. Unknown keys are returned as is.
func (p *Provider) T(key string, args ...interface{}) string {
	p.mu.RLock()
	pr := p.printer
	p.mu.RUnlock()
	return pr.Sprintf(key, args...)
}

// Text picks the active language from a bilingual pair.
func (p *Provider) Text(t domain.LocalizedText) string {
	return t.In(p.Language())
}

// Price formats an amount with two decimals using the active locale's
// digits and separators.
func (p *Provider) Price(amount decimal.Decimal) string {
	p.mu.RLock()
	pr := p.printer
	p.mu.RUnlock()
	return pr.Sprint(number.Decimal(amount.InexactFloat64(), number.Scale(2)))
}
