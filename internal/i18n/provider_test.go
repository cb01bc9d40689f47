package i18n

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gaming-storefront/internal/domain"
	"gaming-storefront/internal/store"
)

func TestMatch(t *testing.T) {
	assert.Equal(t, "en", Match("en-US").String())
	assert.Equal(t, "ar", Match("ar-SA").String())
	assert.Equal(t, "en", Match("not a tag").String())
}

func TestProvider_DirectionAndText(t *testing.T) {
	p := New(nil, "en")
	assert.Equal(t, DirLTR, p.Direction())

	_, err := p.SetLanguage(context.Background(), "ar")
	require.NoError(t, err)
	assert.Equal(t, "ar", p.Language())
	assert.Equal(t, DirRTL, p.Direction())
	assert.Equal(t, "سماعة", p.Text(domain.LocalizedText{En: "Headset", Ar: "سماعة"}))
}

func TestProvider_Translate(t *testing.T) {
	p := New(nil, "en")
	assert.Equal(t, "Please log in to continue.", p.T(MsgLoginRequired))
	assert.Equal(t, "Please choose a quantity between 1 and 3.", p.T(MsgInvalidQuantity, 3))
	assert.Equal(t, "no.such.key", p.T("no.such.key"))

	_, err := p.SetLanguage(context.Background(), "ar")
	require.NoError(t, err)
	assert.Equal(t, "يرجى تسجيل الدخول للمتابعة.", p.T(MsgLoginRequired))
}

func TestProvider_EveryKeyTranslated(t *testing.T) {
	for key := range catalog[Match("en")] {
		_, ok := catalog[Match("ar")][key]
		assert.True(t, ok, "missing arabic translation for %s", key)
	}
}

func TestProvider_PersistsAndHydrates(t *testing.T) {
	ctx := context.Background()
	prefs := store.NewMemoryStore()

	p := New(prefs, "en")
	code, err := p.SetLanguage(ctx, "ar-EG")
	require.NoError(t, err)
	assert.Equal(t, "ar", code)

	stored, err := prefs.Language(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ar", stored)

	fresh := New(prefs, "en")
	require.NoError(t, fresh.Hydrate(ctx))
	assert.Equal(t, "ar", fresh.Language())
}

func TestProvider_Price(t *testing.T) {
	p := New(nil, "en")
	assert.Equal(t, "1,234.50", p.Price(decimal.RequireFromString("1234.5")))
}
