package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/unicode/norm"
)

func TestIdentifier(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "simple words", in: "Set up data", want: "setUpData"},
		{name: "already camel", in: "login", want: "login"},
		{name: "umlauts fold", in: "Übermäßig viele Umlaute", want: "ubermaßigVieleUmlaute"},
		{name: "cjk passes through", in: "统一码", want: "统一码"},
		{name: "kana voicing marks kept", in: "データ", want: "データ"},
		{name: "kana words", in: "ダッシュボード を開く", want: "ダッシュボードを開く"},
		{name: "devanagari virama kept", in: "हिन्दी", want: "हिन्दी"},
		{name: "hebrew points kept", in: "שָׁלוֹם", want: norm.NFC.String("שָׁלוֹם")},
		{name: "accents", in: "Café crème brûlée", want: "cafeCremeBrulee"},
		{name: "illegal characters removed", in: `a\b/c:d*e?f"g'h<i>j|k`, want: "abcdefghijk"},
		{name: "periods removed", in: ".hidden file.v2", want: "hiddenFilev2"},
		{name: "extra whitespace", in: "  User \t logs\n in  ", want: "userLogsIn"},
		{name: "mixed case words", in: "USER NAVIGATES to DASHBOARD", want: "userNavigatesToDashboard"},
		{name: "illegal characters split nothing", in: "a / b", want: "aB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Identifier(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIdentifier_Empty(t *testing.T) {
	for _, in := range []string{"", "   ", "...", `?*:|`, " . / . "} {
		_, err := Identifier(in)
		assert.ErrorIs(t, err, ErrEmptyIdentifier, "input %q", in)
	}
}

func TestIdentifier_Deterministic(t *testing.T) {
	a, err := Identifier("Übermäßig viele Umlaute")
	require.NoError(t, err)
	b, err := Identifier("Übermäßig viele Umlaute")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestIdentifier_VoicedKanaStayDistinct(t *testing.T) {
	voiced, err := Identifier("データ")
	require.NoError(t, err)
	plain, err := Identifier("テータ")
	require.NoError(t, err)
	assert.NotEqual(t, voiced, plain)
}
