package avatar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDerive_ShortNamesUseDefault(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"", "A", "é", "Я"} {
		got := Derive(name)
		assert.Equal(t, DefaultColor, got.BackgroundColor, "name %q", name)
		assert.Equal(t, NoInitials, got.Initials, "name %q", name)
		assert.Equal(t, name, got.DisplayName)
	}
}

func TestDerive_KnownValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		color    string
		initials string
	}{
		{name: "AL", color: "#2b0800", initials: "AL"},
		{name: "ab", color: "#210c00", initials: "AB"},
		{name: "ZZ", color: "#400b00", initials: "ZZ"},
		{name: "John", color: "#2b5123", initials: "JN"},
		{name: "Jane Doe", color: "#485fa7", initials: "JD"},
		{name: "jane doe", color: "#4873cd", initials: "JD"},
		{name: "Rosie Simpson", color: "#8b9b06", initials: "RS"},
		{name: "Anna Maria Smith", color: "#b98486", initials: "AS"},
		{name: "Zoë", color: "#366001", initials: "ZË"},
		{name: "Олег Петров", color: "#ede918", initials: "ОП"},
		{name: "straße", color: "#b64fd5", initials: "SE"},
		{name: "Jane Doe Junior the Third of Somewhere Very Long Name", color: "#74e94b", initials: "JN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Derive(tt.name)
			assert.Equal(t, tt.color, got.BackgroundColor)
			assert.Equal(t, tt.initials, got.Initials)
		})
	}
}

func TestDerive_EmptyTokensAreGuarded(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		color    string
		initials string
	}{
		{name: "Jane  Doe", color: "#8c8c33", initials: "JD"},
		{name: " Jane", color: "#6e0de6", initials: "J"},
		{name: "Jane ", color: "#928c40", initials: "J"},
		{name: "  ", color: "#000400", initials: NoInitials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Spec
			require.NotPanics(t, func() { got = Derive(tt.name) })
			assert.Equal(t, tt.color, got.BackgroundColor)
			assert.Equal(t, tt.initials, got.Initials)
		})
	}
}

func TestDerive_SurrogatePairs(t *testing.T) {
	t.Parallel()

	// One emoji is two UTF-16 code units, so it is long enough to hash.
	got := Derive("😀")
	assert.Equal(t, "#630d1b", got.BackgroundColor)
	assert.Equal(t, "😀😀", got.Initials)

	got = Derive("😀x")
	assert.Equal(t, "#759f46", got.BackgroundColor)
	assert.Equal(t, "😀X", got.Initials)
}

func TestDerive_Deterministic(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"Jane Doe", "x y z", "Mary-Kate O'Neil", "李小龙"} {
		first := Derive(name)
		second := Derive(name)
		assert.Equal(t, first, second)
		assert.Len(t, first.BackgroundColor, 7)
		assert.Equal(t, byte('#'), first.BackgroundColor[0])
	}
}

func TestColorAndInitials(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "#485fa7", Color("Jane Doe"))
	assert.Equal(t, "JD", Initials("Jane Doe"))
	assert.Equal(t, DefaultColor, Color("A"))
	assert.Equal(t, NoInitials, Initials("A"))
}
