// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"errors"
	"strings"
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryOrderAndReplacement(t *testing.T) {
	first := newFake("alpha")
	r := NewRegistry(first, newFake("beta"))

	replacement := newFake("alpha")
	replacement.info.DisplayName = "Alpha v2"
	r.Register(replacement)
	r.Register(newFake("gamma"))

	assert.Equal(t, []string{"alpha", "beta", "gamma"}, r.Names())

	info, ok := r.Describe("alpha")
	require.True(t, ok)
	assert.Equal(t, "Alpha v2", info.DisplayName)

	_, ok = r.Describe("delta")
	assert.False(t, ok)

	_, err := r.Get("delta")
	var e *UnknownSourceError
	require.True(t, errors.As(err, &e))
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, e.Available)
	assert.Contains(t, e.Error(), "alpha, beta, gamma")
}

func TestRegistryForLink(t *testing.T) {
	r := NewRegistry(newFake("itch"), newFake("kenney"))

	tests := []struct {
		link string
		want string
	}{
		{"https://itch.test/game/1", "itch"},
		{"https://someone.itch.test/pack", "itch"},
		{"https://KENNEY.test/assets/x", "kenney"},
		{"https://notitch.test/x", ""},
		{"not a url", ""},
	}
	for _, tt := range tests {
		a, ok := r.ForLink(tt.link)
		if tt.want == "" {
			assert.False(t, ok, tt.link)
			continue
		}
		require.True(t, ok, tt.link)
		assert.Equal(t, tt.want, a.Info().Name)
	}
}

// --- SanitizeFilename ---

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"My Cool Asset!!.zip", "My_Cool_Asset.zip"},
		{`a<b>c:d"e/f\g|h?i*j.png`, "a_b_c_d_e_f_g_h_i_j.png"},
		{"tabs\tand\n\nnewlines", "tabs_and_newlines"},
		{"ünïcødé.zip", "ncd.zip"},
		{"", ""},
		{"already-safe_name.v2.zip", "already-safe_name.v2.zip"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeFilename(tt.in), tt.in)
	}
}

func TestSanitizeFilenameProperties(t *testing.T) {
	inputs := []string{
		"My Cool Asset!!.zip",
		strings.Repeat("long name ", 40),
		"  leading and trailing  ",
		`<>:"/\|?*`,
		"日本語 アセット.zip",
		"..",
	}
	for _, in := range inputs {
		got := SanitizeFilename(in)
		assert.Equal(t, got, SanitizeFilename(got), "idempotent for %q", in)
		assert.LessOrEqual(t, len(got), MaxFilenameLength)
		assert.False(t, strings.ContainsAny(got, `<>:"/\|?*`), got)
		assert.False(t, strings.ContainsFunc(got, unicode.IsSpace), got)
	}
	assert.Equal(t, "download", safeFilename(".."))
	assert.Equal(t, "download", safeFilename("!!!"))
}
