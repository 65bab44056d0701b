package slug_test

import (
	"testing"

	"github.com/poqie/linkguard/internal/slug"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Length(t *testing.T) {
	for _, length := range []int{6, 7, 8} {
		s, err := slug.Generate(length)
		require.NoError(t, err)
		assert.Len(t, s, length)
	}
}

func TestGenerate_ClampsLength(t *testing.T) {
	s, err := slug.Generate(1)
	require.NoError(t, err)
	assert.Len(t, s, slug.MinLength)

	s, err = slug.Generate(100)
	require.NoError(t, err)
	assert.Len(t, s, slug.MaxLength)
}

func TestGenerate_Alphabet(t *testing.T) {
	s, err := slug.Generate(slug.DefaultLength)
	require.NoError(t, err)

	for _, r := range s {
		ok := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		assert.True(t, ok, "unexpected character %q in slug %q", r, s)
	}
}

func TestValid(t *testing.T) {
	for _, good := range []string{"a", "mine", "Ab3xQ9", "ABCxyz123", "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"} {
		assert.True(t, slug.Valid(good), "slug %q", good)
	}

	for _, bad := range []string{
		"",
		"abc/evil", // разделитель пути вложил бы запись под чужой slug
		"has space",
		"semi;colon",
		"абвгде",
		"dot.dot",
		"aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", // 33 символа
	} {
		assert.False(t, slug.Valid(bad), "slug %q", bad)
	}
}

// Сгенерированные slug всегда проходят собственную проверку.
func TestGenerate_ProducesValid(t *testing.T) {
	s, err := slug.Generate(slug.DefaultLength)
	require.NoError(t, err)
	assert.True(t, slug.Valid(s))
}

// Коллизии возможны, но два подряд сгенерированных slug практически
// всегда различны.
func TestGenerate_Distinct(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		s, err := slug.Generate(8)
		require.NoError(t, err)
		assert.False(t, seen[s], "duplicate slug %q", s)
		seen[s] = true
	}
}
