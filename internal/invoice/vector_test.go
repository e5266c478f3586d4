package invoice

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVectorRenderer() *VectorRenderer {
	logger := zerolog.Nop()
	return NewVectorRenderer(NewLogoFetcher(100*time.Millisecond, &logger), &logger)
}

func TestVectorRenderer_Render(t *testing.T) {
	cm := buildFixtureContent(t)
	cm.Company.LogoURL = "" // no network in unit tests; text fallback path

	data, filename, err := newTestVectorRenderer().Render(context.Background(), cm)
	require.NoError(t, err)

	assert.True(t, len(data) > 0)
	assert.True(t, strings.HasPrefix(string(data[:4]), "%PDF"), "output should be a PDF stream")
	assert.True(t, strings.HasPrefix(filename, "invoice_TB-2025-0042_"))
	assert.True(t, strings.HasSuffix(filename, ".pdf"))
}

func TestVectorRenderer_FilenameUnique(t *testing.T) {
	cm := buildFixtureContent(t)
	cm.Company.LogoURL = ""
	r := newTestVectorRenderer()

	_, first, err := r.Render(context.Background(), cm)
	require.NoError(t, err)
	_, second, err := r.Render(context.Background(), cm)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestTruncateDescription(t *testing.T) {
	t.Run("short string unchanged", func(t *testing.T) {
		assert.Equal(t, "Douro Valley", TruncateDescription("Douro Valley", 48))
	})

	t.Run("long string budgeted with ellipsis", func(t *testing.T) {
		long := strings.Repeat("x", 100)
		got := TruncateDescription(long, 48)
		assert.Len(t, []rune(got), 48)
		assert.True(t, strings.HasSuffix(got, "..."))
	})

	t.Run("idempotent", func(t *testing.T) {
		long := strings.Repeat("y", 100)
		once := TruncateDescription(long, 48)
		twice := TruncateDescription(once, 48)
		assert.Equal(t, once, twice)
	})

	t.Run("multibyte runes", func(t *testing.T) {
		long := strings.Repeat("ü", 60)
		got := TruncateDescription(long, 10)
		assert.Len(t, []rune(got), 10)
	})

	t.Run("non-positive budget is a no-op", func(t *testing.T) {
		assert.Equal(t, "abc", TruncateDescription("abc", 0))
	})
}

func TestSanitizeToken(t *testing.T) {
	assert.Equal(t, "TB-2025-0042", sanitizeToken("TB-2025-0042"))
	assert.Equal(t, "a-b-c", sanitizeToken("a/b c"))
}
