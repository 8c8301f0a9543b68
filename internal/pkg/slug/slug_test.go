package slug_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guudweb/judicial-backend/internal/pkg/slug"
)

func TestMake(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Case Update", "case-update"},
		{"  Resolución   del Tribunal  ", "resolucion-del-tribunal"},
		{"Año judicial: ¡apertura!", "ano-judicial-apertura"},
		{"multiple---hyphens -- here", "multiple-hyphens-here"},
		{"Código Penal 2024", "codigo-penal-2024"},
		{"!!!", ""},
		{"Case\u00a0Update", "case-update"},
		{"Case\u2003Update", "case-update"},
		{"Case\vUpdate", "case-update"},
		{"Sesión\u00a0\u00a0plenaria", "sesion-plenaria"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, slug.Make(tt.in))
		})
	}
}

func TestMakeTruncates(t *testing.T) {
	got := slug.Make(strings.Repeat("a", 150))
	assert.Len(t, got, slug.MaxLength)
}

func TestMakeIsDeterministic(t *testing.T) {
	assert.Equal(t, slug.Make("Comunicado Oficial"), slug.Make("Comunicado Oficial"))
}

func existing(taken ...string) slug.ExistsFunc {
	set := make(map[string]bool, len(taken))
	for _, s := range taken {
		set[s] = true
	}
	return func(_ context.Context, candidate string) (bool, error) {
		return set[candidate], nil
	}
}

func TestUnique(t *testing.T) {
	ctx := context.Background()

	got, err := slug.Unique(ctx, slug.Make("Case Update"), existing("case-update", "case-update-1"))
	require.NoError(t, err)
	assert.Equal(t, "case-update-2", got)

	got, err = slug.Unique(ctx, "fresh", existing("case-update"))
	require.NoError(t, err)
	assert.Equal(t, "fresh", got)
}

func TestUniquePropagatesLookupError(t *testing.T) {
	boom := errors.New("db down")
	_, err := slug.Unique(context.Background(), "x", func(context.Context, string) (bool, error) {
		return false, boom
	})
	assert.ErrorIs(t, err, boom)
}
