package i18n_test

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guudweb/judicial-backend/internal/pkg/i18n"
)

func TestLoadDefault(t *testing.T) {
	require.NoError(t, i18n.LoadDefault())

	assert.Equal(t, "Borrador", i18n.Translate("es", "case_status.draft"))
	assert.Equal(t, "Pendiente de aprobación del Director", i18n.Translate("es", "news_status.pending_director_approval"))
	assert.Equal(t, "Secretary General", i18n.Translate("en", "level.secretario_general"))
	assert.Equal(t, "El expediente 2026-00001 ha sido aprobado",
		i18n.Translatef("es", "notif.expediente_approved.message", "2026-00001"))
}

func TestTranslateFallback(t *testing.T) {
	fsys := fstest.MapFS{
		"cat/en/labels.yaml": {Data: []byte("LABELS:\n  only.en: \"English only\"\n  shared: \"Shared\"\n")},
		"cat/fr/labels.yaml": {Data: []byte("LABELS:\n  shared: \"Partagé\"\n")},
	}
	require.NoError(t, i18n.LoadTranslations(fsys, "cat"))

	assert.Equal(t, "Partagé", i18n.Translate("fr", "shared"))
	assert.Equal(t, "English only", i18n.Translate("fr", "only.en"))
	assert.Equal(t, "missing.key", i18n.Translate("fr", "missing.key"))
	assert.False(t, i18n.Has("fr", "only.en"))
}

func TestLoadTranslationsRejectsMalformedYAML(t *testing.T) {
	fsys := fstest.MapFS{
		"bad/xx/labels.yaml": {Data: []byte("LABELS: [unclosed")},
	}
	assert.Error(t, i18n.LoadTranslations(fsys, "bad"))
}
