//go:build !integration

package worker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zoo-assistant/internal/domain"
	"zoo-assistant/internal/domain/model"
	"zoo-assistant/internal/infra/i18n"
)

func TestAlertText(t *testing.T) {
	en, err := i18n.New("en")
	require.NoError(t, err)
	ru := i18n.Default()

	sick := &model.AudioJob{
		ID:            "j1",
		Status:        model.AudioJobStatusCompleted,
		Transcription: "Черепаха Тортила больна",
		StructuredData: &model.StructuredRecord{
			Name:         model.StrPtr("Тортила"),
			HealthStatus: model.StrPtr("больной"),
			Enclosure:    model.StrPtr("Террариум №1"),
		},
	}

	text, ok := alertText(ru, sick)
	require.True(t, ok)
	assert.Contains(t, text, "Внимание: Тортила (Неизвестно)")
	assert.Contains(t, text, "Террариум №1.")
	assert.Contains(t, text, "\nЧерепаха Тортила больна")

	text, ok = alertText(en, sick)
	require.True(t, ok)
	assert.Contains(t, text, "Attention: Тортила (Unknown)")

	healthy := *sick
	healthy.StructuredData = &model.StructuredRecord{HealthStatus: model.StrPtr("здоров")}
	_, ok = alertText(ru, &healthy)
	assert.False(t, ok)

	failed := &model.AudioJob{
		ID: "j2", FileName: "a.wav", Status: model.AudioJobStatusFailed,
		ErrorKind: domain.JobErrorValidation, ErrorDetail: "too large",
	}
	text, ok = alertText(en, failed)
	require.True(t, ok)
	assert.Equal(t, "Processing of recording a.wav failed (validation): too large\nJob: j2", text)

	_, ok = alertText(ru, &model.AudioJob{Status: model.AudioJobStatusProcessing})
	assert.False(t, ok)
}
