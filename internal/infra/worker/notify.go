package worker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"zoo-assistant/internal/domain/model"
	"zoo-assistant/internal/infra/i18n"
	"zoo-assistant/internal/infra/logging"
)

// health lemmas that page the keepers
var alarmingHealth = map[string]bool{
	"болен":       true,
	"больной":     true,
	"ранен":       true,
	"слабый":      true,
	"критический": true,
}

func (p *AudioJobProcessor) notify(ctx context.Context, job *model.AudioJob) {
	text, ok := alertText(p.msg, job)
	if !ok || p.notifier == nil {
		return
	}
	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := p.notifier.Notify(nctx, text); err != nil {
		logging.With(ctx, p.log).Warn().Err(err).Msg("notification not delivered")
	}
}

// alertText builds the operator message, or reports false when the job needs no alert.
func alertText(msg *i18n.Translator, job *model.AudioJob) (string, bool) {
	switch job.Status {
	case model.AudioJobStatusFailed:
		return msg.T("job_failed", job.FileName, job.ErrorKind, job.ErrorDetail, job.ID), true
	case model.AudioJobStatusCompleted:
		rec := job.StructuredData
		if rec == nil || rec.HealthStatus == nil || !alarmingHealth[strings.ToLower(*rec.HealthStatus)] {
			return "", false
		}
		var b strings.Builder
		b.WriteString(msg.T("health_alert",
			orUnknown(msg, rec.Name), orUnknown(msg, rec.Species), *rec.HealthStatus))
		if rec.Enclosure != nil {
			b.WriteString(msg.T("enclosure", *rec.Enclosure))
		}
		fmt.Fprintf(&b, "\n%s", logging.Preview(job.Transcription, 300))
		return b.String(), true
	default:
		return "", false
	}
}

func orUnknown(msg *i18n.Translator, s *string) string {
	if v := model.Deref(s); v != "" && v != model.UnknownValue {
		return v
	}
	return msg.T("unknown")
}
