package orchestrator

import (
	"math"
	"strings"

	"github.com/gopal-prakash-codes/ai-diagnosis/clients"
	"github.com/gopal-prakash-codes/ai-diagnosis/reconcile"
)

// speakingShare returns each speaker's fraction of total aligned time.
func speakingShare(segs []reconcile.AlignedSegment) map[string]float64 {
	if len(segs) == 0 {
		return nil
	}
	share := map[string]float64{}
	total := 0.0
	for _, s := range segs {
		d := math.Max(0, float64(s.EndMs-s.StartMs))
		total += d
		share[s.Speaker] += d
	}
	if total == 0 {
		return nil
	}
	for k := range share {
		share[k] /= total
	}
	return share
}

func joinText(segs []reconcile.Segment) string {
	parts := make([]string, 0, len(segs))
	for _, s := range segs {
		if t := strings.TrimSpace(s.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

func toUtterances(in []clients.Utterance) []reconcile.Utterance {
	out := make([]reconcile.Utterance, 0, len(in))
	for _, u := range in {
		out = append(out, reconcile.Utterance{
			Speaker:    u.Speaker,
			Text:       u.Text,
			StartMs:    u.Start,
			EndMs:      u.End,
			Confidence: u.Confidence,
		})
	}
	return out
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
