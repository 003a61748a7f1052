package codec

import (
	"github.com/nbd-wtf/go-nostr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/0xrinegade/4ochan/shared/domain"
	"github.com/0xrinegade/4ochan/shared/logger"
)

var decodeSkipped = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "fourochan",
		Name:      "codec_events_skipped_total",
		Help:      "Events dropped because their content or tags could not be decoded",
	},
	[]string{"kind"},
)

// decodeAll decodes every event it can; a malformed event is logged and skipped,
// so a bad event only ever means fewer results.
func decodeAll[T any](events []*nostr.Event, kind string, decode func(*nostr.Event) (T, error)) []T {
	out := make([]T, 0, len(events))
	for _, ev := range events {
		if ev == nil {
			continue
		}
		v, err := decode(ev)
		if err != nil {
			decodeSkipped.WithLabelValues(kind).Inc()
			logger.Log.Warn("skipping malformed event",
				"component", "codec",
				"event_id", ev.ID,
				"kind", ev.Kind,
				"error", err)
			continue
		}
		out = append(out, v)
	}
	return out
}

func DecodeBoards(events []*nostr.Event) []domain.Board {
	return decodeAll(events, "board", DecodeBoard)
}

func DecodeThreads(events []*nostr.Event) []domain.Thread {
	return decodeAll(events, "thread", DecodeThread)
}

func DecodePosts(events []*nostr.Event) []domain.Post {
	return decodeAll(events, "post", DecodePost)
}

func DecodeSubscriptions(events []*nostr.Event) []domain.ThreadSubscription {
	return decodeAll(events, "subscription", DecodeSubscription)
}

func DecodeNotifications(events []*nostr.Event) []domain.Notification {
	return decodeAll(events, "notification", DecodeNotification)
}
