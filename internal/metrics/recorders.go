package metrics

import (
	"strconv"
	"time"
)

// RecordWebhookEvent counts one processed webhook
func RecordWebhookEvent(eventType, outcome string) {
	if eventType == "" {
		eventType = "unknown"
	}
	Get().WebhookEventsTotal.WithLabelValues(eventType, outcome).Inc()
}

// RecordAvatarSet counts a profile photo written from Gravatar ("webhook" or "bulk")
func RecordAvatarSet(source string) {
	Get().AvatarsSetTotal.WithLabelValues(source).Inc()
}

func RecordMemberBlocked() {
	Get().MembersBlockedTotal.Inc()
}

func RecordMessageFlagged(provider string) {
	Get().MessagesFlaggedTotal.WithLabelValues(provider).Inc()
}

func RecordAlert(provider string, sent bool) {
	result := "sent"
	if !sent {
		result = "failed"
	}
	Get().AlertsSentTotal.WithLabelValues(provider, result).Inc()
}

// RecordExternalCall records an outbound call. status 0 means a transport error.
func RecordExternalCall(service string, status int, duration time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m := Get()
	m.ExternalCallsTotal.WithLabelValues(service, label).Inc()
	m.ExternalCallDuration.WithLabelValues(service).Observe(duration.Seconds())
}

func RecordEmailCheckCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	Get().EmailCheckCacheTotal.WithLabelValues(result).Inc()
}

func RecordRateLimitExceeded(endpoint, method string) {
	Get().RateLimitExceededTotal.WithLabelValues(endpoint, method).Inc()
}
