// Package analytics emits usage events as structured log lines. The events
// mirror the hosted-analytics calls of the original deployment; shipping
// them to a collector is a log-pipeline concern, not an application one.
package analytics

import (
	"time"

	"github.com/rs/zerolog/log"
)

type EventType string

const (
	EventCodeRequested EventType = "code_requested"
	EventTokenCreated  EventType = "token_created"
	EventPushSent      EventType = "push_sent"
)

type Event struct {
	Type       EventType
	AppName    string
	AppVersion string
}

// Emit fires an analytics event. Fire-and-forget: it never fails and never
// blocks the caller beyond the log write.
func Emit(event Event) {
	logger := log.With().
		Str("analytics", "usage").
		Str("event_type", string(event.Type)).
		Time("timestamp", time.Now()).
		Logger()

	if event.AppName != "" {
		logger = logger.With().Str("appname", event.AppName).Logger()
	}
	if event.AppVersion != "" {
		logger = logger.With().Str("appversion", event.AppVersion).Logger()
	}

	logger.Info().Msg("usage event")
}
