package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/caxtonapp/push-relay-go/internal/config"
)

// notificationExpiry bounds how long the gateway holds an undelivered
// notification before dropping it.
const notificationExpiry = 10 * time.Minute

// Notification is the content record delivered to the device. It is embedded
// verbatim in the gateway payload's data.message field, which is how the
// phone app receives it.
type Notification struct {
	URL           string `json:"url,omitempty"`
	AppName       string `json:"appname,omitempty"`
	Message       string `json:"message,omitempty"`
	Tag           string `json:"tag,omitempty"`
	Sound         string `json:"sound,omitempty"`
	Type          string `json:"type,omitempty"`
	Code          string `json:"code,omitempty"`
	PairedAppName string `json:"paired_appname,omitempty"`
	Count         int    `json:"count,omitempty"`
}

// Dispatcher delivers a notification to the device identified by a plaintext
// push token.
type Dispatcher interface {
	Send(ctx context.Context, token string, n Notification) error
}

// Gateway wire format.

type gatewayCard struct {
	Summary string   `json:"summary"`
	Body    string   `json:"body"`
	Popup   bool     `json:"popup"`
	Persist bool     `json:"persist"`
	Actions []string `json:"actions,omitempty"`
}

type gatewayVibrate struct {
	Duration int   `json:"duration"`
	Pattern  []int `json:"pattern"`
	Repeat   int   `json:"repeat"`
}

type gatewayEmblem struct {
	Count   int  `json:"count"`
	Visible bool `json:"visible"`
}

type gatewayNotification struct {
	Card    gatewayCard    `json:"card"`
	Sound   string         `json:"sound,omitempty"`
	Tag     string         `json:"tag,omitempty"`
	Vibrate gatewayVibrate `json:"vibrate"`
	Emblem  *gatewayEmblem `json:"emblem-counter,omitempty"`
}

type gatewayData struct {
	Message      Notification        `json:"message"`
	Notification gatewayNotification `json:"notification"`
}

type gatewayRequest struct {
	AppID    string      `json:"appid"`
	ExpireOn string      `json:"expire_on"`
	Token    string      `json:"token"`
	Data     gatewayData `json:"data"`
}

// PushService translates notifications into the push gateway's wire payload
// and performs the delivery call. Failures are reported back verbatim; there
// is no retry or backoff here, callers decide what a failed push means.
type PushService struct {
	client     *http.Client
	gatewayURL string
	appID      string
}

func NewPushService(gatewayURL, appID string) *PushService {
	return &PushService{
		client: &http.Client{
			Timeout: config.PushTimeout,
		},
		gatewayURL: gatewayURL,
		appID:      appID,
	}
}

func (s *PushService) Send(ctx context.Context, token string, n Notification) error {
	payload := gatewayRequest{
		AppID:    s.appID,
		ExpireOn: time.Now().Add(notificationExpiry).UTC().Format(time.RFC3339),
		Token:    token,
		Data: gatewayData{
			Message: n,
			Notification: gatewayNotification{
				Card: gatewayCard{
					Summary: n.AppName,
					Body:    n.Message,
					Popup:   true,
					Persist: true,
				},
				Sound: n.Sound,
				Tag:   n.Tag,
				Vibrate: gatewayVibrate{
					Duration: 200,
					Pattern:  []int{200, 100},
					Repeat:   2,
				},
			},
		},
	}
	if n.URL != "" {
		payload.Data.Notification.Card.Actions = []string{"caxton:" + url.QueryEscape(n.URL)}
	}
	if n.Count > 0 {
		payload.Data.Notification.Emblem = &gatewayEmblem{Count: n.Count, Visible: true}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal gateway payload: %w", err)
	}

	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.gatewayURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	elapsed := time.Since(start)

	if err != nil {
		log.Error().
			Err(err).
			Str("gateway", s.gatewayURL).
			Dur("elapsed", elapsed).
			Msg("push gateway request error")
		return fmt.Errorf("push request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Error().
			Str("gateway", s.gatewayURL).
			Int("status", resp.StatusCode).
			Dur("elapsed", elapsed).
			Msg("push gateway rejected notification")
		return fmt.Errorf("push failed with status %d", resp.StatusCode)
	}

	log.Info().
		Str("gateway", s.gatewayURL).
		Int("status", resp.StatusCode).
		Dur("elapsed", elapsed).
		Str("type", n.Type).
		Msg("push notification delivered")

	return nil
}
