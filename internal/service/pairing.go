package service

import (
	"context"
	"crypto/rand"
	"math/big"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/caxtonapp/push-relay-go/internal/analytics"
	"github.com/caxtonapp/push-relay-go/internal/crypto"
	apperrors "github.com/caxtonapp/push-relay-go/internal/errors"
	"github.com/caxtonapp/push-relay-go/internal/repository"
)

const (
	codeAlphabet = "abcdefghijklmnopqrstuvwxyz"
	codeLength   = 5

	// serviceName is the identity the confirmation push is presented under.
	serviceName = "Caxton"

	defaultTag   = "caxton"
	defaultSound = "buzz.mp3"

	confirmationTimeout = 10 * time.Second
)

// SendParams is the request for VerifyAndSend. Message, Tag, Sound and Count
// are optional.
type SendParams struct {
	Envelope string
	AppName  string
	URL      string
	Message  string
	Tag      string
	Sound    string
	Count    int
}

// PairingService orchestrates the pairing-code lifecycle: issuance,
// redemption into a sealed token envelope, and envelope verification at
// send time.
type PairingService struct {
	codes      repository.CodeRepository
	cryptoCtx  *crypto.Context
	dispatcher Dispatcher
	codeTTL    time.Duration
}

func NewPairingService(
	codes repository.CodeRepository,
	cryptoCtx *crypto.Context,
	dispatcher Dispatcher,
	codeTTL time.Duration,
) *PairingService {
	return &PairingService{
		codes:      codes,
		cryptoCtx:  cryptoCtx,
		dispatcher: dispatcher,
		codeTTL:    codeTTL,
	}
}

// IssueCode stores a fresh pairing code for pushToken and returns it.
// appVersion is an optional analytics dimension reported by the phone app.
func (s *PairingService) IssueCode(ctx context.Context, pushToken, appVersion string) (string, error) {
	if pushToken == "" {
		return "", apperrors.MissingRequired("pushtoken")
	}

	code := generateCode()

	if _, err := s.codes.Create(ctx, pushToken, code); err != nil {
		return "", apperrors.Database(err)
	}

	log.Info().Str("code", code).Msg("pairing code issued")
	analytics.Emit(analytics.Event{Type: analytics.EventCodeRequested, AppVersion: appVersion})

	return code, nil
}

// RedeemCode exchanges a live pairing code for a token envelope bound to
// appName. The backing row is deleted in the same statement that reads it,
// so each code is redeemable at most once. A confirmation push goes out to
// the paired device on a best-effort basis.
func (s *PairingService) RedeemCode(ctx context.Context, code, appName string) (string, error) {
	if code == "" {
		return "", apperrors.MissingRequired("code")
	}
	if appName == "" {
		return "", apperrors.MissingRequired("appname")
	}

	row, err := s.codes.RedeemByCode(ctx, code, s.codeTTL)
	if err != nil {
		return "", apperrors.Database(err)
	}
	if row == nil {
		log.Warn().Str("code", code).Msg("redemption of unknown or expired code")
		return "", apperrors.NotFound("code")
	}

	envelope, err := s.cryptoCtx.Seal(row.PushToken, appName)
	if err != nil {
		return "", apperrors.Internal("failed to seal token envelope").WithCause(err)
	}

	log.Info().
		Str("code", code).
		Str("appname", appName).
		Msg("pairing code redeemed")

	go s.sendConfirmation(row.PushToken, code, appName)

	analytics.Emit(analytics.Event{Type: analytics.EventTokenCreated, AppName: appName})

	return envelope, nil
}

// sendConfirmation notifies the freshly paired device. Runs detached from
// the redemption request: a failed confirmation never fails the redemption.
func (s *PairingService) sendConfirmation(pushToken, code, appName string) {
	ctx, cancel := context.WithTimeout(context.Background(), confirmationTimeout)
	defer cancel()

	err := s.dispatcher.Send(ctx, pushToken, Notification{
		Type:          "token-received",
		Code:          code,
		AppName:       serviceName,
		PairedAppName: appName,
		Message:       "App " + appName + " is now paired!",
	})
	if err != nil {
		log.Error().Err(err).Str("appname", appName).Msg("confirmation push failed")
	}
}

// VerifyAndSend opens the envelope, checks it against appName and hands the
// notification to the dispatcher.
func (s *PairingService) VerifyAndSend(ctx context.Context, p SendParams) error {
	if p.Envelope == "" {
		return apperrors.MissingRequired("token")
	}
	if p.URL == "" {
		return apperrors.MissingRequired("url")
	}
	if p.AppName == "" {
		return apperrors.MissingRequired("appname")
	}

	token, err := s.cryptoCtx.Open(p.Envelope, p.AppName)
	if err != nil {
		log.Warn().Err(err).Str("appname", p.AppName).Msg("invalid token in send request")
		return apperrors.InvalidToken("Invalid token").WithCause(err)
	}

	message := p.Message
	if message == "" {
		message = p.URL
	}
	tag := p.Tag
	if tag == "" {
		tag = defaultTag
	}
	sound := p.Sound
	if sound == "" {
		sound = defaultSound
	}

	err = s.dispatcher.Send(ctx, token, Notification{
		URL:     p.URL,
		AppName: p.AppName,
		Message: message,
		Tag:     tag,
		Sound:   sound,
		Type:    "user",
		Count:   p.Count,
	})
	if err != nil {
		return apperrors.PushFailed(err)
	}

	analytics.Emit(analytics.Event{Type: analytics.EventPushSent, AppName: p.AppName})

	return nil
}

func generateCode() string {
	buf := make([]byte, codeLength)
	for i := range buf {
		n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(codeAlphabet))))
		buf[i] = codeAlphabet[n.Int64()]
	}
	return string(buf)
}
