package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/caxtonapp/push-relay-go/internal/service"
)

// APIHandler exposes the pairing protocol over HTTP.
type APIHandler struct {
	pairingService *service.PairingService
}

func NewAPIHandler(pairingService *service.PairingService) *APIHandler {
	return &APIHandler{pairingService: pairingService}
}

func (h *APIHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/getcode", h.GetCode)
	r.Post("/gettoken", h.GetToken)
	r.Post("/send", h.Send)

	return r
}

// POST /api/getcode
// Phone app requests a short pairing code for its push token.
func (h *APIHandler) GetCode(w http.ResponseWriter, r *http.Request) {
	fields, err := parseBody(r)
	if err != nil {
		writeError(w, err)
		return
	}

	code, err := h.pairingService.IssueCode(r.Context(), fields.Get("pushtoken"), fields.Get("appversion"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"code": code})
}

// POST /api/gettoken
// Pairing site exchanges a code for a sealed token envelope.
func (h *APIHandler) GetToken(w http.ResponseWriter, r *http.Request) {
	fields, err := parseBody(r)
	if err != nil {
		writeError(w, err)
		return
	}

	envelope, err := h.pairingService.RedeemCode(r.Context(), fields.Get("code"), fields.Get("appname"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": envelope})
}

// POST /api/send
// App asks the relay to push a notification to its own device.
func (h *APIHandler) Send(w http.ResponseWriter, r *http.Request) {
	fields, err := parseBody(r)
	if err != nil {
		writeError(w, err)
		return
	}

	count, _ := strconv.Atoi(fields.Get("count"))

	err = h.pairingService.VerifyAndSend(r.Context(), service.SendParams{
		Envelope: fields.Get("token"),
		AppName:  fields.Get("appname"),
		URL:      fields.Get("url"),
		Message:  fields.Get("message"),
		Tag:      fields.Get("tag"),
		Sound:    fields.Get("sound"),
		Count:    count,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"ok": "Ok"})
}
