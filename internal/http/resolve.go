package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/codex-k8s/telegram-navigator/internal/callmess"
	"github.com/codex-k8s/telegram-navigator/internal/lang"
	"github.com/codex-k8s/telegram-navigator/internal/metrics"
)

const maxResolveBody = 1 << 20

// ResolveOptions are the defaults applied to every preview.
type ResolveOptions struct {
	DefaultLang string
	BotUsername string
	Placement   callmess.RowPlacement
}

// ResolveHandler previews how a status renders.
type ResolveHandler struct {
	src     lang.Source
	opts    ResolveOptions
	metrics *metrics.Metrics
	log     *slog.Logger
}

// NewResolveHandler creates a new preview handler.
func NewResolveHandler(src lang.Source, opts ResolveOptions, m *metrics.Metrics, log *slog.Logger) *ResolveHandler {
	return &ResolveHandler{src: src, opts: opts, metrics: m, log: log}
}

// ResolveRequest defines input payload for /resolve.
type ResolveRequest struct {
	Status string `json:"status"`
	Lang   string `json:"lang,omitempty"`
	// Values fill text placeholders.
	Values map[string]string `json:"values,omitempty"`
	// Labels fill button caption placeholders.
	Labels map[string]string `json:"labels,omitempty"`
	// Actions fill callback payload and URL placeholders.
	Actions map[string]string `json:"actions,omitempty"`
	// Ranks selects rank levels whose names fill the placeholder of the same name.
	Ranks map[string]int `json:"ranks,omitempty"`
	// ExistingRows is the number of rows already on the surface.
	ExistingRows int `json:"existing_rows,omitempty"`
}

// ResolveResponse defines output payload for /resolve.
type ResolveResponse struct {
	*callmess.Result
	Error string `json:"error,omitempty"`
}

// ServeHTTP handles /resolve requests.
func (h *ResolveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req ResolveRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxResolveBody))
	if err := decoder.Decode(&req); err != nil {
		h.fail(w, http.StatusBadRequest, "invalid json payload")
		return
	}
	req.Status = strings.TrimSpace(req.Status)
	if req.Status == "" {
		h.fail(w, http.StatusBadRequest, "status is required")
		return
	}
	if req.ExistingRows < 0 || req.ExistingRows > callmess.MaxExistingRows {
		h.fail(w, http.StatusBadRequest, fmt.Sprintf("existing_rows must be between 0 and %d", callmess.MaxExistingRows))
		return
	}

	res, err := callmess.Resolve(h.src, callmess.Request{
		Status:      req.Status,
		Lang:        lang.Normalize(req.Lang),
		DefaultLang: h.opts.DefaultLang,
		BotUsername: h.opts.BotUsername,
		Values:      req.Values,
		Labels:      req.Labels,
		Data:        req.Actions,
		Ranks:       req.Ranks,
		Base:        baseSurface(req.ExistingRows),
		Placement:   h.opts.Placement,
	})
	if err != nil {
		h.log.Error("Resolve request failed", "error", err, "status", req.Status, "lang", req.Lang)
		if errors.Is(err, lang.ErrSourceAbsent) {
			h.fail(w, http.StatusNotFound, err.Error())
			return
		}
		h.fail(w, http.StatusInternalServerError, "resolve failed")
		return
	}
	h.metrics.ObserveResult(res)
	h.respond(w, http.StatusOK, ResolveResponse{Result: &res})
}

// baseSurface stands in for rows already shown to the user. Only their count matters.
func baseSurface(rows int) *callmess.Keyboard {
	if rows == 0 {
		return nil
	}
	k := &callmess.Keyboard{Rows: make([]callmess.Row, rows)}
	for i := range k.Rows {
		k.Rows[i].Position = i
	}
	return k
}

func (h *ResolveHandler) fail(w http.ResponseWriter, statusCode int, msg string) {
	h.respond(w, statusCode, ResolveResponse{Error: msg})
}

func (h *ResolveHandler) respond(w http.ResponseWriter, statusCode int, resp ResolveResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(resp)
}
