package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"github.com/codex-k8s/telegram-navigator/internal/callmess"
	"github.com/codex-k8s/telegram-navigator/internal/i18n"
	"github.com/codex-k8s/telegram-navigator/internal/lang"
	"github.com/codex-k8s/telegram-navigator/internal/metrics"
	"github.com/codex-k8s/telegram-navigator/internal/state"
	"github.com/codex-k8s/telegram-navigator/internal/telegram/shared"
	"github.com/codex-k8s/telegram-navigator/internal/voice"
)

const (
	// ActionGoto moves the user to the status given as payload.
	ActionGoto = "goto"
	// ActionLang switches the user language to the payload and re-renders the current status.
	ActionLang = "lang"

	commandStart = "/start"
)

// Bot is the subset of the Telegram API the handler needs.
type Bot interface {
	SendMessage(ctx context.Context, params *telego.SendMessageParams) (*telego.Message, error)
	EditMessageText(ctx context.Context, params *telego.EditMessageTextParams) (*telego.Message, error)
	AnswerCallbackQuery(ctx context.Context, params *telego.AnswerCallbackQueryParams) error
	GetFile(ctx context.Context, params *telego.GetFileParams) (*telego.File, error)
	FileDownloadURL(filepath string) string
}

// Call is one pressed control, by button or by voice.
type Call struct {
	Profile state.Profile
	Payload string
	ChatID  int64
	// MessageID is the menu message to edit; zero sends a new one.
	MessageID int
}

// Transition tells the handler where a route leads.
type Transition struct {
	// Status to show next; empty keeps the screen as is.
	Status string
	// Note overrides the notification shown to the user.
	Note string
}

// Route handles one callback identifier.
type Route func(ctx context.Context, call *Call) (Transition, error)

// Options configures a Handler.
type Options struct {
	Source      lang.Source
	Store       state.Store
	Messages    map[string]i18n.Messages
	Lang        string
	DefaultLang string
	HomeStatus  string
	BotUsername string
	ParseMode   string
	Placement   callmess.RowPlacement
	Transcriber voice.Transcriber
	Download    func(url string) ([]byte, error)
	Metrics     *metrics.Metrics
}

// Handler turns Telegram updates into status transitions.
type Handler struct {
	bot    Bot
	opts   Options
	routes map[string]Route
	log    *slog.Logger
}

// NewHandler creates a handler with the home, goto and lang routes registered.
func NewHandler(bot Bot, opts Options, log *slog.Logger) *Handler {
	if opts.Download == nil {
		opts.Download = tu.DownloadFile
	}
	h := &Handler{bot: bot, opts: opts, routes: make(map[string]Route), log: log}
	h.Handle(callmess.HomeCallback, h.routeHome)
	h.Handle(ActionGoto, h.routeGoto)
	h.Handle(ActionLang, h.routeLang)
	return h
}

// Handle registers a route for a callback identifier, replacing any previous one.
func (h *Handler) Handle(callback string, route Route) {
	h.routes[callback] = route
}

// Run processes updates until context cancellation.
func (h *Handler) Run(ctx context.Context, updates <-chan telego.Update) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			h.HandleUpdate(ctx, update)
		}
	}
}

// HandleUpdate processes a single update.
func (h *Handler) HandleUpdate(ctx context.Context, update telego.Update) {
	switch {
	case update.CallbackQuery != nil:
		h.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		h.handleMessage(ctx, update.Message)
	}
}

func (h *Handler) handleMessage(ctx context.Context, message *telego.Message) {
	if message.From == nil {
		return
	}
	profile, err := h.register(ctx, *message.From)
	if err != nil {
		h.log.Error("Failed to register user", "error", err, "user_id", message.From.ID)
		return
	}
	call := &Call{Profile: profile, ChatID: message.Chat.ID}

	switch {
	case message.Voice != nil:
		h.handleVoice(ctx, call, message.Voice)
	case strings.HasPrefix(strings.TrimSpace(message.Text), commandStart):
		if _, err := h.show(ctx, call, h.opts.HomeStatus); err != nil {
			h.log.Error("Failed to show home", "error", err)
		}
	default:
		if _, err := h.show(ctx, call, profile.State); err != nil {
			h.log.Error("Failed to show current status", "error", err, "status", profile.State)
		}
	}
}

func (h *Handler) handleCallback(ctx context.Context, query *telego.CallbackQuery) {
	if query.Message == nil {
		_ = h.answerCallback(ctx, query, "")
		return
	}
	profile, err := h.register(ctx, query.From)
	if err != nil {
		h.log.Error("Failed to register user", "error", err, "user_id", query.From.ID)
		_ = h.answerCallback(ctx, query, h.messageFor("").ErrorNote)
		return
	}
	action, payload := shared.ParseCallback(query.Data)
	call := &Call{
		Profile:   profile,
		Payload:   payload,
		ChatID:    query.Message.GetChat().ID,
		MessageID: query.Message.GetMessageID(),
	}
	note, err := h.Dispatch(ctx, action, call)
	if err != nil {
		h.log.Warn("Callback failed", "error", err, "callback", action, "user_id", profile.ID)
	}
	_ = h.answerCallback(ctx, query, note)
}

// Dispatch runs the route for callback and returns the note to show to the user.
func (h *Handler) Dispatch(ctx context.Context, callback string, call *Call) (string, error) {
	msg := h.messageFor(call.Profile.Lang)
	route, ok := h.routes[callback]
	if !ok {
		return msg.InvalidAction, fmt.Errorf("unknown callback %q", callback)
	}
	h.opts.Metrics.ObserveTransition(callback)

	transition, err := route(ctx, call)
	if err != nil {
		return msg.InvalidAction, err
	}
	if transition.Status == "" {
		return transition.Note, nil
	}
	res, err := h.show(ctx, call, transition.Status)
	if err != nil {
		return msg.ErrorNote, err
	}
	if transition.Note != "" {
		return transition.Note, nil
	}
	return res.Notify, nil
}

func (h *Handler) routeHome(_ context.Context, _ *Call) (Transition, error) {
	return Transition{Status: h.opts.HomeStatus}, nil
}

func (h *Handler) routeGoto(_ context.Context, call *Call) (Transition, error) {
	if !strings.Contains(call.Payload, "@") {
		return Transition{}, fmt.Errorf("invalid status %q", call.Payload)
	}
	return Transition{Status: call.Payload}, nil
}

func (h *Handler) routeLang(ctx context.Context, call *Call) (Transition, error) {
	code := lang.Normalize(call.Payload)
	if code == "" {
		return Transition{}, errors.New("empty language")
	}
	if err := h.opts.Store.SetLang(ctx, call.Profile.ID, code); err != nil {
		return Transition{}, err
	}
	call.Profile.Lang = code
	return Transition{Status: call.Profile.State, Note: h.messageFor(code).LanguageChanged}, nil
}

// show stores status as the user's current one and renders it into the chat.
func (h *Handler) show(ctx context.Context, call *Call, status string) (callmess.Result, error) {
	if status == "" {
		status = h.opts.HomeStatus
	}
	if err := h.opts.Store.SetState(ctx, call.Profile.ID, status); err != nil {
		return callmess.Result{}, fmt.Errorf("save state: %w", err)
	}
	call.Profile.State = status

	res, err := h.Render(call.Profile, status)
	if err != nil {
		_ = h.reply(ctx, call.ChatID, h.messageFor(call.Profile.Lang).ErrorNote)
		return callmess.Result{}, err
	}

	parseMode := shared.ParseMode(h.opts.ParseMode)
	markup := shared.InlineKeyboard(res.Keyboard)
	if call.MessageID > 0 {
		_, err = h.bot.EditMessageText(ctx, &telego.EditMessageTextParams{
			ChatID:      tu.ID(call.ChatID),
			MessageID:   call.MessageID,
			Text:        res.Text,
			ParseMode:   parseMode,
			ReplyMarkup: markup,
		})
	} else {
		params := &telego.SendMessageParams{
			ChatID:    tu.ID(call.ChatID),
			Text:      res.Text,
			ParseMode: parseMode,
		}
		if markup != nil {
			params.ReplyMarkup = markup
		}
		_, err = h.bot.SendMessage(ctx, params)
	}
	if err != nil {
		return res, fmt.Errorf("deliver %s: %w", status, err)
	}
	return res, nil
}

// Render resolves status for the given user without touching the chat.
func (h *Handler) Render(profile state.Profile, status string) (callmess.Result, error) {
	values := map[string]string{
		"first_name": profile.FirstName,
		"last_name":  profile.LastName,
		"username":   profile.Username,
		"user_id":    strconv.FormatInt(profile.ID, 10),
		"language":   profile.Lang,
	}
	res, err := callmess.Resolve(h.opts.Source, callmess.Request{
		Status:      status,
		Lang:        profile.Lang,
		DefaultLang: h.opts.DefaultLang,
		BotUsername: h.opts.BotUsername,
		Values:      values,
		Labels:      values,
		Data:        values,
		Escape:      shared.Escaper(shared.ParseMode(h.opts.ParseMode)),
		Accept:      shared.FitsCallbackData,
		Placement:   h.opts.Placement,
	})
	if err != nil {
		return callmess.Result{}, fmt.Errorf("resolve %s: %w", status, err)
	}
	h.opts.Metrics.ObserveResult(res)
	if res.Outcome == callmess.OutcomeFallback {
		h.log.Warn("Status rendered with fallback", "status", status, "lang", res.Lang)
	}
	return res, nil
}

func (h *Handler) handleVoice(ctx context.Context, call *Call, v *telego.Voice) {
	msg := h.messageFor(call.Profile.Lang)
	transcript, err := h.transcribe(ctx, v, call.Profile.Lang)
	if err != nil {
		if errors.Is(err, voice.ErrDisabled) {
			_ = h.reply(ctx, call.ChatID, msg.VoiceDisabled)
		} else {
			h.log.Error("Voice transcription failed", "error", err)
			_ = h.reply(ctx, call.ChatID, msg.TranscriptionFailed)
		}
		return
	}

	current, err := h.Render(call.Profile, call.Profile.State)
	if err != nil {
		h.log.Error("Failed to render current status", "error", err)
		_ = h.reply(ctx, call.ChatID, msg.ErrorNote)
		return
	}
	control, ok := voice.Match(current.Keyboard, transcript)
	if !ok {
		_ = h.reply(ctx, call.ChatID, msg.VoiceNotRecognized)
		return
	}
	if control.Kind == lang.KindURL {
		_ = h.reply(ctx, call.ChatID, control.URL)
		return
	}
	call.Payload = control.Payload
	note, err := h.Dispatch(ctx, control.Callback, call)
	if err != nil {
		h.log.Warn("Voice callback failed", "error", err, "callback", control.Callback)
	}
	if strings.TrimSpace(note) != "" {
		_ = h.reply(ctx, call.ChatID, note)
	}
}

func (h *Handler) transcribe(ctx context.Context, v *telego.Voice, language string) (string, error) {
	if h.opts.Transcriber == nil {
		return "", voice.ErrDisabled
	}
	file, err := h.bot.GetFile(ctx, &telego.GetFileParams{FileID: v.FileID})
	if err != nil {
		return "", err
	}
	data, err := h.opts.Download(h.bot.FileDownloadURL(file.FilePath))
	if err != nil {
		return "", err
	}
	clip, err := voice.Prepare(ctx, data, v.MimeType, file.FilePath)
	if err != nil {
		return "", err
	}
	return h.opts.Transcriber.Transcribe(ctx, clip, language)
}

func (h *Handler) register(ctx context.Context, user telego.User) (state.Profile, error) {
	code := lang.Normalize(user.LanguageCode)
	if code == "" {
		code = h.opts.Lang
	}
	return h.opts.Store.Register(ctx, state.Profile{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Username:  user.Username,
		Lang:      code,
	}, h.opts.HomeStatus)
}

func (h *Handler) answerCallback(ctx context.Context, query *telego.CallbackQuery, text string) error {
	params := &telego.AnswerCallbackQueryParams{CallbackQueryID: query.ID}
	if strings.TrimSpace(text) != "" {
		params.Text = text
	}
	return h.bot.AnswerCallbackQuery(ctx, params)
}

func (h *Handler) reply(ctx context.Context, chatID int64, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	_, err := h.bot.SendMessage(ctx, &telego.SendMessageParams{
		ChatID: tu.ID(chatID),
		Text:   text,
	})
	return err
}

func (h *Handler) messageFor(code string) i18n.Messages {
	return i18n.For(h.opts.Messages, code, h.opts.Lang)
}
