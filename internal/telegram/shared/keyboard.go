package shared

import (
	"strings"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"github.com/codex-k8s/telegram-navigator/internal/callmess"
	"github.com/codex-k8s/telegram-navigator/internal/lang"
)

// MaxCallbackData is the Telegram limit for callback data, in bytes.
const MaxCallbackData = 64

// CallbackData builds callback data for an action.
func CallbackData(action, payload string) string {
	if payload == "" {
		return action
	}
	return action + ":" + payload
}

// ParseCallback splits callback data built by CallbackData.
func ParseCallback(data string) (string, string) {
	action, payload, _ := strings.Cut(data, ":")
	return action, payload
}

// FitsCallbackData reports whether Telegram can carry the control.
// URL controls always fit.
func FitsCallbackData(control callmess.Control) bool {
	if control.Kind == lang.KindURL {
		return true
	}
	return len(CallbackData(control.Callback, control.Payload)) <= MaxCallbackData
}

// InlineKeyboard converts a rendered keyboard into Telegram markup. Nil or empty
// keyboards yield nil.
func InlineKeyboard(k *callmess.Keyboard) *telego.InlineKeyboardMarkup {
	if k.Len() == 0 {
		return nil
	}
	rows := make([][]telego.InlineKeyboardButton, 0, k.Len())
	for _, row := range k.Rows {
		buttons := make([]telego.InlineKeyboardButton, 0, len(row.Controls))
		for _, control := range row.Controls {
			button := tu.InlineKeyboardButton(control.Label)
			switch control.Kind {
			case lang.KindURL:
				button = button.WithURL(control.URL)
			default:
				button = button.WithCallbackData(CallbackData(control.Callback, control.Payload))
			}
			buttons = append(buttons, button)
		}
		rows = append(rows, tu.InlineKeyboardRow(buttons...))
	}
	return tu.InlineKeyboard(rows...)
}
