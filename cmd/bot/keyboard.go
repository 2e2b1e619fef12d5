package bot

import (
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"qualitybot/internals/dispatch"
	"qualitybot/internals/format"
)

const (
	maxChoiceButtons = 12
	buttonsPerRow    = 3
)

// buildKeyboard lays out up to maxChoiceButtons probed choices in rows of
// buttonsPerRow, followed by the fixed Best and Audio shortcuts.
func buildKeyboard(token string, choices []format.Choice) tgbotapi.InlineKeyboardMarkup {
	n := len(choices)
	if n > maxChoiceButtons {
		n = maxChoiceButtons
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for i := 0; i < n; i++ {
		btn := tgbotapi.NewInlineKeyboardButtonData(
			choices[i].Label, dispatch.CallbackData(token, strconv.Itoa(i)))
		if i%buttonsPerRow == 0 {
			rows = append(rows, []tgbotapi.InlineKeyboardButton{btn})
		} else {
			rows[len(rows)-1] = append(rows[len(rows)-1], btn)
		}
	}

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🎥 Best", dispatch.CallbackData(token, dispatch.RefBest))))
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🎧 Audio (mp3)", dispatch.CallbackData(token, dispatch.RefAudio))))

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
