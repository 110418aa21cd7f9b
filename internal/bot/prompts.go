package bot

import (
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	"github.com/newspick/newspick-linebot-go/internal/lineutil"
)

const (
	languagePromptText  = "Select Language / 言語選択"
	countryPromptTitle  = "Which country do you watch the news for?"
	countryPromptText   = "Select A Country / 国選択"
	categoryPromptTitle = "Which category?"
	categoryPromptText  = "Select A Category / カテゴリ選択"
)

// LanguagePrompt is the first questionnaire step.
func LanguagePrompt() messaging_api.MessageInterface {
	return lineutil.NewConfirmTemplate(
		languagePromptText,
		languagePromptText,
		lineutil.NewPostbackAction("English", "en"),
		lineutil.NewPostbackAction("French", "fr"),
	)
}

// CountryPrompt is the second questionnaire step.
func CountryPrompt() messaging_api.MessageInterface {
	return lineutil.NewButtonsTemplate(
		countryPromptTitle,
		countryPromptTitle,
		countryPromptText,
		[]lineutil.Action{
			lineutil.NewPostbackAction("United States", "us"),
			lineutil.NewPostbackAction("Japan", "jp"),
			lineutil.NewPostbackAction("Canada", "ca"),
		},
	)
}

// CategoryPrompt is the third questionnaire step.
func CategoryPrompt() messaging_api.MessageInterface {
	return lineutil.NewButtonsTemplate(
		categoryPromptTitle,
		categoryPromptTitle,
		categoryPromptText,
		[]lineutil.Action{
			lineutil.NewPostbackAction("Business", "business"),
			lineutil.NewPostbackAction("General", "general"),
			lineutil.NewPostbackAction("Science", "science"),
			lineutil.NewPostbackAction("Tech", "technology"),
		},
	)
}
