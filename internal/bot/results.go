package bot

import (
	"fmt"
	"strings"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	"github.com/newspick/newspick-linebot-go/internal/lineutil"
	"github.com/newspick/newspick-linebot-go/internal/newsapi"
)

const (
	resultAltText = "News results"
	noResultText  = "No result / ニュースがありませんでした"

	maxResultCards      = 5
	maxColumnTitleRunes = 40
	maxDescriptionRunes = 59
)

// FormatResults turns a source lookup result into the single reply
// message for the final questionnaire step. An empty or nil slice
// yields the no-result text message.
func FormatResults(sources []newsapi.Source) messaging_api.MessageInterface {
	if len(sources) == 0 {
		return lineutil.NewTextMessage(noResultText)
	}
	if len(sources) > maxResultCards {
		sources = sources[:maxResultCards]
	}

	columns := make([]lineutil.CarouselColumn, 0, len(sources))
	for i, src := range sources {
		text := lineutil.TruncateRunes(src.Description, maxDescriptionRunes)
		if text == "" {
			// Carousel columns must carry non-empty text.
			text = src.Name
		}
		columns = append(columns, lineutil.CarouselColumn{
			ThumbnailImageURL: thumbnailURL(i),
			Title:             lineutil.TruncateRunes(src.Name, maxColumnTitleRunes),
			Text:              text,
			Actions: []lineutil.Action{
				lineutil.NewURIAction("See This News", secureURL(src.URL)),
			},
		})
	}
	return lineutil.NewCarouselTemplate(resultAltText, columns)
}

// secureURL normalizes a source URL for use in a URI action. Escaped
// slashes are stripped and plain HTTP is upgraded to HTTPS, which the
// platform requires for template actions.
func secureURL(raw string) string {
	clean := strings.ReplaceAll(raw, `\`, "")
	if rest, ok := strings.CutPrefix(clean, "http:"); ok {
		return "https:" + rest
	}
	return clean
}

// thumbnailURL varies the placeholder image per column so adjacent
// cards do not look identical.
func thumbnailURL(i int) string {
	aspect := i * 200
	if aspect == 0 {
		aspect = 100
	}
	return fmt.Sprintf("https://placeimg.com/640/%d/tech", aspect)
}
