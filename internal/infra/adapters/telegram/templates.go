package telegram

import (
	"fmt"
	"strings"

	"cesare-chatbot/internal/domain/model"
	"cesare-chatbot/internal/knowledge"
)

// Canned HTML replies for slash commands and deterministic intents. Composed
// at request time from the knowledge data so they never drift from it.

func startMessage(lang model.Lang) string {
	if lang == model.LangEnglish {
		return fmt.Sprintf(
			"<b>Welcome to %s!</b>\nI'm Cesare, your event assistant.\n\nCommands:\n/programma - schedule\n/biglietti - tickets\n/dove - venues and maps\n/storia - past winners\n/info - general info\n\nSend me a photo of a classic car and I'll identify it!",
			knowledge.EventName)
	}
	return fmt.Sprintf(
		"<b>Benvenuto al %s!</b>\nSono Cesare, il tuo assistente per l'evento.\n\nComandi:\n/programma - il programma\n/biglietti - i biglietti\n/dove - luoghi e mappe\n/storia - albo d'oro\n/info - informazioni generali\n\nMandami la foto di un'auto storica e te la identifico!",
		knowledge.EventName)
}

func helpMessage(lang model.Lang) string {
	if lang == model.LangEnglish {
		return "Available commands:\n/start\n/help\n/programma - schedule\n/biglietti - tickets\n/dove - venues\n/storia - history\n/info - event info\n\nOr just ask me anything about the rally."
	}
	return "Comandi disponibili:\n/start\n/help\n/programma - programma\n/biglietti - biglietti\n/dove - luoghi\n/storia - storia\n/info - informazioni\n\nOppure chiedimi quello che vuoi sul rally."
}

func scheduleMessage(lang model.Lang) string {
	header := "<b>📅 Programma</b>\n"
	if lang == model.LangEnglish {
		header = "<b>📅 Schedule</b>\n"
	}
	return header + htmlEscape(knowledge.Context("programma"))
}

func ticketsMessage(lang model.Lang) string {
	header := "<b>🎟 Biglietti</b>\n"
	if lang == model.LangEnglish {
		header = "<b>🎟 Tickets</b>\n"
	}
	return header + htmlEscape(knowledge.Context("biglietti prezzo tribuna"))
}

func historyMessage(lang model.Lang) string {
	header := "<b>🏆 Albo d'oro</b>\n"
	if lang == model.LangEnglish {
		header = "<b>🏆 Past winners</b>\n"
	}
	return header + htmlEscape(knowledge.Context("storia albo"))
}

func infoMessage(lang model.Lang) string {
	header := "<b>ℹ️ Info</b>\n"
	return header + htmlEscape(knowledge.Context("info evento rally"))
}

func locationMenuMessage(lang model.Lang) string {
	var b strings.Builder
	if lang == model.LangEnglish {
		b.WriteString("<b>📍 Event venues</b>\nWhich one are you looking for?\n\n")
	} else {
		b.WriteString("<b>📍 Luoghi dell'evento</b>\nQuale cerchi?\n\n")
	}
	for _, l := range knowledge.Locations {
		fmt.Fprintf(&b, "• <b>%s</b> - %s\n<a href=\"%s\">Mappa</a>\n", htmlEscape(l.Name), htmlEscape(l.Description), l.MapsURL())
	}
	return b.String()
}

func locationMessage(l knowledge.Location, lang model.Lang) string {
	if lang == model.LangEnglish {
		return fmt.Sprintf("<b>📍 %s</b>\n%s\n<a href=\"%s\">Open in Google Maps</a>",
			htmlEscape(l.Name), htmlEscape(l.Description), l.MapsURL())
	}
	return fmt.Sprintf("<b>📍 %s</b>\n%s\n<a href=\"%s\">Apri in Google Maps</a>",
		htmlEscape(l.Name), htmlEscape(l.Description), l.MapsURL())
}

func mediaMessage(lang model.Lang) string {
	if lang == model.LangEnglish {
		return fmt.Sprintf("<b>📸 Photos & videos</b>\nGallery: %s/gallery\nInstagram: https://instagram.com/rallycapitalestorica\nYouTube: https://youtube.com/@rallycapitalestorica", knowledge.Website)
	}
	return fmt.Sprintf("<b>📸 Foto e video</b>\nGalleria: %s/gallery\nInstagram: https://instagram.com/rallycapitalestorica\nYouTube: https://youtube.com/@rallycapitalestorica", knowledge.Website)
}

func apologyMessage(lang model.Lang) string {
	if lang == model.LangEnglish {
		return fmt.Sprintf("Sorry, something went wrong on my side. Please try again later or write to %s.", knowledge.Email)
	}
	return fmt.Sprintf("Mi spiace, qualcosa è andato storto. Riprova tra poco oppure scrivi a %s.", knowledge.Email)
}

func slowDownMessage(lang model.Lang) string {
	if lang == model.LangEnglish {
		return "You're sending messages too quickly, give me a moment to catch up."
	}
	return "Stai scrivendo troppo in fretta, dammi un attimo per risponderti."
}

func htmlEscape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}
