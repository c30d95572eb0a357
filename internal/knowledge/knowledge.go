// Package knowledge holds the static event data for Rally Capitale Storica
// and the keyword retrieval used to build completion context.
package knowledge

import (
	"fmt"
	"regexp"
	"strings"
)

// Event facts reused by the fallback block and canned channel replies.
const (
	EventName  = "Rally Capitale Storica"
	EventDates = "25-27 settembre 2026"
	EntryCost  = "ingresso pubblico gratuito, tribune a pagamento"
	Website    = "https://www.rallycapitalestorica.it"
	Email      = "info@rallycapitalestorica.it"
)

// Location is a GPS-tagged event venue.
type Location struct {
	Key         string
	Name        string
	Lat         float64
	Lon         float64
	Description string
	keywords    *regexp.Regexp
}

func (l Location) MapsURL() string {
	return fmt.Sprintf("https://www.google.com/maps?q=%f,%f", l.Lat, l.Lon)
}

// Locations lists the five event venues in presentation order.
var Locations = []Location{
	{
		Key: "colosseo", Name: "Colosseo", Lat: 41.8902, Lon: 12.4922,
		Description: "Partenza cerimoniale e podio di arrivo",
		keywords:    regexp.MustCompile(`colosseo|coliseum|colosseum`),
	},
	{
		Key: "circo_massimo", Name: "Circo Massimo", Lat: 41.8860, Lon: 12.4823,
		Description: "Paddock e parco assistenza",
		keywords:    regexp.MustCompile(`circo\s*massimo|circus\s*maximus|paddock`),
	},
	{
		Key: "caracalla", Name: "Terme di Caracalla", Lat: 41.8790, Lon: 12.4925,
		Description: "Prova speciale cittadina (PS1 e PS4)",
		keywords:    regexp.MustCompile(`caracalla|terme`),
	},
	{
		Key: "foro_romano", Name: "Foro Romano", Lat: 41.8925, Lon: 12.4853,
		Description: "Esposizione statica delle vetture storiche",
		keywords:    regexp.MustCompile(`foro\s*romano|forum|esposizione`),
	},
	{
		Key: "piazza_venezia", Name: "Piazza Venezia", Lat: 41.8960, Lon: 12.4823,
		Description: "Villaggio hospitality e biglietteria centrale",
		keywords:    regexp.MustCompile(`piazza\s*venezia|venezia|biglietteria`),
	},
}

// FindLocation returns the first venue whose keywords match the lower-cased text.
func FindLocation(text string) (Location, bool) {
	t := strings.ToLower(text)
	for _, l := range Locations {
		if l.keywords.MatchString(t) {
			return l, true
		}
	}
	return Location{}, false
}

// ---- retrieval blocks ----

const blockSeparator = "\n\n---\n\n"

var scheduleBlock = strings.TrimSpace(`
PROGRAMMA (` + EventDates + `):
Venerdi 25/09: 10:00 verifiche sportive (Piazza Venezia), 15:00 shakedown, 18:00 partenza cerimoniale (Colosseo).
Sabato 26/09: 09:00 PS1 Terme di Caracalla, 11:30 PS2 Appia Antica, 15:00 PS3 Castelli Romani, 21:00 notturna al Circo Massimo.
Domenica 27/09: 09:30 PS4 Terme di Caracalla, 12:00 PS5 Appia Antica, 16:00 arrivo e podio (Colosseo), 17:00 premiazione.
`)

var ticketsBlock = strings.TrimSpace(`
BIGLIETTI:
- Accesso al percorso cittadino: gratuito.
- Tribuna Caracalla (1 giorno): 25 EUR, ridotto 15 EUR (under 12 gratis).
- Tribuna Colosseo partenza/arrivo: 35 EUR.
- Pass weekend tribune + paddock: 60 EUR.
Acquisto online su ` + Website + ` o alla biglietteria centrale di Piazza Venezia.
`)

var historyBlock = strings.TrimSpace(`
ALBO D'ORO:
2022: Bianchi/Colombo su Lancia Stratos HF.
2023: De Santis/Ferri su Porsche 911 SC.
2024: Martin/Dubois su Ford Escort RS1800.
2025: Bianchi/Colombo su Lancia 037, record di 82 equipaggi iscritti.
Prima edizione nel 2022; riservato a vetture storiche omologate FIA fino al 1990.
`)

var infoBlock = strings.TrimSpace(`
INFO GENERALI:
` + EventName + ` si corre a Roma dal ` + EventDates + `.
Rally per auto storiche su prove speciali cittadine chiuse al traffico; ` + EntryCost + `.
Circa 80 equipaggi da tutta Europa, vetture dal 1955 al 1990.
`)

var contactsBlock = strings.TrimSpace(`
CONTATTI:
Sito ufficiale: ` + Website + `
Email organizzazione: ` + Email + `
Accrediti stampa: press@rallycapitalestorica.it
`)

func locationsBlock() string {
	var b strings.Builder
	b.WriteString("LUOGHI:\n")
	for _, l := range Locations {
		fmt.Fprintf(&b, "- %s (%.4f, %.4f): %s.\n", l.Name, l.Lat, l.Lon, l.Description)
	}
	return strings.TrimSpace(b.String())
}

// fallbackBlock is returned when no pattern matches: dates, entry cost, site, email.
var fallbackBlock = strings.TrimSpace(`
` + EventName + `: ` + EventDates + `, Roma. ` + EntryCost + `.
Sito: ` + Website + ` - Email: ` + Email + `
`)

type section struct {
	pattern *regexp.Regexp
	block   func() string
}

// sections are evaluated in a fixed order; matching is non-exclusive, so a
// keyword-rich query can pull several blocks into the same context.
var sections = []section{
	{regexp.MustCompile(`programma|orari|quando|schedule|calendario|partenza|prova|prove|speciale`), func() string { return scheduleBlock }},
	{regexp.MustCompile(`bigliett|ticket|prezzo|price|cost|tribun|abbonament|pass\b`), func() string { return ticketsBlock }},
	{regexp.MustCompile(`dove|location|luog|mappa|map|arriv|colosseo|caracalla|circo|foro|venezia|paddock`), locationsBlock},
	{regexp.MustCompile(`storia|albo|vincitor|winner|histor|edizion|passat`), func() string { return historyBlock }},
	{regexp.MustCompile(`rally|evento|event|auto|cars?\b|storich|info`), func() string { return infoBlock }},
	{regexp.MustCompile(`contatt|contact|email|telefono|stampa|press|accredit`), func() string { return contactsBlock }},
}

// Context selects the knowledge blocks relevant to query. Size is not bounded
// here; the completion client's token budget is the only cap.
func Context(query string) string {
	q := strings.ToLower(query)
	var blocks []string
	for _, s := range sections {
		if s.pattern.MatchString(q) {
			blocks = append(blocks, s.block())
		}
	}
	if len(blocks) == 0 {
		return fallbackBlock
	}
	return strings.Join(blocks, blockSeparator)
}
