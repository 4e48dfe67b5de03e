package main

import "fmt"

const defaultLanguage = "it"

// translations maps language code -> message key -> template.
// Templates use fmt.Sprintf verbs; t applies arguments in order.
var translations = map[string]map[string]string{
	"it": {
		"ask_language":       "Ciao! In che lingua vuoi usare il bot?",
		"invalid_language":   "Lingua non riconosciuta, riprova.",
		"ask_fuel":           "Che carburante usi?",
		"invalid_fuel":       "Carburante non riconosciuto, riprova.",
		"ask_service":        "Preferisci self-service o servito?",
		"invalid_service":    "Scelta non riconosciuta, riprova.",
		"profile_saved":      "Profilo salvato! Usa /find per cercare i distributori più economici.",
		"need_profile":       "Prima configura il tuo profilo con /start.",
		"ask_location":       "Inviami la tua posizione o scrivi un indirizzo.",
		"send_location":      "📍 Invia la posizione",
		"invalid_address":    "Non ho trovato questo indirizzo. Riprova con un indirizzo diverso o invia la posizione GPS.",
		"searching":          "🔍 Sto cercando i distributori più economici...",
		"no_stations":        "Nessun distributore trovato in zona. 😔",
		"area_label":         "Area di %s",
		"stations_analyzed":  "%d distributori analizzati",
		"average_zone_price": "Prezzo medio %s in zona: <b>%s</b>",
		"address":            "Indirizzo",
		"price":              "Prezzo",
		"no_address":         "indirizzo non disponibile",
		"last_update":        "Ultimo aggiornamento: %s",
		"note_cheaper":       "%d%% sotto la media",
		"note_more_expensive": "%d%% sopra la media",
		"note_equal":         "in linea con la media",
		"lets_go":            "Andiamo! 🚗",
		"save_favorite":      "⭐ Salva tra i preferiti",
		"other_radius":       "Cerca in un raggio di %s",
		"ask_fav_name":       "Che nome vuoi dare a questo preferito?",
		"ask_fav_location":   "Inviami la posizione o scrivi l'indirizzo del preferito.",
		"fav_saved":          "Preferito salvato! ⭐",
		"fav_removed":        "Preferito rimosso.",
		"no_favorites":       "Non hai ancora preferiti.",
		"favorites_title":    "I tuoi preferiti:",
		"which_fav_remove":   "Quale preferito vuoi rimuovere?",
		"add_favorite_btn":   "➕ Aggiungi preferito",
		"edit_favorite_btn":  "✏️ Modifica preferiti",
		"profile_info":       "Il tuo profilo:\nCarburante: %s\nServizio: %s\nLingua: %s",
		"edit_language":      "🌍 Cambia lingua",
		"edit_fuel":          "⛽ Cambia carburante",
		"edit_service":       "🛎 Cambia servizio",
		"no_statistics":      "Non ho ancora statistiche per te: fai qualche ricerca con /find!",
		"statistics": "<b>%s</b>\nRicerche: %d\nDistributori analizzati: %d\nRisparmio medio: %.3f €/%s (%.1f%%)\nRisparmio annuo stimato*: %.2f €\n<i>*stima su %.1f %s/100km e 10.000 km/anno</i>",
		"reset_statistics":   "🗑 Azzera statistiche",
		"stats_reset":        "Statistiche azzerate.",
		"monthly_report": "Grazie a TrovaBenzina il mese scorso hai risparmiato %.2f €*.\n\nVuoi offrirmi un caffè?\n%s\n\n*Calcolo basato su %d litri a ricerca.",
		"help": "Comandi disponibili:\n/start – configura lingua, carburante e servizio\n/find – trova i distributori più economici vicino a te\n/favorites – gestisci i luoghi preferiti\n/profile – vedi e modifica il tuo profilo\n/statistics – quanto hai risparmiato\n/help – questo messaggio",
		"unknown_command": "Comando sconosciuto. Usa /help per l'elenco dei comandi.",
		"idle_hint":       "Usa /find per cercare i distributori più economici vicino a te.",
	},
	"en": {
		"ask_language":       "Hi! Which language do you want to use?",
		"invalid_language":   "Language not recognized, try again.",
		"ask_fuel":           "Which fuel do you use?",
		"invalid_fuel":       "Fuel not recognized, try again.",
		"ask_service":        "Do you prefer self-service or full service?",
		"invalid_service":    "Choice not recognized, try again.",
		"profile_saved":      "Profile saved! Use /find to search for the cheapest stations.",
		"need_profile":       "Please set up your profile first with /start.",
		"ask_location":       "Send me your location or type an address.",
		"send_location":      "📍 Send location",
		"invalid_address":    "I couldn't find that address. Try a different address or send your GPS location.",
		"searching":          "🔍 Searching for the cheapest stations...",
		"no_stations":        "No stations found in this area. 😔",
		"area_label":         "%s area",
		"stations_analyzed":  "%d stations analyzed",
		"average_zone_price": "Average %s price in the area: <b>%s</b>",
		"address":            "Address",
		"price":              "Price",
		"no_address":         "address not available",
		"last_update":        "Last update: %s",
		"note_cheaper":       "%d%% below average",
		"note_more_expensive": "%d%% above average",
		"note_equal":         "in line with the average",
		"lets_go":            "Let's go! 🚗",
		"save_favorite":      "⭐ Save as favorite",
		"other_radius":       "Search within %s",
		"ask_fav_name":       "What name do you want for this favorite?",
		"ask_fav_location":   "Send me the location or type the address of the favorite.",
		"fav_saved":          "Favorite saved! ⭐",
		"fav_removed":        "Favorite removed.",
		"no_favorites":       "You have no favorites yet.",
		"favorites_title":    "Your favorites:",
		"which_fav_remove":   "Which favorite do you want to remove?",
		"add_favorite_btn":   "➕ Add favorite",
		"edit_favorite_btn":  "✏️ Edit favorites",
		"profile_info":       "Your profile:\nFuel: %s\nService: %s\nLanguage: %s",
		"edit_language":      "🌍 Change language",
		"edit_fuel":          "⛽ Change fuel",
		"edit_service":       "🛎 Change service",
		"no_statistics":      "No statistics yet: run a few searches with /find!",
		"statistics": "<b>%s</b>\nSearches: %d\nStations analyzed: %d\nAverage saving: %.3f €/%s (%.1f%%)\nEstimated annual saving*: %.2f €\n<i>*based on %.1f %s/100km and 10,000 km/year</i>",
		"reset_statistics":   "🗑 Reset statistics",
		"stats_reset":        "Statistics reset.",
		"monthly_report": "Thanks to TrovaBenzina, last month you saved %.2f €*.\n\nWould you like to buy me a coffee?\n%s\n\n*Based on %d liters per search.",
		"help": "Available commands:\n/start – set language, fuel and service\n/find – find the cheapest stations near you\n/favorites – manage saved locations\n/profile – view and edit your profile\n/statistics – how much you saved\n/help – this message",
		"unknown_command": "Unknown command. Use /help for the list of commands.",
		"idle_hint":       "Use /find to search for the cheapest stations near you.",
	},
}

// t resolves a message for a language, falling back to the default language,
// and applies Sprintf arguments when present
func t(lang, key string, args ...interface{}) string {
	table, ok := translations[lang]
	if !ok {
		table = translations[defaultLanguage]
	}
	msg, ok := table[key]
	if !ok {
		msg = translations[defaultLanguage][key]
	}
	if msg == "" {
		return key
	}
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}
