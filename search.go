package main

import (
	"context"
	"fmt"
	"math"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"trovabenzina-bot/db"
	"trovabenzina-bot/ranking"
)

// runSearch executes one ranking pass for a point and radius, renders the
// result and appends the search log entry. When offerOtherRadiusKm is
// non-zero the result message carries a button to repeat the search at that
// radius; the near radius is always processed before a wider follow-up.
func (b *Bot) runSearch(ctx context.Context, chatID, userID int64, lang string, lat, lng, radiusKm, offerOtherRadiusKm float64) {
	profile, err := b.db.GetUser(ctx, userID)
	if err != nil {
		b.log.Warnw("failed to load user profile", "user_id", userID, "error", err)
	}
	if profile == nil {
		b.sendText(chatID, t(lang, "need_profile"))
		return
	}

	fuel, ok := b.catalog.FuelByCode(profile.FuelCode)
	if !ok {
		b.log.Warnw("profile references unknown fuel", "user_id", userID, "fuel_code", profile.FuelCode)
		b.sendText(chatID, t(lang, "need_profile"))
		return
	}

	selector := b.catalog.Selector(fuel.Code, profile.ServiceCode)
	stations, ok := b.stations.Search(ctx, lat, lng, radiusKm, selector)
	if !ok {
		// Upstream failure degrades to an empty result set
		stations = nil
	}

	result := ranking.Rank(stations, fuel.ID)
	b.logSearch(ctx, userID, fuel.Code, radiusKm, result)

	header := fmt.Sprintf("<b><u>%s</u></b> 📍\n", t(lang, "area_label", formatRadius(radiusKm)))

	if !result.Found {
		b.sendHTML(chatID, header+"\n"+t(lang, "no_stations"), b.resultKeyboard(lang, lat, lng, offerOtherRadiusKm))
		return
	}

	header += t(lang, "stations_analyzed", result.NumStations) + "\n"
	header += t(lang, "average_zone_price", esc(fuel.Name), formatPrice(result.Average, fuel.Unit)) + "\n\n"

	medals := []string{"🥇", "🥈", "🥉"}
	var lines []string
	for i, entry := range result.Entries {
		station := entry.Station

		address := station.Address
		if address == "" {
			if fetched, ok := b.stations.FetchAddress(ctx, station.ID); ok {
				address = fetched
			} else {
				address = t(lang, "no_address")
			}
		}

		line := fmt.Sprintf("%s <b><a href=\"%s\">%s • %s</a></b>\n", medals[i],
			directionsURL(station.Location.Lat, station.Location.Lng),
			esc(station.Brand), esc(station.Name))
		line += fmt.Sprintf("• <u>%s</u>: %s\n", t(lang, "address"), esc(address))
		line += fmt.Sprintf("• <u>%s</u>: <b>%s</b>, %s",
			t(lang, "price"), formatPrice(entry.Price, fuel.Unit), avgComparisonNote(lang, entry.Pct))
		if station.InsertDate != "" {
			line += fmt.Sprintf("\n<i>[%s]</i>", t(lang, "last_update", formatInsertDate(station.InsertDate)))
		}
		lines = append(lines, line)
	}

	b.sendHTML(chatID, header+strings.Join(lines, "\n\n"), b.resultKeyboard(lang, lat, lng, offerOtherRadiusKm))
}

// resultKeyboard attaches the save-favorite button and, when given, a button
// to repeat the search at the other radius
func (b *Bot) resultKeyboard(lang string, lat, lng, otherRadiusKm float64) interface{} {
	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				t(lang, "save_favorite"),
				fmt.Sprintf("savefav:%.6f:%.6f", lat, lng),
			),
		),
	}
	if otherRadiusKm > 0 {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				t(lang, "other_radius", formatRadius(otherRadiusKm)),
				fmt.Sprintf("radius:%s:%.6f:%.6f", formatRadiusValue(otherRadiusKm), lat, lng),
			),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// formatRadiusValue renders a radius for callback data, without the unit
func formatRadiusValue(km float64) string {
	return strings.TrimSuffix(formatRadius(km), " km")
}

// logSearch appends the search log entry for one ranking pass
func (b *Bot) logSearch(ctx context.Context, userID int64, fuelCode string, radiusKm float64, result ranking.Result) {
	if err := b.db.SaveSearch(ctx, searchLogEntry(userID, fuelCode, radiusKm, result)); err != nil {
		b.log.Warnw("failed to save search", "user_id", userID, "error", err)
	}
}

// searchLogEntry builds the log row for one ranking pass. The average is
// recorded whenever it was computed, even if the below-average filter left
// no entries; prices stay null otherwise. Prices are rounded to the
// thousandth, the upstream precision.
func searchLogEntry(userID int64, fuelCode string, radiusKm float64, result ranking.Result) db.SearchLogEntry {
	entry := db.SearchLogEntry{
		UserID:      userID,
		FuelCode:    fuelCode,
		RadiusKm:    radiusKm,
		NumStations: result.NumStations,
	}
	if result.Average > 0 {
		avg := math.Round(result.Average*1000) / 1000
		entry.PriceAvg = &avg
	}
	if len(result.Entries) > 0 {
		min := math.Round(result.Entries[0].Price*1000) / 1000
		entry.PriceMin = &min
	}
	return entry
}
