package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// handleMessage dispatches a single incoming message: commands reset the
// conversation, everything else is routed by the chat's current step.
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	userID := msg.From.ID

	lock := b.lockChat(chatID)
	lock.Lock()
	defer lock.Unlock()

	lang := b.userLanguage(ctx, userID)

	if msg.IsCommand() {
		b.resetSession(chatID)
		switch msg.Command() {
		case "start":
			b.cmdStart(chatID, lang)
		case "find":
			b.cmdFind(ctx, chatID, userID, lang)
		case "favorites":
			b.cmdFavorites(ctx, chatID, userID, lang)
		case "profile":
			b.cmdProfile(ctx, chatID, userID, lang)
		case "statistics":
			b.cmdStatistics(ctx, chatID, userID, lang)
		case "help":
			b.sendText(chatID, t(lang, "help"))
		default:
			b.sendText(chatID, t(lang, "unknown_command"))
		}
		return
	}

	sess := b.session(chatID)
	switch sess.step {
	case stepStartLanguage:
		b.stepLanguage(ctx, chatID, userID, sess, msg.Text)
	case stepStartFuel:
		b.stepFuel(ctx, chatID, userID, sess, msg.Text)
	case stepStartService:
		b.stepService(ctx, chatID, userID, sess, msg.Text)
	case stepFindLocation:
		b.stepFindLocation(ctx, chatID, userID, lang, msg)
	case stepFavoriteName:
		sess.favName = strings.TrimSpace(msg.Text)
		sess.step = stepFavoriteLocation
		b.sendText(chatID, t(lang, "ask_fav_location"))
	case stepFavoriteLocation:
		b.stepFavoriteLocation(ctx, chatID, userID, lang, sess, msg)
	default:
		b.sendText(chatID, t(lang, "idle_hint"))
	}
}

// cmdStart begins the profile flow: language, fuel, service
func (b *Bot) cmdStart(chatID int64, lang string) {
	sess := b.session(chatID)
	*sess = session{step: stepStartLanguage}

	var labels []string
	for _, l := range b.catalog.Languages() {
		labels = append(labels, l.Name)
	}
	b.sendKeyboard(chatID, t(lang, "ask_language"), labels)
}

func (b *Bot) stepLanguage(ctx context.Context, chatID, userID int64, sess *session, text string) {
	language, ok := b.catalog.LanguageByName(strings.TrimSpace(text))
	if !ok {
		b.sendText(chatID, t(sess.lang, "invalid_language"))
		return
	}
	sess.lang = language.Code

	if sess.editOnly {
		b.saveProfile(ctx, chatID, userID, sess)
		return
	}

	var labels []string
	for _, f := range b.catalog.Fuels() {
		labels = append(labels, f.Name)
	}
	sess.step = stepStartFuel
	b.sendKeyboard(chatID, t(sess.lang, "ask_fuel"), labels)
}

func (b *Bot) stepFuel(ctx context.Context, chatID, userID int64, sess *session, text string) {
	fuel, ok := b.catalog.FuelByName(strings.TrimSpace(text))
	if !ok {
		b.sendText(chatID, t(sess.lang, "invalid_fuel"))
		return
	}
	sess.fuelCode = fuel.Code

	if sess.editOnly {
		b.saveProfile(ctx, chatID, userID, sess)
		return
	}

	var labels []string
	for _, s := range b.catalog.Services() {
		labels = append(labels, s.Name)
	}
	sess.step = stepStartService
	b.sendKeyboard(chatID, t(sess.lang, "ask_service"), labels)
}

func (b *Bot) stepService(ctx context.Context, chatID, userID int64, sess *session, text string) {
	service, ok := b.catalog.ServiceByName(strings.TrimSpace(text))
	if !ok {
		b.sendText(chatID, t(sess.lang, "invalid_service"))
		return
	}
	sess.serviceCode = service.Code
	b.saveProfile(ctx, chatID, userID, sess)
}

// saveProfile persists the assembled profile and ends the flow
func (b *Bot) saveProfile(ctx context.Context, chatID, userID int64, sess *session) {
	lang := sess.lang
	if err := b.db.UpsertUser(ctx, userID, sess.fuelCode, sess.serviceCode, sess.lang); err != nil {
		b.log.Warnw("failed to save profile", "user_id", userID, "error", err)
	}
	b.resetSession(chatID)
	b.sendText(chatID, t(lang, "profile_saved"))
}

// cmdFind asks for a location: GPS button plus one button per favorite
func (b *Bot) cmdFind(ctx context.Context, chatID, userID int64, lang string) {
	profile, err := b.db.GetUser(ctx, userID)
	if err != nil {
		b.log.Warnw("failed to load user profile", "user_id", userID, "error", err)
	}
	if profile == nil {
		b.sendText(chatID, t(lang, "need_profile"))
		return
	}

	sess := b.session(chatID)
	*sess = session{step: stepFindLocation}
	b.sendLocationKeyboard(ctx, chatID, userID, lang)
}

func (b *Bot) stepFindLocation(ctx context.Context, chatID, userID int64, lang string, msg *tgbotapi.Message) {
	if msg.Location != nil {
		b.startSearch(ctx, chatID, userID, lang, msg.Location.Latitude, msg.Location.Longitude)
		return
	}

	text := strings.TrimSpace(msg.Text)

	// A favorite's name takes the saved coordinates without geocoding
	favorites, err := b.db.ListFavorites(ctx, userID)
	if err != nil {
		b.log.Warnw("failed to list favorites", "user_id", userID, "error", err)
	}
	for _, fav := range favorites {
		if fav.Name == text {
			b.startSearch(ctx, chatID, userID, lang, fav.Lat, fav.Lng)
			return
		}
	}

	lat, lng, ok := b.geocoder.Resolve(ctx, text)
	if !ok {
		// Not found, rejected for precision or over quota: same prompt
		b.sendText(chatID, t(lang, "invalid_address"))
		return
	}
	b.startSearch(ctx, chatID, userID, lang, lat, lng)
}

// startSearch runs the near-radius search as soon as a point is known; the
// result message offers the wider radius on an inline button
func (b *Bot) startSearch(ctx context.Context, chatID, userID int64, lang string, lat, lng float64) {
	b.resetSession(chatID)
	b.sendText(chatID, t(lang, "searching"))
	b.runSearch(ctx, chatID, userID, lang, lat, lng, b.cfg.RadiusNearKm, b.cfg.RadiusFarKm)
}

// cmdFavorites lists saved locations with add/edit actions
func (b *Bot) cmdFavorites(ctx context.Context, chatID, userID int64, lang string) {
	favorites, err := b.db.ListFavorites(ctx, userID)
	if err != nil {
		b.log.Warnw("failed to list favorites", "user_id", userID, "error", err)
	}

	var text string
	if len(favorites) == 0 {
		text = t(lang, "no_favorites")
	} else {
		lines := []string{t(lang, "favorites_title")}
		for i, fav := range favorites {
			lines = append(lines, fmt.Sprintf("%d) %s", i+1, esc(fav.Name)))
		}
		text = strings.Join(lines, "\n")
	}

	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(t(lang, "add_favorite_btn"), "fav_add"),
		),
	}
	if len(favorites) > 0 {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(t(lang, "edit_favorite_btn"), "fav_edit"),
		))
	}

	b.sendHTML(chatID, text, tgbotapi.NewInlineKeyboardMarkup(rows...))
}

func (b *Bot) stepFavoriteLocation(ctx context.Context, chatID, userID int64, lang string, sess *session, msg *tgbotapi.Message) {
	var lat, lng float64
	if msg.Location != nil {
		lat, lng = msg.Location.Latitude, msg.Location.Longitude
	} else {
		var ok bool
		lat, lng, ok = b.geocoder.Resolve(ctx, msg.Text)
		if !ok {
			b.sendText(chatID, t(lang, "invalid_address"))
			return
		}
	}

	if err := b.db.AddFavorite(ctx, userID, sess.favName, lat, lng); err != nil {
		b.log.Warnw("failed to add favorite", "user_id", userID, "error", err)
	}
	b.resetSession(chatID)
	b.sendText(chatID, t(lang, "fav_saved"))
}

// cmdProfile shows the stored preferences with inline edit actions
func (b *Bot) cmdProfile(ctx context.Context, chatID, userID int64, lang string) {
	profile, err := b.db.GetUser(ctx, userID)
	if err != nil {
		b.log.Warnw("failed to load user profile", "user_id", userID, "error", err)
	}
	if profile == nil {
		b.sendText(chatID, t(lang, "need_profile"))
		return
	}

	fuelName := profile.FuelCode
	if fuel, ok := b.catalog.FuelByCode(profile.FuelCode); ok {
		fuelName = fuel.Name
	}
	serviceName := profile.ServiceCode
	if service, ok := b.catalog.ServiceByCode(profile.ServiceCode); ok {
		serviceName = service.Name
	}
	languageName := profile.LanguageCode
	if language, ok := b.catalog.LanguageByCode(profile.LanguageCode); ok {
		languageName = language.Name
	}

	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(t(lang, "edit_language"), "edit_language"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(t(lang, "edit_fuel"), "edit_fuel"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(t(lang, "edit_service"), "edit_service"),
		),
	)

	b.sendHTML(chatID, t(lang, "profile_info", fuelName, serviceName, languageName), kb)
}

// cmdStatistics reports per-fuel savings with an inline reset button
func (b *Bot) cmdStatistics(ctx context.Context, chatID, userID int64, lang string) {
	stats, err := b.db.GetUserFuelStats(ctx, userID)
	if err != nil {
		b.log.Warnw("failed to load fuel stats", "user_id", userID, "error", err)
	}
	if len(stats) == 0 {
		b.sendText(chatID, t(lang, "no_statistics"))
		return
	}

	for _, s := range stats {
		fuel, ok := b.catalog.FuelByCode(s.FuelCode)
		if !ok {
			continue
		}
		// Annual estimate: average consumption per 100 km over 10,000 km/year
		annualUnits := fuel.AvgConsumptionPer100Km * 100
		estAnnual := s.AvgSavePerUnit * annualUnits

		b.sendHTML(chatID, t(lang, "statistics",
			fuel.Name,
			s.NumSearches,
			s.NumStations,
			s.AvgSavePerUnit,
			fuel.Unit,
			s.AvgSavePct*100,
			estAnnual,
			fuel.AvgConsumptionPer100Km,
			fuel.Unit,
		), nil)
	}

	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(t(lang, "reset_statistics"), "reset_stats"),
		),
	)
	b.sendHTML(chatID, t(lang, "reset_statistics"), kb)
}

// handleCallback dispatches inline keyboard presses
func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	if _, err := b.tg.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		b.log.Warnw("failed to answer callback", "error", err)
	}
	if query.Message == nil {
		return
	}

	chatID := query.Message.Chat.ID
	userID := query.From.ID

	lock := b.lockChat(chatID)
	lock.Lock()
	defer lock.Unlock()

	lang := b.userLanguage(ctx, userID)
	data := query.Data

	switch {
	case strings.HasPrefix(data, "radius:"):
		// radius:<km>:<lat>:<lng> from a previous result message
		parts := strings.Split(data, ":")
		if len(parts) != 4 {
			return
		}
		radius, err1 := strconv.ParseFloat(parts[1], 64)
		lat, err2 := strconv.ParseFloat(parts[2], 64)
		lng, err3 := strconv.ParseFloat(parts[3], 64)
		if err1 != nil || err2 != nil || err3 != nil {
			return
		}
		b.sendText(chatID, t(lang, "searching"))
		b.runSearch(ctx, chatID, userID, lang, lat, lng, radius, 0)

	case strings.HasPrefix(data, "savefav:"):
		// savefav:<lat>:<lng>
		parts := strings.Split(data, ":")
		if len(parts) != 3 {
			return
		}
		lat, err1 := strconv.ParseFloat(parts[1], 64)
		lng, err2 := strconv.ParseFloat(parts[2], 64)
		if err1 != nil || err2 != nil {
			return
		}
		name := fmt.Sprintf("Pos %.4f,%.4f", lat, lng)
		if err := b.db.AddFavorite(ctx, userID, name, lat, lng); err != nil {
			b.log.Warnw("failed to add favorite", "user_id", userID, "error", err)
		}
		b.editMessage(chatID, query.Message.MessageID, t(lang, "fav_saved"))

	case data == "fav_add":
		sess := b.session(chatID)
		*sess = session{step: stepFavoriteName}
		b.editMessage(chatID, query.Message.MessageID, t(lang, "ask_fav_name"))

	case data == "fav_edit":
		favorites, err := b.db.ListFavorites(ctx, userID)
		if err != nil {
			b.log.Warnw("failed to list favorites", "user_id", userID, "error", err)
		}
		if len(favorites) == 0 {
			b.editMessage(chatID, query.Message.MessageID, t(lang, "no_favorites"))
			return
		}
		var rows [][]tgbotapi.InlineKeyboardButton
		for _, fav := range favorites {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(fav.Name, "favdel:"+fav.Name),
			))
		}
		edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, query.Message.MessageID,
			t(lang, "which_fav_remove"), tgbotapi.NewInlineKeyboardMarkup(rows...))
		if _, err := b.tg.Send(edit); err != nil {
			b.log.Warnw("failed to edit message", "chat_id", chatID, "error", err)
		}

	case strings.HasPrefix(data, "favdel:"):
		name := strings.TrimPrefix(data, "favdel:")
		if err := b.db.DeleteFavorite(ctx, userID, name); err != nil {
			b.log.Warnw("failed to delete favorite", "user_id", userID, "error", err)
		}
		b.editMessage(chatID, query.Message.MessageID, t(lang, "fav_removed"))

	case data == "reset_stats":
		if err := b.db.SoftDeleteSearches(ctx, userID); err != nil {
			b.log.Warnw("failed to reset searches", "user_id", userID, "error", err)
		}
		b.editMessage(chatID, query.Message.MessageID, t(lang, "stats_reset"))

	case data == "edit_language" || data == "edit_fuel" || data == "edit_service":
		b.startProfileEdit(ctx, chatID, userID, lang, data)
	}
}

// startProfileEdit prefills the session from the stored profile and jumps to
// the single step being edited; completion saves immediately
func (b *Bot) startProfileEdit(ctx context.Context, chatID, userID int64, lang, action string) {
	profile, err := b.db.GetUser(ctx, userID)
	if err != nil {
		b.log.Warnw("failed to load user profile", "user_id", userID, "error", err)
	}
	if profile == nil {
		b.sendText(chatID, t(lang, "need_profile"))
		return
	}

	sess := b.session(chatID)
	*sess = session{
		editOnly:    true,
		lang:        profile.LanguageCode,
		fuelCode:    profile.FuelCode,
		serviceCode: profile.ServiceCode,
	}

	switch action {
	case "edit_language":
		sess.step = stepStartLanguage
		var labels []string
		for _, l := range b.catalog.Languages() {
			labels = append(labels, l.Name)
		}
		b.sendKeyboard(chatID, t(lang, "ask_language"), labels)
	case "edit_fuel":
		sess.step = stepStartFuel
		var labels []string
		for _, f := range b.catalog.Fuels() {
			labels = append(labels, f.Name)
		}
		b.sendKeyboard(chatID, t(lang, "ask_fuel"), labels)
	case "edit_service":
		sess.step = stepStartService
		var labels []string
		for _, s := range b.catalog.Services() {
			labels = append(labels, s.Name)
		}
		b.sendKeyboard(chatID, t(lang, "ask_service"), labels)
	}
}
