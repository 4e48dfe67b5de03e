package main

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trovabenzina-bot/ranking"
)

func TestSearchLogEntryWithResults(t *testing.T) {
	result := ranking.Result{
		Found:       true,
		Average:     1.72533333,
		Entries:     []ranking.Entry{{Price: 1.6989}},
		NumStations: 3,
	}

	entry := searchLogEntry(7, "1", 2.5, result)

	assert.Equal(t, int64(7), entry.UserID)
	assert.Equal(t, "1", entry.FuelCode)
	assert.InDelta(t, 2.5, entry.RadiusKm, 1e-9)
	assert.Equal(t, 3, entry.NumStations)
	require.NotNil(t, entry.PriceAvg)
	assert.InDelta(t, 1.725, *entry.PriceAvg, 1e-9)
	require.NotNil(t, entry.PriceMin)
	assert.InDelta(t, 1.699, *entry.PriceMin, 1e-9)
}

func TestSearchLogEntryNoStations(t *testing.T) {
	entry := searchLogEntry(7, "2", 7.5, ranking.Result{})

	assert.Zero(t, entry.NumStations)
	assert.Nil(t, entry.PriceAvg)
	assert.Nil(t, entry.PriceMin)
}

func TestSearchLogEntryAverageWithoutWinners(t *testing.T) {
	// The average survives into the log even when no station beat it
	entry := searchLogEntry(7, "1", 2.5, ranking.Result{Average: 1.8, NumStations: 4})

	assert.Equal(t, 4, entry.NumStations)
	require.NotNil(t, entry.PriceAvg)
	assert.InDelta(t, 1.8, *entry.PriceAvg, 1e-9)
	assert.Nil(t, entry.PriceMin)
}

func TestResultKeyboardOffersOtherRadius(t *testing.T) {
	b := newTestBot()

	markup, ok := b.resultKeyboard("it", 45.4642, 9.19, 7.5).(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, markup.InlineKeyboard, 2)

	btn := markup.InlineKeyboard[1][0]
	require.NotNil(t, btn.CallbackData)
	assert.Equal(t, "radius:7.5:45.464200:9.190000", *btn.CallbackData)
}

func TestResultKeyboardWithoutOtherRadius(t *testing.T) {
	b := newTestBot()

	markup, ok := b.resultKeyboard("it", 45.0, 9.0, 0).(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, markup.InlineKeyboard, 1)

	btn := markup.InlineKeyboard[0][0]
	require.NotNil(t, btn.CallbackData)
	assert.Equal(t, "savefav:45.000000:9.000000", *btn.CallbackData)
}
