package main

import (
	"context"
	"time"
)

// startScheduler runs the periodic jobs on a single goroutine: the daily
// geocache retention sweep and the monthly savings report. A one-minute
// ticker with last-run guards stands in for cron.
func (b *Bot) startScheduler(ctx context.Context) {
	loc, err := time.LoadLocation(b.cfg.Timezone)
	if err != nil {
		b.log.Warnw("invalid scheduler timezone, using UTC", "timezone", b.cfg.Timezone, "error", err)
		loc = time.UTC
	}

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()

		var lastCleanDay, lastReportMonth string
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				local := now.In(loc)

				day := local.Format("2006-01-02")
				if local.Hour() == b.cfg.CacheCleanHour && day != lastCleanDay {
					lastCleanDay = day
					b.cleanGeocache(ctx)
				}

				month := local.Format("2006-01")
				if local.Day() == b.cfg.MonthlyReportDay && local.Hour() == b.cfg.MonthlyReportHour && month != lastReportMonth {
					lastReportMonth = month
					b.sendMonthlyReports(ctx, local)
				}
			}
		}
	}()

	b.log.Infof("Scheduler started with timezone %s", loc)
}

// cleanGeocache removes geocode cache entries older than the retention window
func (b *Bot) cleanGeocache(ctx context.Context) {
	retention := time.Duration(b.cfg.CacheRetentionDays) * 24 * time.Hour
	deleted, err := b.db.DeleteStaleGeocache(ctx, retention)
	if err != nil {
		b.log.Warnw("geocache cleanup failed", "error", err)
		return
	}
	b.log.Infow("geocode cache cleaned", "deleted", deleted)
}

// sendMonthlyReports messages each user their previous-month saving,
// estimated at a fixed number of liters per search
func (b *Bot) sendMonthlyReports(ctx context.Context, now time.Time) {
	if !b.cfg.EnableDonation {
		return
	}

	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	start := firstOfMonth.AddDate(0, -1, 0)

	savings, err := b.db.MonthlySavings(ctx, start, firstOfMonth, float64(b.cfg.LitersPerSearch))
	if err != nil {
		b.log.Warnw("monthly savings query failed", "error", err)
		return
	}

	for _, s := range savings {
		lang := b.userLanguage(ctx, s.UserID)
		b.sendText(s.UserID, t(lang, "monthly_report", s.Saving, b.cfg.PaypalLink, b.cfg.LitersPerSearch))
	}
	b.log.Infow("monthly reports sent", "users", len(savings))
}
