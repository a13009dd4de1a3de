package flow

import (
	"context"
	"log/slog"

	"github.com/m3rciful/expensebot/internal/menu"
	"github.com/m3rciful/expensebot/internal/report"
	"github.com/m3rciful/expensebot/internal/txn"
)

func (d *Dispatcher) recent(ctx context.Context, chatID int64, t txn.Type) error {
	entries, err := d.reports.Recent(ctx, t, report.RecentLimit)
	if err != nil {
		d.log(ctx, slog.LevelError, "flow.recent", slog.String("status", "fail"), slog.String("err", err.Error()))
		return d.msg.SendMessage(ctx, chatID, menu.MsgReportError, menu.RecentNav())
	}
	return d.msg.SendMessage(ctx, chatID, report.FormatRecent(t, entries), menu.RecentNav())
}

func (d *Dispatcher) weekly(ctx context.Context, chatID int64, offset int) error {
	if offset >= menu.WeeklyWeeks {
		return d.show(ctx, chatID, menu.Weekly(d.now()))
	}
	s, err := d.reports.Weekly(ctx, offset)
	if err != nil {
		d.log(ctx, slog.LevelError, "flow.weekly", slog.String("status", "fail"), slog.String("err", err.Error()))
		return d.msg.SendMessage(ctx, chatID, menu.MsgReportError, menu.WeeklyNav())
	}
	if err := d.msg.SendMessage(ctx, chatID, report.FormatWeekly(s), menu.WeeklyNav()); err != nil {
		return err
	}

	png, err := report.CategoryChart(s)
	if err != nil {
		d.log(ctx, slog.LevelWarn, "flow.weekly_chart", slog.String("status", "fail"), slog.String("err", err.Error()))
		return nil
	}
	if png == nil {
		return nil
	}
	return d.msg.SendPhoto(ctx, chatID, png, "🥧 "+s.Week.Range())
}
