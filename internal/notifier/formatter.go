package notifier

import (
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"RatioChart/internal/model"
	"RatioChart/internal/recorder"
)

// FormatRatioReport formats a chart as a per-day summary.
func FormatRatioReport(chart *model.RatioChart) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>%s</b> | %s\n", html.EscapeString(chart.Title), chart.GeneratedAt.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("区间: %s → %s (%s)\n", chart.From.Format("2006-01-02"), chart.To.Format("2006-01-02"), chart.Granularity))
	if last, ok := chart.LastRatio(); ok {
		b.WriteString(fmt.Sprintf("最新比值: <b>%.4f</b> @ %s\n", last.Ratio, last.Time.Format("01-02 15:04")))
	}
	b.WriteString("\n")

	for _, d := range chart.Days {
		s := d.Stats
		b.WriteString(fmt.Sprintf("%s  %.4f → %.4f (%+.2f%%)  区间 %.4f~%.4f  n=%d\n",
			d.DayKey, s.First, s.Last, s.Change, s.Min, s.Max, s.Count))
	}

	b.WriteString(fmt.Sprintf("\n对齐点数: %d (%s %d / %s %d)",
		chart.PointsAligned, chart.Pair.Numerator, chart.PointsNumerator, chart.Pair.Denominator, chart.PointsDenominator))
	return b.String()
}

// FormatError turns a refresh failure into a user-facing message.
func FormatError(pair model.Pair, err error) string {
	var (
		ne *model.NoDataError
		oe *model.EmptyOverlapError
	)
	title := html.EscapeString(pair.String())
	switch model.ErrorKind(err) {
	case "no_data":
		sym := pair.String()
		if errors.As(err, &ne) {
			sym = ne.Symbol
		}
		return fmt.Sprintf("⚠️ %s: 所选区间内 %s 没有价格数据", title, html.EscapeString(sym))
	case "empty_overlap":
		if errors.As(err, &oe) {
			return fmt.Sprintf("⚠️ %s: %s 与 %s 没有共同的时间点", title, oe.Numerator, oe.Denominator)
		}
		return fmt.Sprintf("⚠️ %s: 两个序列没有共同的时间点", title)
	case "transport":
		return fmt.Sprintf("❌ %s: 数据源暂时不可用, 请稍后重试", title)
	case "format":
		return fmt.Sprintf("❌ %s: 数据源返回了无法识别的数据", title)
	case "invalid":
		return fmt.Sprintf("❌ 请求无效: %s", html.EscapeString(err.Error()))
	case "stale":
		return ""
	default:
		return fmt.Sprintf("❌ %s: %s", title, html.EscapeString(err.Error()))
	}
}

// FormatStatus formats the configured pair and the recent refresh journal.
func FormatStatus(pair model.Pair, nextRun time.Time, history []recorder.RefreshEvent) string {
	var b strings.Builder
	b.WriteString("📦 <b>RatioChart 状态</b>\n\n")
	b.WriteString(fmt.Sprintf("当前组合: %s\n", html.EscapeString(pair.String())))
	if !nextRun.IsZero() {
		b.WriteString(fmt.Sprintf("下次刷新: %s\n", nextRun.Format("2006-01-02 15:04")))
	}
	if len(history) == 0 {
		b.WriteString("\n暂无刷新记录")
		return b.String()
	}
	b.WriteString("\n最近刷新:\n")
	for _, e := range history {
		line := fmt.Sprintf("  %s %s/%s [%s] %s", e.At.Format("01-02 15:04"), e.Numerator, e.Denominator, e.Source, e.Outcome)
		if e.Outcome == "ok" {
			line += fmt.Sprintf(" %.4f", e.LastRatio)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

// FormatHelp lists the bot commands.
func FormatHelp() string {
	return "可用命令:\n• /ratio [today|7days|1month] 生成比值报告\n• /pair A B [a/b|b/a] 切换组合\n• /status 查看状态"
}
