package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/agenda23/insightdash/internal/cache"
	"github.com/agenda23/insightdash/internal/market"
	"github.com/agenda23/insightdash/internal/refresh"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	upStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	downStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	mockStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// renderView lays the widgets out in the user's configured order.
func renderView(a *app, v refresh.View) string {
	var b strings.Builder
	for _, widget := range a.settings.Settings().WidgetOrder {
		switch widget {
		case "market":
			b.WriteString(renderMarket(a, v))
		case "weather":
			b.WriteString(renderWeather(v))
		case "news":
			b.WriteString(renderNews(v))
		case "todo":
			b.WriteString(renderTodos(a))
		}
	}
	return b.String()
}

func renderMarket(a *app, v refresh.View) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("マーケット") + cacheAgeSuffix(a, cache.KeyMarket) + "\n")
	for _, inst := range a.cfg.Market.Instruments {
		q, ok := v.Market[inst.Key]
		if !ok {
			continue
		}
		label := inst.Label
		if label == "" {
			label = inst.Symbol
		}
		b.WriteString(fmt.Sprintf("  %-14s %12.2f  %s%s\n",
			labelStyle.Render(label), q.Value, formatChange(q), mockMarker(q.Mock)))
	}
	b.WriteString("\n")
	return b.String()
}

func formatChange(q market.Quote) string {
	s := fmt.Sprintf("%+.2f (%+.2f%%)", q.Change, q.ChangePercent)
	if q.Change < 0 {
		return downStyle.Render("▼ " + s)
	}
	return upStyle.Render("▲ " + s)
}

func mockMarker(mock bool) string {
	if !mock {
		return ""
	}
	return " " + mockStyle.Render("(デモ値)")
}

func renderWeather(v refresh.View) string {
	cur := v.Weather.Current
	var b strings.Builder
	b.WriteString(titleStyle.Render("天気") + " " + labelStyle.Render(cur.Prefecture+" "+cur.CityName) + "\n")
	b.WriteString(fmt.Sprintf("  %s %s %d°C  湿度%d%%  降水確率%d%%\n",
		cur.Icon, cur.Condition, cur.Temp, cur.Humidity, cur.PrecipitationProbability))
	for _, day := range v.Weather.Forecast {
		b.WriteString(fmt.Sprintf("  %-4s %s %3d°C / %3d°C  %d%%\n",
			day.Day, day.Icon, day.Temp, day.TempMin, day.PrecipitationProbability))
	}
	b.WriteString("\n")
	return b.String()
}

func renderNews(v refresh.View) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("ニュース") + "\n")
	if v.NewsErr != "" {
		b.WriteString("  " + errStyle.Render("取得失敗: "+v.NewsErr) + "\n")
		if len(v.News) > 0 {
			b.WriteString("  " + dimStyle.Render("前回の見出しを表示しています") + "\n")
		}
	}
	for _, article := range v.News {
		b.WriteString(fmt.Sprintf("  %2d. %s %s\n",
			article.ID, article.Title, dimStyle.Render(article.Time+" "+article.Source)))
	}
	if len(v.News) == 0 && v.NewsErr == "" {
		b.WriteString("  " + dimStyle.Render("見出しはまだありません") + "\n")
	}
	b.WriteString("\n")
	return b.String()
}

func renderTodos(a *app) string {
	todos := a.todos.Todos()
	stats := a.todos.Stats()

	var b strings.Builder
	b.WriteString(titleStyle.Render("タスク") +
		dimStyle.Render(fmt.Sprintf(" %d/%d 完了", stats.Completed, stats.Total)) + "\n")
	for _, t := range todos {
		mark := "[ ]"
		if t.Completed {
			mark = "[x]"
		}
		line := fmt.Sprintf("  %s %s", mark, t.Text)
		if t.Completed {
			line = dimStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	if len(todos) == 0 {
		b.WriteString("  " + dimStyle.Render("タスクはありません") + "\n")
	}
	b.WriteString("\n")
	return b.String()
}

func cacheAgeSuffix(a *app, key string) string {
	age, ok := a.cache.Age(key)
	if !ok {
		return ""
	}
	return " " + dimStyle.Render(formatAge(age)+"前に取得")
}

func formatAge(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%d秒", int(d.Seconds()))
	}
	return fmt.Sprintf("%d分", int(d.Minutes()))
}
