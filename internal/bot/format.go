package bot

import (
	"fmt"
	"html"
	"strings"
	"unicode"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"taskflow/internal/model"
)

const (
	iconOpen = "🟢"
	iconDone = "✅"

	// maxButtons keeps inline keyboards within Telegram's limits.
	maxButtons = 20
)

func escape(s string) string {
	return html.EscapeString(s)
}

func taskIcon(t model.Task) string {
	if t.Completed {
		return iconDone
	}
	return iconOpen
}

// renderTaskList groups tasks by category in the order categories first appear.
func renderTaskList(tasks []model.Task) string {
	type group struct {
		name  string
		tasks []model.Task
	}
	var order []uint
	groups := make(map[uint]*group)
	for _, t := range tasks {
		g, ok := groups[t.CategoryID]
		if !ok {
			name := fmt.Sprintf("Category #%d", t.CategoryID)
			if t.Category != nil && strings.TrimSpace(t.Category.Name) != "" {
				name = t.Category.Name
			}
			g = &group{name: name}
			groups[t.CategoryID] = g
			order = append(order, t.CategoryID)
		}
		g.tasks = append(g.tasks, t)
	}

	var b strings.Builder
	b.WriteString("📋 <b>Tasks</b>\n")
	for _, id := range order {
		g := groups[id]
		b.WriteString(fmt.Sprintf("\n🏷️ <b>%s</b>\n", escape(normalizeTitle(g.name))))
		for _, t := range g.tasks {
			b.WriteString(formatTask(t))
		}
	}
	return strings.TrimSpace(b.String())
}

func formatTask(t model.Task) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s <b>#%d</b> %s\n", taskIcon(t), t.ID, escape(normalizeTitle(t.Title))))
	if d := t.DescriptionText(); d != "" {
		b.WriteString(fmt.Sprintf("   📝 %s\n", escape(d)))
	}
	return b.String()
}

// taskKeyboard has one row per task: toggle completion and delete.
func taskKeyboard(tasks []model.Task) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for i, t := range tasks {
		if i == maxButtons {
			break
		}
		label := fmt.Sprintf("%s #%d · %s", taskIcon(t), t.ID, shortTitle(t.Title, 24))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("%s%d", cbTogglePrefix, t.ID)),
			tgbotapi.NewInlineKeyboardButtonData("🗑", fmt.Sprintf("%s%d", cbDeletePrefix, t.ID)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func renderCategories(categories []model.Category) string {
	var b strings.Builder
	b.WriteString("📂 <b>Categories</b>\n")
	for _, c := range categories {
		b.WriteString(fmt.Sprintf("• #%d %s — %d tasks\n", c.ID, escape(c.Name), c.Count()))
	}
	return strings.TrimSpace(b.String())
}

func renderStats(s *model.Stats) string {
	var b strings.Builder
	b.WriteString("📊 <b>Statistics</b>\n")
	b.WriteString(fmt.Sprintf("Tasks: %d (completed %d)\n", s.TotalTasks, s.CompletedTasks))
	b.WriteString(fmt.Sprintf("Categories: %d\n", s.TotalCategories))
	if len(s.RecentTasks) > 0 {
		b.WriteString("\n🕑 <b>Recent</b>\n")
		for _, t := range s.RecentTasks {
			b.WriteString(formatTask(t))
		}
	}
	return strings.TrimSpace(b.String())
}

func shortTitle(title string, maxLen int) string {
	runes := []rune(strings.TrimSpace(title))
	if len(runes) <= maxLen {
		return string(runes)
	}
	return string(runes[:maxLen-1]) + "…"
}

func normalizeTitle(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	runes := []rune(value)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
