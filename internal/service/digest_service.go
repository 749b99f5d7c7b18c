package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"taskflow/internal/model"
	"taskflow/internal/repository"
)

// maxDigestTasks caps the open-task section of a digest.
const maxDigestTasks = 15

// DigestService builds the HTML summary sent to Telegram subscribers.
type DigestService struct {
	stats    *StatsService
	taskRepo *repository.TaskRepository
}

func NewDigestService(stats *StatsService, taskRepo *repository.TaskRepository) *DigestService {
	return &DigestService{stats: stats, taskRepo: taskRepo}
}

func (s *DigestService) Summary(ctx context.Context, now time.Time) (string, error) {
	stats, err := s.stats.Snapshot(ctx)
	if err != nil {
		return "", err
	}
	open, err := s.taskRepo.ListOpen(ctx)
	if err != nil {
		return "", fmt.Errorf("digest: %w", err)
	}
	return RenderDigest(stats, open, now), nil
}

// RenderDigest formats a stats snapshot and the open tasks as Telegram HTML.
func RenderDigest(stats *model.Stats, open []model.Task, now time.Time) string {
	var b strings.Builder
	b.WriteString("📋 <b>TaskFlow digest</b>\n")
	b.WriteString(fmt.Sprintf("🗓 %s\n\n", now.Format("2006-01-02")))

	b.WriteString(fmt.Sprintf("✅ Completed %d of %d tasks", stats.CompletedTasks, stats.TotalTasks))
	if stats.TotalTasks > 0 {
		b.WriteString(fmt.Sprintf(" (%d%%)", stats.CompletionRate()))
	}
	b.WriteString("\n")

	if len(stats.TasksByCategory) > 0 {
		b.WriteString("\n📂 <b>By category</b>\n")
		for _, c := range stats.TasksByCategory {
			b.WriteString(fmt.Sprintf("• %s — %d\n", html.EscapeString(c.Name), c.Count.Tasks))
		}
	}

	b.WriteString("\n🔥 <b>Open tasks</b>\n")
	if len(open) == 0 {
		b.WriteString("— nothing left, well done\n")
	}
	for i, t := range open {
		if i == maxDigestTasks {
			b.WriteString(fmt.Sprintf("…and %d more\n", len(open)-maxDigestTasks))
			break
		}
		b.WriteString(formatTaskLine(t))
	}

	return strings.TrimSpace(b.String())
}

func formatTaskLine(t model.Task) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("#%d %s", t.ID, html.EscapeString(strings.TrimSpace(t.Title))))
	if t.Category != nil && strings.TrimSpace(t.Category.Name) != "" {
		sb.WriteString(fmt.Sprintf(" <i>(%s)</i>", html.EscapeString(strings.TrimSpace(t.Category.Name))))
	}
	if d := t.DescriptionText(); d != "" {
		sb.WriteString(fmt.Sprintf("\n   📝 %s", html.EscapeString(d)))
	}
	sb.WriteByte('\n')
	return sb.String()
}
