package history

import (
	"sort"
	"time"

	"github.com/doeshing/panel-go/internal/domain"
)

// TopCommands bounds the most-used command list.
const TopCommands = 10

// Analyze derives a snapshot from entries in chronological order (oldest first).
// The daily trend covers the trailing TrendDays calendar days in now's location.
func Analyze(entries []domain.HistoryEntry, now time.Time) domain.AnalyticsSnapshot {
	snapshot := domain.AnalyticsSnapshot{
		TotalCommands:    len(entries),
		MostUsedCommands: []domain.CommandCount{},
		LearnedPatterns:  []domain.LearnedPattern{},
		DailyTrend:       dailyTrend(entries, now),
	}
	if len(entries) == 0 {
		return snapshot
	}

	successes := 0
	for _, entry := range entries {
		if entry.Success {
			successes++
		}
	}
	snapshot.SuccessRate = float64(successes) / float64(len(entries))
	snapshot.MostUsedCommands = mostUsed(entries)
	snapshot.LearnedPatterns = learnedPatterns(entries)
	return snapshot
}

// mostUsed counts command strings; ties go to the most recently seen.
func mostUsed(entries []domain.HistoryEntry) []domain.CommandCount {
	type bucket struct {
		count    int
		lastSeen int
	}
	buckets := map[string]*bucket{}
	for i, entry := range entries {
		b, ok := buckets[entry.Command]
		if !ok {
			b = &bucket{}
			buckets[entry.Command] = b
		}
		b.count++
		b.lastSeen = i
	}

	commands := make([]string, 0, len(buckets))
	for command := range buckets {
		commands = append(commands, command)
	}
	sort.Slice(commands, func(i, j int) bool {
		a, b := buckets[commands[i]], buckets[commands[j]]
		if a.count != b.count {
			return a.count > b.count
		}
		return a.lastSeen > b.lastSeen
	})
	if len(commands) > TopCommands {
		commands = commands[:TopCommands]
	}

	out := make([]domain.CommandCount, 0, len(commands))
	for _, command := range commands {
		out = append(out, domain.CommandCount{Command: command, Count: buckets[command].count})
	}
	return out
}

// learnedPatterns groups entries by action type.
func learnedPatterns(entries []domain.HistoryEntry) []domain.LearnedPattern {
	type group struct {
		usage     int
		successes int
		lastUsed  time.Time
	}
	groups := map[string]*group{}
	for _, entry := range entries {
		key := entry.ActionType
		if key == "" {
			key = entry.Command
		}
		g, ok := groups[key]
		if !ok {
			g = &group{}
			groups[key] = g
		}
		g.usage++
		if entry.Success {
			g.successes++
		}
		if entry.Timestamp.After(g.lastUsed) {
			g.lastUsed = entry.Timestamp
		}
	}

	out := make([]domain.LearnedPattern, 0, len(groups))
	for key, g := range groups {
		out = append(out, domain.LearnedPattern{
			Pattern:     key,
			SuccessRate: float64(g.successes) / float64(g.usage),
			UsageCount:  g.usage,
			LastUsed:    g.lastUsed,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UsageCount != out[j].UsageCount {
			return out[i].UsageCount > out[j].UsageCount
		}
		if !out[i].LastUsed.Equal(out[j].LastUsed) {
			return out[i].LastUsed.After(out[j].LastUsed)
		}
		return out[i].Pattern < out[j].Pattern
	})
	return out
}

// dailyTrend returns TrendDays zero-filled buckets, oldest first.
func dailyTrend(entries []domain.HistoryEntry, now time.Time) []domain.DayCount {
	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	trend := make([]domain.DayCount, domain.TrendDays)
	index := make(map[string]int, domain.TrendDays)
	for i := 0; i < domain.TrendDays; i++ {
		day := today.AddDate(0, 0, i-(domain.TrendDays-1)).Format(domain.TrendDayFormat)
		trend[i] = domain.DayCount{Day: day}
		index[day] = i
	}
	for _, entry := range entries {
		if i, ok := index[entry.Timestamp.In(loc).Format(domain.TrendDayFormat)]; ok {
			trend[i].Count++
		}
	}
	return trend
}
