package Controllers

import (
	"bufio"
	"encoding/json"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"AgentTask/middleware"
)

const requestLogPath = "logs/requests.log"

// readRequestLog parses the JSON-lines request log. Unparseable lines are
// skipped; the viewer is diagnostics, not a source of truth.
func readRequestLog() ([]middleware.LogData, error) {
	f, err := os.Open(requestLogPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var entries []middleware.LogData
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var entry middleware.LogData
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, scanner.Err()
}

// GetLogs pages through the request log, newest first, with optional path
// and status filters.
func GetLogs(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "50"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 500 {
		pageSize = 50
	}
	pathFilter := c.Query("path", "")
	statusFilter, _ := strconv.Atoi(c.Query("status", "0"))

	entries, err := readRequestLog()
	if err != nil {
		if os.IsNotExist(err) {
			return c.JSON(fiber.Map{"logs": []middleware.LogData{}, "total_logs": 0, "page": page})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to read request log"})
	}

	filtered := entries[:0]
	for _, entry := range entries {
		if pathFilter != "" && !strings.Contains(entry.Path, pathFilter) {
			continue
		}
		if statusFilter != 0 && entry.Status != statusFilter {
			continue
		}
		filtered = append(filtered, entry)
	}
	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].Timestamp.After(filtered[j].Timestamp)
	})

	total := len(filtered)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	return c.JSON(fiber.Map{
		"logs":        filtered[start:end],
		"total_logs":  total,
		"page":        page,
		"page_size":   pageSize,
		"total_pages": (total + pageSize - 1) / pageSize,
	})
}

// GetLogStats summarizes the request log per path: hit count, average
// latency and error rate.
func GetLogStats(c *fiber.Ctx) error {
	entries, err := readRequestLog()
	if err != nil {
		if os.IsNotExist(err) {
			return c.JSON(fiber.Map{"paths": []fiber.Map{}, "total_requests": 0})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to read request log"})
	}

	type pathStats struct {
		count   int
		errors  int
		latency time.Duration
	}
	byPath := map[string]*pathStats{}
	for _, entry := range entries {
		stats, ok := byPath[entry.Method+" "+entry.Path]
		if !ok {
			stats = &pathStats{}
			byPath[entry.Method+" "+entry.Path] = stats
		}
		stats.count++
		stats.latency += entry.Latency
		if entry.Status >= 400 {
			stats.errors++
		}
	}

	paths := make([]fiber.Map, 0, len(byPath))
	for key, stats := range byPath {
		avg := float64(stats.latency.Milliseconds()) / float64(stats.count)
		paths = append(paths, fiber.Map{
			"path":           key,
			"count":          stats.count,
			"errors":         stats.errors,
			"avg_latency_ms": avg,
		})
	}
	sort.Slice(paths, func(i, j int) bool {
		return paths[i]["count"].(int) > paths[j]["count"].(int)
	})

	return c.JSON(fiber.Map{
		"paths":          paths,
		"total_requests": len(entries),
	})
}
