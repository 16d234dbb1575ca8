package TaskImages

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gorm.io/gorm"

	"AgentTask/Models"
)

// Root is where per-agent image folders live on disk. Overridden at startup
// by TASK_IMAGES_ROOT (and by tests, which point it at a temp dir).
var Root = "static/task_images"

// SharedFolder is the legacy pool served to agents that never received a
// dedicated batch.
const SharedFolder = "crime_records_wide"

func SetRootFromEnv() {
	if v := os.Getenv("TASK_IMAGES_ROOT"); v != "" {
		Root = v
	}
}

func AgentDir(agentID string) string {
	return filepath.Join(Root, "agent_"+agentID)
}

func SharedDir() string {
	return filepath.Join(Root, SharedFolder)
}

// ListAgentImages returns the agent's current image set, sorted by filename.
// Assignment rows are authoritative; the folder listing only exists as a
// fallback for agents whose images predate the assignment table.
func ListAgentImages(db *gorm.DB, agentID string) []string {
	var assignments []Models.ImageAssignment
	err := db.Where("agent_id = ?", agentID).
		Order("image_filename asc").
		Find(&assignments).Error
	if err == nil && len(assignments) > 0 {
		names := make([]string, 0, len(assignments))
		for _, a := range assignments {
			names = append(names, a.ImageFilename)
		}
		return names
	}
	return ListFolderImages(agentID)
}

// ListFolderImages lists the agent folder sorted ascending, falling back to
// the shared folder when the agent has no folder of their own.
func ListFolderImages(agentID string) []string {
	dir := AgentDir(agentID)
	if _, err := os.Stat(dir); err != nil {
		dir = SharedDir()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".png", ".jpg", ".jpeg":
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names
}

// ImageURL resolves the servable path for an image, preferring the agent's
// own folder over the shared pool.
func ImageURL(agentID, name string) string {
	if _, err := os.Stat(filepath.Join(AgentDir(agentID), name)); err == nil {
		return "/static/task_images/agent_" + agentID + "/" + name
	}
	return "/static/task_images/" + SharedFolder + "/" + name
}
