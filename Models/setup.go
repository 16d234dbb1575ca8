package Models

import (
	"log"
	"os"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Connect() {
	path := os.Getenv("DB_PATH")
	if path == "" {
		path = "database.db"
	}
	connection, err := gorm.Open(sqlite.Open(path))
	if err != nil {
		log.Fatal("Failed to open database:", err)
	}
	DB = connection
	Migrate(DB)
}

// Migrate runs the schema migration. Agents first, then everything that
// keys on agent_id.
func Migrate(db *gorm.DB) {
	if err := db.AutoMigrate(&Agent{}); err != nil {
		log.Println(err)
	}
	if err := db.AutoMigrate(
		&AgentSession{},
		&TaskProgress{},
		&SubmittedForm{},
		&ImageAssignment{},
	); err != nil {
		log.Println(err)
	}
}
