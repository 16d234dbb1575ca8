package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"AgentTask/FiberConfig"
	"AgentTask/Models"
	"AgentTask/TaskImages"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment defaults")
	}

	TaskImages.SetRootFromEnv()
	if err := os.MkdirAll(TaskImages.SharedDir(), 0755); err != nil {
		log.Fatal("Failed to create task image directories:", err)
	}

	Models.Connect()
	FiberConfig.FiberConfig()
}
