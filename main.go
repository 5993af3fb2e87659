package main

import (
	"flag"
	"fmt"
	"marketplace-service/config"
	"marketplace-service/database"
	"marketplace-service/server"
	"os"

	_ "github.com/mattn/go-sqlite3"
	"github.com/umakantv/go-utils/db/migrations"
)

func main() {
	commandFlag := flag.String("command", "start", "Command to run modules")
	nameFlag := flag.String("name", "", "Migration name (alphanum+underscore only)")
	dirFlag := flag.String("dir", ".", "Target directory for the new .sql file (e.g. ./database/migrations)")
	flag.Parse()

	if *commandFlag == "" {
		fmt.Println("Usage: go run main.go --command <command-name> [... other options]")
		os.Exit(1)
	}

	switch *commandFlag {
	case "start":
		server.StartServer()
	case "seed":
		// Destructive: wipes and reseeds the store. Only ever runs as an
		// explicit command, never as a startup side effect.
		cfg := config.Load()
		dbConn := database.InitializeDatabase(cfg)
		defer dbConn.Close()
		if err := database.Seed(dbConn); err != nil {
			fmt.Println("Seeding failed:", err)
			os.Exit(1)
		}
	case "create-migration":
		migrations.CreateMigration(nameFlag, dirFlag)
	}
}
