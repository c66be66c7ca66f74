package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/snapform/snapform-api/internal/database"
	"github.com/snapform/snapform-api/internal/logging"
	"github.com/snapform/snapform-api/internal/testutil"
)

func main() {
	var showHelp bool
	flag.BoolVar(&showHelp, "h", false, "show help")
	var envFilename string
	flag.StringVar(&envFilename, "f", "", "path to the .env file")
	var dbType string
	flag.StringVar(&dbType, "db", "postgres", "database server to run: postgres or mysql")
	flag.Parse()

	usage := `
Run a migrated snapform database container for local development.

Usage:

testcontainers [-h] [-f ENV_FILE_PATH] [-db postgres|mysql]

ENV_FILE_PATH: path to the .env file

example
  testcontainers -f /path/to/something/.env -db mysql
`
	// if -h flag print usage and return
	if showHelp {
		fmt.Println(usage)
		return
	}

	if envFilename != "" {
		logging.Infof("Loading environment variables from %s", envFilename)
		if err := godotenv.Load(envFilename); err != nil {
			logging.Fatalf("Failed to load environment variables: %v", err)
		}
	}
	logging.Configure(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))

	ctx := context.Background()
	container, err := testutil.StartDatabase(ctx, dbType)
	if err != nil {
		logging.Fatalf("Failed to create test container: %v", err)
	}
	defer func() {
		if err := container.Terminate(ctx); err != nil {
			logging.Errorf("Failed to terminate container: %v", err)
		}
	}()

	db, err := database.Connect(container.Config)
	if err != nil {
		logging.Errorf("Failed to connect to container: %v", err)
		return
	}
	if err := database.Migrate(db); err != nil {
		logging.Errorf("Failed to migrate container database: %v", err)
		return
	}
	_ = database.Close(db)

	cfg := container.Config
	fmt.Printf("DB_TYPE=%s\nDB_HOST=%s\nDB_PORT=%s\nDB_DATABASE=%s\nDB_USER=%s\nDB_PASSWORD=%s\n",
		cfg.DBType, cfg.DBHost, cfg.DBPort, cfg.DBDatabase, cfg.DBUser, cfg.DBPassword)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	sig := <-sigs
	logging.Infof("Received signal: %v, terminating test container...", sig)
}
