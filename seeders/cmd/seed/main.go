package main

import (
	"flag"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"

	"lab-inventory-system/pkg/config"
	"lab-inventory-system/pkg/database/postgresql"
	applogger "lab-inventory-system/pkg/logger"
	"lab-inventory-system/seeders"
)

func main() {
	runDictionaries := flag.Bool("dictionaries", false, "seed labs and equipment types")
	runUsers := flag.Bool("users", false, "seed demo users (requires labs)")
	runAll := flag.Bool("all", false, "run every seeder in dependency order")
	flag.Parse()

	if !*runDictionaries && !*runUsers && !*runAll {
		log.Println("no seeder selected")
		flag.PrintDefaults()
		return
	}

	cfg := config.New()
	logger := applogger.NewLogger()
	dbPool := postgresql.ConnectDB(cfg.Postgres.DSN, logger)
	defer dbPool.Close()

	if *runAll || *runDictionaries {
		seeders.SeedDictionaries(dbPool)
	}
	if *runAll || *runUsers {
		seeders.SeedUsers(dbPool)
	}
}
