package main

import (
	"fmt"
	"log"
	"sort"

	"github.com/snapform/snapform-api/internal/database"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		log.Fatal(err)
	}

	// Run the real migrations to see what GORM creates
	if err := database.Migrate(db); err != nil {
		log.Fatal(err)
	}

	tables, err := db.Migrator().GetTables()
	if err != nil {
		log.Fatal(err)
	}
	sort.Strings(tables)

	for _, table := range tables {
		fmt.Printf("=== %s ===\n", table)
		columns, err := db.Migrator().ColumnTypes(table)
		if err != nil {
			log.Fatal(err)
		}
		for _, col := range columns {
			nullable, _ := col.Nullable()
			fmt.Printf("  %-16s %-14s nullable=%v\n", col.Name(), col.DatabaseTypeName(), nullable)
		}
		indexes, err := db.Migrator().GetIndexes(table)
		if err != nil {
			log.Fatal(err)
		}
		for _, idx := range indexes {
			unique, _ := idx.Unique()
			fmt.Printf("  index %s %v unique=%v\n", idx.Name(), idx.Columns(), unique)
		}
	}
}
