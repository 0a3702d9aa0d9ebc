package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/olekukonko/tablewriter"

	"agroconnect/domain"
)

// Config for the offline inspector; only the database path matters.
type Config struct {
	BadgerFilepath string `envconfig:"BADGER_FILEPATH" default:"./data/badger"`
}

// main dumps the device storage in a readable table without touching
// the running client: the database opens read-only with the lock guard
// bypassed.
func main() {
	_ = godotenv.Load()
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	dbPath := flag.String("db", config.BadgerFilepath, "Path to badger DB")
	prefix := flag.String("prefix", "", "Only show keys with this prefix")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Type", "Detail"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(*prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			key := string(item.Key())

			err := item.Value(func(v []byte) error {
				kind, detail := describe(key, v)
				table.Append([]string{key, kind, detail})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatal(err)
	}

	table.Render()
}

// describe renders one stored value by its key shape.
func describe(key string, val []byte) (string, string) {
	switch {
	case key == "token":
		return "SESSION", truncate(string(val), 24)
	case key == "theme":
		return "SESSION", string(val)
	case key == "user":
		var user domain.User
		if err := json.Unmarshal(val, &user); err != nil {
			return "SESSION", "Error: unmarshal failed"
		}
		return "SESSION", fmt.Sprintf("%s <%s> (%s)", user.DisplayName, user.Email, user.Role)
	case key == "carrito":
		var lines []domain.CartLine
		if err := json.Unmarshal(val, &lines); err != nil {
			return "CART", "Error: unmarshal failed"
		}
		totals := domain.ComputeTotals(lines)
		return "CART", fmt.Sprintf("%d líneas, total %s", len(lines), totals.Total.StringFixed(2))
	case strings.HasPrefix(key, "producto:"):
		var product domain.Product
		if err := json.Unmarshal(val, &product); err != nil {
			return "PRODUCT", "Error: unmarshal failed"
		}
		return "PRODUCT", fmt.Sprintf("%s %s (%d disponibles)",
			product.Name, product.UnitPrice.StringFixed(2), product.AvailableStock)
	default:
		return "RAW", truncate(string(val), 48)
	}
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true).
		WithValueLogFileSize(10 * 1024 * 1024)

	return badger.Open(opts)
}
