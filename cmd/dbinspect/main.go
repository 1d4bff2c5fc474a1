// Package main provides a read-only inspection tool for the prompt database.
//
// Usage:
//
//	DB_PATH=~/PromptDeck/data/db go run ./cmd/dbinspect
package main

import (
	"encoding/json/v2"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/dgraph-io/badger/v4"

	"github.com/promptdeck/promptdeck-server/internal/domain"
)

func main() {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/PromptDeck/data/db")
	}

	opts := badger.DefaultOptions(dbPath).
		WithReadOnly(true).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	fmt.Println("=== Database Inspection ===")
	fmt.Println()

	versionCount := 0
	chainVersions := make(map[string]int)   // rootID -> version count
	chainLatest := make(map[string]int)     // rootID -> versions flagged latest
	chainTitle := make(map[string]string)   // rootID -> latest title seen

	err = db.View(func(txn *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.Prefix = []byte("prompt:")
		it := txn.NewIterator(iterOpts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var v domain.PromptVersion
				if err := json.Unmarshal(val, &v); err != nil {
					return err
				}
				versionCount++
				chainVersions[v.RootID]++
				if v.IsLatest {
					chainLatest[v.RootID]++
					chainTitle[v.RootID] = v.Title
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Failed to scan prompt versions: %v", err)
	}

	fmt.Printf("Prompt versions: %d in %d chains\n", versionCount, len(chainVersions))

	roots := make([]string, 0, len(chainVersions))
	for rootID := range chainVersions {
		roots = append(roots, rootID)
	}
	sort.Strings(roots)
	for i, rootID := range roots {
		if i >= 5 {
			fmt.Printf("  ... and %d more\n", len(roots)-5)
			break
		}
		fmt.Printf("  %s (%d versions) %q\n", rootID, chainVersions[rootID], chainTitle[rootID])
	}

	// A healthy chain has exactly one latest version.
	broken := make([]string, 0)
	for rootID := range chainVersions {
		if chainLatest[rootID] != 1 {
			broken = append(broken, rootID)
		}
	}
	sort.Strings(broken)
	if len(broken) > 0 {
		fmt.Printf("\nChains with missing or duplicate latest flag: %d\n", len(broken))
		for _, rootID := range broken {
			fmt.Printf("  %s (versions=%d latest=%d)\n",
				rootID, chainVersions[rootID], chainLatest[rootID])
		}
	}

	tagCount := 0
	levelCounts := make(map[int]int)
	err = db.View(func(txn *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.Prefix = []byte("tag:")
		it := txn.NewIterator(iterOpts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var t domain.Tag
				if err := json.Unmarshal(val, &t); err != nil {
					return err
				}
				tagCount++
				levelCounts[t.Level]++
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Failed to scan tags: %v", err)
	}

	fmt.Printf("\nTags: %d\n", tagCount)
	levels := make([]int, 0, len(levelCounts))
	for level := range levelCounts {
		levels = append(levels, level)
	}
	sort.Ints(levels)
	for _, level := range levels {
		fmt.Printf("  level %d: %d\n", level, levelCounts[level])
	}

	relationCount := 0
	err = db.View(func(txn *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.Prefix = []byte("rel:")
		iterOpts.PrefetchValues = false
		it := txn.NewIterator(iterOpts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			relationCount++
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Failed to scan relations: %v", err)
	}

	fmt.Printf("\nPrompt-tag relations: %d\n", relationCount)
}
