// Package main provides a tool to seed the database with sample prompt data.
//
// It creates a handful of prompt chains with tags, edits and usage counts so
// search, history and tag browsing have something to show during development.
//
// Usage:
//
//	DB_PATH=~/PromptDeck/data/db go run ./cmd/seed
//	DB_PATH=~/PromptDeck/data/db go run ./cmd/seed --usage  # Also record random usage
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/promptdeck/promptdeck-server/internal/store"
)

var recordUsage = flag.Bool("usage", false, "Record random usage counts on seeded prompts")

type seedPrompt struct {
	title       string
	description string
	text        string
	edits       []string
	tagPaths    []string
}

var samples = []seedPrompt{
	{
		title:       "Code Review",
		description: "Structured review of a diff",
		text:        "Review the following change. List correctness issues first, then style nits.",
		edits: []string{
			"Review the following change. List correctness issues first, then style nits. Quote the offending lines.",
		},
		tagPaths: []string{"programming/review"},
	},
	{
		title:       "Refactoring Plan",
		description: "Plan a refactor before touching code",
		text:        "Given this module, propose a refactoring plan in small reversible steps.",
		edits: []string{
			"Given this module, propose a refactoring plan in small reversible steps. Call out steps that change behavior.",
			"Given this module, propose a refactoring plan in small reversible steps. Call out steps that change behavior and which tests cover them.",
		},
		tagPaths: []string{"programming/refactoring", "planning"},
	},
	{
		title:       "Commit Message",
		description: "",
		text:        "Write a commit message for this diff. One summary line, then a short body explaining why.",
		tagPaths:    []string{"programming/git"},
	},
	{
		title:       "Meeting Summary",
		description: "Condense a transcript",
		text:        "Summarize this meeting transcript into decisions, action items and open questions.",
		tagPaths:    []string{"writing/summaries"},
	},
	{
		title:       "Bug Triage",
		description: "First-pass triage of a bug report",
		text:        "Read this bug report and answer: is it reproducible as described, what component is implicated, and what is the severity?",
		edits: []string{
			"Read this bug report and answer: is it reproducible as described, what component is implicated, what is the severity, and what single log line would confirm the diagnosis?",
		},
		tagPaths: []string{"programming/triage", "planning"},
	},
}

func main() {
	flag.Parse()

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/PromptDeck/data/db")
	}

	fmt.Printf("Opening database at: %s\n", dbPath)

	s, err := store.New(dbPath, nil, store.NewNoopEmitter())
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	for _, sample := range samples {
		v, err := s.CreateVersion(ctx, store.CreateVersionParams{
			Title:       sample.title,
			Description: sample.description,
			Text:        sample.text,
		})
		if err != nil {
			log.Fatalf("Failed to create prompt %q: %v", sample.title, err)
		}

		latest := v
		for _, text := range sample.edits {
			latest, err = s.Supersede(ctx, latest.ID, store.SupersedeParams{
				Title:       sample.title,
				Description: sample.description,
				Text:        text,
			})
			if err != nil {
				log.Fatalf("Failed to edit prompt %q: %v", sample.title, err)
			}
		}

		// Relations attach per version, so tag the chain's latest record.
		if len(sample.tagPaths) > 0 {
			if _, err := s.ReplacePromptTags(ctx, latest.ID, sample.tagPaths); err != nil {
				log.Fatalf("Failed to tag prompt %q: %v", sample.title, err)
			}
		}

		if *recordUsage {
			uses := rng.Intn(20)
			for range uses {
				if _, err := s.RecordUsage(ctx, latest.ID); err != nil {
					log.Fatalf("Failed to record usage for %q: %v", sample.title, err)
				}
			}
			fmt.Printf("  %s: %d versions, %d uses\n", sample.title, latest.Version, uses)
		} else {
			fmt.Printf("  %s: %d versions\n", sample.title, latest.Version)
		}
	}

	tags, err := s.ListTags(ctx)
	if err != nil {
		log.Fatalf("Failed to list tags: %v", err)
	}

	fmt.Printf("\nSeeded %d prompts, %d tags\n", len(samples), len(tags))
	fmt.Println("Run the server and hit POST /api/v1/admin/reindex to index them for search.")
}
