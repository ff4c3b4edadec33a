package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"

	"sitemap-console/pkg/storage"
	"sitemap-console/pkg/xmltree"
)

// runHashPassword prints a bcrypt hash for the auth section of the config.
func runHashPassword(args []string) int {
	fs := flag.NewFlagSet("hash-password", flag.ContinueOnError)
	cost := fs.Int("cost", 12, "Bcrypt cost parameter (10-14 recommended)")
	username := fs.String("username", "admin", "Console username")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Usage: sitemap-console hash-password [-cost N] [-username NAME] <password>")
		return 1
	}
	if *cost < bcrypt.MinCost || *cost > bcrypt.MaxCost {
		fmt.Fprintf(os.Stderr, "Error: cost must be between %d and %d\n", bcrypt.MinCost, bcrypt.MaxCost)
		return 1
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(fs.Arg(0)), *cost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating hash: %v\n", err)
		return 1
	}

	fmt.Printf("# Copy this into your config.yml:\n")
	fmt.Printf("auth:\n")
	fmt.Printf("  enabled: true\n")
	fmt.Printf("  username: %q\n", *username)
	fmt.Printf("  password_hash: %q\n", string(hash))
	return 0
}

// runImport records existing settings documents as revisions, oldest
// first, so they can be restored from the console.
func runImport(args []string) int {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	configPath := fs.String("config", "config.yml", "Path to configuration file")
	dryRun := fs.Bool("dry-run", false, "Check the documents without recording them")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Usage: sitemap-console import [-config PATH] [-dry-run] <settings.xml>...")
		return 1
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	store, err := storage.New(storageConfig(cfg.Storage), nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open revision storage: %v\n", err)
		return 1
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	failed := 0
	for _, path := range fs.Args() {
		rev, err := readRevision(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  ✗ %s: %v\n", path, err)
			failed++
			continue
		}
		if *dryRun {
			fmt.Printf("  ✓ %s (%d bytes, %s)\n", path, rev.Size, rev.Checksum[:12])
			continue
		}
		id, err := store.SaveRevision(ctx, rev)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  ✗ %s: %v\n", path, err)
			failed++
			continue
		}
		fmt.Printf("  ✓ %s recorded as revision %d\n", path, id)
	}

	if !*dryRun {
		if removed, err := store.Cleanup(ctx, 0); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to trim revisions: %v\n", err)
		} else if removed > 0 {
			fmt.Printf("Trimmed %d old revisions\n", removed)
		}
	}
	if failed > 0 {
		return 1
	}
	return 0
}

func readRevision(path string) (*storage.Revision, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if _, err := xmltree.Parse(data); err != nil {
		return nil, err
	}
	created := time.Now()
	if info, err := os.Stat(path); err == nil {
		created = info.ModTime()
	}
	return &storage.Revision{
		CreatedAt: created,
		Site:      "global",
		Page:      "import",
		Author:    "import",
		Checksum:  storage.Checksum(data),
		Size:      len(data),
		Document:  data,
	}, nil
}
