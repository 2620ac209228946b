// Package main provides a CLI for generating class forests offline:
// useful for balancing tuning parameters and inspecting the trees a
// seed produces without running the service.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/bergenthala/ai-class-generator/internal/forge/archetype"
	"github.com/bergenthala/ai-class-generator/internal/forge/engine"
	gamesqlite "github.com/bergenthala/ai-class-generator/internal/game/storage/sqlite"
	"github.com/bergenthala/ai-class-generator/internal/unlock"
)

func main() {
	var (
		seedVal    int64
		target     int
		bases      string
		ceiling    int
		catalogYML string
		output     string
		dbPath     string
	)

	flag.Int64Var(&seedVal, "seed", 0, "random seed for reproducibility (0 = random)")
	flag.IntVar(&target, "target", 10, "classes to generate per base archetype")
	flag.StringVar(&bases, "bases", "", "comma-separated base archetype keys (default: all)")
	flag.IntVar(&ceiling, "ceiling", 0, "iteration ceiling multiplier (0 = default)")
	flag.StringVar(&catalogYML, "catalog", "", "archetype catalog YAML (default: builtin)")
	flag.StringVar(&output, "o", "", "write JSON result to file instead of stdout")
	flag.StringVar(&dbPath, "db", "", "also persist the forest into this SQLite store")
	flag.Parse()

	if err := run(seedVal, target, bases, ceiling, catalogYML, output, dbPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(seedVal int64, target int, bases string, ceiling int, catalogYML, output, dbPath string) error {
	catalog := archetype.Builtin()
	if catalogYML != "" {
		var err error
		if catalog, err = archetype.LoadFile(catalogYML); err != nil {
			return err
		}
	}

	keys := catalog.Keys()
	if bases != "" {
		keys = nil
		for _, key := range strings.Split(bases, ",") {
			if key = strings.TrimSpace(key); key != "" {
				keys = append(keys, key)
			}
		}
	}
	targets := make(map[string]int, len(keys))
	for _, key := range keys {
		targets[key] = target
	}

	if seedVal == 0 {
		seedVal = time.Now().UnixNano()
	}
	gen, err := engine.New(engine.Config{
		Targets: targets,
		Seed:    seedVal,
		Tuning:  engine.Tuning{CeilingMultiplier: ceiling},
		Catalog: catalog,
	})
	if err != nil {
		return err
	}
	result := gen.Run()

	if dbPath != "" {
		store, err := gamesqlite.Open(dbPath)
		if err != nil {
			return err
		}
		defer store.Close()
		rules := append(unlock.BuiltinRules(), unlock.ForClasses(rand.New(rand.NewSource(seedVal)), result.Classes())...)
		if err := store.SaveForest(context.Background(), result.Forests, rules, time.Now()); err != nil {
			return err
		}
	}

	summary := struct {
		State      string                   `json:"state"`
		Iterations int                      `json:"iterations"`
		Classes    int                      `json:"classes"`
		Shortfall  map[string]int           `json:"shortfall,omitempty"`
		Forests    map[string]engine.Forest `json:"forests"`
	}{
		State:      result.State.String(),
		Iterations: result.Iterations,
		Classes:    len(result.Classes()),
		Shortfall:  result.Shortfall,
		Forests:    result.Forests,
	}

	out := os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		out = f
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	fmt.Fprintf(os.Stderr, "%s: %d classes in %d iterations\n", summary.State, summary.Classes, summary.Iterations)
	return nil
}
