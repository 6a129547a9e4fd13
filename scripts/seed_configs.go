// seed_configs.go reads sorting configs from a YAML file and stores them via the ranker API.
//
// Usage:
//
//	go run scripts/seed_configs.go -file scripts/configs.example.yaml -api http://localhost:8600 -token $RANKER_ADMIN_TOKEN
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/MikeSquared-Agency/Ranker/internal/rankclient"
	"github.com/MikeSquared-Agency/Ranker/internal/scoring"
	"github.com/MikeSquared-Agency/Ranker/internal/sortconfig"
)

type seedFile struct {
	// Apply names the config to activate once everything is stored.
	Apply   string      `yaml:"apply"`
	Configs []seedEntry `yaml:"configs"`
}

type seedEntry struct {
	Name        string             `yaml:"name"`
	Description string             `yaml:"description"`
	Preset      string             `yaml:"preset"`
	Weights     map[string]float64 `yaml:"weights"`
}

func (e seedEntry) weights() (scoring.WeightVector, error) {
	if len(e.Weights) == 0 {
		if e.Preset == "" {
			return scoring.FactoryWeights(), nil
		}
		return scoring.Preset(e.Preset)
	}
	var v [scoring.NumSignals]float64
	for key, val := range e.Weights {
		var sig scoring.Signal
		if err := sig.UnmarshalText([]byte(key)); err != nil {
			return scoring.WeightVector{}, err
		}
		v[sig] = val
	}
	return scoring.FromValues(v), nil
}

func main() {
	path := flag.String("file", "configs.yaml", "path to the YAML config list")
	apiURL := flag.String("api", "http://localhost:8600", "ranker API base URL")
	token := flag.String("token", os.Getenv("RANKER_ADMIN_TOKEN"), "admin token")
	dryRun := flag.Bool("dry-run", false, "print configs without posting")
	flag.Parse()

	raw, err := os.ReadFile(*path)
	if err != nil {
		log.Fatalf("read %s: %v", *path, err)
	}
	var seed seedFile
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		log.Fatalf("parse %s: %v", *path, err)
	}
	log.Printf("parsed %d configs from %s", len(seed.Configs), *path)

	if *dryRun {
		for i, e := range seed.Configs {
			w, err := e.weights()
			if err != nil {
				fmt.Printf("[%d] %s: %v\n", i+1, e.Name, err)
				continue
			}
			fmt.Printf("[%d] %s %+v\n", i+1, e.Name, w)
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	client := rankclient.NewHTTPClient(*apiURL, *token)
	created, skipped := 0, 0
	var applyID string
	for _, e := range seed.Configs {
		w, err := e.weights()
		if err != nil {
			log.Printf("skip %q: %v", e.Name, err)
			skipped++
			continue
		}
		cfg, err := client.SaveConfig(ctx, sortconfig.SaveRequest{Name: e.Name, Description: e.Description, Weights: w})
		if err != nil {
			var se *rankclient.StatusError
			if errors.As(err, &se) {
				log.Printf("skip %q: %s", e.Name, se.Message)
			} else {
				log.Printf("skip %q: %v", e.Name, err)
			}
			skipped++
			continue
		}
		created++
		if seed.Apply != "" && strings.EqualFold(seed.Apply, cfg.Name) {
			applyID = cfg.ID.String()
			if _, err := client.ApplyConfig(ctx, cfg.ID); err != nil {
				log.Printf("apply %q: %v", cfg.Name, err)
			}
		}
	}

	log.Printf("done: %d created, %d skipped", created, skipped)
	if applyID != "" {
		log.Printf("active config: %s (%s)", seed.Apply, applyID)
	}
}
