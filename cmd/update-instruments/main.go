package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/asrajavel/portfolio-simulator-sub000/internal/data"
	"github.com/asrajavel/portfolio-simulator-sub000/internal/logger"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	var (
		baseURL    = flag.String("base-url", os.Getenv("MFAPI_BASE_URL"), "MFAPI base URL (default: https://api.mfapi.in)")
		outputPath = flag.String("output", "", "Output file path (default: ./data/instruments.json)")
		seedFile   = flag.String("seed", "", "Existing catalog whose categories are carried over")
		filter     = flag.String("filter", "", "Only keep schemes whose name contains this text")
		timeout    = flag.Duration("timeout", 2*time.Minute, "Overall request timeout")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer logger.Shutdown(context.Background())

	if *outputPath == "" {
		*outputPath = data.DefaultCatalogPath()
	}
	if *seedFile == "" {
		*seedFile = *outputPath
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	client := data.NewMFAPIClient(*baseURL)
	fmt.Printf("Fetching scheme list from %s\n", client.BaseURL)

	list, err := client.ListSchemes(ctx)
	if err != nil {
		log.Fatalf("Failed to list schemes: %v", err)
	}
	fmt.Printf("Found %d schemes\n", len(list))

	cat := data.CatalogFromSummaries(list, time.Now())
	if *filter != "" {
		cat.Schemes = filterSchemes(cat.Schemes, *filter)
		fmt.Printf("Kept %d schemes matching %q\n", len(cat.Schemes), *filter)
	}

	if seed, err := data.LoadCatalog(*seedFile); err == nil {
		n := carryCategories(cat, seed)
		fmt.Printf("Carried over %d categories from %s\n", n, *seedFile)
	}

	if err := data.SaveCatalog(*outputPath, cat); err != nil {
		log.Fatalf("Failed to save catalog: %v", err)
	}
	fmt.Printf("Saved %d schemes to %s\n", len(cat.Schemes), *outputPath)
}

func filterSchemes(schemes []data.Scheme, text string) []data.Scheme {
	text = strings.ToLower(text)
	out := schemes[:0]
	for _, s := range schemes {
		if strings.Contains(strings.ToLower(s.Name), text) {
			out = append(out, s)
		}
	}
	return out
}

// carryCategories copies hand-maintained categories from seed onto cat by code.
func carryCategories(cat, seed *data.Catalog) int {
	byCode := make(map[string]string, len(seed.Schemes))
	for _, s := range seed.Schemes {
		if s.Category != "" {
			byCode[s.Code] = s.Category
		}
	}
	n := 0
	for i := range cat.Schemes {
		if c, ok := byCode[cat.Schemes[i].Code]; ok {
			cat.Schemes[i].Category = c
			n++
		}
	}
	return n
}
