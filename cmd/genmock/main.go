// Command genmock writes a deterministic synthetic dataset in the dashboard's
// CSV layout. Irradiance follows a daily sun curve scaled by season and cloud
// cover; each site converts GHI to production with its own efficiency.
//
// Usage:
//
//	go run ./cmd/genmock -out dataset/Data_Cacak.csv -days 120 -dirty
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/solar-forecast-service/internal/dataset"
	"github.com/couchcryptid/solar-forecast-service/internal/domain"
)

var baseDate = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// site describes how one location turns irradiance into kWh.
type site struct {
	efficiency float64 // kWh per W/m2 of GHI
	tempLoss   float64 // fractional loss per degree above 25 C
}

var sites = [domain.NumLocations]site{
	{efficiency: 0.050, tempLoss: 0.004},
	{efficiency: 0.021, tempLoss: 0.003},
	{efficiency: 0.082, tempLoss: 0.005},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "dataset/Data_Cacak.csv", "output CSV path")
	days := flag.Int("days", 120, "number of days of hourly readings")
	seed := flag.Uint64("seed", 42, "random seed")
	dirty := flag.Bool("dirty", false, "inject rows the loader must drop or leave undated")
	flag.Parse()

	if *days < 1 {
		flag.Usage()
		return fmt.Errorf("-days must be positive")
	}

	if dir := filepath.Dir(*out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	f, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("create %s: %w", *out, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(dataset.Header()); err != nil {
		return err
	}

	rng := rand.New(rand.NewPCG(*seed, 0))
	rows := 0
	for h := 0; h < *days*24; h++ {
		m := generate(rng, baseDate.Add(time.Duration(h)*time.Hour))
		record := dataset.FormatRecord(m)
		if *dirty {
			record = corrupt(rng, record)
		}
		if err := w.Write(record); err != nil {
			return err
		}
		rows++
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write %s: %w", *out, err)
	}

	log.Printf("wrote %d rows to %s", rows, *out)
	return nil
}

func generate(rng *rand.Rand, t time.Time) domain.Measurement {
	day := float64(t.YearDay())
	hour := float64(t.Hour())

	// Season: 1 at the summer solstice, about 0.35 in midwinter.
	season := 0.675 + 0.325*math.Cos(2*math.Pi*(day-172)/365)
	sun := math.Max(0, math.Sin(math.Pi*(hour-5)/15)) * season

	cloud := math.Min(100, math.Max(0, 40+35*math.Sin(day/7)+rng.NormFloat64()*20))
	clear := 1 - 0.75*cloud/100

	ghi := 1000 * sun * clear
	dni := 850 * sun * math.Pow(clear, 1.5)
	dhi := math.Max(0, ghi-dni*sun)
	ebh := dni * sun
	temp := 12 - 14*math.Cos(2*math.Pi*(day-15)/365) + 6*sun + rng.NormFloat64()*1.5

	m := domain.Measurement{
		Time: t,
		Features: domain.Features{
			AirTemperature: round(temp, 1),
			CloudOpacity:   round(cloud, 1),
			DHI:            round(dhi, 0),
			DNI:            round(dni, 0),
			EBH:            round(ebh, 0),
			GHI:            round(ghi, 0),
		},
	}
	for i, s := range sites {
		loss := 1 - s.tempLoss*math.Max(0, temp-25)
		p := s.efficiency * ghi * loss * (1 + rng.NormFloat64()*0.03)
		m.Production[i] = round(math.Max(0, p), 3)
	}
	return m
}

// corrupt damages roughly one row in a hundred the way hand-edited files do.
func corrupt(rng *rand.Rand, record []string) []string {
	switch n := rng.IntN(300); {
	case n == 0:
		record[1+rng.IntN(domain.NumFeatures)] = "n/a"
	case n == 1:
		record[len(record)-1] = ""
	case n == 2:
		record[0] = "not a date"
	}
	return record
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
