package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/openutd/scenegen"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	configFname      = flag.String("config", "", "Filename of YAML configuration (optional; defaults apply)")
	graphFname       = flag.String("graph", "my_graph.csv", "Filename prefix of base graph CSV pair. E.g.: if name is 'map.csv' then 'map_nodes.csv' and 'map_links.csv' are read")
	osmFname         = flag.String("osm", "", "Filename of *.osm.pbf extract to build the base graph from (overrides -graph)")
	collisionsFname  = flag.String("collisions", "", "Filename of collision records CSV")
	zonesFname       = flag.String("zones", "", "Filename of census tract polygons GeoJSON")
	censusFname      = flag.String("census", "", "Filename of census aggregates CSV (requires -zones)")
	poiFname         = flag.String("poi", "", "Filename of POI / transit stop GeoJSON")
	outFname         = flag.String("out", "scenario.bin", "Filename of produced scenario artifact")
	qualityFname     = flag.String("quality", "", "Filename of quality report CSV (optional)")
	annotatedFname   = flag.String("annotated", "", "Filename of annotated graph CSV (optional)")
	seed             = flag.Uint64("seed", 0, "Random seed (overrides config)")
	workers          = flag.Int("workers", 0, "Worker count (overrides config)")
	verbose          = flag.Bool("verbose", true, "Print stage progress?")
	checkDeterminism = flag.Bool("check-determinism", false, "Re-run sequentially and compare digests (debug)")
)

func main() {
	flag.Parse()

	cfg := scenegen.DefaultConfig()
	if *configFname != "" {
		loaded, err := scenegen.LoadConfig(*configFname)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}
	if *workers != 0 {
		cfg.Workers = *workers
	}

	var graph *scenegen.Graph
	var err error
	if *osmFname != "" {
		graph, err = scenegen.ImportGraphFromOSM(*osmFname, *verbose)
	} else {
		fnameParts := strings.Split(*graphFname, ".csv")
		graph, err = scenegen.LoadGraphFromCSV(fnameParts[0]+"_nodes.csv", fnameParts[0]+"_links.csv")
	}
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	pipeline := scenegen.NewPipeline(graph,
		scenegen.WithConfig(cfg),
		scenegen.WithMetrics(scenegen.NewMetrics(registry)),
		scenegen.WithTimestamp(time.Now().UTC().Format(time.RFC3339)),
		scenegen.WithVerbose(*verbose),
	)
	if *verbose {
		fmt.Println(pipeline)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *checkDeterminism {
		err := pipeline.VerifyDeterminism(ctx, openInputs)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		fmt.Println("Determinism check passed")
	}

	inputs, err := openInputs()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	st := time.Now()
	scenario, report, err := pipeline.Run(ctx, inputs)
	closeInputs(inputs)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if *verbose {
		fmt.Printf("Pipeline done in %v\n", time.Since(st))
	}

	outFile, err := os.Create(*outFname)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer outFile.Close()
	if err := scenario.Encode(outFile); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if *qualityFname != "" {
		if err := report.ExportToCSV(*qualityFname); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	}
	if *annotatedFname != "" {
		if err := graph.ExportAnnotatedCSV(*annotatedFname); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	}
	fmt.Printf("Scenario '%s' (%d households, %d trips) written to '%s'\n", scenario.ID, len(scenario.Households), len(scenario.Trips), *outFname)
}

func openInputs() (scenegen.Inputs, error) {
	inputs := scenegen.Inputs{Versions: map[string]string{}}
	open := func(fname, name string) (io.Reader, error) {
		if fname == "" {
			return nil, nil
		}
		f, err := os.Open(fname)
		if err != nil {
			return nil, err
		}
		inputs.Versions[name] = fname
		return f, nil
	}
	var err error
	if inputs.Collisions, err = open(*collisionsFname, "collisions"); err != nil {
		return inputs, err
	}
	if inputs.Zones, err = open(*zonesFname, "zones"); err != nil {
		return inputs, err
	}
	if inputs.Census, err = open(*censusFname, "census"); err != nil {
		return inputs, err
	}
	if inputs.POI, err = open(*poiFname, "poi"); err != nil {
		return inputs, err
	}
	return inputs, nil
}

func closeInputs(inputs scenegen.Inputs) {
	for _, r := range []io.Reader{inputs.Collisions, inputs.Zones, inputs.Census, inputs.POI} {
		if closer, ok := r.(io.Closer); ok && closer != nil {
			closer.Close()
		}
	}
}
