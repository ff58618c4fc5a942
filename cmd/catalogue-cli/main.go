// Command catalogue-cli reads a JSON batch of base_requests, router_settings
// and stat_requests from stdin (or -input) and writes the ordered JSON
// response array to stdout (or -output), the Go counterpart of the
// original's stdin/stdout request-response flow. Flag conventions follow
// the teacher's importer CLI: a flat set of named flags, no subcommands.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/routewise/transitcore/internal/catalogueio"
	"github.com/routewise/transitcore/internal/router"
	"github.com/routewise/transitcore/internal/svgmap"
)

func main() {
	input := flag.String("input", "", "Path to request JSON (default: stdin)")
	output := flag.String("output", "", "Path to write response JSON (default: stdout)")
	flag.Parse()

	if err := run(*input, *output); err != nil {
		log.Fatalf("catalogue-cli: %v", err)
	}
}

func run(inputPath, outputPath string) error {
	data, err := readInput(inputPath)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	batch, err := catalogueio.ParseBatch(data)
	if err != nil {
		return fmt.Errorf("parse batch: %w", err)
	}

	cat := catalogueio.BuildCatalogue(batch)

	settings := router.Settings{
		BusWaitTime: batch.RouterSettings.BusWaitTime,
		BusVelocity: batch.RouterSettings.BusVelocity,
	}

	var r *router.Router
	if settings.BusWaitTime > 0 && settings.BusVelocity > 0 {
		r, err = router.Build(cat, settings)
		if err != nil {
			return fmt.Errorf("build router: %w", err)
		}
	}

	renderMap := func() string {
		return svgmap.Render(cat, svgmap.DefaultSettings())
	}

	response, err := catalogueio.AnswerAll(cat, r, renderMap, batch.StatRequests)
	if err != nil {
		return fmt.Errorf("answer requests: %w", err)
	}

	return writeOutput(outputPath, response)
}

func readInput(path string) ([]byte, error) {
	if path == "" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(append(data, '\n'))
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
