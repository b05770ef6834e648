package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/soderasen-au/go-common/loggers"
	"github.com/soderasen-au/go-common/util"

	"github.com/soderasen-au/go-invoice/data"
	"github.com/soderasen-au/go-invoice/recipe"
	"github.com/soderasen-au/go-invoice/workbook"
)

func usage() {
	prog := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "Usage:\n")
	fmt.Fprintf(os.Stderr, "  %s build <recipe.(yaml|json)> <template.xlsx> <shipment.csv> <output.xlsx>    Render one document\n", prog)
	fmt.Fprintf(os.Stderr, "  %s check <recipe.(yaml|json)>                                                 Validate a recipe\n", prog)
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

func loadRecipe(path string) (*recipe.Recipe, *util.Result) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return recipe.LoadLegacy(path)
	}
	return recipe.LoadBundled(path)
}

func main() {
	if len(os.Args) < 3 {
		usage()
		os.Exit(1)
	}

	cmd := strings.ToLower(os.Args[1])

	switch cmd {
	case "build":
		if len(os.Args) < 6 {
			fatal("build requires 4 arguments: recipe, template, shipment csv, output")
		}

		r, res := loadRecipe(os.Args[2])
		if res != nil {
			fatal("load recipe: %v", res)
		}

		src, res := data.ReadShipmentCSV(os.Args[4])
		if res != nil {
			fatal("read shipment csv: %v", res)
		}

		// Every configured sheet draws from the one shipment file; multi
		// table sheets get it as a single continuation-free table.
		sources := map[string]*data.Source{}
		multi := map[string][]*data.Source{}
		for _, name := range r.OrderedSheets() {
			cfg := r.Sheets[name]
			if cfg.MultiTable {
				multi[cfg.DataSource] = []*data.Source{src}
			} else {
				sources[cfg.DataSource] = src
			}
		}

		job := workbook.Job{
			Name:         strings.TrimSuffix(filepath.Base(os.Args[5]), filepath.Ext(os.Args[5])),
			TemplatePath: os.Args[3],
			OutputPath:   os.Args[5],
			Recipe:       r,
			Sources:      sources,
			MultiSources: multi,
			Logger:       loggers.CoreDebugLogger,
		}
		ret, res := workbook.Build(&job)
		if res != nil {
			fatal("%v", res)
		}

		fmt.Printf("\nBuild %s:\n  %d tables, %d rows, %d pallets\n  quantity %s, amount %s\n  -> %s\n\n",
			ret.ID, ret.Summary.Tables, ret.Summary.Rows, ret.Summary.TotalPallets,
			ret.Summary.Quantity, ret.Summary.Amount, ret.OutputPath)
		for _, w := range ret.Warnings {
			fmt.Printf("Warning: %s\n", w)
		}

	case "check":
		r, res := loadRecipe(os.Args[2])
		if res != nil {
			fatal("%v", res)
		}
		fmt.Printf("recipe `%s`: %d sheets OK\n", r.Name, len(r.Sheets))

	default:
		fatal("invalid command '%s': must be 'build' or 'check'", cmd)
	}
}
