package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/herobront95-prog/limit-planner/cmd/planner/config"
	"github.com/herobront95-prog/limit-planner/internal/models"
	"github.com/herobront95-prog/limit-planner/internal/parsers"
	"github.com/herobront95-prog/limit-planner/internal/planner"
	"github.com/herobront95-prog/limit-planner/pkg/errors"
)

var (
	limitsFile    string
	stockFile     string
	stockTextFile string
	storeName     string
	mappingsFile  string
	filterExprs   []string
	manualRequest string
	outputFile    string
)

// planCmd runs one planning pass from files, without a database.
var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Compute a replenishment order from a stock count",
	Long: `Plan reads a limit catalog and a stock count, matches the counted names
against the catalog, and writes the resulting order as CSV.

The stock count comes either from a CSV file (--stock) or from a text file
of pasted count lines (--stock-text). Filters are inline expressions over
limit, stock and order, applied in the given order.`,
	Example: `  planner plan --limits limits.csv --stock stock.csv --store "Магазин 1" -o order.csv
  planner plan --limits limits.csv --stock-text counts.txt --store "Магазин 1" --filter "order > 2"`,
	RunE: runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)

	planCmd.Flags().StringVar(&limitsFile, "limits", "", "limit catalog CSV (required)")
	planCmd.Flags().StringVar(&stockFile, "stock", "", "stock count CSV")
	planCmd.Flags().StringVar(&stockTextFile, "stock-text", "", "text file with pasted count lines")
	planCmd.Flags().StringVar(&storeName, "store", "", "store name for the order header (required)")
	planCmd.Flags().StringVar(&mappingsFile, "mappings", "", "JSON file with synonym mappings")
	planCmd.Flags().StringArrayVar(&filterExprs, "filter", nil, "filter expression, repeatable")
	planCmd.Flags().StringVar(&manualRequest, "manual", "", "manual request lines to append")
	planCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output CSV file (default stdout)")

	planCmd.MarkFlagRequired("limits")
	planCmd.MarkFlagRequired("store")
}

func runPlan(cmd *cobra.Command, args []string) error {
	if (stockFile == "") == (stockTextFile == "") {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "stock",
			"exactly one of --stock and --stock-text is required", nil)
	}

	catalog, err := loadCatalog(limitsFile)
	if err != nil {
		return handleError(err)
	}

	items, err := loadStockItems()
	if err != nil {
		return handleError(err)
	}

	mappings, err := loadMappings(mappingsFile)
	if err != nil {
		return handleError(err)
	}

	filters := make([]models.Filter, 0, len(filterExprs))
	for i, expr := range filterExprs {
		filters = append(filters, models.Filter{
			Name:       fmt.Sprintf("filter %d", i+1),
			Expression: expr,
		})
	}

	result, err := planner.NewService().Plan(planner.Request{
		StoreName:     storeName,
		Items:         items,
		Catalog:       catalog,
		Mappings:      mappings,
		Filters:       filters,
		ManualRequest: manualRequest,
	})
	if err != nil {
		return handleError(err)
	}

	out := os.Stdout
	if outputFile != "" {
		file, err := os.Create(outputFile)
		if err != nil {
			return handleError(errors.FileError(errors.CodeFilePermission, outputFile, err))
		}
		defer file.Close()
		out = file
	}

	if err := parsers.WriteOrderCSV(out, storeName, result.Items); err != nil {
		return handleError(err)
	}

	fmt.Fprintf(os.Stderr, "Order for %s: %d items\n", storeName, result.Count)
	return nil
}

func loadCatalog(path string) (*models.LimitCatalog, error) {
	file, err := openInput(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	catalog, stats, err := parsers.NewLimitsParser(config.CreateLimitsConfig()).ParseLimits(file)
	if err != nil {
		return nil, err
	}
	reportStats("limits", stats)
	return catalog, nil
}

func loadStockItems() ([]models.StockLineItem, error) {
	if stockTextFile != "" {
		raw, err := os.ReadFile(stockTextFile)
		if err != nil {
			return nil, wrapFileError(stockTextFile, err)
		}
		return parsers.ParseStockText(string(raw)), nil
	}

	file, err := openInput(stockFile)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	items, stats, err := parsers.NewStockParser(config.CreateStockListConfig()).ParseStockList(file)
	if err != nil {
		return nil, err
	}
	reportStats("stock", stats)
	return items, nil
}

func loadMappings(path string) ([]models.SynonymMapping, error) {
	if path == "" {
		return nil, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, wrapFileError(path, err)
	}

	var mappings []models.SynonymMapping
	if err := json.Unmarshal(raw, &mappings); err != nil {
		return nil, errors.ParseError(errors.CodeInvalidFormat, path, 0, "invalid mappings JSON", err)
	}
	return mappings, nil
}

func openInput(path string) (*os.File, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, wrapFileError(path, err)
	}
	return file, nil
}

func wrapFileError(path string, err error) error {
	if os.IsNotExist(err) {
		return errors.FileError(errors.CodeFileNotFound, path, err)
	}
	if os.IsPermission(err) {
		return errors.FileError(errors.CodeFilePermission, path, err)
	}
	return errors.FileError(errors.CodeFileNotFound, path, err)
}

func reportStats(name string, stats *parsers.ParseStats) {
	if stats.HasErrors() {
		fmt.Fprintf(os.Stderr, "Warning: %s file parsed with problems: %s\n", name, stats)
		for _, rowErr := range stats.Errors {
			fmt.Fprintf(os.Stderr, "  %s\n", rowErr)
		}
	}
}
