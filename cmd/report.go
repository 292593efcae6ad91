package cmd

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"flatfin/export"
	"flatfin/ledger"
)

var inputPath string
var outputPath string

func reportCmd() *cobra.Command {
	var year int
	var month int
	var topN int
	var yearly bool

	cmd := &cobra.Command{
		Use:     "report",
		Short:   "aggregate an expense CSV into a report CSV",
		Long:    `accept two CSV file paths, one for input and one for output. It reads the expense rows (name, amount, category, date), aggregates the requested period, and writes the category breakdown, trend series and top expenses to the output CSV.`,
		Example: `flatfin report --input expenses.csv --output report.csv --year 2026 --month 6`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if inputPath == "" || outputPath == "" {
				return cmd.Help()
			}

			// read the input CSV file
			inputFile, err := os.Open(inputPath)
			if err != nil {
				return err
			}
			defer func(inputFile *os.File) {
				err := inputFile.Close()
				if err != nil {
					log.Fatalf("Failed to close input file: %v", err)
				}
			}(inputFile)

			csvContent, err := csv.NewReader(inputFile).ReadAll()
			if err != nil {
				return err
			}

			entries, err := export.ParseEntriesCSV(csvContent)
			if err != nil {
				return fmt.Errorf("failed to parse CSV: %w", err)
			}
			if len(entries) == 0 {
				return fmt.Errorf("no valid expense rows found in the CSV")
			}

			granularity := ledger.GranularityDaily
			if yearly {
				granularity = ledger.GranularityMonthly
			}
			period := ledger.ReportPeriod{Year: year, Month: time.Month(month)}
			report := ledger.BuildReport(entries, granularity, period, topN, time.UTC)
			previous := ledger.BuildReport(entries, granularity, period.Previous(granularity), 0, time.UTC)

			outputFile, err := os.Create(outputPath)
			if err != nil {
				return err
			}
			defer func(outputFile *os.File) {
				err := outputFile.Close()
				if err != nil {
					log.Fatalf("Failed to close output file: %v", err)
				}
			}(outputFile)

			if err := export.WriteReportCSV(outputFile, report, previous.Total); err != nil {
				return err
			}

			fmt.Printf("Report written to %s (total %s over %d entries)\n", outputPath, report.Total, len(entries))
			return nil
		},
	}

	now := time.Now()
	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "csv input file path (required)")
	err := cmd.MarkFlagRequired("input")
	if err != nil {
		log.Fatal(err)
		return nil
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "csv output file path (required)")
	err = cmd.MarkFlagRequired("output")
	if err != nil {
		log.Fatal(err)
		return nil
	}
	cmd.Flags().IntVar(&year, "year", now.Year(), "report year")
	cmd.Flags().IntVar(&month, "month", int(now.Month()), "report month (ignored with --yearly)")
	cmd.Flags().IntVar(&topN, "top", 5, "number of top expenses to include")
	cmd.Flags().BoolVar(&yearly, "yearly", false, "aggregate monthly buckets over the whole year")

	return cmd
}
