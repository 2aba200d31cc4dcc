package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	liveesg "github.com/mageshboopath1/live-esg"
	"github.com/mageshboopath1/live-esg/pipeline"
)

// seedReport is one synthetic disclosure report compiled into the seeder.
// The deterministic mock provider reads the indicator codes and page markers
// straight out of the text, so no AI service is needed to seed a database.
type seedReport struct {
	company string
	year    int
	text    string
}

var reports = []seedReport{
	{
		company: "Aurora Materials",
		year:    2024,
		text: "Aurora Materials annual sustainability report. Our GHG emissions intensity " +
			"(E-GHG-INT) declined for the third consecutive year as electric arc capacity came " +
			"online. [page 12] Renewable sources supplied a growing share of purchased power " +
			"(E-ENE-REN), and water withdrawal intensity (E-WAT-INT) fell at every smelting " +
			"site. [page 14] The total recordable injury rate (S-INJ-RATE) improved against " +
			"the prior period after the stand-down program. [page 31] Board independence " +
			"(G-BRD-IND) remained above the exchange requirement, and the interval between " +
			"year end and the audited filing (G-AUD-DAYS) shortened again. [page 55]",
	},
	{
		company: "Blue Harbor Logistics",
		year:    2024,
		text: "Blue Harbor Logistics combined ESG disclosure. Fleet renewal cut our GHG " +
			"emissions intensity (E-GHG-INT) per revenue mile. [page 8] Waste diverted from " +
			"landfill (E-WST-REC) rose with the pallet recovery initiative. [page 9] Workforce " +
			"diversity (S-DIV-WF) and the share of employees receiving regular training " +
			"(S-TRN-COV) both advanced under the crew development plan. [page 22] The board " +
			"refreshed two seats during the year, lifting board gender diversity (G-BRD-DIV). " +
			"[page 40]",
	},
	{
		company: "Cobalt Grid Energy",
		year:    2023,
		text: "Cobalt Grid Energy disclosure statement. Renewable energy share of consumption " +
			"(E-ENE-REN) reached a new high as storage assets were commissioned, while GHG " +
			"emissions intensity (E-GHG-INT) continued to fall. [page 5] The median gender pay " +
			"gap (S-PAY-GAP) narrowed following the compensation review. [page 18] Confirmed " +
			"ethics incidents (G-ETH-INC) were investigated and closed within the quarter, and " +
			"board independence (G-BRD-IND) was maintained through the transition. [page 33]",
	},
	{
		company: "Drummond Foods",
		year:    2024,
		text: "Drummond Foods responsibility report. Waste diverted from landfill (E-WST-REC) " +
			"exceeded the group target, and water withdrawal intensity (E-WAT-INT) dropped at " +
			"both processing plants. [page 11] The total recordable injury rate (S-INJ-RATE) " +
			"fell for a fifth year, and workforce diversity (S-DIV-WF) improved across plant " +
			"leadership. [page 27] Days from year end to the audited filing (G-AUD-DAYS) held " +
			"steady under the new auditor. [page 49]",
	},
	{
		company: "Evergreen Textiles",
		year:    2023,
		text: "Evergreen Textiles impact summary. Employees receiving regular training " +
			"(S-TRN-COV) covered nearly the whole production workforce, and the median gender " +
			"pay gap (S-PAY-GAP) continued to close. [page 15] Renewable energy share " +
			"(E-ENE-REN) grew with the rooftop solar rollout. [page 19] Confirmed ethics " +
			"incidents (G-ETH-INC) stayed low, and board gender diversity (G-BRD-DIV) reached " +
			"parity. [page 36]",
	},
}

var dbPath = flag.String("db", "./esg_db", "path to the database directory")

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// writeReports materializes the compiled-in reports as files the ingestor can
// fetch. The caller removes the directory.
func writeReports(dir string) ([]pipeline.Source, error) {
	sources := make([]pipeline.Source, 0, len(reports))
	for _, r := range reports {
		name := fmt.Sprintf("%s-%d.txt", slug(r.company), r.year)
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(r.text), 0o644); err != nil {
			return nil, err
		}
		sources = append(sources, pipeline.Source{
			Location:   path,
			Company:    r.company,
			ReportYear: r.year,
		})
	}
	return sources, nil
}

// slug lowercases a company name for use in a file name.
func slug(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "-")
}

// printSummary renders one line per score plus any failures.
func printSummary(report *pipeline.RunReport) {
	fmt.Printf("Seeded %d documents, %d scored\n\n", len(report.Documents), len(report.Scores))
	for _, score := range report.Scores {
		fmt.Printf("%-22s %d  overall %5.1f ", score.Company, score.ReportYear, score.Overall)
		for _, pillar := range score.Pillars {
			fmt.Printf(" %s=%5.1f", pillar.Pillar, pillar.Score)
		}
		fmt.Println()
	}
	for _, failure := range report.Failures {
		fmt.Printf("failed %s %d at %s: %v\n", failure.Company, failure.ReportYear, failure.Stage, failure.Err)
	}
}

func main() {
	dir, err := os.MkdirTemp("", "esg-seed-*")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	sources, err := writeReports(dir)
	if err != nil {
		panic(err)
	}

	sys, err := liveesg.NewSystem(*dbPath, liveesg.WithMockAI())
	if err != nil {
		panic(err)
	}
	defer sys.Close()

	runner, err := sys.NewRunner(
		pipeline.WithStagePollInterval(10*time.Millisecond),
		pipeline.WithMonitor(pipeline.MonitorConfig{
			PollInterval:  25 * time.Millisecond,
			ConfirmWindow: 200 * time.Millisecond,
			Timeout:       2 * time.Minute,
		}),
	)
	if err != nil {
		panic(err)
	}

	ctx := context.Background()
	report, err := runner.Run(ctx, sources)
	if err != nil {
		panic(err)
	}

	printSummary(report)
}
