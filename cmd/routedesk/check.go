package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"routedesk-hq/routedesk/pkg/validate"
)

var checkFlags struct {
	team        string
	upstreams   string
	locations   string
	rules       string
	nginxBinary string
	format      string
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate fragment files offline",
	Long: `Validate nginx fragment files without a running server.

The check command runs the same three-stage validation pipeline the
API applies on submission:
  - Syntax validation of the combined fragments
  - Policy validation (forbidden directives and prefixes)
  - Team scope validation of location paths

Examples:
  # Check a team's fragments
  routedesk check --team checkout --upstreams upstream.conf --locations proxy.conf

  # Check against a custom rule set
  routedesk check --team checkout --locations proxy.conf --rules rules.yaml

  # JSON output for CI/CD
  routedesk check --team checkout --locations proxy.conf --format json`,
	RunE: checkFragments,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVarP(&checkFlags.team, "team", "t", "", "team the fragments belong to")
	checkCmd.Flags().StringVarP(&checkFlags.upstreams, "upstreams", "u", "", "upstreams fragment file")
	checkCmd.Flags().StringVar(&checkFlags.locations, "locations", "", "locations fragment file")
	checkCmd.Flags().StringVar(&checkFlags.rules, "rules", "", "rule set file (default: built-in rules)")
	checkCmd.Flags().StringVar(&checkFlags.nginxBinary, "nginx-binary", "", "nginx binary for the dry-run syntax check")
	checkCmd.Flags().StringVar(&checkFlags.format, "format", "text", "output format: text, json")
}

type checkReport struct {
	Team      string   `json:"team"`
	Valid     bool     `json:"valid"`
	Stage     string   `json:"stage,omitempty"`
	Errors    []string `json:"errors,omitempty"`
	Locations int      `json:"locations"`
}

func checkFragments(cmd *cobra.Command, args []string) error {
	if checkFlags.team == "" {
		return fmt.Errorf("--team must be specified")
	}
	if checkFlags.upstreams == "" && checkFlags.locations == "" {
		return fmt.Errorf("either --upstreams or --locations must be specified")
	}

	upstreams, err := readFragmentFile(checkFlags.upstreams)
	if err != nil {
		return err
	}
	locations, err := readFragmentFile(checkFlags.locations)
	if err != nil {
		return err
	}

	rules, err := validate.NewSource(checkFlags.rules, nil)
	if err != nil {
		return fmt.Errorf("failed to load rules: %w", err)
	}
	pipeline := validate.NewPipeline(rules, checkFlags.nginxBinary, nil)

	report := checkReport{Team: checkFlags.team, Valid: true}
	result, err := pipeline.ValidateSplit(checkFlags.team, upstreams, locations)
	if err != nil {
		var ve *validate.ValidationError
		if !errors.As(err, &ve) {
			return err
		}
		report.Valid = false
		report.Stage = ve.Stage
		report.Errors = ve.Messages
	} else {
		report.Locations = len(result.Locations)
	}

	if checkFlags.format == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		printCheckReport(report)
	}

	if !report.Valid {
		return fmt.Errorf("validation failed with %d error(s)", len(report.Errors))
	}
	return nil
}

func readFragmentFile(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read fragment file %q: %w", path, err)
	}
	return string(data), nil
}

func printCheckReport(report checkReport) {
	if report.Valid {
		fmt.Printf("✓ Fragments valid for team %s (%d location(s))\n", report.Team, report.Locations)
		return
	}
	fmt.Printf("✗ Validation failed at %s stage:\n", report.Stage)
	for _, msg := range report.Errors {
		fmt.Printf("  - %s\n", msg)
	}
}
