package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/thoreinstein/mcpcli/internal/config"
	"github.com/thoreinstein/mcpcli/internal/doctor"
	"github.com/thoreinstein/mcpcli/internal/errors"
)

var (
	doctorJSON bool
	doctorAll  bool
	doctorFix  bool
)

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false,
		"output results as JSON (overrides --all)")
	doctorCmd.Flags().BoolVar(&doctorAll, "all", false,
		"show every check, including passed ones")
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false,
		"tighten secret store permissions when they are too open")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose configuration and stored authorization",
	Long: `Run diagnostic checks on the mcpcli config, the server config file and
the stored OAuth data.

Exit codes:
  0 - No errors or warnings
  1 - Warnings present, no errors
  2 - Errors present`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

// errDoctorWarnings and errDoctorErrors carry the doctor exit status.
var (
	errDoctorWarnings = errors.NewExitError(errors.Mark(errors.New("warnings found"), errReported), errors.ExitUser)
	errDoctorErrors   = errors.NewExitError(errors.Mark(errors.New("errors found"), errReported), errors.ExitSystem)
)

func runDoctor(c *cobra.Command, _ []string) error {
	a := newApp(c)
	defer a.Close()

	runner := doctor.NewRunner(
		&doctor.ConfigCheck{Path: viper.ConfigFileUsed(), LoadErr: configLoadErr},
		&doctor.ServerConfigCheck{Path: a.serversPath()},
	)
	// Store checks need a valid config to know where the store is.
	if configLoadErr == nil {
		if a.cfg.Secrets.Backend != config.BackendMemory {
			runner.AddCheck(&doctor.SecretStoreCheck{Path: a.cfg.SecretsPath()})
		}
		store, err := a.secrets()
		if err != nil {
			return err
		}
		runner.AddCheck(&doctor.TokenCheck{Store: store})
	}

	report := runner.Run(c.Context())

	var fixes []doctor.FixResult
	if doctorFix {
		fixes = runner.Fix()
	}

	if doctorJSON {
		if err := a.pres.Print(struct {
			*doctor.Report
			Fixes []doctor.FixResult `json:"fixes,omitempty"`
		}{report, fixes}); err != nil {
			return err
		}
	} else {
		writeDoctorText(c.OutOrStdout(), report, fixes)
	}

	switch {
	case report.HasErrors():
		return errDoctorErrors
	case report.HasWarnings() && !fixedAll(fixes, report):
		return errDoctorWarnings
	}
	return nil
}

// fixedAll reports whether every warning was fixable and got fixed.
func fixedAll(fixes []doctor.FixResult, report *doctor.Report) bool {
	if len(fixes) == 0 {
		return false
	}
	for _, f := range fixes {
		if !f.Fixed {
			return false
		}
	}
	for _, r := range report.Results {
		if r.Status == doctor.SeverityWarning && !r.Fixable {
			return false
		}
	}
	return true
}

func writeDoctorText(w io.Writer, report *doctor.Report, fixes []doctor.FixResult) {
	for _, result := range report.Results {
		if !doctorAll && result.Status != doctor.SeverityError && result.Status != doctor.SeverityWarning {
			continue
		}
		fmt.Fprintf(w, "%s [%s] %s: %s\n", statusIcon(result.Status), result.Category, result.Name, result.Message)
		if result.FixHint != "" && result.Status >= doctor.SeverityWarning {
			fmt.Fprintf(w, "  hint: %s\n", result.FixHint)
		}
	}
	for _, f := range fixes {
		fmt.Fprintf(w, "  fix: %s: %s\n", f.Path, f.Description)
	}

	fmt.Fprintf(w, "Summary: %d passed, %d info, %d warnings, %d errors\n",
		report.Summary.Passed, report.Summary.Info, report.Summary.Warnings, report.Summary.Errors)
}

func statusIcon(s doctor.Severity) string {
	switch s {
	case doctor.SeverityPass:
		return "✓"
	case doctor.SeverityInfo:
		return "ℹ"
	case doctor.SeverityWarning:
		return "⚠"
	case doctor.SeverityError:
		return "✗"
	default:
		return "?"
	}
}
