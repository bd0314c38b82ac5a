package main

import (
	"github.com/spf13/cobra"

	"github.com/runlet-dev/runlet/internal/doctor"
	clierrors "github.com/runlet-dev/runlet/internal/errors"
	"github.com/runlet-dev/runlet/internal/output"
)

// DoctorReport represents diagnostic results for JSON output.
type DoctorReport struct {
	Checks   []DoctorCheck `json:"checks"`
	Passed   int           `json:"passed"`
	Failed   int           `json:"failed"`
	Warnings int           `json:"warnings"`
}

// DoctorCheck is one check result in the report.
type DoctorCheck struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func statusLabel(s doctor.Status) string {
	switch s {
	case doctor.StatusPass:
		return "pass"
	case doctor.StatusWarn:
		return "warn"
	default:
		return "fail"
	}
}

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose common Runlet problems",
		Long: `Doctor runs a series of checks against the current configuration:
interpreter availability, working directory and script presence, state
directory writability, pidfile staleness, and CLI version.

Exit code is 0 when all checks pass (warnings allowed) and 1 when any
check fails.`,
		Example: `  runlet doctor
  runlet doctor --json`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			results := doctor.New().Run(cmd.Context())
			passed, failed, warnings := doctor.Summary(results)

			if out.JSON {
				report := DoctorReport{
					Passed:   passed,
					Failed:   failed,
					Warnings: warnings,
				}

				for _, r := range results {
					report.Checks = append(report.Checks, DoctorCheck{
						Name:    r.Name,
						Status:  statusLabel(r.Status),
						Message: r.Message,
						Detail:  r.Detail,
					})
				}

				if err := out.PrintJSON(report); err != nil {
					return err
				}

				if failed > 0 {
					return clierrors.New(clierrors.ExitGeneral, "")
				}

				return nil
			}

			for _, r := range results {
				out.Print("%s %-18s %s\n", r.Status.Symbol(), r.Name, r.Message)

				if r.Detail != "" && r.Status != doctor.StatusPass {
					out.Muted("    %s", r.Detail)
				}
			}

			out.Print("\n")

			switch {
			case failed > 0:
				return &clierrors.CLIError{
					Message: "Some checks failed",
					Hint:    "Fix the failures above and run 'runlet doctor' again",
					Code:    clierrors.ExitGeneral,
				}
			case warnings > 0:
				out.Warning("%d passed, %d warning(s)", passed, warnings)
			default:
				out.Success("All %d checks passed", passed)
			}

			return nil
		},
	}
}
