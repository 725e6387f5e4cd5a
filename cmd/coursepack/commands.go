package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	coursepack "github.com/goliatone/go-coursepack"
	"github.com/goliatone/go-coursepack/content"
	compilecmd "github.com/goliatone/go-coursepack/internal/commands/compile"
	"github.com/goliatone/go-coursepack/internal/logging"
)

func (a *app) flattenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "flatten <module>",
		Short: "Print the flattened module as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			modulePath := cleanVaultPath(args[0])
			if !strings.HasSuffix(modulePath, ".md") && !ws.files.Has(modulePath) {
				modulePath += ".md"
			}

			var result coursepack.FlattenResult
			handler := ws.module.FlattenModuleHandler(func(r coursepack.FlattenResult) { result = r })
			execErr := handler.Execute(cmd.Context(), compilecmd.FlattenModuleCommand{
				Path:  modulePath,
				Files: ws.files,
				Tiers: ws.tiers,
			})
			if execErr != nil && !errors.Is(execErr, compilecmd.ErrModuleUnusable) {
				return execErr
			}

			logging.WithCompileContext(ws.module.Logger(), modulePath, ws.root, "flatten").
				Debug("cli.flatten.completed", "errors", len(result.Errors))

			if err := writeJSON(a.stdout, result); err != nil {
				return err
			}
			if execErr != nil || hasErrors(result.Errors) {
				return errContentInvalid
			}
			return nil
		},
	}
}

func (a *app) validateCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate every module and course of the vault",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := a.open(cmd.Context())
			if err != nil {
				return err
			}

			var report coursepack.Report
			handler := ws.module.ValidateVaultHandler(func(r coursepack.Report) { report = r })
			if err := handler.Execute(cmd.Context(), compilecmd.ValidateVaultCommand{Files: ws.files, Tiers: ws.tiers}); err != nil {
				return err
			}

			if asJSON {
				if err := writeJSON(a.stdout, report); err != nil {
					return err
				}
			} else {
				renderReport(a.stdout, report)
			}
			if report.HasErrors() {
				return errContentInvalid
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

func (a *app) courseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "course <path>",
		Short: "Print the parsed course progression as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			coursePath := cleanVaultPath(args[0])
			if !strings.HasSuffix(coursePath, ".md") && !ws.files.Has(coursePath) {
				coursePath += ".md"
			}

			var result coursepack.CourseResult
			handler := ws.module.ParseCourseHandler(func(r coursepack.CourseResult) { result = r })
			execErr := handler.Execute(cmd.Context(), compilecmd.ParseCourseCommand{Path: coursePath, Files: ws.files})
			if execErr != nil && !errors.Is(execErr, compilecmd.ErrCourseUnusable) {
				return execErr
			}

			errs := result.Errors
			if errs == nil {
				errs = []content.ContentError{}
			}
			if err := writeJSON(a.stdout, map[string]any{
				"course": result.Course,
				"errors": errs,
			}); err != nil {
				return err
			}
			if execErr != nil || hasErrors(errs) {
				return errContentInvalid
			}
			return nil
		},
	}
}

func writeJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(value); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

func hasErrors(errs []content.ContentError) bool {
	count, _ := content.CountBySeverity(errs)
	return count > 0
}

// renderReport prints errors before warnings, one entry per line with its
// suggestion indented below.
func renderReport(w io.Writer, report coursepack.Report) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Validated %d modules", len(report.Modules))))
	for _, entry := range report.Errors {
		marker := errorStyle.Render("✗")
		if !entry.IsError() {
			marker = warningStyle.Render("!")
		}
		location := entry.File
		if entry.Line > 0 {
			location = fmt.Sprintf("%s:%d", entry.File, entry.Line)
		}
		fmt.Fprintf(w, "%s %s %s\n", marker, fileStyle.Render(location), entry.Message)
		if entry.Suggestion != "" {
			fmt.Fprintln(w, hintStyle.Render("→ "+entry.Suggestion))
		}
	}

	summary := fmt.Sprintf("%d errors, %d warnings", report.Errored, report.Warnings)
	switch {
	case report.Errored > 0:
		fmt.Fprintln(w, errorStyle.Render(summary))
	case report.Warnings > 0:
		fmt.Fprintln(w, warningStyle.Render(summary))
	default:
		fmt.Fprintln(w, successStyle.Render("No problems found"))
	}
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("%d courses parsed", len(report.Courses))))
}
