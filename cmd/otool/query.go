package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/manager"
	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/types"
	"github.com/spf13/cobra"
)

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printLines(cmd *cobra.Command, lines []string) {
	for _, line := range lines {
		fmt.Fprintln(cmd.OutOrStdout(), line)
	}
}

var jobsCmd = &cobra.Command{
	Use:   "jobs MODE",
	Short: "List declared, orchestrator or orphan jobs",
	Long: `List jobs. MODE is one of:
  orphansJenkins   declared but missing on the orchestrator
  orphansOtool     on the orchestrator but no longer declared
  allOtool         every declared job
  allJenkins       every job on the orchestrator
  jdkTestProjects  jobs declared by JDK test projects
  jdkProjects      jobs declared by JDK projects

Both --exclude and --include drop the jobs they match.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		url, _ := cmd.Flags().GetString("url")
		exclude, _ := cmd.Flags().GetString("exclude")
		include, _ := cmd.Flags().GetString("include")
		project, _ := cmd.Flags().GetString("project")

		result, err := a.manager.Jobs(cmd.Context(), manager.JobsQuery{
			Mode:    manager.JobsMode(args[0]),
			URL:     url,
			Exclude: exclude,
			Include: include,
			Project: project,
		})
		if err != nil {
			return err
		}
		printLines(cmd, result.Jobs)
		for _, f := range result.Failed {
			fmt.Fprintf(cmd.ErrOrStderr(), "project %s skipped: %s\n", f.Project, f.Error)
		}
		if len(result.Failed) > 0 {
			return fmt.Errorf("%d project(s) could not be expanded", len(result.Failed))
		}
		return nil
	},
}

var decodeCmd = &cobra.Command{
	Use:   "decode JOB|NVR",
	Short: "Decode a job name or parse a build coordinate",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if nvr, _ := cmd.Flags().GetBool("nvr"); nvr {
			c, err := a.manager.ParseCoordinate(args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, c)
		}
		id, err := a.manager.DecodeJob(args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, id)
	},
}

var redeployCmd = &cobra.Command{
	Use:   "redeploy build|test [NVR]",
	Short: "List processed builds or make jobs process a build again",
	Long: `Without NVR, list every build recorded by the selected jobs.
With NVR, list the selected jobs that recorded it; with --do, remove it from
their ledgers so they process it again.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		req := manager.RedeployRequest{Kind: types.JobKind(strings.ToUpper(args[0]))}
		if len(args) == 2 {
			req.NVR = args[1]
		}
		req.Project, _ = cmd.Flags().GetString("project")
		req.Platform, _ = cmd.Flags().GetString("platform")
		req.Task, _ = cmd.Flags().GetString("task")
		req.JDK, _ = cmd.Flags().GetString("jdk")
		req.Provider, _ = cmd.Flags().GetString("provider")
		req.Variants, _ = cmd.Flags().GetStringSlice("variants")
		req.Regex, _ = cmd.Flags().GetString("regex")
		req.Do, _ = cmd.Flags().GetBool("do")

		result, err := a.manager.Redeploy(req)
		if result != nil {
			if perr := printJSON(cmd, result); perr != nil {
				return perr
			}
		}
		return err
	},
}

var archesCmd = &cobra.Command{
	Use:   "arches [NVR]",
	Short: "Show, preview or write arches expectations",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		req := manager.ArchesRequest{}
		if len(args) == 1 {
			req.NVR = args[0]
		}
		req.Set, _ = cmd.Flags().GetString("set")
		req.Do, _ = cmd.Flags().GetBool("do")

		result, err := a.manager.Arches(req)
		if err != nil {
			return err
		}
		return printJSON(cmd, result)
	},
}

func init() {
	jobsCmd.Flags().String("url", "", "Prefix for job links, overrides job-url")
	jobsCmd.Flags().String("exclude", "", "Comma-separated full-match regexes of jobs to drop")
	jobsCmd.Flags().String("include", "", "Comma-separated full-match regexes, same selection as --exclude")
	jobsCmd.Flags().String("project", "", "Only jobs of this project")

	decodeCmd.Flags().Bool("nvr", false, "Parse the argument as an NVR/NVRA build coordinate")

	redeployCmd.Flags().String("project", "", "Only jobs of this project")
	redeployCmd.Flags().String("platform", "", "Only jobs on this platform")
	redeployCmd.Flags().String("task", "", "Only jobs running this task")
	redeployCmd.Flags().String("jdk", "", "Only jobs of this jdk version")
	redeployCmd.Flags().String("provider", "", "Only jobs of this build provider")
	redeployCmd.Flags().StringSlice("variants", nil, "Only jobs assigned all these variant values")
	redeployCmd.Flags().String("regex", "", "Comma-separated full-match regexes a job must match")
	redeployCmd.Flags().Bool("do", false, "Perform the removal instead of previewing it")

	archesCmd.Flags().String("set", "", "Arches to write at the exact coordinate, space or comma separated")
	archesCmd.Flags().Bool("do", false, "Perform the write instead of previewing it")
}
