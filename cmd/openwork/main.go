package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"openwork/internal/engine"
)

var (
	flagConfig  string
	flagServer  string
	flagProject string
	flagPlain   bool

	rootCmd = &cobra.Command{
		Use:   "openwork",
		Short: "Terminal client for an opencode agent server",
		Long: `openwork connects to a running opencode server (or starts one),
mirrors its sessions, transcripts, plans and permission requests, and
lets you drive agent sessions from the terminal.`,
		SilenceUsage: true,
		RunE:         runRoot,
	}

	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Connect and open the client",
		RunE:  runRoot,
	}

	doctorCmd = &cobra.Command{
		Use:   "doctor",
		Short: "Check whether the opencode engine is installed and usable",
		RunE:  runDoctor,
	}

	installCmd = &cobra.Command{
		Use:   "install",
		Short: "Install the opencode engine via the official install script",
		RunE:  runInstall,
	}

	flagOverwrite bool

	skillCmd = &cobra.Command{
		Use:   "skill",
		Short: "Manage project skills",
	}

	skillImportCmd = &cobra.Command{
		Use:   "import <source-dir>",
		Short: "Copy a skill directory into the project's .opencode/skill/",
		Args:  cobra.ExactArgs(1),
		RunE:  runSkillImport,
	}

	pkgAddCmd = &cobra.Command{
		Use:   "add <package>",
		Short: "Install an OpenPackage into the project",
		Args:  cobra.ExactArgs(1),
		RunE:  runPkgAdd,
	}

	pkgCmd = &cobra.Command{
		Use:   "pkg",
		Short: "Manage OpenPackages",
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config JSON/JSONC")
	rootCmd.PersistentFlags().StringVar(&flagServer, "server", "", "Server base URL override")
	rootCmd.PersistentFlags().StringVar(&flagProject, "project", "", "Project directory for an auto-started engine")
	rootCmd.PersistentFlags().BoolVar(&flagPlain, "plain", false, "Plain line-mode instead of the full-screen UI")
	skillImportCmd.Flags().BoolVar(&flagOverwrite, "overwrite", false, "Replace the skill if it already exists")
	skillCmd.AddCommand(skillImportCmd)
	pkgCmd.AddCommand(pkgAddCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(skillCmd)
	rootCmd.AddCommand(pkgCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	result := engine.Doctor(cmd.Context(), cfg.Engine.Command)

	fmt.Printf("found:          %v\n", result.Found)
	fmt.Printf("in PATH:        %v\n", result.InPath)
	if result.ResolvedPath != "" {
		fmt.Printf("path:           %s\n", result.ResolvedPath)
	}
	if result.Version != "" {
		fmt.Printf("version:        %s\n", result.Version)
	}
	fmt.Printf("supports serve: %v\n", result.SupportsServe)
	for _, note := range result.Notes {
		fmt.Printf("  %s\n", note)
	}
	if !result.Found {
		fmt.Println("\nInstall with: openwork install")
	}
	return nil
}

func runInstall(cmd *cobra.Command, args []string) error {
	result, err := engine.Install(cmd.Context())
	if err != nil {
		return err
	}
	printExecResult(result)
	if !result.OK {
		return fmt.Errorf("install exited with status %d", result.Status)
	}
	return nil
}

func runSkillImport(cmd *cobra.Command, args []string) error {
	result, err := engine.ImportSkill(projectDirOrCwd(), args[0], flagOverwrite)
	if err != nil {
		return err
	}
	fmt.Println(result.Stdout)
	return nil
}

func runPkgAdd(cmd *cobra.Command, args []string) error {
	result, err := engine.OpkgInstall(cmd.Context(), projectDirOrCwd(), args[0])
	if err != nil {
		return err
	}
	printExecResult(result)
	if !result.OK {
		return fmt.Errorf("opkg exited with status %d", result.Status)
	}
	return nil
}

func projectDirOrCwd() string {
	if flagProject != "" {
		return flagProject
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return cwd
}

func printExecResult(result engine.ExecResult) {
	if result.Stdout != "" {
		fmt.Println(result.Stdout)
	}
	if result.Stderr != "" {
		fmt.Fprintln(os.Stderr, result.Stderr)
	}
}
