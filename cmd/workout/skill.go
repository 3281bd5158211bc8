// ABOUTME: Install Claude Code skill for workout
// ABOUTME: Embeds and installs the skill definition to ~/.claude/skills/

package main

import (
	"embed"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

//go:embed skill/SKILL.md
var skillFS embed.FS

const skillFile = "skill/SKILL.md"

var skillSkipConfirm bool

var installSkillCmd = &cobra.Command{
	Use:   "install-skill",
	Short: "Install Claude Code skill",
	Long: `Install the workout skill for Claude Code.

This copies the skill definition to ~/.claude/skills/workout/
so Claude Code can drive sessions through the workout MCP tools.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		return newSkillInstall(home).run(cmd.InOrStdin(), cmd.OutOrStdout(), skillSkipConfirm)
	},
}

func init() {
	installSkillCmd.Flags().BoolVarP(&skillSkipConfirm, "yes", "y", false, "Skip confirmation prompt")
	rootCmd.AddCommand(installSkillCmd)
}

// skillInstall places SKILL.md under a home directory.
type skillInstall struct {
	dir  string
	path string
}

func newSkillInstall(home string) skillInstall {
	dir := filepath.Join(home, ".claude", "skills", "workout")
	return skillInstall{dir: dir, path: filepath.Join(dir, "SKILL.md")}
}

func (s skillInstall) exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

func (s skillInstall) run(in io.Reader, out io.Writer, skipConfirm bool) error {
	fmt.Fprintf(out, "The workout skill lets Claude Code start sessions, log sets and warm-ups,\n")
	fmt.Fprintf(out, "and report PRs, streaks and weekly volume.\n\n")
	fmt.Fprintf(out, "Destination: %s\n", s.path)
	if s.exists() {
		fmt.Fprintln(out, "An existing skill file will be replaced.")
	}

	if !skipConfirm {
		ok, err := confirm(in, out, "Install the workout skill?")
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, "Installation canceled.")
			return nil
		}
	}

	content, err := skillFS.ReadFile(skillFile)
	if err != nil {
		return fmt.Errorf("failed to read embedded skill: %w", err)
	}
	if err := os.MkdirAll(s.dir, 0750); err != nil {
		return fmt.Errorf("failed to create skill directory: %w", err)
	}
	if err := os.WriteFile(s.path, content, 0600); err != nil {
		return fmt.Errorf("failed to write skill file: %w", err)
	}

	fmt.Fprintln(out, color.GreenString("✓ Installed workout skill"))
	fmt.Fprintln(out, `Try asking Claude: "Start push day" or "What's my bench e1RM trend?"`)
	return nil
}
