package main

import (
	"fmt"
	"os"

	"github.com/mkrepo/mkrepo/pkg/config"
	"github.com/mkrepo/mkrepo/pkg/github"
	"github.com/mkrepo/mkrepo/pkg/log"
	"github.com/mkrepo/mkrepo/pkg/preflight"
	"github.com/mkrepo/mkrepo/pkg/workflow"
	"github.com/spf13/cobra"
)

var (
	createName          string
	createDir           string
	createWorkspace     string
	createVisibility    string
	createConfigFile    string
	copyConfigsFrom     string
	createConfigs       []string
	createExtraConfigs  []string
	createCommitMessage string
	createBuild         bool
	createDryRun        bool
	skipPreflight       bool

	ghRepoCreateArgs []string
	ghRepoCloneArgs  []string
	cargoInitArgs    []string
	cargoBuildArgs   []string
	gitCommitArgs    []string
	gitPushArgs      []string
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a repository on GitHub and set it up locally",
	Long: `Create a new repository on GitHub, clone it, initialize a Rust project
inside it, copy configuration files from an existing project, and commit and
push the result.

The heavy lifting is delegated to external tools: gh for repository creation
and cloning, cargo for project scaffolding, and git for committing and
pushing. Each wrapped tool accepts extra arguments via its matching
--*-cmd flag; those arguments are appended verbatim after the tool's own.

Steps run in order and the first failure stops the run. Successful steps are
not rolled back: if the push fails, the remote repository and the local clone
stay as they are, and the failing step is reported so the run can be resumed
by hand. Re-running is safe: repository creation, cloning, and project
initialization are each skipped when their result already exists.

Examples:
  mkrepo create --name my-new-project
  mkrepo create --name my-new-project --visibility public --build
  mkrepo create --name my-new-project --copy-configs-from ~/work/my-existing-project
  mkrepo create --name my-new-project --copy-configs-from ~/base --extra-configs deny.toml --extra-configs .cargo
  mkrepo create --name my-new-project --gh-repo-create-cmd --disable-wiki --git-push-cmd --set-upstream
  mkrepo create --name my-new-project --dry-run`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		opts := config.Options{
			Name:            createName,
			Dir:             createDir,
			Workspace:       createWorkspace,
			Visibility:      createVisibility,
			CopyConfigsFrom: copyConfigsFrom,
			Configs:         createConfigs,
			ExtraConfigs:    createExtraConfigs,
			CommitMessage:   createCommitMessage,
			Build:           createBuild,
			DryRun:          createDryRun,
			Forward: config.ForwardArgs{
				RepoCreate: ghRepoCreateArgs,
				RepoClone:  ghRepoCloneArgs,
				Init:       cargoInitArgs,
				Build:      cargoBuildArgs,
				Commit:     gitCommitArgs,
				Push:       gitPushArgs,
			},
		}

		if createConfigFile != "" {
			file, err := config.LoadFile(createConfigFile)
			if err != nil {
				return err
			}
			file.ApplyTo(&opts)
		}

		cfg, err := config.New(opts)
		if err != nil {
			return err
		}

		if cfg.DryRun {
			// A dry run touches nothing: no preflight, no API probe,
			// no subprocesses.
			_, err := workflow.New(cfg).Run(ctx)
			return err
		}

		if !skipPreflight {
			checker := preflight.NewChecker(preflight.Config{
				Tools:           []string{"gh", "git", "cargo"},
				TargetDir:       cfg.Dir,
				ConfigSourceDir: cfg.CopyConfigsFrom,
				CheckToken:      true,
			})
			if err := checker.Run(ctx); err != nil {
				return err
			}
		}

		runnerOpts := []workflow.Option{}
		if token := github.ResolveToken(); token != "" {
			runnerOpts = append(runnerOpts, workflow.WithExistenceProbe(github.NewClient(ctx, token)))
		} else {
			log.Debug("no GitHub token; skipping repository existence probe")
		}

		result, err := workflow.New(cfg, runnerOpts...).Run(ctx)
		report(result)
		return err
	},
}

// report prints the per-step outcome after a real run.
func report(result *workflow.Result) {
	if result == nil {
		return
	}
	for _, step := range result.Steps {
		switch step.Status {
		case workflow.StatusSkipped:
			log.Info("step skipped", "step", step.Name, "reason", step.SkipReason)
		case workflow.StatusFailed:
			log.Error("step failed", "step", step.Name, "exit_code", step.ExitCode)
			if step.Output != "" {
				fmt.Fprint(os.Stderr, step.Output)
			}
		case workflow.StatusCompleted:
			log.Debug("step completed", "step", step.Name)
		}
	}
}

func init() {
	createCmd.Flags().StringVarP(&createName, "name", "n", "", "Repository name (required)")
	createCmd.Flags().StringVarP(&createDir, "dir", "d", "", "Target directory for the clone, including the repo name (default: <cwd>/<name>)")
	createCmd.Flags().StringVarP(&createWorkspace, "workspace", "w", "", "Parent directory for the clone, not including the repo name; --dir wins")
	createCmd.Flags().StringVar(&createVisibility, "visibility", "", "Repository visibility: public, private, or internal (default: private)")
	createCmd.Flags().StringVar(&createConfigFile, "config", "", "YAML file with defaults for these flags")
	createCmd.Flags().StringVarP(&copyConfigsFrom, "copy-configs-from", "c", "", "Source directory to copy config files from")
	createCmd.Flags().StringSliceVar(&createConfigs, "configs", nil, "Config paths to copy, relative to the source directory (e.g. .github,rustfmt.toml,clippy.toml)")
	createCmd.Flags().StringSliceVar(&createExtraConfigs, "extra-configs", nil, "Additional config paths, copied on top of the base set")
	createCmd.Flags().StringVar(&createCommitMessage, "git-commit-message", "", `Commit message for the copied configs (default: "Add configs")`)
	createCmd.Flags().BoolVar(&createBuild, "build", false, "Build the scaffold after initialization to verify it compiles")
	createCmd.Flags().BoolVar(&createDryRun, "dry-run", false, "Print planned actions without executing anything")
	createCmd.Flags().BoolVar(&skipPreflight, "skip-preflight", false, "Skip environment checks")

	createCmd.Flags().StringArrayVar(&ghRepoCreateArgs, "gh-repo-create-cmd", nil, "Extra argument forwarded to gh repo create (repeatable)")
	createCmd.Flags().StringArrayVar(&ghRepoCloneArgs, "gh-repo-clone-cmd", nil, "Extra argument forwarded to gh repo clone (repeatable)")
	createCmd.Flags().StringArrayVar(&cargoInitArgs, "cargo-init-cmd", nil, "Extra argument forwarded to cargo init (repeatable)")
	createCmd.Flags().StringArrayVar(&cargoBuildArgs, "cargo-build-cmd", nil, "Extra argument forwarded to cargo build (repeatable)")
	createCmd.Flags().StringArrayVar(&gitCommitArgs, "git-commit-cmd", nil, "Extra argument forwarded to git commit (repeatable)")
	createCmd.Flags().StringArrayVar(&gitPushArgs, "git-push-cmd", nil, "Extra argument forwarded to git push (repeatable)")

	_ = createCmd.MarkFlagRequired("name")

	rootCmd.AddCommand(createCmd)
}
