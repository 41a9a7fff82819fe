package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"cuesplice/internal/pipeline"
	"cuesplice/internal/registry"
	"cuesplice/internal/services"
)

func newReplaceCommand(ctx *commandContext) *cobra.Command {
	var project string

	replaceCmd := &cobra.Command{
		Use:   "replace",
		Short: "Manage stored scene replacements",
	}
	replaceCmd.PersistentFlags().StringVarP(&project, "project", "p", registry.DefaultProject, "Registry project")

	replaceCmd.AddCommand(newReplaceAddCommand(ctx, &project))
	replaceCmd.AddCommand(newReplaceListCommand(ctx, &project))
	replaceCmd.AddCommand(newReplaceRemoveCommand(ctx, &project))
	replaceCmd.AddCommand(newReplaceClearCommand(ctx, &project))
	replaceCmd.AddCommand(newReplaceProjectsCommand(ctx))
	replaceCmd.AddCommand(newReplaceExportCommand(ctx, &project))

	return replaceCmd
}

func newReplaceAddCommand(ctx *commandContext, project *string) *cobra.Command {
	return &cobra.Command{
		Use:   "add <index> <scene.mp4>",
		Short: "Replace the subtitle at index (0-based) with a scene",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := strconv.Atoi(args[0])
			if err != nil {
				return services.Wrap(services.ErrValidation, "replace", "add", fmt.Sprintf("invalid index %q", args[0]), nil)
			}
			scene, err := sceneFile(args[1])
			if err != nil {
				return err
			}
			store, err := ctx.registry()
			if err != nil {
				return err
			}
			added, err := store.AddReplacement(cmd.Context(), *project, registry.Replacement{SrtIndex: idx, ScenePath: scene})
			if err != nil {
				return err
			}
			if ctx.JSONMode() {
				return writeJSON(cmd, map[string]any{"project": *project, "srt_index": idx, "scene_path": scene, "added": added})
			}
			out := cmd.OutOrStdout()
			if !added {
				fmt.Fprintf(out, "Subtitle %d already has a scene in %s; keeping the first selection\n", idx, *project)
				return nil
			}
			fmt.Fprintf(out, "Subtitle %d -> %s (%s)\n", idx, scene, *project)
			return nil
		},
	}
}

func newReplaceListCommand(ctx *commandContext, project *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List replacements for a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.registry()
			if err != nil {
				return err
			}
			reps, err := store.Replacements(cmd.Context(), *project)
			if err != nil {
				return err
			}
			if ctx.JSONMode() {
				if reps == nil {
					reps = []registry.Replacement{}
				}
				return writeJSON(cmd, reps)
			}
			out := cmd.OutOrStdout()
			if len(reps) == 0 {
				fmt.Fprintf(out, "No replacements in %s\n", *project)
				return nil
			}
			rows := make([][]string, 0, len(reps))
			for _, rep := range reps {
				rows = append(rows, []string{strconv.Itoa(rep.SrtIndex), rep.ScenePath, formatTime(rep.CreatedAt)})
			}
			fmt.Fprintln(out, renderTable(out, []string{"Index", "Scene", "Added"}, rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft}))
			return nil
		},
	}
}

func newReplaceRemoveCommand(ctx *commandContext, project *string) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <index>",
		Short: "Drop the replacement for one subtitle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := strconv.Atoi(args[0])
			if err != nil {
				return services.Wrap(services.ErrValidation, "replace", "remove", fmt.Sprintf("invalid index %q", args[0]), nil)
			}
			store, err := ctx.registry()
			if err != nil {
				return err
			}
			removed, err := store.RemoveReplacement(cmd.Context(), *project, idx)
			if err != nil {
				return err
			}
			if !removed {
				return services.Wrap(services.ErrNotFound, "replace", "remove", fmt.Sprintf("no replacement for subtitle %d in %s", idx, *project), nil)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed subtitle %d from %s\n", idx, *project)
			return nil
		},
	}
}

func newReplaceClearCommand(ctx *commandContext, project *string) *cobra.Command {
	var drop bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every replacement in a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.registry()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if drop {
				deleted, err := store.DeleteProject(cmd.Context(), *project)
				if err != nil {
					return err
				}
				if deleted {
					fmt.Fprintf(out, "Deleted project %s\n", *project)
				} else {
					fmt.Fprintf(out, "Project %s not found\n", *project)
				}
				return nil
			}
			n, err := store.ClearReplacements(cmd.Context(), *project)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Cleared %d replacements from %s\n", n, *project)
			return nil
		},
	}
	cmd.Flags().BoolVar(&drop, "delete", false, "Delete the project itself")
	return cmd
}

func newReplaceProjectsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "List registry projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.registry()
			if err != nil {
				return err
			}
			projects, err := store.Projects(cmd.Context())
			if err != nil {
				return err
			}
			if ctx.JSONMode() {
				if projects == nil {
					projects = []registry.Project{}
				}
				return writeJSON(cmd, projects)
			}
			out := cmd.OutOrStdout()
			if len(projects) == 0 {
				fmt.Fprintln(out, "No projects")
				return nil
			}
			rows := make([][]string, 0, len(projects))
			for _, p := range projects {
				rows = append(rows, []string{p.Name, strconv.Itoa(p.Replacements), formatTime(p.UpdatedAt)})
			}
			fmt.Fprintln(out, renderTable(out, []string{"Project", "Replacements", "Updated"}, rows,
				[]columnAlignment{alignLeft, alignRight, alignLeft}))
			return nil
		},
	}
}

func newReplaceExportCommand(ctx *commandContext, project *string) *cobra.Command {
	var clipsDir string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Copy a project's scenes into a clips directory layout",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if clipsDir == "" {
				clipsDir = cfg.Paths.ClipsDir
			}
			if clipsDir == "" {
				return services.Wrap(services.ErrConfiguration, "replace", "export", "no clips directory: set --clips-dir or paths.clips_dir", nil)
			}
			store, err := ctx.registry()
			if err != nil {
				return err
			}
			reps, err := store.Replacements(cmd.Context(), *project)
			if err != nil {
				return err
			}
			if len(reps) == 0 {
				return services.Wrap(services.ErrValidation, "replace", "export", fmt.Sprintf("project %q has no replacements", *project), nil)
			}
			written, err := pipeline.ExportVariation(pipeline.RegistryVariation(reps), clipsDir, ctx.loggerFor())
			if err != nil {
				return err
			}
			if ctx.JSONMode() {
				return writeJSON(cmd, map[string]any{"clips_dir": clipsDir, "files": written})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d scenes to %s\n", len(written), clipsDir)
			return nil
		},
	}
	cmd.Flags().StringVar(&clipsDir, "clips-dir", "", "Destination clips directory (default: paths.clips_dir)")
	return cmd
}

func sceneFile(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "replace", "resolve scene", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", services.Wrap(services.ErrNotFound, "replace", "stat scene", abs, err)
	}
	if info.IsDir() {
		return "", services.Wrap(services.ErrValidation, "replace", "stat scene", abs+" is a directory", nil)
	}
	return abs, nil
}
