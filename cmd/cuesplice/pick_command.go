package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"cuesplice/internal/registry"
	"cuesplice/internal/services"
	"cuesplice/internal/subtitles"
)

func newPickCommand(ctx *commandContext) *cobra.Command {
	var scene, project string

	cmd := &cobra.Command{
		Use:   "pick <subtitles.srt>",
		Short: "Interactively choose the subtitles a scene replaces",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if in, ok := cmd.InOrStdin().(*os.File); !ok || !isatty.IsTerminal(in.Fd()) {
				return services.Wrap(services.ErrValidation, "pick", "start", "pick needs an interactive terminal; use 'replace add' instead", nil)
			}
			scenePath, err := sceneFile(scene)
			if err != nil {
				return err
			}
			entries, err := subtitles.Load(args[0])
			if err != nil {
				return err
			}
			store, err := ctx.registry()
			if err != nil {
				return err
			}
			reps, err := store.Replacements(cmd.Context(), project)
			if err != nil {
				return err
			}
			stored := make(map[int]string, len(reps))
			for _, r := range reps {
				stored[r.SrtIndex] = r.ScenePath
			}

			program := tea.NewProgram(
				newPickModel(entries, stored, scenePath, project),
				tea.WithContext(cmd.Context()),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
			)
			final, err := program.Run()
			if err != nil {
				return fmt.Errorf("run picker: %w", err)
			}
			model, ok := final.(pickModel)
			if !ok || !model.saved {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing saved")
				return nil
			}
			return savePicks(cmd, store, project, scenePath, model.Selected())
		},
	}

	cmd.Flags().StringVar(&scene, "scene", "", "Scene video to assign")
	cmd.Flags().StringVarP(&project, "project", "p", registry.DefaultProject, "Registry project")
	_ = cmd.MarkFlagRequired("scene")
	return cmd
}

func savePicks(cmd *cobra.Command, store *registry.Store, project, scene string, indices []int) error {
	out := cmd.OutOrStdout()
	added := 0
	for _, idx := range indices {
		ok, err := store.AddReplacement(cmd.Context(), project, registry.Replacement{SrtIndex: idx, ScenePath: scene})
		if err != nil {
			return err
		}
		if ok {
			added++
		}
	}
	fmt.Fprintf(out, "Saved %d replacements to %s\n", added, project)
	return nil
}
