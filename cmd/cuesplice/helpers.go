package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"cuesplice/internal/pipeline"
	"cuesplice/internal/registry"
	"cuesplice/internal/services"
	"cuesplice/internal/subtitles"
)

// parseReplacePairs turns repeated idx=path flags into a scene map.
func parseReplacePairs(values []string) (map[int]string, error) {
	if len(values) == 0 {
		return nil, nil
	}
	scenes := make(map[int]string, len(values))
	for _, raw := range values {
		idxText, path, ok := strings.Cut(raw, "=")
		if !ok {
			return nil, services.Wrap(services.ErrValidation, "cli", "parse --replace", fmt.Sprintf("%q is not idx=path", raw), nil)
		}
		idx, err := strconv.Atoi(strings.TrimSpace(idxText))
		if err != nil || idx < 0 {
			return nil, services.Wrap(services.ErrValidation, "cli", "parse --replace", fmt.Sprintf("invalid subtitle index %q", idxText), nil)
		}
		path = strings.TrimSpace(path)
		if path == "" {
			return nil, services.Wrap(services.ErrValidation, "cli", "parse --replace", fmt.Sprintf("missing scene path for index %d", idx), nil)
		}
		if _, dup := scenes[idx]; dup {
			continue
		}
		scenes[idx] = path
	}
	return scenes, nil
}

type variationSource struct {
	pairs    []string
	project  string
	clipsDir string
}

// resolveVariations picks scenes from explicit --replace pairs, then the
// registry project, then the clips directory.
func resolveVariations(ctx context.Context, cc *commandContext, src variationSource) ([]pipeline.Variation, error) {
	scenes, err := parseReplacePairs(src.pairs)
	if err != nil {
		return nil, err
	}
	if len(scenes) > 0 {
		return []pipeline.Variation{{Number: 1, Scenes: scenes}}, nil
	}

	if strings.TrimSpace(src.project) != "" {
		store, err := cc.registry()
		if err != nil {
			return nil, err
		}
		reps, err := store.Replacements(ctx, src.project)
		if err != nil {
			return nil, err
		}
		if len(reps) == 0 {
			return nil, services.Wrap(services.ErrValidation, "cli", "resolve scenes", fmt.Sprintf("project %q has no replacements", src.project), nil)
		}
		return []pipeline.Variation{pipeline.RegistryVariation(reps)}, nil
	}

	dir := strings.TrimSpace(src.clipsDir)
	if dir == "" {
		cfg, err := cc.ensureConfig()
		if err != nil {
			return nil, err
		}
		dir = cfg.Paths.ClipsDir
	}
	if dir == "" {
		return nil, nil
	}
	return pipeline.Variations(dir, cc.loggerFor())
}

// projectIndices returns the subtitle indices stored for project.
func projectIndices(ctx context.Context, cc *commandContext, project string) ([]int, error) {
	if strings.TrimSpace(project) == "" {
		return nil, nil
	}
	store, err := cc.registry()
	if err != nil {
		return nil, err
	}
	reps, err := store.Replacements(ctx, project)
	if err != nil {
		return nil, err
	}
	return pipeline.RegistryVariation(reps).Indices(), nil
}

// parseSeconds accepts plain seconds ("12.5") or an SRT timecode.
func parseSeconds(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if secs, err := strconv.ParseFloat(value, 64); err == nil {
		if secs < 0 {
			return 0, fmt.Errorf("negative time %q", value)
		}
		return secs, nil
	}
	tc, err := subtitles.ParseTimecode(value)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: want seconds or HH:MM:SS,mmm", value)
	}
	return tc.Seconds(), nil
}

func formatSeconds(secs float64) string {
	return subtitles.FromSeconds(secs).String()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(text string, limit int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if limit <= 0 || len(runes) <= limit {
		return text
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}

func displayProject(project string) string {
	if strings.TrimSpace(project) == "" {
		return registry.DefaultProject
	}
	return project
}
