package pipeline

import (
	"errors"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"cuesplice/internal/fileutil"
	"cuesplice/internal/logging"
	"cuesplice/internal/registry"
	"cuesplice/internal/services"
)

// Variation is one output video: the scenes swapped in, keyed by 0-based
// subtitle index.
type Variation struct {
	Number int `validate:"gt=0"`
	Scenes map[int]string
}

// Indices returns the replaced subtitle indices in ascending order.
func (v Variation) Indices() []int {
	return slices.Sorted(maps.Keys(v.Scenes))
}

// ReplacedIndices returns every subtitle index any variation replaces.
func ReplacedIndices(vars []Variation) []int {
	seen := make(map[int]struct{})
	for _, v := range vars {
		for idx := range v.Scenes {
			seen[idx] = struct{}{}
		}
	}
	return slices.Sorted(maps.Keys(seen))
}

// Variations reads a clips directory laid out as one folder per subtitle,
// named by its 1-based number, each holding .mp4 scenes. Variation k uses the
// k-th scene (by file name) of every folder that has at least k scenes.
// Folders whose name is not a positive number are skipped with a warning.
func Variations(clipsDir string, logger *slog.Logger) ([]Variation, error) {
	logger = logging.NewComponentLogger(logger, "pipeline")
	dirEntries, err := os.ReadDir(clipsDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, services.Wrap(services.ErrNotFound, "splice", "read clips dir", clipsDir, err)
		}
		return nil, services.Wrap(services.ErrIO, "splice", "read clips dir", clipsDir, err)
	}

	var vars []Variation
	for _, dirEntry := range dirEntries {
		if !dirEntry.IsDir() {
			continue
		}
		name := dirEntry.Name()
		number, err := strconv.Atoi(name)
		if err != nil || number < 1 || strings.TrimLeft(name, "0123456789") != "" {
			logging.WarnEvent(logger, "clip folder name is not a subtitle number; skipping", "clip_folder_skipped",
				logging.String("folder", filepath.Join(clipsDir, name)),
			)
			continue
		}

		scenes, err := sceneFiles(filepath.Join(clipsDir, name))
		if err != nil {
			return nil, err
		}
		logger.Debug("replacement scenes found",
			logging.String("folder", name),
			logging.Int("scenes", len(scenes)),
		)
		for k, scene := range scenes {
			for len(vars) <= k {
				vars = append(vars, Variation{Number: len(vars) + 1, Scenes: make(map[int]string)})
			}
			vars[k].Scenes[number-1] = scene
		}
	}
	return vars, nil
}

func sceneFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, services.Wrap(services.ErrIO, "splice", "read clip folder", dir, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".mp4") {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	// ReadDir already sorts by name.
	return out, nil
}

// RegistryVariation turns a project's stored selections into a single variation.
func RegistryVariation(reps []registry.Replacement) Variation {
	v := Variation{Number: 1, Scenes: make(map[int]string, len(reps))}
	for _, rep := range reps {
		v.Scenes[rep.SrtIndex] = rep.ScenePath
	}
	return v
}

// ExportVariation copies v's scenes into clipsDir using the numbered folder
// layout Variations reads. Scenes already inside their folder are left
// alone. It returns the destination paths in subtitle order.
func ExportVariation(v Variation, clipsDir string, logger *slog.Logger) ([]string, error) {
	logger = logging.NewComponentLogger(logger, "pipeline")
	var out []string
	for _, idx := range v.Indices() {
		src := v.Scenes[idx]
		dst := filepath.Join(clipsDir, strconv.Itoa(idx+1), filepath.Base(src))
		if fileutil.SameFile(src, dst) {
			out = append(out, dst)
			continue
		}
		digest, err := fileutil.CopyVerified(src, dst)
		if err != nil {
			return out, services.Wrap(services.ErrIO, "export", "copy scene", src, err)
		}
		logger.Debug("scene exported",
			logging.Int(logging.FieldSegment, idx),
			logging.String("path", dst),
			logging.String("sha256", digest),
		)
		out = append(out, dst)
	}
	return out, nil
}
