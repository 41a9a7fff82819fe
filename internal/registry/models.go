package registry

import "time"

// DefaultProject is used when a command does not name a project.
const DefaultProject = "default"

// Replacement maps a subtitle index to the scene clip shown in its place.
type Replacement struct {
	SrtIndex  int       `json:"srt_index" validate:"gte=0"`
	ScenePath string    `json:"scene_path" validate:"required"`
	CreatedAt time.Time `json:"created_at"`
}

// Project summarizes one project's selections.
type Project struct {
	Name         string    `json:"name"`
	Replacements int       `json:"replacements"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RunStatus is the lifecycle state of a pipeline run.
type RunStatus string

const (
	RunRunning     RunStatus = "running"
	RunSucceeded   RunStatus = "succeeded"
	RunFailed      RunStatus = "failed"
	RunInterrupted RunStatus = "interrupted"
)

// RunSpec describes a run being started.
type RunSpec struct {
	Project      string
	VideoPath    string
	SubtitlePath string
}

// Run is a recorded pipeline invocation.
type Run struct {
	ID           string     `json:"id"`
	Project      string     `json:"project"`
	Status       RunStatus  `json:"status"`
	VideoPath    string     `json:"video_path,omitempty"`
	SubtitlePath string     `json:"subtitle_path,omitempty"`
	Outputs      []string   `json:"outputs,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	ErrorClass   string     `json:"error_class,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
}

// Elapsed returns how long the run took, or has taken so far.
func (r Run) Elapsed() time.Duration {
	if r.FinishedAt != nil {
		return r.FinishedAt.Sub(r.StartedAt)
	}
	return time.Since(r.StartedAt)
}
