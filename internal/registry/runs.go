package registry

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"cuesplice/internal/services"
)

var errNoRun = errors.New("run not found")

const runColumns = `id, project, status, video_path, subtitle_path, outputs_json,
    error_message, error_class, started_at, finished_at`

// StartRun records a new running pipeline run with a fresh id.
func (s *Store) StartRun(ctx context.Context, spec RunSpec) (*Run, error) {
	ctx = ensureContext(ctx)
	run := &Run{
		ID:           uuid.NewString(),
		Project:      projectName(spec.Project),
		Status:       RunRunning,
		VideoPath:    spec.VideoPath,
		SubtitlePath: spec.SubtitlePath,
		StartedAt:    time.Now().UTC(),
	}
	if _, err := s.execWithRetry(ctx,
		`INSERT INTO runs (id, project, status, video_path, subtitle_path, started_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Project, run.Status,
		nullableString(run.VideoPath), nullableString(run.SubtitlePath),
		run.StartedAt.Format(timeLayout),
	); err != nil {
		return nil, services.Wrap(services.ErrIO, "registry", "start run", run.Project, err)
	}
	return run, nil
}

// FinishRun marks run id succeeded with outputs, or failed when runErr is set.
func (s *Store) FinishRun(ctx context.Context, id string, outputs []string, runErr error) error {
	status := RunSucceeded
	var message, class any
	if runErr != nil {
		status = RunFailed
		message = runErr.Error()
		class = string(services.Classify(runErr))
	}
	var outputsJSON any
	if len(outputs) > 0 {
		data, err := json.Marshal(outputs)
		if err != nil {
			return fmt.Errorf("marshal outputs: %w", err)
		}
		outputsJSON = string(data)
	}
	res, err := s.execWithRetry(ctx,
		`UPDATE runs SET status = ?, outputs_json = ?, error_message = ?, error_class = ?, finished_at = ?
         WHERE id = ?`,
		status, outputsJSON, message, class, now(), id,
	)
	if err != nil {
		return services.Wrap(services.ErrIO, "registry", "finish run", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return services.Wrap(services.ErrNotFound, "registry", "finish run", id, errNoRun)
	}
	return nil
}

// GetRun fetches a run by id. A missing run returns nil without error.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, services.Wrap(services.ErrIO, "registry", "get run", id, err)
	}
	return run, nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	ctx = ensureContext(ctx)
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, services.Wrap(services.ErrIO, "registry", "list runs", "", err)
	}
	defer rows.Close()
	var out []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, services.Wrap(services.ErrIO, "registry", "list runs", "scan", err)
		}
		out = append(out, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, services.Wrap(services.ErrIO, "registry", "list runs", "iterate", err)
	}
	return out, nil
}

// MarkInterrupted flags runs still marked running, left behind by a process
// that died, and returns how many were updated.
func (s *Store) MarkInterrupted(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx,
		`UPDATE runs SET status = ?, finished_at = ? WHERE status = ?`,
		RunInterrupted, now(), RunRunning,
	)
	if err != nil {
		return 0, services.Wrap(services.ErrIO, "registry", "mark interrupted", "", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, services.Wrap(services.ErrIO, "registry", "mark interrupted", "rows affected", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var (
		run                                  Run
		status                               string
		video, subtitle, outputs, msg, class sql.NullString
		started, finished                    sql.NullString
	)
	if err := row.Scan(&run.ID, &run.Project, &status, &video, &subtitle, &outputs,
		&msg, &class, &started, &finished); err != nil {
		return nil, err
	}
	run.Status = RunStatus(status)
	run.VideoPath = video.String
	run.SubtitlePath = subtitle.String
	run.ErrorMessage = msg.String
	run.ErrorClass = class.String
	run.StartedAt = parseTime(started)
	if finished.Valid {
		t := parseTime(finished)
		run.FinishedAt = &t
	}
	if outputs.Valid && outputs.String != "" {
		if err := json.Unmarshal([]byte(outputs.String), &run.Outputs); err != nil {
			return nil, fmt.Errorf("decode outputs: %w", err)
		}
	}
	return &run, nil
}
