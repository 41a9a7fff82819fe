package registry

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"cuesplice/internal/services"
	"cuesplice/internal/textutil"
)

// projectName folds name into its stored token; blank names map to the
// default project.
func projectName(name string) string {
	if token := textutil.ProjectToken(name); token != "" {
		return token
	}
	return DefaultProject
}

func (s *Store) ensureProject(ctx context.Context, name string) (int64, error) {
	ts := now()
	if _, err := s.execWithRetry(ctx,
		`INSERT INTO projects (name, created_at, updated_at) VALUES (?, ?, ?)
         ON CONFLICT(name) DO NOTHING`,
		name, ts, ts,
	); err != nil {
		return 0, fmt.Errorf("insert project: %w", err)
	}
	var id int64
	if err := s.db.QueryRowContext(ctx, `SELECT id FROM projects WHERE name = ?`, name).Scan(&id); err != nil {
		return 0, fmt.Errorf("lookup project: %w", err)
	}
	return id, nil
}

func (s *Store) touchProject(ctx context.Context, id int64) error {
	_, err := s.execWithRetry(ctx, `UPDATE projects SET updated_at = ? WHERE id = ?`, now(), id)
	return err
}

// AddReplacement records rep for project. It reports false when the project
// already has a replacement for that subtitle index; the existing entry is
// kept.
func (s *Store) AddReplacement(ctx context.Context, project string, rep Replacement) (bool, error) {
	ctx = ensureContext(ctx)
	rep.ScenePath = strings.TrimSpace(rep.ScenePath)
	if err := services.ValidateStruct("registry", rep); err != nil {
		return false, err
	}
	id, err := s.ensureProject(ctx, projectName(project))
	if err != nil {
		return false, services.Wrap(services.ErrIO, "registry", "add replacement", project, err)
	}
	res, err := s.execWithRetry(ctx,
		`INSERT INTO replacements (project_id, srt_index, scene_path, created_at) VALUES (?, ?, ?, ?)
         ON CONFLICT(project_id, srt_index) DO NOTHING`,
		id, rep.SrtIndex, rep.ScenePath, now(),
	)
	if err != nil {
		return false, services.Wrap(services.ErrIO, "registry", "add replacement", project, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, services.Wrap(services.ErrIO, "registry", "add replacement", "rows affected", err)
	}
	if n == 0 {
		return false, nil
	}
	if err := s.touchProject(ctx, id); err != nil {
		return true, services.Wrap(services.ErrIO, "registry", "add replacement", "touch project", err)
	}
	return true, nil
}

// Replacements lists project's replacements ordered by subtitle index. An
// unknown project has none.
func (s *Store) Replacements(ctx context.Context, project string) ([]Replacement, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.srt_index, r.scene_path, r.created_at
         FROM replacements r JOIN projects p ON p.id = r.project_id
         WHERE p.name = ?
         ORDER BY r.srt_index`,
		projectName(project),
	)
	if err != nil {
		return nil, services.Wrap(services.ErrIO, "registry", "list replacements", project, err)
	}
	defer rows.Close()

	var out []Replacement
	for rows.Next() {
		var (
			rep     Replacement
			created sql.NullString
		)
		if err := rows.Scan(&rep.SrtIndex, &rep.ScenePath, &created); err != nil {
			return nil, services.Wrap(services.ErrIO, "registry", "list replacements", "scan", err)
		}
		rep.CreatedAt = parseTime(created)
		out = append(out, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, services.Wrap(services.ErrIO, "registry", "list replacements", "iterate", err)
	}
	return out, nil
}

// RemoveReplacement deletes project's replacement for srtIndex and reports
// whether one existed.
func (s *Store) RemoveReplacement(ctx context.Context, project string, srtIndex int) (bool, error) {
	res, err := s.execWithRetry(ctx,
		`DELETE FROM replacements
         WHERE srt_index = ? AND project_id = (SELECT id FROM projects WHERE name = ?)`,
		srtIndex, projectName(project),
	)
	if err != nil {
		return false, services.Wrap(services.ErrIO, "registry", "remove replacement", project, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, services.Wrap(services.ErrIO, "registry", "remove replacement", "rows affected", err)
	}
	return n > 0, nil
}

// ClearReplacements removes every replacement for project and returns how
// many were deleted.
func (s *Store) ClearReplacements(ctx context.Context, project string) (int64, error) {
	res, err := s.execWithRetry(ctx,
		`DELETE FROM replacements WHERE project_id = (SELECT id FROM projects WHERE name = ?)`,
		projectName(project),
	)
	if err != nil {
		return 0, services.Wrap(services.ErrIO, "registry", "clear replacements", project, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, services.Wrap(services.ErrIO, "registry", "clear replacements", "rows affected", err)
	}
	return n, nil
}

// Projects lists every project with its replacement count.
func (s *Store) Projects(ctx context.Context) ([]Project, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT p.name, p.updated_at, COUNT(r.id)
         FROM projects p LEFT JOIN replacements r ON r.project_id = p.id
         GROUP BY p.id
         ORDER BY p.name`,
	)
	if err != nil {
		return nil, services.Wrap(services.ErrIO, "registry", "list projects", "", err)
	}
	defer rows.Close()

	var out []Project
	for rows.Next() {
		var (
			p       Project
			updated sql.NullString
		)
		if err := rows.Scan(&p.Name, &updated, &p.Replacements); err != nil {
			return nil, services.Wrap(services.ErrIO, "registry", "list projects", "scan", err)
		}
		p.UpdatedAt = parseTime(updated)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, services.Wrap(services.ErrIO, "registry", "list projects", "iterate", err)
	}
	return out, nil
}

// DeleteProject removes project and its replacements. Run history is kept.
func (s *Store) DeleteProject(ctx context.Context, project string) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM projects WHERE name = ?`, projectName(project))
	if err != nil {
		return false, services.Wrap(services.ErrIO, "registry", "delete project", project, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, services.Wrap(services.ErrIO, "registry", "delete project", "rows affected", err)
	}
	return n > 0, nil
}
