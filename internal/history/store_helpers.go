package history

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const renderColumns = "id, session_id, project, output, status, stage, resolution, duration_seconds, sources, pages, warnings_json, error_message, output_bytes, archive_path, started_at, finished_at"

func scanRender(scanner interface{ Scan(dest ...any) error }) (*Render, error) {
	var (
		r           Render
		project     sql.NullString
		status      string
		stage       sql.NullString
		resolution  sql.NullString
		warnings    sql.NullString
		errorMsg    sql.NullString
		archivePath sql.NullString
		startedRaw  string
		finishedRaw sql.NullString
	)
	if err := scanner.Scan(
		&r.ID,
		&r.SessionID,
		&project,
		&r.Output,
		&status,
		&stage,
		&resolution,
		&r.DurationSeconds,
		&r.Sources,
		&r.Pages,
		&warnings,
		&errorMsg,
		&r.OutputBytes,
		&archivePath,
		&startedRaw,
		&finishedRaw,
	); err != nil {
		return nil, err
	}
	r.Project = project.String
	r.Status = Status(status)
	r.Stage = stage.String
	r.Resolution = resolution.String
	r.ErrorMessage = errorMsg.String
	r.ArchivePath = archivePath.String
	if warnings.Valid && warnings.String != "" {
		if err := json.Unmarshal([]byte(warnings.String), &r.Warnings); err != nil {
			return nil, fmt.Errorf("decode warnings: %w", err)
		}
	}
	if started, err := parseTimeString(startedRaw); err == nil {
		r.StartedAt = started
	}
	if finishedRaw.Valid {
		if finished, err := parseTimeString(finishedRaw.String); err == nil {
			r.FinishedAt = finished
		}
	}
	return &r, nil
}

func encodeWarnings(warnings []string) (any, error) {
	if len(warnings) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(warnings)
	if err != nil {
		return nil, fmt.Errorf("encode warnings: %w", err)
	}
	return string(data), nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	return time.Parse(time.RFC3339Nano, value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
