// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package datastore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/XSAM/otelsql"
	"github.com/demula/mksuid/v2"
	"github.com/mattn/go-sqlite3"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.22.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/platform-engineering-labs/skyfed/internal/util"
	"github.com/platform-engineering-labs/skyfed/pkg/model"
)

var sqliteTracer trace.Tracer

const sqliteOtelDriverName = "sqlite3-otel"

func init() {
	sqliteTracer = otel.Tracer("skyfed/datastore/sqlite")

	sql.Register(sqliteOtelDriverName, otelsql.WrapDriver(&sqlite3.SQLiteDriver{},
		otelsql.WithAttributes(
			semconv.DBSystemSqlite,
		),
		otelsql.WithSpanOptions(otelsql.SpanOptions{
			DisableErrSkip: true,
		}),
	))
}

type DatastoreSQLite struct {
	conn    *sql.DB
	agentID string
}

func NewDatastoreSQLite(ctx context.Context, cfg *model.DatastoreConfig, agentID string) (*DatastoreSQLite, error) {
	isMemoryDb := cfg.Sqlite.FilePath == ":memory:" ||
		strings.HasPrefix(cfg.Sqlite.FilePath, "file::memory:")

	if cfg.Sqlite.FilePath != "" && !isMemoryDb {
		if err := util.EnsureFileFolderHierarchy(cfg.Sqlite.FilePath); err != nil {
			slog.Error("Failed to create datastore folder hierarchy", "error", err)
			return nil, err
		}
	}

	conn, err := sql.Open(sqliteOtelDriverName, cfg.Sqlite.FilePath)
	if err != nil {
		slog.Error("Failed to connect to sqlite database", "error", err)
		return nil, err
	}

	if _, err := conn.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		slog.Error("Failed to enable WAL mode", "error", err)
		_ = conn.Close()
		return nil, err
	}

	if _, err := conn.ExecContext(ctx, "PRAGMA busy_timeout=10000"); err != nil {
		slog.Error("Failed to set busy timeout", "error", err)
		_ = conn.Close()
		return nil, err
	}

	// SQLite does not handle concurrent writers; every audit write goes
	// through one connection.
	conn.SetMaxOpenConns(1)

	if err = runMigrations(conn, "sqlite3"); err != nil {
		_ = conn.Close()
		return nil, err
	}

	slog.Info("Started SQLite datastore", "filePath", cfg.Sqlite.FilePath)

	return &DatastoreSQLite{conn: conn, agentID: agentID}, nil
}

func (d *DatastoreSQLite) AuditRequest(ctx context.Context, request model.AuditableRequest) error {
	ctx, span := sqliteTracer.Start(ctx, "AuditRequest")
	defer span.End()

	var response sql.NullString
	if r, ok := request.Response(); ok {
		response = sql.NullString{String: r, Valid: true}
	}

	query := fmt.Sprintf(`INSERT INTO %s
	(id, timestamp, operation, resource_type, user_id, identity_provider_id, response, agent_id)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, AuditTable)

	_, err := d.conn.ExecContext(ctx, query,
		mksuid.New().String(),
		request.Timestamp().UTC(),
		string(request.Operation()),
		string(request.ResourceType()),
		request.UserID(),
		request.IdentityProviderID(),
		response,
		d.agentID,
	)
	if err != nil {
		slog.Error("Failed to store auditable request", "operation", request.Operation(), "error", err)
		return err
	}
	return nil
}

func (d *DatastoreSQLite) ListAuditableRequests(ctx context.Context, limit int) ([]model.AuditableRequest, error) {
	ctx, span := sqliteTracer.Start(ctx, "ListAuditableRequests")
	defer span.End()

	query := fmt.Sprintf(`SELECT timestamp, operation, resource_type, user_id, identity_provider_id, response
	FROM %s ORDER BY timestamp DESC, id DESC LIMIT ?`, AuditTable)

	rows, err := d.conn.QueryContext(ctx, query, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var requests []model.AuditableRequest
	for rows.Next() {
		var (
			ts            time.Time
			operation, rt string
			userID, idpID string
			response      sql.NullString
		)
		if err := rows.Scan(&ts, &operation, &rt, &userID, &idpID, &response); err != nil {
			return nil, fmt.Errorf("failed to scan auditable request: %w", err)
		}
		var r *string
		if response.Valid {
			r = &response.String
		}
		requests = append(requests, model.RestoreAuditableRequest(ts, model.Operation(operation), model.ResourceType(rt), userID, idpID, r))
	}
	return requests, rows.Err()
}

func (d *DatastoreSQLite) Close() error {
	return d.conn.Close()
}

// CleanUp exists for symmetry with the Postgres store in tests.
func (d *DatastoreSQLite) CleanUp() error {
	return nil
}
