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

	"github.com/demula/mksuid/v2"
	"github.com/exaring/otelpgx"
	pgx "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/platform-engineering-labs/skyfed/pkg/model"
)

var tracer trace.Tracer

func init() {
	tracer = otel.Tracer("skyfed/datastore")
}

type DatastorePostgres struct {
	pool    *pgxpool.Pool
	agentID string
	cfg     *model.DatastoreConfig
}

func adminConnString(cfg *model.DatastoreConfig) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/postgres",
		cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.Host, cfg.Postgres.Port)
}

func connString(cfg *model.DatastoreConfig) string {
	connStr := fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
		cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.Database)

	if cfg.Postgres.ConnectionParams != "" {
		connStr = fmt.Sprintf("%s?%s", connStr, cfg.Postgres.ConnectionParams)
	}

	if cfg.Postgres.Schema != "" {
		sep := "?"
		if strings.Contains(connStr, "?") {
			sep = "&"
		}
		connStr = fmt.Sprintf("%s%ssearch_path=%s", connStr, sep, cfg.Postgres.Schema)
	}
	return connStr
}

// This can be only used in tests or in setups where we have access to admin (non-production)
func ensureDatabaseExists(ctx context.Context, cfg *model.DatastoreConfig) error {
	conn, err := pgx.Connect(ctx, adminConnString(cfg))
	if err != nil {
		return fmt.Errorf("failed to connect to admin database: %w", err)
	}

	defer func() {
		if err := conn.Close(ctx); err != nil {
			slog.Error("failed to close connection", "error", err)
		}
	}()

	var exists bool
	query := "SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)"
	if err := conn.QueryRow(ctx, query, cfg.Postgres.Database).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check if database exists: %w", err)
	}

	if !exists {
		_, err = conn.Exec(ctx, fmt.Sprintf("CREATE DATABASE %s", pgx.Identifier{cfg.Postgres.Database}.Sanitize()))
		if err != nil {
			return fmt.Errorf("failed to create database: %w", err)
		}
	}

	return nil
}

// This can be only used in tests or in setups where we have access to admin (non-production)
func NewDatastorePostgresEnsureDatabase(ctx context.Context, cfg *model.DatastoreConfig, agentID string) (*DatastorePostgres, error) {
	if err := ensureDatabaseExists(ctx, cfg); err != nil {
		return nil, err
	}
	return NewDatastorePostgres(ctx, cfg, agentID)
}

func NewDatastorePostgres(ctx context.Context, cfg *model.DatastoreConfig, agentID string) (*DatastorePostgres, error) {
	connStr := connString(cfg)

	migrationDB, err := sql.Open("pgx", connStr)
	if err != nil {
		slog.Error("failed to open database for migrations", "error", err)
		return nil, err
	}
	defer func() {
		if err := migrationDB.Close(); err != nil {
			slog.Warn("failed to close migration database", "error", err)
		}
	}()

	if err = runMigrations(migrationDB, "postgres"); err != nil {
		return nil, err
	}

	poolCfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		slog.Error("failed to parse postgres connection string", "error", err)
		return nil, err
	}
	poolCfg.ConnConfig.Tracer = otelpgx.NewTracer(
		otelpgx.WithDisableConnectionDetailsInAttributes(),
	)

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		slog.Error("failed to connect to PostgreSQL database", "error", err)
		return nil, err
	}

	if err := otelpgx.RecordStats(pool); err != nil {
		slog.Error("failed to start recording pool stats", "error", err)
	}

	slog.Info("Started PostgreSQL datastore", "host", cfg.Postgres.Host, "port", cfg.Postgres.Port, "database", cfg.Postgres.Database, "schema", cfg.Postgres.Schema, "user", cfg.Postgres.User)

	return &DatastorePostgres{pool: pool, agentID: agentID, cfg: cfg}, nil
}

func (d *DatastorePostgres) AuditRequest(ctx context.Context, request model.AuditableRequest) error {
	ctx, span := tracer.Start(ctx, "AuditRequest")
	defer span.End()

	var response *string
	if r, ok := request.Response(); ok {
		response = &r
	}

	query := fmt.Sprintf(`INSERT INTO %s
	(id, timestamp, operation, resource_type, user_id, identity_provider_id, response, agent_id)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`, AuditTable)

	_, err := d.pool.Exec(ctx, query,
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
		slog.Error("failed to store auditable request", "operation", request.Operation(), "error", err)
		return err
	}
	return nil
}

func (d *DatastorePostgres) ListAuditableRequests(ctx context.Context, limit int) ([]model.AuditableRequest, error) {
	ctx, span := tracer.Start(ctx, "ListAuditableRequests")
	defer span.End()

	query := fmt.Sprintf(`SELECT timestamp, operation, resource_type, user_id, identity_provider_id, response
	FROM %s ORDER BY timestamp DESC, id DESC LIMIT $1`, AuditTable)

	rows, err := d.pool.Query(ctx, query, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []model.AuditableRequest
	for rows.Next() {
		var (
			ts            time.Time
			operation, rt string
			userID, idpID string
			response      *string
		)
		if err := rows.Scan(&ts, &operation, &rt, &userID, &idpID, &response); err != nil {
			return nil, fmt.Errorf("failed to scan auditable request: %w", err)
		}
		requests = append(requests, model.RestoreAuditableRequest(ts, model.Operation(operation), model.ResourceType(rt), userID, idpID, response))
	}
	return requests, rows.Err()
}

func (d *DatastorePostgres) Close() error {
	d.pool.Close()
	return nil
}

// CleanUp drops the database of the store. Only for tests.
func (d *DatastorePostgres) CleanUp() error {
	d.pool.Close()

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, adminConnString(d.cfg))
	if err != nil {
		return fmt.Errorf("failed to connect to admin database: %w", err)
	}
	defer func() {
		if err := conn.Close(ctx); err != nil {
			slog.Error("failed to close connection", "error", err)
		}
	}()

	_, err = conn.Exec(ctx, fmt.Sprintf("DROP DATABASE IF EXISTS %s", pgx.Identifier{d.cfg.Postgres.Database}.Sanitize()))
	if err != nil {
		return fmt.Errorf("failed to delete database: %w", err)
	}
	return nil
}
