package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/1002527441/workflow-runtime/internal/workflow"
)

// PGStore is a Postgres-backed Store, grounded directly on the teacher's
// PGStore: database/sql over pgx/v5/stdlib, jsonb payload columns, and an
// idempotent migrate() run once at construction.
type PGStore struct {
	db *sql.DB
}

// NewPGStore opens dsn, pings it, and runs migrations.
func NewPGStore(ctx context.Context, dsn string) (*PGStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("store: dsn is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	s := &PGStore{db: db}
	if err := s.migrate(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PGStore) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
create table if not exists workflow_definitions (
  id text primary key,
  payload jsonb not null,
  created_at timestamptz not null
);
create table if not exists workflow_definition_versions (
  id text primary key,
  definition_id text not null,
  version int not null,
  payload jsonb not null,
  created_at timestamptz not null
);
create table if not exists workflow_instances (
  id text primary key,
  definition_id text not null,
  version int not null,
  status text not null,
  payload jsonb not null,
  created_at timestamptz not null,
  updated_at timestamptz not null
);
create table if not exists workflow_instance_logs (
  id bigserial primary key,
  instance_id text not null,
  message text not null,
  created_at timestamptz not null
);
`)
	return err
}

func (s *PGStore) SaveDefinition(ctx context.Context, def workflow.WorkflowDefinition) (DefinitionVersion, error) {
	b, err := json.Marshal(def)
	if err != nil {
		return DefinitionVersion{}, err
	}
	if _, err := s.db.ExecContext(ctx, `insert into workflow_definitions (id, payload, created_at) values ($1,$2,$3)
on conflict (id) do update set payload = excluded.payload`, def.ID, b, time.Now().UTC()); err != nil {
		return DefinitionVersion{}, err
	}

	v := DefinitionVersion{
		ID:           newVersionID(def.ID, def.Version),
		DefinitionID: def.ID,
		Version:      def.Version,
		Payload:      def,
		CreatedAt:    time.Now().UTC(),
	}
	_, err = s.db.ExecContext(ctx, `insert into workflow_definition_versions (id, definition_id, version, payload, created_at)
values ($1,$2,$3,$4,$5)
on conflict (id) do update set payload = excluded.payload`, v.ID, v.DefinitionID, v.Version, b, v.CreatedAt)
	if err != nil {
		return DefinitionVersion{}, err
	}
	return v, nil
}

func (s *PGStore) ListDefinitions(ctx context.Context) ([]workflow.WorkflowDefinition, error) {
	rows, err := s.db.QueryContext(ctx, `select payload from workflow_definitions order by created_at desc`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []workflow.WorkflowDefinition
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			continue
		}
		var def workflow.WorkflowDefinition
		if err := json.Unmarshal(raw, &def); err != nil {
			continue
		}
		out = append(out, def)
	}
	return out, nil
}

func (s *PGStore) GetDefinition(ctx context.Context, id string) (workflow.WorkflowDefinition, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx, `select payload from workflow_definitions where id=$1`, id).Scan(&raw)
	if err != nil {
		if err == sql.ErrNoRows {
			return workflow.WorkflowDefinition{}, ErrNotFound
		}
		return workflow.WorkflowDefinition{}, err
	}
	var def workflow.WorkflowDefinition
	if err := json.Unmarshal(raw, &def); err != nil {
		return workflow.WorkflowDefinition{}, err
	}
	return def, nil
}

func (s *PGStore) ListVersions(ctx context.Context, definitionID string) ([]DefinitionVersion, error) {
	rows, err := s.db.QueryContext(ctx, `select id, version, payload, created_at from workflow_definition_versions where definition_id=$1 order by version asc`, definitionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []DefinitionVersion
	for rows.Next() {
		var id string
		var version int
		var raw []byte
		var created time.Time
		if err := rows.Scan(&id, &version, &raw, &created); err != nil {
			continue
		}
		var def workflow.WorkflowDefinition
		if err := json.Unmarshal(raw, &def); err != nil {
			continue
		}
		out = append(out, DefinitionVersion{ID: id, DefinitionID: definitionID, Version: version, Payload: def, CreatedAt: created})
	}
	return out, nil
}

func (s *PGStore) GetVersion(ctx context.Context, definitionID string, version int) (workflow.WorkflowDefinition, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx, `select payload from workflow_definition_versions where definition_id=$1 and version=$2`, definitionID, version).Scan(&raw)
	if err != nil {
		if err == sql.ErrNoRows {
			return workflow.WorkflowDefinition{}, ErrNotFound
		}
		return workflow.WorkflowDefinition{}, err
	}
	var def workflow.WorkflowDefinition
	if err := json.Unmarshal(raw, &def); err != nil {
		return workflow.WorkflowDefinition{}, err
	}
	return def, nil
}

func (s *PGStore) SaveInstance(ctx context.Context, inst *workflow.WorkflowInstance) error {
	inst.UpdatedAt = time.Now().UTC()
	b, err := json.Marshal(inst)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `insert into workflow_instances (id, definition_id, version, status, payload, created_at, updated_at)
values ($1,$2,$3,$4,$5,$6,$7)
on conflict (id) do update set status = excluded.status, payload = excluded.payload, updated_at = excluded.updated_at`,
		inst.ID, inst.WorkflowDefinitionID, inst.Version, string(inst.Status), b, inst.CreatedAt, inst.UpdatedAt)
	return err
}

func (s *PGStore) GetInstance(ctx context.Context, id string) (*workflow.WorkflowInstance, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx, `select payload from workflow_instances where id=$1`, id).Scan(&raw)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var inst workflow.WorkflowInstance
	if err := json.Unmarshal(raw, &inst); err != nil {
		return nil, err
	}
	return &inst, nil
}

func (s *PGStore) ListInstances(ctx context.Context, definitionID string) ([]*workflow.WorkflowInstance, error) {
	rows, err := s.db.QueryContext(ctx, `select payload from workflow_instances where definition_id=$1 order by created_at desc`, definitionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*workflow.WorkflowInstance
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			continue
		}
		var inst workflow.WorkflowInstance
		if err := json.Unmarshal(raw, &inst); err != nil {
			continue
		}
		out = append(out, &inst)
	}
	return out, nil
}

func (s *PGStore) CountActiveInstances(ctx context.Context, definitionID string, version int) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `select count(*) from workflow_instances where definition_id=$1 and version=$2 and status in ($3,$4,$5)`,
		definitionID, version, string(workflow.StatusRunning), string(workflow.StatusSuspended), string(workflow.StatusIdle)).Scan(&count)
	return count, err
}

func (s *PGStore) AppendLog(ctx context.Context, instanceID, message string) error {
	_, err := s.db.ExecContext(ctx, `insert into workflow_instance_logs (instance_id, message, created_at) values ($1,$2,$3)`,
		instanceID, message, time.Now().UTC())
	return err
}

func (s *PGStore) ListLogs(ctx context.Context, instanceID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `select message from workflow_instance_logs where instance_id=$1 order by id asc`, instanceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var msg string
		if err := rows.Scan(&msg); err != nil {
			continue
		}
		out = append(out, msg)
	}
	return out, nil
}

func newVersionID(definitionID string, version int) string {
	return fmt.Sprintf("%s_v%d", definitionID, version)
}
