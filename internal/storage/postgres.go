package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/your-org/attend/internal/config"
	"github.com/your-org/attend/internal/models"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(cfg config.DatabaseConfig) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxConns)

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// --- Employees ---

func (s *PostgresStore) CreateEmployee(ctx context.Context, badgeCode, fullName, department, position string) (*models.Employee, error) {
	e := &models.Employee{
		ID:         uuid.New(),
		EmployeeID: badgeCode,
		FullName:   fullName,
		Department: department,
		Position:   position,
		Active:     true,
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO employees (id, employee_id, full_name, department, position, active)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING created_at, updated_at`,
		e.ID, e.EmployeeID, e.FullName, e.Department, e.Position, e.Active,
	).Scan(&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create employee: %w", err)
	}
	return e, nil
}

func (s *PostgresStore) GetEmployee(ctx context.Context, id uuid.UUID) (*models.Employee, error) {
	e := &models.Employee{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, employee_id, full_name, department, position, active, created_at, updated_at
		 FROM employees WHERE id = $1`, id,
	).Scan(&e.ID, &e.EmployeeID, &e.FullName, &e.Department, &e.Position, &e.Active, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get employee: %w", err)
	}
	return e, nil
}

func (s *PostgresStore) GetEmployeeByBadge(ctx context.Context, badgeCode string) (*models.Employee, error) {
	e := &models.Employee{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, employee_id, full_name, department, position, active, created_at, updated_at
		 FROM employees WHERE employee_id = $1`, badgeCode,
	).Scan(&e.ID, &e.EmployeeID, &e.FullName, &e.Department, &e.Position, &e.Active, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get employee by badge: %w", err)
	}
	return e, nil
}

func (s *PostgresStore) ListEmployees(ctx context.Context) ([]models.Employee, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, employee_id, full_name, department, position, active, created_at, updated_at
		 FROM employees ORDER BY full_name`)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	var employees []models.Employee
	for rows.Next() {
		var e models.Employee
		if err := rows.Scan(&e.ID, &e.EmployeeID, &e.FullName, &e.Department, &e.Position, &e.Active, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		employees = append(employees, e)
	}
	return employees, nil
}

func (s *PostgresStore) CountEmbeddings(ctx context.Context, employeeID uuid.UUID) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM face_embeddings WHERE employee_id = $1`, employeeID,
	).Scan(&count)
	return count, err
}

// --- Face embeddings ---

// ListEnrolled returns every active employee with at least one stored
// embedding, each with its full embedding list in enrollment order.
// This is the read model the matcher scans.
func (s *PostgresStore) ListEnrolled(ctx context.Context) ([]models.EnrolledIdentity, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT e.id, e.employee_id, e.full_name, e.department, e.position, e.active,
		        e.created_at, e.updated_at, fe.embedding
		 FROM employees e
		 JOIN face_embeddings fe ON fe.employee_id = e.id
		 WHERE e.active
		 ORDER BY e.id, fe.created_at, fe.id`)
	if err != nil {
		return nil, fmt.Errorf("list enrolled: %w", err)
	}
	defer rows.Close()

	var identities []models.EnrolledIdentity
	index := make(map[uuid.UUID]int)

	for rows.Next() {
		var e models.Employee
		var vec pgvector.Vector
		if err := rows.Scan(&e.ID, &e.EmployeeID, &e.FullName, &e.Department, &e.Position,
			&e.Active, &e.CreatedAt, &e.UpdatedAt, &vec); err != nil {
			return nil, fmt.Errorf("scan enrolled: %w", err)
		}

		i, ok := index[e.ID]
		if !ok {
			i = len(identities)
			index[e.ID] = i
			identities = append(identities, models.EnrolledIdentity{Employee: e})
		}
		identities[i].Embeddings = append(identities[i].Embeddings, vec.Slice())
	}
	return identities, rows.Err()
}

// GetEmbeddings returns one employee's stored embeddings in enrollment order.
func (s *PostgresStore) GetEmbeddings(ctx context.Context, employeeID uuid.UUID) ([][]float32, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT embedding FROM face_embeddings
		 WHERE employee_id = $1 ORDER BY created_at, id`, employeeID)
	if err != nil {
		return nil, fmt.Errorf("get embeddings: %w", err)
	}
	defer rows.Close()

	var embeddings [][]float32
	for rows.Next() {
		var vec pgvector.Vector
		if err := rows.Scan(&vec); err != nil {
			return nil, fmt.Errorf("scan embedding: %w", err)
		}
		embeddings = append(embeddings, vec.Slice())
	}
	return embeddings, rows.Err()
}

// AppendEmbeddings adds a batch of embeddings to one employee atomically.
// The employee row is locked for the duration of the transaction so two
// concurrent enrollments cannot interleave partial lists.
func (s *PostgresStore) AppendEmbeddings(ctx context.Context, employeeID uuid.UUID, embeddings [][]float32, quality []float32) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var locked uuid.UUID
	err = tx.QueryRow(ctx,
		`SELECT id FROM employees WHERE id = $1 FOR UPDATE`, employeeID,
	).Scan(&locked)
	if err != nil {
		if err == pgx.ErrNoRows {
			return fmt.Errorf("employee %s not found", employeeID)
		}
		return fmt.Errorf("lock employee: %w", err)
	}

	for i, emb := range embeddings {
		var q float32
		if i < len(quality) {
			q = quality[i]
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO face_embeddings (id, employee_id, embedding, quality)
			 VALUES ($1, $2, $3, $4)`,
			uuid.New(), employeeID, pgvector.NewVector(emb), q)
		if err != nil {
			return fmt.Errorf("insert embedding %d: %w", i, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ClearEmbeddings deletes all of an employee's embeddings. Embeddings are
// never deleted individually.
func (s *PostgresStore) ClearEmbeddings(ctx context.Context, employeeID uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM face_embeddings WHERE employee_id = $1`, employeeID)
	if err != nil {
		return fmt.Errorf("clear embeddings: %w", err)
	}
	return nil
}

// --- Attendance events ---

func (s *PostgresStore) CreateAttendanceEvent(ctx context.Context, ev *models.AttendanceEvent) error {
	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO attendance_events (id, employee_id, direction, score, snapshot_key, timestamp)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING created_at`,
		ev.ID, ev.EmployeeID, ev.Direction, ev.Score, ev.SnapshotKey, ev.Timestamp,
	).Scan(&ev.CreatedAt)
	if err != nil {
		return fmt.Errorf("create attendance event: %w", err)
	}
	return nil
}

// LastAttendanceEvent returns the employee's most recent event, or nil.
// Used to toggle the check direction.
func (s *PostgresStore) LastAttendanceEvent(ctx context.Context, employeeID uuid.UUID) (*models.AttendanceEvent, error) {
	ev := &models.AttendanceEvent{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, employee_id, direction, score, snapshot_key, timestamp, created_at
		 FROM attendance_events WHERE employee_id = $1
		 ORDER BY timestamp DESC LIMIT 1`, employeeID,
	).Scan(&ev.ID, &ev.EmployeeID, &ev.Direction, &ev.Score, &ev.SnapshotKey, &ev.Timestamp, &ev.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("last attendance event: %w", err)
	}
	return ev, nil
}

func (s *PostgresStore) ListAttendanceEvents(ctx context.Context, employeeID *uuid.UUID, limit int) ([]models.AttendanceEvent, error) {
	if limit <= 0 {
		limit = 50
	}

	var (
		rows pgx.Rows
		err  error
	)
	if employeeID != nil {
		rows, err = s.pool.Query(ctx,
			`SELECT id, employee_id, direction, score, snapshot_key, timestamp, created_at
			 FROM attendance_events WHERE employee_id = $1
			 ORDER BY timestamp DESC LIMIT $2`, *employeeID, limit)
	} else {
		rows, err = s.pool.Query(ctx,
			`SELECT id, employee_id, direction, score, snapshot_key, timestamp, created_at
			 FROM attendance_events ORDER BY timestamp DESC LIMIT $1`, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("list attendance events: %w", err)
	}
	defer rows.Close()

	var events []models.AttendanceEvent
	for rows.Next() {
		var ev models.AttendanceEvent
		if err := rows.Scan(&ev.ID, &ev.EmployeeID, &ev.Direction, &ev.Score, &ev.SnapshotKey, &ev.Timestamp, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan attendance event: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
