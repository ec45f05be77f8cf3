package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx pgx.Tx) *Queries {
	return &Queries{db: tx}
}

// --- Users ---

const createUser = `
INSERT INTO users (id, email, password, display_name)
VALUES ($1, $2, $3, $4)
RETURNING id, email, password, display_name, created_at`

type CreateUserParams struct {
	ID          string
	Email       string
	Password    string
	DisplayName string
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRow(ctx, createUser, arg.ID, arg.Email, arg.Password, arg.DisplayName)
	var i User
	err := row.Scan(&i.ID, &i.Email, &i.Password, &i.DisplayName, &i.CreatedAt)
	return i, err
}

const getUserByEmail = `
SELECT id, email, password, display_name, created_at
FROM users WHERE email = $1`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := q.db.QueryRow(ctx, getUserByEmail, email)
	var i User
	err := row.Scan(&i.ID, &i.Email, &i.Password, &i.DisplayName, &i.CreatedAt)
	return i, err
}

const getUserByID = `
SELECT id, email, password, display_name, created_at
FROM users WHERE id = $1`

func (q *Queries) GetUserByID(ctx context.Context, id string) (User, error) {
	row := q.db.QueryRow(ctx, getUserByID, id)
	var i User
	err := row.Scan(&i.ID, &i.Email, &i.Password, &i.DisplayName, &i.CreatedAt)
	return i, err
}

// --- Projects ---

const createProject = `
INSERT INTO projects (id, name, owner_id)
VALUES ($1, $2, $3)
RETURNING id, name, owner_id, created_at, updated_at`

type CreateProjectParams struct {
	ID      string
	Name    string
	OwnerID string
}

func (q *Queries) CreateProject(ctx context.Context, arg CreateProjectParams) (Project, error) {
	row := q.db.QueryRow(ctx, createProject, arg.ID, arg.Name, arg.OwnerID)
	var i Project
	err := row.Scan(&i.ID, &i.Name, &i.OwnerID, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const getProject = `
SELECT id, name, owner_id, created_at, updated_at
FROM projects WHERE id = $1`

func (q *Queries) GetProject(ctx context.Context, id string) (Project, error) {
	row := q.db.QueryRow(ctx, getProject, id)
	var i Project
	err := row.Scan(&i.ID, &i.Name, &i.OwnerID, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const listProjectsForUser = `
SELECT p.id, p.name, p.owner_id, p.created_at, p.updated_at
FROM projects p
JOIN project_members m ON m.project_id = p.id
WHERE m.user_id = $1
ORDER BY p.updated_at DESC`

func (q *Queries) ListProjectsForUser(ctx context.Context, userID string) ([]Project, error) {
	rows, err := q.db.Query(ctx, listProjectsForUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []Project{}
	for rows.Next() {
		var i Project
		if err := rows.Scan(&i.ID, &i.Name, &i.OwnerID, &i.CreatedAt, &i.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const touchProject = `UPDATE projects SET updated_at = now() WHERE id = $1`

func (q *Queries) TouchProject(ctx context.Context, id string) error {
	_, err := q.db.Exec(ctx, touchProject, id)
	return err
}

const deleteProject = `DELETE FROM projects WHERE id = $1`

func (q *Queries) DeleteProject(ctx context.Context, id string) error {
	_, err := q.db.Exec(ctx, deleteProject, id)
	return err
}

// --- Members ---

const addProjectMember = `
INSERT INTO project_members (project_id, user_id, role)
VALUES ($1, $2, $3::project_role)
ON CONFLICT (project_id, user_id) DO UPDATE SET role = EXCLUDED.role`

type AddProjectMemberParams struct {
	ProjectID string
	UserID    string
	Role      ProjectRole
}

func (q *Queries) AddProjectMember(ctx context.Context, arg AddProjectMemberParams) error {
	_, err := q.db.Exec(ctx, addProjectMember, arg.ProjectID, arg.UserID, string(arg.Role))
	return err
}

const getProjectMember = `
SELECT project_id, user_id, role::text, created_at
FROM project_members WHERE project_id = $1 AND user_id = $2`

type GetProjectMemberParams struct {
	ProjectID string
	UserID    string
}

func (q *Queries) GetProjectMember(ctx context.Context, arg GetProjectMemberParams) (ProjectMember, error) {
	row := q.db.QueryRow(ctx, getProjectMember, arg.ProjectID, arg.UserID)
	var i ProjectMember
	var role string
	err := row.Scan(&i.ProjectID, &i.UserID, &role, &i.CreatedAt)
	i.Role = ProjectRole(role)
	return i, err
}

const listProjectMembers = `
SELECT m.user_id, m.role::text, u.display_name, u.email
FROM project_members m
JOIN users u ON u.id = m.user_id
WHERE m.project_id = $1
ORDER BY m.created_at`

func (q *Queries) ListProjectMembers(ctx context.Context, projectID string) ([]ProjectMemberRow, error) {
	rows, err := q.db.Query(ctx, listProjectMembers, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []ProjectMemberRow{}
	for rows.Next() {
		var i ProjectMemberRow
		var role string
		if err := rows.Scan(&i.UserID, &role, &i.DisplayName, &i.Email); err != nil {
			return nil, err
		}
		i.Role = ProjectRole(role)
		items = append(items, i)
	}
	return items, rows.Err()
}

const removeProjectMember = `DELETE FROM project_members WHERE project_id = $1 AND user_id = $2`

type RemoveProjectMemberParams struct {
	ProjectID string
	UserID    string
}

func (q *Queries) RemoveProjectMember(ctx context.Context, arg RemoveProjectMemberParams) error {
	_, err := q.db.Exec(ctx, removeProjectMember, arg.ProjectID, arg.UserID)
	return err
}

// --- Floorplan snapshots ---

const createSnapshot = `
INSERT INTO floorplan_snapshots (id, project_id, version, floorplan)
VALUES ($1, $2, $3, $4)
RETURNING id, project_id, version, floorplan, created_at`

type CreateSnapshotParams struct {
	ID        string
	ProjectID string
	Version   int32
	Floorplan []byte
}

func (q *Queries) CreateSnapshot(ctx context.Context, arg CreateSnapshotParams) (FloorplanSnapshot, error) {
	row := q.db.QueryRow(ctx, createSnapshot, arg.ID, arg.ProjectID, arg.Version, arg.Floorplan)
	var i FloorplanSnapshot
	err := row.Scan(&i.ID, &i.ProjectID, &i.Version, &i.Floorplan, &i.CreatedAt)
	return i, err
}

const getLatestSnapshot = `
SELECT id, project_id, version, floorplan, created_at
FROM floorplan_snapshots
WHERE project_id = $1
ORDER BY version DESC
LIMIT 1`

func (q *Queries) GetLatestSnapshot(ctx context.Context, projectID string) (FloorplanSnapshot, error) {
	row := q.db.QueryRow(ctx, getLatestSnapshot, projectID)
	var i FloorplanSnapshot
	err := row.Scan(&i.ID, &i.ProjectID, &i.Version, &i.Floorplan, &i.CreatedAt)
	return i, err
}
