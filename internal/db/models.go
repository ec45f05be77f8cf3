package db

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type ProjectRole string

const (
	ProjectRoleOwner  ProjectRole = "owner"
	ProjectRoleEditor ProjectRole = "editor"
	ProjectRoleViewer ProjectRole = "viewer"
)

type User struct {
	ID          string
	Email       string
	Password    string
	DisplayName string
	CreatedAt   pgtype.Timestamptz
}

type Project struct {
	ID        string
	Name      string
	OwnerID   string
	CreatedAt pgtype.Timestamptz
	UpdatedAt pgtype.Timestamptz
}

type ProjectMember struct {
	ProjectID string
	UserID    string
	Role      ProjectRole
	CreatedAt pgtype.Timestamptz
}

// ProjectMemberRow is a member joined with its user record.
type ProjectMemberRow struct {
	UserID      string
	Role        ProjectRole
	DisplayName string
	Email       string
}

type FloorplanSnapshot struct {
	ID        string
	ProjectID string
	Version   int32
	Floorplan []byte
	CreatedAt pgtype.Timestamptz
}
