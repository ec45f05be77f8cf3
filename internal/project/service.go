package project

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/siteplan/siteplan/backend-go/internal/catalog"
	"github.com/siteplan/siteplan/backend-go/internal/db"
	"github.com/siteplan/siteplan/backend-go/internal/floorplan"
	"github.com/siteplan/siteplan/backend-go/internal/typeid"
)

var (
	ErrNotFound          = errors.New("project not found")
	ErrForbidden         = errors.New("forbidden")
	ErrNotMember         = errors.New("not a project member")
	ErrUserNotFound      = errors.New("user not found")
	ErrCannotRemoveOwner = errors.New("cannot remove project owner")
	ErrInvalidFloorplan  = errors.New("invalid floorplan")
)

// Store is the slice of the query layer the project service needs.
type Store interface {
	CreateProject(ctx context.Context, arg db.CreateProjectParams) (db.Project, error)
	GetProject(ctx context.Context, id string) (db.Project, error)
	ListProjectsForUser(ctx context.Context, userID string) ([]db.Project, error)
	TouchProject(ctx context.Context, id string) error
	DeleteProject(ctx context.Context, id string) error
	AddProjectMember(ctx context.Context, arg db.AddProjectMemberParams) error
	GetProjectMember(ctx context.Context, arg db.GetProjectMemberParams) (db.ProjectMember, error)
	ListProjectMembers(ctx context.Context, projectID string) ([]db.ProjectMemberRow, error)
	RemoveProjectMember(ctx context.Context, arg db.RemoveProjectMemberParams) error
	GetUserByEmail(ctx context.Context, email string) (db.User, error)
	CreateSnapshot(ctx context.Context, arg db.CreateSnapshotParams) (db.FloorplanSnapshot, error)
	GetLatestSnapshot(ctx context.Context, projectID string) (db.FloorplanSnapshot, error)
}

type Service struct {
	store   Store
	catalog *catalog.Catalog
}

func NewService(store Store, c *catalog.Catalog) *Service {
	if c == nil {
		c = catalog.Default()
	}
	return &Service{store: store, catalog: c}
}

type Project struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	OwnerID   string `json:"ownerId"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

type Member struct {
	UserID      string `json:"userId"`
	Role        string `json:"role"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
}

// Create makes a project owned by ownerID and seeds version 1 of its
// floorplan with a single empty floor.
func (s *Service) Create(ctx context.Context, name, ownerID string) (*Project, error) {
	projectID := typeid.NewProjectID()

	dbProj, err := s.store.CreateProject(ctx, db.CreateProjectParams{
		ID:      projectID,
		Name:    name,
		OwnerID: ownerID,
	})
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	err = s.store.AddProjectMember(ctx, db.AddProjectMemberParams{
		ProjectID: projectID,
		UserID:    ownerID,
		Role:      db.ProjectRoleOwner,
	})
	if err != nil {
		return nil, fmt.Errorf("add owner as member: %w", err)
	}

	if _, err := s.SaveFloorplan(ctx, projectID, floorplan.NewEmpty()); err != nil {
		return nil, fmt.Errorf("create initial snapshot: %w", err)
	}

	return dbProjectToProject(dbProj), nil
}

func (s *Service) Get(ctx context.Context, projectID, userID string) (*Project, error) {
	if err := s.checkMembership(ctx, projectID, userID); err != nil {
		return nil, err
	}

	dbProj, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get project: %w", err)
	}

	return dbProjectToProject(dbProj), nil
}

func (s *Service) List(ctx context.Context, userID string) ([]Project, error) {
	dbProjects, err := s.store.ListProjectsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	projects := make([]Project, len(dbProjects))
	for i, p := range dbProjects {
		projects[i] = *dbProjectToProject(p)
	}
	return projects, nil
}

func (s *Service) Delete(ctx context.Context, projectID, userID string) error {
	if _, err := s.ownedProject(ctx, projectID, userID); err != nil {
		return err
	}
	return s.store.DeleteProject(ctx, projectID)
}

func (s *Service) InviteByEmail(ctx context.Context, projectID, ownerID, inviteeEmail string) error {
	if _, err := s.ownedProject(ctx, projectID, ownerID); err != nil {
		return err
	}

	invitee, err := s.store.GetUserByEmail(ctx, inviteeEmail)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("find user: %w", err)
	}

	return s.store.AddProjectMember(ctx, db.AddProjectMemberParams{
		ProjectID: projectID,
		UserID:    invitee.ID,
		Role:      db.ProjectRoleEditor,
	})
}

func (s *Service) ListMembers(ctx context.Context, projectID, userID string) ([]Member, error) {
	if err := s.checkMembership(ctx, projectID, userID); err != nil {
		return nil, err
	}

	dbMembers, err := s.store.ListProjectMembers(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}

	members := make([]Member, len(dbMembers))
	for i, m := range dbMembers {
		members[i] = Member{
			UserID:      m.UserID,
			Role:        string(m.Role),
			DisplayName: m.DisplayName,
			Email:       m.Email,
		}
	}
	return members, nil
}

func (s *Service) RemoveMember(ctx context.Context, projectID, ownerID, targetUserID string) error {
	if _, err := s.ownedProject(ctx, projectID, ownerID); err != nil {
		return err
	}
	if targetUserID == ownerID {
		return ErrCannotRemoveOwner
	}

	return s.store.RemoveProjectMember(ctx, db.RemoveProjectMemberParams{
		ProjectID: projectID,
		UserID:    targetUserID,
	})
}

// CheckAccess reports whether userID may open the project.
func (s *Service) CheckAccess(ctx context.Context, projectID, userID string) error {
	return s.checkMembership(ctx, projectID, userID)
}

// LatestFloorplan returns the project name and its newest floorplan.
func (s *Service) LatestFloorplan(ctx context.Context, projectID, userID string) (string, floorplan.FloorplanWithStairs, error) {
	proj, err := s.Get(ctx, projectID, userID)
	if err != nil {
		return "", floorplan.FloorplanWithStairs{}, err
	}
	fp, err := s.LoadFloorplan(ctx, projectID)
	if err != nil {
		return "", floorplan.FloorplanWithStairs{}, err
	}
	return proj.Name, fp, nil
}

// LoadFloorplan reads the newest snapshot without an access check. The
// collaboration hub calls it after the websocket handshake has already
// checked membership.
func (s *Service) LoadFloorplan(ctx context.Context, projectID string) (floorplan.FloorplanWithStairs, error) {
	snap, err := s.store.GetLatestSnapshot(ctx, projectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return floorplan.FloorplanWithStairs{}, ErrNotFound
		}
		return floorplan.FloorplanWithStairs{}, fmt.Errorf("get snapshot: %w", err)
	}

	fp, err := floorplan.Decode(snap.Floorplan)
	if err != nil {
		return floorplan.FloorplanWithStairs{}, fmt.Errorf("snapshot %s: %w", snap.ID, err)
	}
	return fp, nil
}

// SaveFloorplan stores fp as the next snapshot version and returns it.
func (s *Service) SaveFloorplan(ctx context.Context, projectID string, fp floorplan.FloorplanWithStairs) (int32, error) {
	data, err := floorplan.Encode(fp)
	if err != nil {
		return 0, fmt.Errorf("encode floorplan: %w", err)
	}

	nextVersion := int32(1)
	current, err := s.store.GetLatestSnapshot(ctx, projectID)
	switch {
	case err == nil:
		nextVersion = current.Version + 1
	case !errors.Is(err, pgx.ErrNoRows):
		return 0, fmt.Errorf("get snapshot: %w", err)
	}

	_, err = s.store.CreateSnapshot(ctx, db.CreateSnapshotParams{
		ID:        typeid.NewSnapshotID(),
		ProjectID: projectID,
		Version:   nextVersion,
		Floorplan: data,
	})
	if err != nil {
		return 0, fmt.Errorf("create snapshot: %w", err)
	}

	if err := s.store.TouchProject(ctx, projectID); err != nil {
		return 0, fmt.Errorf("touch project: %w", err)
	}
	return nextVersion, nil
}

// ReplaceFloorplan validates data as a floorplan and stores it for a member.
func (s *Service) ReplaceFloorplan(ctx context.Context, projectID, userID string, data []byte) (int32, error) {
	if err := s.checkMembership(ctx, projectID, userID); err != nil {
		return 0, err
	}
	fp, err := floorplan.Decode(data)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidFloorplan, err)
	}
	return s.SaveFloorplan(ctx, projectID, fp)
}

// Validate reports the invalid placements of the newest floorplan.
func (s *Service) Validate(ctx context.Context, projectID, userID string) ([]catalog.Issue, error) {
	if err := s.checkMembership(ctx, projectID, userID); err != nil {
		return nil, err
	}
	fp, err := s.LoadFloorplan(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return s.catalog.Validate(fp.Floorplan), nil
}

func (s *Service) ownedProject(ctx context.Context, projectID, userID string) (db.Project, error) {
	dbProj, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return db.Project{}, ErrNotFound
		}
		return db.Project{}, fmt.Errorf("get project: %w", err)
	}
	if dbProj.OwnerID != userID {
		return db.Project{}, ErrForbidden
	}
	return dbProj, nil
}

func (s *Service) checkMembership(ctx context.Context, projectID, userID string) error {
	_, err := s.store.GetProjectMember(ctx, db.GetProjectMemberParams{
		ProjectID: projectID,
		UserID:    userID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotMember
		}
		return fmt.Errorf("check membership: %w", err)
	}
	return nil
}

func dbProjectToProject(p db.Project) *Project {
	return &Project{
		ID:        p.ID,
		Name:      p.Name,
		OwnerID:   p.OwnerID,
		CreatedAt: p.CreatedAt.Time.Format("2006-01-02T15:04:05Z"),
		UpdatedAt: p.UpdatedAt.Time.Format("2006-01-02T15:04:05Z"),
	}
}
