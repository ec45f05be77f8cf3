package export

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/siteplan/siteplan/backend-go/internal/catalog"
	"github.com/siteplan/siteplan/backend-go/internal/floorplan"
	"github.com/siteplan/siteplan/backend-go/internal/geometry"
)

func testPlan() floorplan.Floorplan {
	hall := floorplan.NewRoom("room-1", "Hall", geometry.Rect{X: 0, Y: 0, W: 200, H: 100})
	hall.Doors = []floorplan.Door{floorplan.NewDoor("d1", geometry.WallSouth, 0.5, true)}
	bedroom := floorplan.NewRoom("room-2", "Bedroom", geometry.Rect{X: 0, Y: 0, W: 200, H: 100})

	return floorplan.Floorplan{
		Version: floorplan.CurrentVersion,
		Floors: []floorplan.Floor{
			{ID: "floor-1", Label: "Ground", Rooms: []floorplan.Room{hall}},
			{ID: "floor-2", Label: "Upper", Rooms: []floorplan.Room{bedroom}},
		},
		Placements: []floorplan.DevicePlacement{
			{ID: "p-up", Type: "smoke_detector", Floor: 2, RoomID: "room-2", X: 100, Y: 50},
			{ID: "p-bell", Type: "doorbell", Floor: 1, RoomID: "room-1", WallID: "room-1-s", X: 100, Y: 100},
			{ID: "p-bad", Type: "doorbell", Floor: 1, RoomID: "room-1", WallID: "room-1-n", X: 100, Y: 0},
		},
	}
}

func TestBuildSchedule(t *testing.T) {
	rows := BuildSchedule(testPlan(), nil)
	require.Len(t, rows, 3)

	assert.Equal(t, "p-bell", rows[0].PlacementID, "floor 1 sorts first")
	assert.Equal(t, "p-bad", rows[1].PlacementID, "array order kept within a floor")
	assert.Equal(t, "p-up", rows[2].PlacementID)

	bell := rows[0]
	assert.Equal(t, "Ground", bell.Floor)
	assert.Equal(t, "Hall", bell.Room)
	assert.Equal(t, "Video doorbell", bell.Device)
	assert.Equal(t, "entry", bell.Category)
	assert.Equal(t, "south", bell.Wall)
	assert.Equal(t, 0.0, bell.Rotation)
	assert.True(t, bell.Valid)

	bad := rows[1]
	assert.Equal(t, "north", bad.Wall)
	assert.Equal(t, 180.0, bad.Rotation)
	assert.False(t, bad.Valid)
	assert.Equal(t, catalog.ErrNoExteriorDoor.Error(), bad.Reason)

	assert.Empty(t, rows[2].Wall)
}

func TestBuildScheduleUnknownDevice(t *testing.T) {
	fp := testPlan()
	fp.Placements = []floorplan.DevicePlacement{{ID: "p-x", Type: "laser_grid", Floor: 1, RoomID: "room-1"}}

	rows := BuildSchedule(fp, nil)
	require.Len(t, rows, 1)
	assert.Equal(t, "laser_grid", rows[0].Device)
	assert.False(t, rows[0].Valid)
}

func TestBuildScheduleXLSX(t *testing.T) {
	data, err := BuildScheduleXLSX("Smith residence", BuildSchedule(testPlan(), nil))
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	title, err := f.GetCellValue(summarySheet, "B3")
	require.NoError(t, err)
	assert.Equal(t, "Smith residence", title)

	rows, err := f.GetRows(devicesSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4, "header plus one row per placement")
	assert.Equal(t, scheduleHeader, rows[0])
	assert.Equal(t, "Hall", rows[1][1])
	assert.Equal(t, "no", rows[2][8])
}

func TestBuildSchedulePDF(t *testing.T) {
	data, err := BuildSchedulePDF("Smith residence", BuildSchedule(testPlan(), nil))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "Smith-residence--v2-", sanitizeFilename("Smith residence (v2)"))
}

type fakeSource struct {
	fp  floorplan.FloorplanWithStairs
	err error
}

func (f fakeSource) LatestFloorplan(context.Context, string, string) (string, floorplan.FloorplanWithStairs, error) {
	return "Smith", f.fp, f.err
}

var errMissing = errors.New("missing")

func router(h *Handler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/projects/{projectId}/export/{format}", h.ExportProject)
	r.HandleFunc("/export/{format}", h.ExportFloorplan)
	return r
}

func TestExportProject(t *testing.T) {
	status := func(err error) int {
		if errors.Is(err, errMissing) {
			return http.StatusNotFound
		}
		return http.StatusInternalServerError
	}

	t.Run("xlsx", func(t *testing.T) {
		h := NewHandler(fakeSource{fp: floorplan.FloorplanWithStairs{Floorplan: testPlan()}}, nil, status)
		rec := httptest.NewRecorder()
		router(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/projects/proj_1/export/xlsx", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, ContentTypeXLSX, rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="Smith.xlsx"`)
	})

	t.Run("bad format", func(t *testing.T) {
		h := NewHandler(fakeSource{}, nil, status)
		rec := httptest.NewRecorder()
		router(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/projects/proj_1/export/docx", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("source error", func(t *testing.T) {
		h := NewHandler(fakeSource{err: errMissing}, nil, status)
		rec := httptest.NewRecorder()
		router(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/projects/proj_1/export/pdf", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestExportFloorplan(t *testing.T) {
	h := NewHandler(nil, nil, nil)

	t.Run("pdf", func(t *testing.T) {
		data, err := floorplan.Encode(floorplan.FloorplanWithStairs{Floorplan: testPlan()})
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/export/pdf?name=draft", bytes.NewReader(data))
		router(h).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, ContentTypePDF, rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="draft.pdf"`)
	})

	t.Run("invalid body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router(h).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/export/xlsx", strings.NewReader("{")))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
