package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/student-records-api/internal/dto"
	"github.com/noah-isme/student-records-api/internal/handler"
	"github.com/noah-isme/student-records-api/internal/service"
)

type mockStudentService struct {
	lastAcademicID string
	lastRequest    dto.StudentRequest
	response       dto.StudentResponse
	listResponse   []dto.StudentResponse
	err            error
}

func (m *mockStudentService) Create(_ context.Context, req dto.StudentRequest) (dto.StudentResponse, error) {
	m.lastRequest = req
	if m.err != nil {
		return dto.StudentResponse{}, m.err
	}
	return m.response, nil
}

func (m *mockStudentService) List(_ context.Context) ([]dto.StudentResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.listResponse, nil
}

func (m *mockStudentService) Get(_ context.Context, academicID string) (dto.StudentResponse, error) {
	m.lastAcademicID = academicID
	if m.err != nil {
		return dto.StudentResponse{}, m.err
	}
	return m.response, nil
}

func (m *mockStudentService) Update(_ context.Context, academicID string, req dto.StudentRequest) (dto.StudentResponse, error) {
	m.lastAcademicID = academicID
	m.lastRequest = req
	if m.err != nil {
		return dto.StudentResponse{}, m.err
	}
	return m.response, nil
}

func (m *mockStudentService) Delete(_ context.Context, academicID string) (dto.StudentResponse, error) {
	m.lastAcademicID = academicID
	if m.err != nil {
		return dto.StudentResponse{}, m.err
	}
	return m.response, nil
}

func newTestApp(svc service.StudentService) *fiber.App {
	app := fiber.New()
	handler.NewStudentHandler(svc, zerolog.New(io.Discard)).Register(app.Group("/students"))
	return app
}

func TestStudentHandler_CreateSuccess(t *testing.T) {
	svc := &mockStudentService{response: dto.StudentResponse{ID: 1, Name: "Ana", Email: "ana@x.com", AcademicID: "RA001"}}
	app := newTestApp(svc)

	resp := performJSON(t, app, http.MethodPost, "/students/", dto.StudentRequest{Name: "Ana", Email: "ana@x.com", AcademicID: "RA001"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body dto.StudentResponse
	decodeResponse(t, resp, &body)
	require.Equal(t, uint(1), body.ID)
	require.Equal(t, "RA001", body.AcademicID)
	require.Equal(t, "Ana", svc.lastRequest.Name)
}

func TestStudentHandler_CreateDuplicate(t *testing.T) {
	svc := &mockStudentService{err: service.ErrDuplicateAcademicID}
	app := newTestApp(svc)

	resp := performJSON(t, app, http.MethodPost, "/students/", dto.StudentRequest{Name: "Ana", Email: "ana@x.com", AcademicID: "RA001"})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var body struct {
		Detail string `json:"detail"`
	}
	decodeResponse(t, resp, &body)
	require.Equal(t, "Student with that ID already exists.", body.Detail)
}

func TestStudentHandler_CreateMalformedBody(t *testing.T) {
	svc := &mockStudentService{}
	app := newTestApp(svc)

	req := httptest.NewRequest(http.MethodPost, "/students/", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestStudentHandler_List(t *testing.T) {
	svc := &mockStudentService{listResponse: []dto.StudentResponse{
		{ID: 1, Name: "Ana", Email: "ana@x.com", AcademicID: "RA001"},
		{ID: 2, Name: "Bia", Email: "bia@x.com", AcademicID: "RA002"},
	}}
	app := newTestApp(svc)

	resp := performJSON(t, app, http.MethodGet, "/students/", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body []dto.StudentResponse
	decodeResponse(t, resp, &body)
	require.Len(t, body, 2)
}

func TestStudentHandler_GetSuccess(t *testing.T) {
	svc := &mockStudentService{response: dto.StudentResponse{ID: 1, Name: "Ana", Email: "ana@x.com", AcademicID: "RA001"}}
	app := newTestApp(svc)

	resp := performJSON(t, app, http.MethodGet, "/students/RA001", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "RA001", svc.lastAcademicID)

	var body dto.StudentResponse
	decodeResponse(t, resp, &body)
	require.Equal(t, "Ana", body.Name)
}

func TestStudentHandler_GetNotFound(t *testing.T) {
	svc := &mockStudentService{err: service.ErrStudentNotFound}
	app := newTestApp(svc)

	resp := performJSON(t, app, http.MethodGet, "/students/RA-DOES-NOT-EXIST", nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var body struct {
		Detail string `json:"detail"`
	}
	decodeResponse(t, resp, &body)
	require.Equal(t, "Student not found.", body.Detail)
}

func TestStudentHandler_UpdateSuccess(t *testing.T) {
	svc := &mockStudentService{response: dto.StudentResponse{ID: 1, Name: "Ana Souza", Email: "ana.souza@x.com", AcademicID: "RA001"}}
	app := newTestApp(svc)

	resp := performJSON(t, app, http.MethodPut, "/students/RA001", dto.StudentRequest{Name: "Ana Souza", Email: "ana.souza@x.com", AcademicID: "RA001"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "RA001", svc.lastAcademicID)

	var body dto.StudentResponse
	decodeResponse(t, resp, &body)
	require.Equal(t, "Ana Souza", body.Name)
	require.Equal(t, "RA001", body.AcademicID)
}

func TestStudentHandler_UpdateNotFound(t *testing.T) {
	svc := &mockStudentService{err: service.ErrStudentNotFound}
	app := newTestApp(svc)

	resp := performJSON(t, app, http.MethodPut, "/students/RA404", dto.StudentRequest{Name: "Nobody", Email: "nobody@x.com", AcademicID: "RA404"})
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestStudentHandler_DeleteReturnsRecord(t *testing.T) {
	svc := &mockStudentService{response: dto.StudentResponse{ID: 1, Name: "Ana", Email: "ana@x.com", AcademicID: "RA001"}}
	app := newTestApp(svc)

	resp := performJSON(t, app, http.MethodDelete, "/students/RA001", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body dto.StudentResponse
	decodeResponse(t, resp, &body)
	require.Equal(t, uint(1), body.ID)
	require.Equal(t, "ana@x.com", body.Email)
}

func TestStudentHandler_DeleteNotFound(t *testing.T) {
	svc := &mockStudentService{err: service.ErrStudentNotFound}
	app := newTestApp(svc)

	resp := performJSON(t, app, http.MethodDelete, "/students/RA404", nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestStudentHandler_ServiceError(t *testing.T) {
	svc := &mockStudentService{err: errors.New("boom")}
	app := newTestApp(svc)

	resp := performJSON(t, app, http.MethodGet, "/students/", nil)
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func performJSON(t *testing.T, app *fiber.App, method, path string, payload interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if payload != nil {
		body, err := json.Marshal(payload)
		require.NoError(t, err)
		reader = bytes.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, json.Unmarshal(body, target))
}
