package api_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lexiboost/lexiboost/internal/api"
	"github.com/lexiboost/lexiboost/internal/config"
	apperrors "github.com/lexiboost/lexiboost/internal/errors"
	"github.com/lexiboost/lexiboost/internal/models"
	"github.com/lexiboost/lexiboost/internal/repository/sqlite"
	"github.com/lexiboost/lexiboost/internal/session"
	"github.com/lexiboost/lexiboost/internal/testutil"
	"github.com/lexiboost/lexiboost/internal/testutil/mocks"
	"github.com/lexiboost/lexiboost/internal/wrongbook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*api.Server, *mocks.MockSessionService) {
	t.Helper()
	database := testutil.OpenTestDB(t)

	svc := &mocks.MockSessionService{}
	cfg := config.Config{
		SessionLength:      50,
		PrefetchDepth:      2,
		QuestionTTL:        5 * time.Minute,
		SessionIdleTimeout: 30 * time.Minute,
		GenerationTimeout:  20 * time.Second,
		MockGenerator:      true,
	}

	words := sqlite.NewWordRepository(database.DB)
	progress := sqlite.NewProgressRepository(database.DB)

	return &api.Server{
		DB:             database,
		Users:          sqlite.NewUserRepository(database.DB),
		SessionService: svc,
		Importer:       wrongbook.NewImporter(words, progress, nil),
		Config:         &cfg,
	}, svc
}

func doJSON(t *testing.T, srv *api.Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(v))
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestCreateUser(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/users", map[string]string{"username": "  Alice "})
	require.Equal(t, http.StatusCreated, rec.Code)

	var user models.User
	decodeBody(t, rec, &user)
	assert.Equal(t, "alice", user.Username)
	assert.NotZero(t, user.ID)
}

func TestCreateUser_Duplicate(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/users", map[string]string{"username": "alice"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/api/users", map[string]string{"username": "alice"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCreateUser_EmptyUsername(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/users", map[string]string{"username": "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetUser_NotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/users/99", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	decodeBody(t, rec, &body)
	assert.Equal(t, apperrors.ErrCodeNotFound, body.Error.Code)
}

func TestStartSession(t *testing.T) {
	srv, svc := newTestServer(t)
	svc.On("Start", mock.Anything, int64(1)).Return(&models.Session{ID: 10, UserID: 1}, nil)

	rec := doJSON(t, srv, http.MethodPost, "/api/sessions", map[string]int64{"user_id": 1})
	require.Equal(t, http.StatusCreated, rec.Code)

	var sess models.Session
	decodeBody(t, rec, &sess)
	assert.Equal(t, int64(10), sess.ID)
	svc.AssertExpectations(t)
}

func TestStartSession_MissingUserID(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/sessions", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNextQuestion_Completion(t *testing.T) {
	srv, svc := newTestServer(t)
	svc.On("NextQuestion", mock.Anything, int64(10)).Return(&session.QuestionResult{
		Complete: true,
		Reason:   "no_words_due",
		Message:  "No more words due for review at this time. Great job!",
	}, nil)

	rec := doJSON(t, srv, http.MethodGet, "/api/sessions/10/question", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var result session.QuestionResult
	decodeBody(t, rec, &result)
	assert.True(t, result.Complete)
	assert.Equal(t, "no_words_due", result.Reason)
	svc.AssertExpectations(t)
}

func TestSubmitAnswer_ServiceValidationError(t *testing.T) {
	srv, svc := newTestServer(t)
	svc.On("SubmitAnswer", mock.Anything, int64(10), session.AnswerRequest{WordID: 3, UserAnswer: "x"}).
		Return(nil, apperrors.NewValidationError("word_id", "question was never issued in this session"))

	rec := doJSON(t, srv, http.MethodPost, "/api/sessions/10/answer", map[string]any{
		"word_id":     3,
		"user_answer": "x",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertExpectations(t)
}

func TestImportWrongbook(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/users", map[string]string{"username": "alice"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var user models.User
	decodeBody(t, rec, &user)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "wrongbook.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte("word\napple\nbook\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/users/1/wrongbook/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var result wrongbook.ImportResult
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&result))
	assert.Equal(t, 2, result.Imported)
}

func TestImportWrongbook_MissingFile(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/users", map[string]string{"username": "alice"})
	require.Equal(t, http.StatusCreated, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/users/1/wrongbook/import", strings.NewReader("apple"))
	req.Header.Set("Content-Type", "text/csv")
	rr := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRequestIDHeader(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
