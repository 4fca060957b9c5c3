package quizzes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	ErrorKind string          `json:"error_kind"`
	Error     string          `json:"error"`
}

func setupRouter(store *fakeStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := NewEngine(store, nil, nil, testQuizConfig(), nil)
	handler := NewHandler(engine, nil)

	router := gin.New()
	router.POST("/quizzes", handler.Create)
	router.POST("/quizzes/:quizId/questions", handler.AddQuestion)
	router.DELETE("/questions/:questionId", handler.DeleteQuestion)
	router.GET("/quizzes/:quizId/questions", handler.ListQuestions)
	router.GET("/materials/:materialId/quiz", handler.Status)
	router.POST("/quizzes/submit", handler.Submit)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func TestSubmitHandlerRejectsEmptyAnswers(t *testing.T) {
	store := newFakeStore()
	router := setupRouter(store)

	w, env := doJSON(t, router, http.MethodPost, "/quizzes/submit", gin.H{
		"quiz_id": uuid.New().String(),
		"user_id": uuid.New().String(),
		"answers": map[string]string{},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_request", env.ErrorKind)
	assert.Equal(t, 0, store.touches, "rejected before any store access")
}

func TestSubmitHandlerPassingFlow(t *testing.T) {
	store := newFakeStore()
	router := setupRouter(store)
	quizID, questions := seedQuiz(t, store, 4)
	userID := uuid.New()

	w, env := doJSON(t, router, http.MethodPost, "/quizzes/submit", gin.H{
		"quiz_id": quizID.String(),
		"user_id": userID.String(),
		"answers": answersFor(questions, 4, 3),
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, env.Success)

	var result SubmitResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, 3, result.Score)
	assert.Equal(t, 4, result.TotalQuestions)
	assert.True(t, result.Passed)
	require.NotNil(t, result.Certificate)
	assert.NotEmpty(t, result.Certificate.Code)
}

func TestSubmitHandlerAlreadyPassed(t *testing.T) {
	store := newFakeStore()
	router := setupRouter(store)
	quizID, questions := seedQuiz(t, store, 3)
	userID := uuid.New()
	body := gin.H{
		"quiz_id": quizID.String(),
		"user_id": userID.String(),
		"answers": answersFor(questions, 3, 3),
	}

	w, _ := doJSON(t, router, http.MethodPost, "/quizzes/submit", body)
	require.Equal(t, http.StatusOK, w.Code)

	w, env := doJSON(t, router, http.MethodPost, "/quizzes/submit", body)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "already_passed", env.ErrorKind)
}

func TestSubmitHandlerAttemptCap(t *testing.T) {
	store := newFakeStore()
	router := setupRouter(store)
	quizID, questions := seedQuiz(t, store, 3)
	userID := uuid.New()
	body := gin.H{
		"quiz_id": quizID.String(),
		"user_id": userID.String(),
		"answers": answersFor(questions, 3, 0),
	}

	for i := 0; i < 3; i++ {
		w, _ := doJSON(t, router, http.MethodPost, "/quizzes/submit", body)
		require.Equal(t, http.StatusOK, w.Code)
	}
	w, env := doJSON(t, router, http.MethodPost, "/quizzes/submit", body)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "no_attempts_remaining", env.ErrorKind)
}

func TestAddQuestionHandlerRejectsBadShape(t *testing.T) {
	store := newFakeStore()
	router := setupRouter(store)
	quizID := uuid.New()

	// one option
	w, env := doJSON(t, router, http.MethodPost, "/quizzes/"+quizID.String()+"/questions", gin.H{
		"question_text": "What is 2+2?",
		"options":       []gin.H{{"option_text": "4", "is_correct": true}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_request", env.ErrorKind)

	// no correct option
	w, env = doJSON(t, router, http.MethodPost, "/quizzes/"+quizID.String()+"/questions", gin.H{
		"question_text": "What is 2+2?",
		"options":       []gin.H{{"option_text": "4"}, {"option_text": "5"}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_request", env.ErrorKind)

	assert.Equal(t, 0, store.touches, "invalid question performs no insert")
}

func TestAddAndListQuestions(t *testing.T) {
	store := newFakeStore()
	router := setupRouter(store)
	quizID := uuid.New()

	w, _ := doJSON(t, router, http.MethodPost, "/quizzes/"+quizID.String()+"/questions", gin.H{
		"question_text": "What is 2+2?",
		"options":       []gin.H{{"option_text": "4", "is_correct": true}, {"option_text": "5"}},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w, env := doJSON(t, router, http.MethodGet, "/quizzes/"+quizID.String()+"/questions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, string(env.Data), "is_correct", "answer flags never leave the server")
	assert.Contains(t, string(env.Data), "What is 2+2?")
}

func TestDeleteQuestionHandlerNotFound(t *testing.T) {
	store := newFakeStore()
	router := setupRouter(store)

	w, env := doJSON(t, router, http.MethodDelete, "/questions/"+uuid.New().String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", env.ErrorKind)
}

func TestStatusHandler(t *testing.T) {
	store := newFakeStore()
	router := setupRouter(store)

	w, env := doJSON(t, router, http.MethodGet, "/materials/"+uuid.New().String()+"/quiz?user_id="+uuid.New().String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", env.ErrorKind)

	// missing user_id
	w, env = doJSON(t, router, http.MethodGet, "/materials/"+uuid.New().String()+"/quiz", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_request", env.ErrorKind)
}

func TestCreateQuizHandlerConflict(t *testing.T) {
	store := newFakeStore()
	router := setupRouter(store)
	materialID := uuid.New().String()
	body := gin.H{"material_id": materialID, "title": "Module 1 Quiz"}

	w, _ := doJSON(t, router, http.MethodPost, "/quizzes", body)
	require.Equal(t, http.StatusCreated, w.Code)

	w, env := doJSON(t, router, http.MethodPost, "/quizzes", body)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "conflict", env.ErrorKind)
}
