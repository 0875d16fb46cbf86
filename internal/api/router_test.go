package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/corlabs/gaze-analytics-go/internal/config"
	"github.com/corlabs/gaze-analytics-go/internal/database"
	"github.com/corlabs/gaze-analytics-go/internal/middleware"
	"github.com/corlabs/gaze-analytics-go/internal/models"
)

type apiResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	dir, err := os.MkdirTemp("", "gaze-api-test")
	if err != nil {
		panic(err)
	}

	if err := database.Init(database.Config{Path: filepath.Join(dir, "test.db")}); err != nil {
		panic(err)
	}

	code := m.Run()

	database.Close()
	os.RemoveAll(dir)
	os.Exit(code)
}

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()

	cfg := &config.Config{
		Port:                  ":0",
		JWTSecret:             "",
		AnalysisMinConfidence: 0.5,
		Gaze:                  config.DefaultGazeConfig(),
		Fixation:              config.DefaultFixationConfig(),
		Saccade:               config.DefaultSaccadeConfig(),
		Heatmap:               config.DefaultHeatmapConfig(),
		Session:               config.DefaultSessionConfig(),
	}

	return SetupRouter(cfg)
}

// centered pupils at high confidence estimate to the screen center
func detection(ts float64) models.EyeDetectionResult {
	return models.EyeDetectionResult{
		LeftEye:    models.EyeRegion{X: 100, Y: 100, Width: 60, Height: 30, Confidence: 0.9},
		RightEye:   models.EyeRegion{X: 200, Y: 100, Width: 60, Height: 30, Confidence: 0.9},
		LeftPupil:  models.PupilData{X: 130, Y: 115, Radius: 5, Confidence: 0.9},
		RightPupil: models.PupilData{X: 230, Y: 115, Radius: 5, Confidence: 0.9},
		Valid:      true,
		Timestamp:  ts,
	}
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	var resp apiResponse
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "image/png" {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
		}
	}

	return w, resp
}

func createSession(t *testing.T, r *gin.Engine) string {
	t.Helper()

	w, resp := doJSON(t, r, http.MethodPost, "/api/v1/sessions", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("create session status = %d, body %s", w.Code, w.Body.String())
	}

	var info models.SessionInfo
	if err := json.Unmarshal(resp.Data, &info); err != nil {
		t.Fatalf("failed to decode session info: %v", err)
	}
	if info.ID == "" {
		t.Fatal("session ID should not be empty")
	}

	return info.ID
}

func ingestFrames(t *testing.T, r *gin.Engine, sessionID string, count int) {
	t.Helper()

	detections := make([]models.EyeDetectionResult, count)
	for i := range detections {
		detections[i] = detection(float64(i) * 0.1)
	}

	w, _ := doJSON(t, r, http.MethodPost, "/api/v1/sessions/"+sessionID+"/frames",
		models.DetectionsRequest{Detections: detections})
	if w.Code != http.StatusOK {
		t.Fatalf("ingest frames status = %d, body %s", w.Code, w.Body.String())
	}
}

func TestHealthEndpoint(t *testing.T) {
	r := testRouter(t)

	w, _ := doJSON(t, r, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Errorf("health status = %d, want 200", w.Code)
	}
}

func TestSessionLifecycle(t *testing.T) {
	r := testRouter(t)
	id := createSession(t, r)

	ingestFrames(t, r, id, 5)

	w, resp := doJSON(t, r, http.MethodGet, "/api/v1/sessions/"+id+"/points", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("points status = %d", w.Code)
	}

	var pointsResp struct {
		Points []models.GazePoint `json:"points"`
	}
	if err := json.Unmarshal(resp.Data, &pointsResp); err != nil {
		t.Fatalf("failed to decode points: %v", err)
	}
	if len(pointsResp.Points) != 5 {
		t.Errorf("point count = %d, want 5", len(pointsResp.Points))
	}

	w, _ = doJSON(t, r, http.MethodPost, "/api/v1/sessions/"+id+"/stop", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("stop status = %d", w.Code)
	}

	// Stored points survive the stop
	w, resp = doJSON(t, r, http.MethodGet, "/api/v1/sessions/"+id+"/points", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("points after stop status = %d", w.Code)
	}
	if err := json.Unmarshal(resp.Data, &pointsResp); err != nil {
		t.Fatalf("failed to decode stored points: %v", err)
	}
	if len(pointsResp.Points) != 5 {
		t.Errorf("stored point count = %d, want 5", len(pointsResp.Points))
	}

	w, _ = doJSON(t, r, http.MethodDelete, "/api/v1/sessions/"+id, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d", w.Code)
	}

	w, _ = doJSON(t, r, http.MethodGet, "/api/v1/sessions/"+id, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("get deleted session status = %d, want 404", w.Code)
	}
}

func TestGatedFramesNotPersisted(t *testing.T) {
	r := testRouter(t)
	id := createSession(t, r)

	// Invalid frames estimate to zero-confidence sentinels, which the
	// collection gate keeps out of both the buffer and storage
	detections := []models.EyeDetectionResult{
		detection(0.0),
		{Valid: false, Timestamp: 0.1},
		detection(0.2),
		{Valid: false, Timestamp: 0.3},
		detection(0.4),
	}

	w, resp := doJSON(t, r, http.MethodPost, "/api/v1/sessions/"+id+"/frames",
		models.DetectionsRequest{Detections: detections})
	if w.Code != http.StatusOK {
		t.Fatalf("ingest status = %d, body %s", w.Code, w.Body.String())
	}

	var ingestResp struct {
		Points []models.GazePoint `json:"points"`
	}
	if err := json.Unmarshal(resp.Data, &ingestResp); err != nil {
		t.Fatalf("failed to decode ingest response: %v", err)
	}
	if len(ingestResp.Points) != 5 {
		t.Fatalf("ingest must return every estimated point, got %d", len(ingestResp.Points))
	}

	var pointsResp struct {
		Points []models.GazePoint `json:"points"`
	}

	// Live buffer holds only the gated-in points
	w, resp = doJSON(t, r, http.MethodGet, "/api/v1/sessions/"+id+"/points", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("points status = %d", w.Code)
	}
	if err := json.Unmarshal(resp.Data, &pointsResp); err != nil {
		t.Fatalf("failed to decode points: %v", err)
	}
	if len(pointsResp.Points) != 3 {
		t.Errorf("live point count = %d, want 3", len(pointsResp.Points))
	}

	// Stored history applies the same gate
	w, _ = doJSON(t, r, http.MethodPost, "/api/v1/sessions/"+id+"/stop", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("stop status = %d", w.Code)
	}

	w, resp = doJSON(t, r, http.MethodGet, "/api/v1/sessions/"+id+"/points", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("stored points status = %d", w.Code)
	}
	if err := json.Unmarshal(resp.Data, &pointsResp); err != nil {
		t.Fatalf("failed to decode stored points: %v", err)
	}
	if len(pointsResp.Points) != 3 {
		t.Errorf("stored point count = %d, want 3", len(pointsResp.Points))
	}
}

func TestSessionAnalysis(t *testing.T) {
	r := testRouter(t)
	id := createSession(t, r)
	ingestFrames(t, r, id, 5)

	w, resp := doJSON(t, r, http.MethodGet, "/api/v1/sessions/"+id+"/analysis", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("analysis status = %d, body %s", w.Code, w.Body.String())
	}

	var analysis models.AttentionAnalysis
	if err := json.Unmarshal(resp.Data, &analysis); err != nil {
		t.Fatalf("failed to decode analysis: %v", err)
	}

	// 5 frames 0.1s apart at a stable location
	if analysis.TotalDurationMS != 400 {
		t.Errorf("TotalDurationMS = %v, want 400", analysis.TotalDurationMS)
	}
	if analysis.FixationCount != 1 {
		t.Errorf("FixationCount = %d, want 1", analysis.FixationCount)
	}
	if analysis.Fixations == nil {
		t.Error("Fixations should never be null")
	}
}

func TestStoredAnalysis(t *testing.T) {
	r := testRouter(t)
	id := createSession(t, r)
	ingestFrames(t, r, id, 5)

	w, resp := doJSON(t, r, http.MethodPost, "/api/v1/analyses", map[string]string{"session_id": id})
	if w.Code != http.StatusCreated {
		t.Fatalf("create analysis status = %d, body %s", w.Code, w.Body.String())
	}

	var stored models.StoredAnalysis
	if err := json.Unmarshal(resp.Data, &stored); err != nil {
		t.Fatalf("failed to decode stored analysis: %v", err)
	}
	if stored.ID == 0 {
		t.Fatal("stored analysis should have an ID")
	}

	w, resp = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/v1/analyses/%d", stored.ID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get analysis status = %d", w.Code)
	}

	var fetched models.StoredAnalysis
	if err := json.Unmarshal(resp.Data, &fetched); err != nil {
		t.Fatalf("failed to decode fetched analysis: %v", err)
	}
	if fetched.Analysis.FixationCount != stored.Analysis.FixationCount {
		t.Errorf("fixation count mismatch: %d vs %d", fetched.Analysis.FixationCount, stored.Analysis.FixationCount)
	}
}

func TestHeatmapEndpoint(t *testing.T) {
	r := testRouter(t)
	id := createSession(t, r)
	ingestFrames(t, r, id, 5)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/heatmaps?session_id="+id+"&width=64&height=48", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("heatmap status = %d, body %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("Content-Type = %q, want image/png", ct)
	}

	img, err := png.Decode(bytes.NewReader(w.Body.Bytes()))
	if err != nil {
		t.Fatalf("failed to decode PNG: %v", err)
	}
	if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 48 {
		t.Errorf("image size = %dx%d, want 64x48", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestAnalysisTaskCompletes(t *testing.T) {
	r := testRouter(t)
	id := createSession(t, r)
	ingestFrames(t, r, id, 5)

	w, resp := doJSON(t, r, http.MethodPost, "/api/v1/analyses/tasks", map[string]interface{}{
		"skill_name": "attention_summary",
		"task_type":  models.TaskTypeFullRecompute,
		"session_id": id,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create task status = %d, body %s", w.Code, w.Body.String())
	}

	var task models.AnalysisTask
	if err := json.Unmarshal(resp.Data, &task); err != nil {
		t.Fatalf("failed to decode task: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		w, resp = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/v1/analyses/tasks/%d", task.ID), nil)
		if w.Code != http.StatusOK {
			t.Fatalf("get task status = %d", w.Code)
		}
		if err := json.Unmarshal(resp.Data, &task); err != nil {
			t.Fatalf("failed to decode task: %v", err)
		}

		if task.Status == models.TaskStatusCompleted {
			break
		}
		if task.Status == models.TaskStatusFailed {
			t.Fatalf("task failed: %s", task.ErrorMessage)
		}
		if time.Now().After(deadline) {
			t.Fatalf("task did not complete in time, status %s", task.Status)
		}
		time.Sleep(50 * time.Millisecond)
	}

	if task.ProgressPercent != 100 {
		t.Errorf("ProgressPercent = %d, want 100", task.ProgressPercent)
	}
}

func TestBatchAnalysisFromPoints(t *testing.T) {
	r := testRouter(t)

	points := make([]models.GazePoint, 5)
	for i := range points {
		points[i] = models.GazePoint{X: 0.5, Y: 0.5, Confidence: 0.9, Timestamp: float64(i) * 0.1}
	}

	w, resp := doJSON(t, r, http.MethodPost, "/api/v1/analyses", models.GazePointsRequest{Points: points})
	if w.Code != http.StatusOK {
		t.Fatalf("batch analysis status = %d, body %s", w.Code, w.Body.String())
	}

	var analysis models.AttentionAnalysis
	if err := json.Unmarshal(resp.Data, &analysis); err != nil {
		t.Fatalf("failed to decode analysis: %v", err)
	}
	if analysis.FixationCount != 1 {
		t.Errorf("FixationCount = %d, want 1", analysis.FixationCount)
	}
	if analysis.TotalDurationMS != 400 {
		t.Errorf("TotalDurationMS = %v, want 400", analysis.TotalDurationMS)
	}
}

func TestBatchAnalysisFromDetections(t *testing.T) {
	r := testRouter(t)

	detections := make([]models.EyeDetectionResult, 3)
	for i := range detections {
		detections[i] = detection(float64(i) * 0.1)
	}

	w, resp := doJSON(t, r, http.MethodPost, "/api/v1/analyses", models.DetectionsRequest{Detections: detections})
	if w.Code != http.StatusOK {
		t.Fatalf("batch analysis status = %d, body %s", w.Code, w.Body.String())
	}

	var analysis models.AttentionAnalysis
	if err := json.Unmarshal(resp.Data, &analysis); err != nil {
		t.Fatalf("failed to decode analysis: %v", err)
	}
	if analysis.TotalDurationMS != 200 {
		t.Errorf("TotalDurationMS = %v, want 200", analysis.TotalDurationMS)
	}
}

func TestBatchHeatmap(t *testing.T) {
	r := testRouter(t)

	points := []models.GazePoint{
		{X: 0.25, Y: 0.25, Confidence: 0.9, Timestamp: 0},
		{X: 0.75, Y: 0.75, Confidence: 0.9, Timestamp: 0.1},
	}

	body, err := json.Marshal(map[string]interface{}{
		"points": points,
		"width":  32,
		"height": 32,
		"mode":   "density",
	})
	if err != nil {
		t.Fatalf("failed to marshal body: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/heatmaps", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("batch heatmap status = %d, body %s", w.Code, w.Body.String())
	}

	img, err := png.Decode(bytes.NewReader(w.Body.Bytes()))
	if err != nil {
		t.Fatalf("failed to decode PNG: %v", err)
	}
	if img.Bounds().Dx() != 32 || img.Bounds().Dy() != 32 {
		t.Errorf("image size = %dx%d, want 32x32", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestHeatmapOverlayEndpoint(t *testing.T) {
	r := testRouter(t)
	id := createSession(t, r)
	ingestFrames(t, r, id, 5)

	background := image.NewRGBA(image.Rect(0, 0, 40, 30))
	for y := 0; y < 30; y++ {
		for x := 0; x < 40; x++ {
			background.SetRGBA(x, y, color.RGBA{R: 100, G: 100, B: 100, A: 255})
		}
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("session_id", id); err != nil {
		t.Fatalf("failed to write field: %v", err)
	}
	fw, err := mw.CreateFormFile("background", "frame.png")
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if err := png.Encode(fw, background); err != nil {
		t.Fatalf("failed to encode background: %v", err)
	}
	mw.Close()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/heatmaps/overlay", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("overlay status = %d, body %s", w.Code, w.Body.String())
	}

	img, err := png.Decode(bytes.NewReader(w.Body.Bytes()))
	if err != nil {
		t.Fatalf("failed to decode overlay PNG: %v", err)
	}
	if img.Bounds().Dx() != 40 || img.Bounds().Dy() != 30 {
		t.Errorf("overlay size = %dx%d, want background's 40x30",
			img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestAuthProtectsRESTAndWebsocket(t *testing.T) {
	cfg := &config.Config{
		Port:                  ":0",
		JWTSecret:             "test-secret",
		AnalysisMinConfidence: 0.5,
		Gaze:                  config.DefaultGazeConfig(),
		Fixation:              config.DefaultFixationConfig(),
		Saccade:               config.DefaultSaccadeConfig(),
		Heatmap:               config.DefaultHeatmapConfig(),
		Session:               config.DefaultSessionConfig(),
	}
	r := SetupRouter(cfg)

	// REST without a token
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/sessions", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("REST status = %d, want 401", w.Code)
	}

	// Websocket route without a token
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws/sessions/some-id", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("ws status = %d, want 401", w.Code)
	}

	token, err := middleware.IssueToken("test-secret", "test-client")
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}

	// With the query token the ws route reaches the handler, which 404s
	// on the unknown session rather than rejecting the credentials
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws/sessions/some-id?token="+token, nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("ws with token status = %d, want 404", w.Code)
	}
}

func TestUnknownSkillRejected(t *testing.T) {
	r := testRouter(t)
	id := createSession(t, r)

	w, _ := doJSON(t, r, http.MethodPost, "/api/v1/analyses/tasks", map[string]interface{}{
		"skill_name": "no_such_skill",
		"task_type":  models.TaskTypeFullRecompute,
		"session_id": id,
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}
