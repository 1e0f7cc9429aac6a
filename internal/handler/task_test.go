package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"compliance-tracker/internal/middleware"
	"compliance-tracker/internal/model"
	"compliance-tracker/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testSecret = []byte("handler-test-secret")

type env struct {
	router *gin.Engine
	db     *gorm.DB
	owner  model.User
	staff  model.User
	biz    model.Business
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap test db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(&model.User{}, &model.Business{}, &model.Task{}, &model.TaskHistory{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	owner := model.User{Name: "Owner", Email: "owner@example.com", Role: model.RoleOwner}
	if err := db.Create(&owner).Error; err != nil {
		t.Fatalf("seed owner: %v", err)
	}
	biz := model.Business{Name: "Test Business", OwnerID: owner.ID}
	if err := db.Create(&biz).Error; err != nil {
		t.Fatalf("seed business: %v", err)
	}
	db.Model(&owner).Update("business_id", biz.ID)
	staff := model.User{Name: "Staff", Email: "staff@example.com", Role: model.RoleStaff, BusinessID: &biz.ID}
	if err := db.Create(&staff).Error; err != nil {
		t.Fatalf("seed staff: %v", err)
	}

	staffSvc := service.NewStaffService(db)
	taskSvc := service.NewTaskService(db, staffSvc)
	taskH := NewTaskHandler(taskSvc)

	r := gin.New()
	api := r.Group("/api", middleware.JWTAuth(testSecret))
	api.GET("/tasks", taskH.List)
	api.GET("/tasks/:id", taskH.Get)
	api.PUT("/tasks/:id", taskH.Update)
	api.GET("/tasks/:id/history", taskH.History)
	ownerRoutes := api.Group("", middleware.OwnerOnly())
	ownerRoutes.POST("/tasks", taskH.Create)
	ownerRoutes.DELETE("/tasks/:id", taskH.Delete)

	return &env{router: r, db: db, owner: owner, staff: staff, biz: biz}
}

func (e *env) token(t *testing.T, u model.User) string {
	t.Helper()
	bid := 0
	if u.BusinessID != nil {
		bid = *u.BusinessID
	}
	token, err := middleware.IssueToken(testSecret, model.Principal{UserID: u.ID, BusinessID: bid, Role: u.Role}, time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func (e *env) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *env) createTask(t *testing.T, body string) model.Task {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/tasks", e.token(t, e.owner), body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create task: status %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Task model.Task `json:"task"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	return resp.Task
}

func TestTaskEndpoints(t *testing.T) {
	due := time.Now().AddDate(0, 0, 14).Format(model.DateLayout)

	t.Run("staff cannot create tasks", func(t *testing.T) {
		e := newEnv(t)
		body := fmt.Sprintf(`{"title":"Renew permits","category":"legal","due_date":"%s","assigned_to":%d}`, due, e.staff.ID)
		w := e.do(t, http.MethodPost, "/api/tasks", e.token(t, e.staff), body)
		if w.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", w.Code)
		}
	})

	t.Run("staff patch ignores disallowed fields", func(t *testing.T) {
		e := newEnv(t)
		task := e.createTask(t, fmt.Sprintf(`{"title":"Renew permits","category":"legal","due_date":"%s","assigned_to":%d}`, due, e.staff.ID))

		body := `{"title":"hijacked title","status":"in_progress"}`
		w := e.do(t, http.MethodPut, fmt.Sprintf("/api/tasks/%d", task.ID), e.token(t, e.staff), body)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", w.Code, w.Body.String())
		}

		var stored model.Task
		if err := e.db.First(&stored, task.ID).Error; err != nil {
			t.Fatalf("reload: %v", err)
		}
		if stored.Title != "Renew permits" {
			t.Errorf("title = %q, staff must not change it", stored.Title)
		}
		if stored.Status != model.StatusInProgress {
			t.Errorf("status = %q, want in_progress", stored.Status)
		}
	})

	t.Run("staff patch with no allowed fields fails", func(t *testing.T) {
		e := newEnv(t)
		task := e.createTask(t, fmt.Sprintf(`{"title":"Renew permits","category":"legal","due_date":"%s","assigned_to":%d}`, due, e.staff.ID))

		w := e.do(t, http.MethodPut, fmt.Sprintf("/api/tasks/%d", task.ID), e.token(t, e.staff), `{"title":"only disallowed"}`)
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400: %s", w.Code, w.Body.String())
		}
	})

	t.Run("staff cannot cancel", func(t *testing.T) {
		e := newEnv(t)
		task := e.createTask(t, fmt.Sprintf(`{"title":"Renew permits","category":"legal","due_date":"%s","assigned_to":%d}`, due, e.staff.ID))

		w := e.do(t, http.MethodPut, fmt.Sprintf("/api/tasks/%d", task.ID), e.token(t, e.staff), `{"status":"cancelled"}`)
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400: %s", w.Code, w.Body.String())
		}
	})

	t.Run("staff assigned_to filter for others is forbidden", func(t *testing.T) {
		e := newEnv(t)
		w := e.do(t, http.MethodGet, fmt.Sprintf("/api/tasks?assigned_to=%d", e.staff.ID+100), e.token(t, e.staff), "")
		if w.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403: %s", w.Code, w.Body.String())
		}
	})

	t.Run("completion surfaces rollover and history", func(t *testing.T) {
		e := newEnv(t)
		task := e.createTask(t, fmt.Sprintf(`{"title":"Monthly filing","category":"tax","due_date":"2027-01-31","recurrence":"monthly","assigned_to":%d}`, e.staff.ID))

		w := e.do(t, http.MethodPut, fmt.Sprintf("/api/tasks/%d", task.ID), e.token(t, e.staff), `{"status":"completed"}`)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", w.Code, w.Body.String())
		}
		var resp struct {
			Task model.Task `json:"task"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.Task.Status != model.StatusPending || resp.Task.DueDate != "2027-03-03" {
			t.Errorf("rolled task = %s/%s, want pending/2027-03-03", resp.Task.Status, resp.Task.DueDate)
		}

		hw := e.do(t, http.MethodGet, fmt.Sprintf("/api/tasks/%d/history", task.ID), e.token(t, e.owner), "")
		if hw.Code != http.StatusOK {
			t.Fatalf("history status = %d", hw.Code)
		}
		var hist struct {
			Count int `json:"count"`
		}
		if err := json.Unmarshal(hw.Body.Bytes(), &hist); err != nil {
			t.Fatalf("decode history: %v", err)
		}
		if hist.Count != 1 {
			t.Errorf("history count = %d, want 1", hist.Count)
		}
	})

	t.Run("missing task maps to 404", func(t *testing.T) {
		e := newEnv(t)
		w := e.do(t, http.MethodGet, "/api/tasks/424242", e.token(t, e.owner), "")
		if w.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", w.Code)
		}
	})

	t.Run("delete then 404", func(t *testing.T) {
		e := newEnv(t)
		task := e.createTask(t, fmt.Sprintf(`{"title":"Renew permits","category":"legal","due_date":"%s","assigned_to":%d}`, due, e.staff.ID))

		if w := e.do(t, http.MethodDelete, fmt.Sprintf("/api/tasks/%d", task.ID), e.token(t, e.owner), ""); w.Code != http.StatusOK {
			t.Fatalf("delete status = %d", w.Code)
		}
		if w := e.do(t, http.MethodDelete, fmt.Sprintf("/api/tasks/%d", task.ID), e.token(t, e.owner), ""); w.Code != http.StatusNotFound {
			t.Errorf("second delete status = %d, want 404", w.Code)
		}
	})
}
