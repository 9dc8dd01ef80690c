package boards

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
)

var auditCols = []string{
	"id", "organization_id", "action", "entity_id", "entity_type", "entity_title",
	"user_id", "user_name", "user_image", "created_at",
}

func sampleAuditRows() *sqlmock.Rows {
	return sqlmock.NewRows(auditCols).
		AddRow("audit-2", "org-1", "UPDATE", "board-1", "BOARD", "Roadmap", "user-1", "Alice Smith", nil, time.Now()).
		AddRow("audit-1", "org-1", "CREATE", "board-1", "BOARD", "Roadmap", "user-1", "Alice Smith", nil, time.Now())
}

// ---------------------------------------------------------------------------
// ListActivityHandler
// ---------------------------------------------------------------------------

func TestListActivity_NotMember(t *testing.T) {
	mock, r := newBoardsRouter(t)

	mock.ExpectQuery("SELECT id, organization_id, user_id.*FROM organization_users").
		WillReturnRows(emptyMembershipRows())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/organizations/org-1/audit-logs", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404: body=%s", w.Code, w.Body.String())
	}
}

func TestListActivity_MemberButNotAdmin(t *testing.T) {
	mock, r := newBoardsRouter(t)
	expectMember(mock)

	mock.ExpectQuery("SELECT EXISTS").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/organizations/org-1/audit-logs", nil))

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403: body=%s", w.Code, w.Body.String())
	}
}

func TestListActivity_Success(t *testing.T) {
	mock, r := newBoardsRouter(t)
	expectMember(mock)

	mock.ExpectQuery("SELECT EXISTS").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery("SELECT.*FROM audit_logs.*ORDER BY created_at DESC").
		WillReturnRows(sampleAuditRows())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/organizations/org-1/audit-logs", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200: body=%s", w.Code, w.Body.String())
	}
	resp := getJSON(w)
	results, _ := resp["results"].([]interface{})
	if len(results) != 2 {
		t.Fatalf("results len = %d, want 2", len(results))
	}
	pagination, _ := resp["pagination"].(map[string]interface{})
	if pagination["total"] != float64(2) {
		t.Errorf("total = %v, want 2", pagination["total"])
	}
}

func TestListActivity_PageSizeClamped(t *testing.T) {
	mock, r := newBoardsRouter(t)
	expectMember(mock)

	mock.ExpectQuery("SELECT EXISTS").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("SELECT.*FROM audit_logs").
		WithArgs("org-1", 100, 0).
		WillReturnRows(sqlmock.NewRows(auditCols))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/organizations/org-1/audit-logs?pageSize=9999", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200: body=%s", w.Code, w.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

// ---------------------------------------------------------------------------
// ListEntityActivityHandler
// ---------------------------------------------------------------------------

func TestListEntityActivity_NotMember(t *testing.T) {
	mock, r := newBoardsRouter(t)

	mock.ExpectQuery("SELECT id, organization_id, user_id.*FROM organization_users").
		WillReturnRows(emptyMembershipRows())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/organizations/org-1/audit-logs/board-1", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestListEntityActivity_Success(t *testing.T) {
	mock, r := newBoardsRouter(t)
	expectMember(mock)

	mock.ExpectQuery("SELECT.*FROM audit_logs.*entity_id").
		WithArgs("org-1", "board-1", 3).
		WillReturnRows(sampleAuditRows())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/organizations/org-1/audit-logs/board-1", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200: body=%s", w.Code, w.Body.String())
	}
	resp := getJSON(w)
	results, _ := resp["results"].([]interface{})
	if len(results) != 2 {
		t.Errorf("results len = %d, want 2", len(results))
	}
}
