package boards

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
)

// ---------------------------------------------------------------------------
// CreateCardHandler
// ---------------------------------------------------------------------------

func TestCreateCard_ListNotFound(t *testing.T) {
	mock, r := newBoardsRouter(t)

	mock.ExpectQuery("SELECT l.id, l.board_id.*FROM board_lists l").
		WillReturnRows(sqlmock.NewRows(listWithOrgCols))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/lists/list-1/cards",
		jsonBody(map[string]string{"title": "Ship it"})))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404: body=%s", w.Code, w.Body.String())
	}
}

func TestCreateCard_AppendsAtEnd(t *testing.T) {
	mock, r := newBoardsRouter(t)

	mock.ExpectQuery("SELECT l.id, l.board_id.*FROM board_lists l").
		WillReturnRows(sampleListWithOrgRow())
	expectMember(mock)
	mock.ExpectQuery("INSERT INTO cards").
		WithArgs("list-1", "Ship it").
		WillReturnRows(sqlmock.NewRows([]string{"id", "position", "created_at", "updated_at"}).
			AddRow("card-new", 4, time.Now(), time.Now()))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/lists/list-1/cards",
		jsonBody(map[string]string{"title": "Ship it"})))

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201: body=%s", w.Code, w.Body.String())
	}
	resp := getJSON(w)
	if resp["position"] != float64(4) {
		t.Errorf("position = %v, want 4", resp["position"])
	}
}

// ---------------------------------------------------------------------------
// ListCardsHandler
// ---------------------------------------------------------------------------

func TestListCards_Success(t *testing.T) {
	mock, r := newBoardsRouter(t)

	mock.ExpectQuery("SELECT l.id, l.board_id.*FROM board_lists l").
		WillReturnRows(sampleListWithOrgRow())
	expectMember(mock)
	mock.ExpectQuery("SELECT.*FROM cards.*ORDER BY position").
		WillReturnRows(sqlmock.NewRows([]string{"id", "list_id", "title", "position", "description", "created_at", "updated_at"}).
			AddRow("card-1", "list-1", "Ship it", 0, nil, time.Now(), time.Now()))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/lists/list-1/cards", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200: body=%s", w.Code, w.Body.String())
	}
	resp := getJSON(w)
	results, _ := resp["results"].([]interface{})
	if len(results) != 1 {
		t.Errorf("results len = %d, want 1", len(results))
	}
}

// ---------------------------------------------------------------------------
// UpdateCardHandler
// ---------------------------------------------------------------------------

func TestUpdateCard_NotFound(t *testing.T) {
	mock, r := newBoardsRouter(t)

	mock.ExpectQuery("SELECT c.id, c.list_id.*FROM cards c").
		WillReturnRows(sqlmock.NewRows(cardWithOrgCols))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("PATCH", "/cards/card-1",
		jsonBody(map[string]string{"title": "Renamed"})))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404: body=%s", w.Code, w.Body.String())
	}
}

func TestUpdateCard_Rename(t *testing.T) {
	mock, r := newBoardsRouter(t)

	mock.ExpectQuery("SELECT c.id, c.list_id.*FROM cards c").
		WillReturnRows(sampleCardWithOrgRow())
	expectMember(mock)
	mock.ExpectExec("UPDATE cards").
		WithArgs("card-1", "list-1", "Renamed", 0, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("PATCH", "/cards/card-1",
		jsonBody(map[string]string{"title": "Renamed"})))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200: body=%s", w.Code, w.Body.String())
	}
	resp := getJSON(w)
	if resp["title"] != "Renamed" {
		t.Errorf("title = %v, want Renamed", resp["title"])
	}
}

func TestUpdateCard_MoveToListInSameOrg(t *testing.T) {
	mock, r := newBoardsRouter(t)

	mock.ExpectQuery("SELECT c.id, c.list_id.*FROM cards c").
		WillReturnRows(sampleCardWithOrgRow())
	expectMember(mock)
	mock.ExpectQuery("SELECT l.id, l.board_id.*FROM board_lists l").
		WillReturnRows(sqlmock.NewRows(listWithOrgCols).
			AddRow("list-2", "board-1", "Doing", 1, time.Now(), time.Now(), "org-1"))
	mock.ExpectExec("UPDATE cards").
		WithArgs("card-1", "list-2", "Ship it", 0, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("PATCH", "/cards/card-1",
		jsonBody(map[string]string{"list_id": "list-2"})))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200: body=%s", w.Code, w.Body.String())
	}
	resp := getJSON(w)
	if resp["list_id"] != "list-2" {
		t.Errorf("list_id = %v, want list-2", resp["list_id"])
	}
}

func TestUpdateCard_MoveToListInOtherOrgRejected(t *testing.T) {
	mock, r := newBoardsRouter(t)

	mock.ExpectQuery("SELECT c.id, c.list_id.*FROM cards c").
		WillReturnRows(sampleCardWithOrgRow())
	expectMember(mock)
	// The destination resolves to a different organization.
	mock.ExpectQuery("SELECT l.id, l.board_id.*FROM board_lists l").
		WillReturnRows(sqlmock.NewRows(listWithOrgCols).
			AddRow("list-9", "board-9", "Elsewhere", 0, time.Now(), time.Now(), "org-2"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("PATCH", "/cards/card-1",
		jsonBody(map[string]string{"list_id": "list-9"})))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404: body=%s", w.Code, w.Body.String())
	}
}

// ---------------------------------------------------------------------------
// DeleteCardHandler
// ---------------------------------------------------------------------------

func TestDeleteCard_Success(t *testing.T) {
	mock, r := newBoardsRouter(t)

	mock.ExpectQuery("SELECT c.id, c.list_id.*FROM cards c").
		WillReturnRows(sampleCardWithOrgRow())
	expectMember(mock)
	mock.ExpectExec("DELETE FROM cards").
		WithArgs("list-1", "card-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("DELETE", "/cards/card-1", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200: body=%s", w.Code, w.Body.String())
	}
}

func TestDeleteCard_GoneBetweenLoadAndDelete(t *testing.T) {
	mock, r := newBoardsRouter(t)

	mock.ExpectQuery("SELECT c.id, c.list_id.*FROM cards c").
		WillReturnRows(sampleCardWithOrgRow())
	expectMember(mock)
	mock.ExpectExec("DELETE FROM cards").
		WillReturnResult(sqlmock.NewResult(0, 0))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("DELETE", "/cards/card-1", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404: body=%s", w.Code, w.Body.String())
	}
}
