package repositories

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/taskboard/taskboard-server/internal/db/models"
)

// ---------------------------------------------------------------------------
// Column definitions
// ---------------------------------------------------------------------------

var orgCols = []string{"id", "name", "slug", "is_active", "created_at", "updated_at"}
var orgCreateCols = []string{"id", "is_active", "created_at", "updated_at"}
var orgLimitCols = []string{"organization_id", "count", "created_at", "updated_at"}
var orgSubCols = []string{"organization_id", "stripe_customer_id", "stripe_subscription_id", "stripe_price_id", "stripe_current_period_end"}

// ---------------------------------------------------------------------------
// Row builders
// ---------------------------------------------------------------------------

func sampleOrgRow() *sqlmock.Rows {
	return sqlmock.NewRows(orgCols).
		AddRow("org-1", "Acme Inc", "acme-inc", true, time.Now(), time.Now())
}

func emptyOrgRow() *sqlmock.Rows {
	return sqlmock.NewRows(orgCols)
}

func newOrgRepo(t *testing.T) (*OrganizationRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewOrganizationRepository(db), mock
}

// beginOrgTx opens a mocked transaction for the Tx-suffixed methods
func beginOrgTx(t *testing.T, repo *OrganizationRepository, mock sqlmock.Sqlmock) *sql.Tx {
	t.Helper()
	mock.ExpectBegin()
	tx, err := repo.BeginTx(context.Background())
	if err != nil {
		t.Fatalf("BeginTx: %v", err)
	}
	return tx
}

// ---------------------------------------------------------------------------
// GetByID / GetBySlug
// ---------------------------------------------------------------------------

func TestGetByID_Found(t *testing.T) {
	repo, mock := newOrgRepo(t)
	mock.ExpectQuery("SELECT.*FROM organizations.*WHERE id").
		WithArgs("org-1").
		WillReturnRows(sampleOrgRow())

	org, err := repo.GetByID(context.Background(), "org-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if org == nil {
		t.Fatal("expected org, got nil")
	}
	if org.Slug != "acme-inc" {
		t.Errorf("Slug = %s, want acme-inc", org.Slug)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock := newOrgRepo(t)
	mock.ExpectQuery("SELECT.*FROM organizations.*WHERE id").
		WillReturnRows(emptyOrgRow())

	org, err := repo.GetByID(context.Background(), "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if org != nil {
		t.Error("expected nil, got non-nil")
	}
}

func TestGetBySlug_Found(t *testing.T) {
	repo, mock := newOrgRepo(t)
	mock.ExpectQuery("SELECT.*FROM organizations.*WHERE slug").
		WithArgs("acme-inc").
		WillReturnRows(sampleOrgRow())

	org, err := repo.GetBySlug(context.Background(), "acme-inc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if org == nil {
		t.Fatal("expected org, got nil")
	}
}

func TestGetBySlug_NotFound(t *testing.T) {
	repo, mock := newOrgRepo(t)
	mock.ExpectQuery("SELECT.*FROM organizations.*WHERE slug").
		WillReturnRows(emptyOrgRow())

	org, err := repo.GetBySlug(context.Background(), "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if org != nil {
		t.Error("expected nil, got non-nil")
	}
}

// ---------------------------------------------------------------------------
// CreateTx
// ---------------------------------------------------------------------------

func TestCreateOrganizationTx_Success(t *testing.T) {
	repo, mock := newOrgRepo(t)
	tx := beginOrgTx(t, repo, mock)
	mock.ExpectQuery("INSERT INTO organizations").
		WillReturnRows(sqlmock.NewRows(orgCreateCols).AddRow("org-new", true, time.Now(), time.Now()))

	org := &models.Organization{Name: "Acme Inc", Slug: "acme-inc"}
	if err := repo.CreateTx(context.Background(), tx, org); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if org.ID != "org-new" {
		t.Errorf("ID = %s, want org-new", org.ID)
	}
}

func TestCreateOrganizationTx_DBError(t *testing.T) {
	repo, mock := newOrgRepo(t)
	tx := beginOrgTx(t, repo, mock)
	mock.ExpectQuery("INSERT INTO organizations").
		WillReturnError(errDB)

	org := &models.Organization{Name: "Acme Inc", Slug: "acme-inc"}
	if err := repo.CreateTx(context.Background(), tx, org); err == nil {
		t.Error("expected error, got nil")
	}
}

// ---------------------------------------------------------------------------
// Update / Delete
// ---------------------------------------------------------------------------

func TestUpdateOrganization_Success(t *testing.T) {
	repo, mock := newOrgRepo(t)
	mock.ExpectExec("UPDATE organizations").
		WillReturnResult(sqlmock.NewResult(1, 1))

	org := &models.Organization{ID: "org-1", Name: "Acme Corp", Slug: "acme-corp"}
	if err := repo.Update(context.Background(), org); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDeleteOrganization_Success(t *testing.T) {
	repo, mock := newOrgRepo(t)
	mock.ExpectExec("DELETE FROM organizations").
		WithArgs("org-1").
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Delete(context.Background(), "org-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDeleteOrganization_NotFound(t *testing.T) {
	repo, mock := newOrgRepo(t)
	mock.ExpectExec("DELETE FROM organizations").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "missing")
	if err != sql.ErrNoRows {
		t.Errorf("err = %v, want sql.ErrNoRows", err)
	}
}

// ---------------------------------------------------------------------------
// ListUserOrganizations
// ---------------------------------------------------------------------------

func TestListUserOrganizations_AnnotatesCountAndAdmin(t *testing.T) {
	repo, mock := newOrgRepo(t)
	cols := append(append([]string{}, orgCols...), "member_count", "is_admin")
	mock.ExpectQuery("SELECT.*member_count.*is_admin.*FROM organizations.*JOIN organization_users").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("org-1", "Acme", "acme", true, time.Now(), time.Now(), 3, true).
			AddRow("org-2", "Beta", "beta", true, time.Now(), time.Now(), 1, false))

	orgs, err := repo.ListUserOrganizations(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(orgs) != 2 {
		t.Fatalf("len(orgs) = %d, want 2", len(orgs))
	}
	if orgs[0].MemberCount != 3 || !orgs[0].IsAdmin {
		t.Errorf("orgs[0] = {count: %d, admin: %v}, want {3, true}", orgs[0].MemberCount, orgs[0].IsAdmin)
	}
	if orgs[1].MemberCount != 1 || orgs[1].IsAdmin {
		t.Errorf("orgs[1] = {count: %d, admin: %v}, want {1, false}", orgs[1].MemberCount, orgs[1].IsAdmin)
	}
}

func TestListUserOrganizations_DBError(t *testing.T) {
	repo, mock := newOrgRepo(t)
	mock.ExpectQuery("SELECT.*FROM organizations.*JOIN organization_users").
		WillReturnError(errDB)

	if _, err := repo.ListUserOrganizations(context.Background(), "user-1"); err == nil {
		t.Error("expected error")
	}
}

// ---------------------------------------------------------------------------
// Limits
// ---------------------------------------------------------------------------

func TestCreateLimitTx_Success(t *testing.T) {
	repo, mock := newOrgRepo(t)
	tx := beginOrgTx(t, repo, mock)
	mock.ExpectExec("INSERT INTO org_limits").
		WithArgs("org-1").
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.CreateLimitTx(context.Background(), tx, "org-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGetLimit_Found(t *testing.T) {
	repo, mock := newOrgRepo(t)
	mock.ExpectQuery("SELECT.*FROM org_limits").
		WithArgs("org-1").
		WillReturnRows(sqlmock.NewRows(orgLimitCols).AddRow("org-1", 3, time.Now(), time.Now()))

	limit, err := repo.GetLimit(context.Background(), "org-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if limit == nil {
		t.Fatal("expected limit, got nil")
	}
	if limit.Count != 3 {
		t.Errorf("Count = %d, want 3", limit.Count)
	}
}

func TestGetLimit_NotFound(t *testing.T) {
	repo, mock := newOrgRepo(t)
	mock.ExpectQuery("SELECT.*FROM org_limits").
		WillReturnRows(sqlmock.NewRows(orgLimitCols))

	limit, err := repo.GetLimit(context.Background(), "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if limit != nil {
		t.Error("expected nil, got non-nil")
	}
}

// ---------------------------------------------------------------------------
// Subscriptions
// ---------------------------------------------------------------------------

func TestGetSubscription_NotFound(t *testing.T) {
	repo, mock := newOrgRepo(t)
	mock.ExpectQuery("SELECT.*FROM org_subscriptions").
		WillReturnRows(sqlmock.NewRows(orgSubCols))

	sub, err := repo.GetSubscription(context.Background(), "org-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sub != nil {
		t.Error("expected nil, got non-nil")
	}
}

func TestEnsureSubscription_CreatesRow(t *testing.T) {
	repo, mock := newOrgRepo(t)
	mock.ExpectExec("INSERT INTO org_subscriptions").
		WithArgs("org-1").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT.*FROM org_subscriptions").
		WithArgs("org-1").
		WillReturnRows(sqlmock.NewRows(orgSubCols).AddRow("org-1", nil, nil, nil, nil))

	sub, err := repo.EnsureSubscription(context.Background(), "org-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sub == nil {
		t.Fatal("expected subscription, got nil")
	}
	if sub.StripeCustomerID != nil {
		t.Error("expected empty billing fields")
	}
}
