package repositories

import (
	"context"
	"math"
	"testing"

	"useradmin/internal/domain"
	"useradmin/internal/domain/models"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestUserFilterNormalized(t *testing.T) {
	tests := []struct {
		in   UserFilter
		want UserFilter
	}{
		{UserFilter{}, UserFilter{Page: 1, Limit: 10}},
		{UserFilter{Page: 3, Limit: 500, Query: "  ab "}, UserFilter{Page: 3, Limit: 200, Query: "ab"}},
		{UserFilter{Page: -1, Limit: 25, Status: " active"}, UserFilter{Page: 1, Limit: 25, Status: "active"}},
		{UserFilter{Page: math.MaxInt, Limit: 200}, UserFilter{Page: maxPage, Limit: 200}},
	}
	for _, tc := range tests {
		if got := tc.in.normalized(); got != tc.want {
			t.Fatalf("normalized(%+v) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
}

func TestUserRepositoryListFilters(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM users WHERE status = \\? AND \\(username LIKE").
		WithArgs("active", "%jo%", "%jo%", "%jo%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
	mock.ExpectQuery("SELECT id, username, name, lastname, status").
		WithArgs("active", "%jo%", "%jo%", "%jo%", 5, 5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "name", "lastname", "status"}).
			AddRow(7, "jdoe", "John", "Doe", "active"))

	repo := UserRepository{DB: db}
	list, total, err := repo.List(context.Background(), UserFilter{Status: "active", Query: "jo", Page: 2, Limit: 5})
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if total != 12 || len(list) != 1 || list[0].Username != "jdoe" {
		t.Fatalf("unexpected result %d %+v", total, list)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepositoryListMatchesWildcardsLiterally(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	like := `%a\%\_b\\%`
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM users WHERE \\(username LIKE").
		WithArgs(like, like, like).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("SELECT id, username").
		WithArgs(like, like, like, 10, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "name", "lastname", "status"}))

	if _, _, err := (UserRepository{DB: db}).List(context.Background(), UserFilter{Query: `a%_b\`}); err != nil {
		t.Fatalf("list error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepositoryListEmptyIsNotNil(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM users$").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("SELECT id, username").WithArgs(10, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "name", "lastname", "status"}))

	list, total, err := UserRepository{DB: db}.List(context.Background(), UserFilter{})
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if list == nil || total != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", list)
	}
}

func TestUserRepositoryGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM users").WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "name", "lastname", "status"}))

	_, err = UserRepository{DB: db}.GetByID(context.Background(), 9)
	if !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUserRepositoryUpdateKeepsPasswordWhenEmpty(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("UPDATE users").
		WithArgs("jdoe", "John", "Doe", "inactive", nil, int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE users").
		WithArgs("ghost", "G", "H", "active", nil, int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := UserRepository{DB: db}
	u := models.User{ID: 3, Username: "jdoe", Name: "John", Lastname: "Doe", Status: "inactive"}
	if err := repo.Update(context.Background(), u, ""); err != nil {
		t.Fatalf("update error: %v", err)
	}
	ghost := models.User{ID: 4, Username: "ghost", Name: "G", Lastname: "H", Status: "active"}
	if err := repo.Update(context.Background(), ghost, ""); !domain.IsNotFound(err) {
		t.Fatalf("expected not found for missing row, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepositoryEnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("information_schema\\.tables").WithArgs("users").
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := (UserRepository{DB: db}).EnsureSchema(context.Background()); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
