package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"useradmin/internal/domain/models"
	"useradmin/internal/listing"
)

func TestPrintUsersTable(t *testing.T) {
	var buf bytes.Buffer
	page := models.UserPage{Data: []models.User{{ID: 7, Username: "jdoe", Name: "John", Lastname: "Doe", Status: "active"}}, TotalUsers: 21}
	if err := printUsers(&buf, "table", page, listing.Pagination{Page: 2, PageSize: 10}); err != nil {
		t.Fatalf("print: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"USUARIO", "jdoe", "Activo", "page 2/3, 21 users"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	if err := printUsers(&buf, "yaml", page, listing.Pagination{}); err == nil {
		t.Fatal("unknown format should fail")
	}
}

func TestListCommandSendsQuery(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = map[string]string{}
		for k := range r.URL.Query() {
			got[k] = r.URL.Query().Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(models.UserPage{Data: []models.User{{ID: 1, Username: "ana", Status: "inactive"}}, TotalUsers: 1})
	}))
	defer srv.Close()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"users", "list", "--api-url", srv.URL, "--status", "inactive", "-q", "an", "--page", "2", "-o", "json"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	want := map[string]string{"status": "inactive", "q": "an", "_page": "2", "_limit": "10"}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("param %s = %q, want %q (all %v)", k, got[k], v, got)
		}
	}
	if !strings.Contains(out.String(), `"totalUsers": 1`) {
		t.Fatalf("json output missing total:\n%s", out.String())
	}
}

func TestDeleteRequiresYes(t *testing.T) {
	rootCmd.SetArgs([]string{"users", "delete", "3", "--api-url", "http://127.0.0.1:1"})
	err := rootCmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "--yes") {
		t.Fatalf("expected confirmation error, got %v", err)
	}
}
