package postgres

import (
	"io/fs"
	"strings"
	"testing"
)

func TestDriverURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"postgres://u:p@localhost:5432/linkdex?sslmode=disable", "pgx5://u:p@localhost:5432/linkdex?sslmode=disable"},
		{"postgresql://localhost/linkdex", "pgx5://localhost/linkdex"},
		{"pgx5://localhost/linkdex", "pgx5://localhost/linkdex"},
	}
	for _, tt := range tests {
		if got := driverURL(tt.in); got != tt.want {
			t.Errorf("driverURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		t.Fatalf("read migrations: %v", err)
	}
	ups, downs := 0, 0
	for _, e := range entries {
		switch {
		case strings.HasSuffix(e.Name(), ".up.sql"):
			ups++
		case strings.HasSuffix(e.Name(), ".down.sql"):
			downs++
		}
	}
	if ups == 0 || ups != downs {
		t.Errorf("got %d up and %d down migrations", ups, downs)
	}
}

func TestCostRecordsMigrationHasNoMutations(t *testing.T) {
	data, err := fs.ReadFile(migrationsFS, "migrations/000002_cost_records.up.sql")
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	sql := strings.ToUpper(string(data))
	if strings.Contains(sql, "UPDATE ") || strings.Contains(sql, "DELETE ") {
		t.Error("cost_records migration must not mutate rows")
	}
}
