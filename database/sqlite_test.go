package database

import "testing"

func TestDSN(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{name: "memory", path: ":memory:", want: ":memory:"},
		{name: "file", path: "blog.db", want: "blog.db?_busy_timeout=5000&_foreign_keys=on"},
		{name: "file with params", path: "blog.db?cache=shared", want: "blog.db?cache=shared&_busy_timeout=5000&_foreign_keys=on"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := dsn(tt.path); got != tt.want {
				t.Errorf("dsn(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestOpenSQLite_Memory(t *testing.T) {
	db, err := OpenSQLite(":memory:", false)
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	defer Close(db)

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("DB() error = %v", err)
	}
	if got := sqlDB.Stats().MaxOpenConnections; got != 1 {
		t.Errorf("MaxOpenConnections = %d, want 1", got)
	}
}
