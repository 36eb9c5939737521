package integration

import (
	"context"
	"flag"
	"fmt"
	"os"
	"testing"
)

var testDB *TestDB

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(0)
	}

	ctx := context.Background()

	var err error
	testDB, err = SetupTestDatabase(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "integration setup failed: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()

	if err := testDB.Teardown(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "integration teardown failed: %v\n", err)
	}
	os.Exit(code)
}

func resetTables(t *testing.T) {
	t.Helper()
	if err := testDB.CleanupTables(context.Background()); err != nil {
		t.Fatalf("failed to reset tables: %v", err)
	}
}
