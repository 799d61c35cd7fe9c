// Copyright (c) 2026 Tuber. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package migration_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/tuber/internal/platform/migration"
)

/*
TestToPgx5DSN verifies scheme rewriting for golang-migrate.
*/
func TestToPgx5DSN(t *testing.T) {
	tests := map[string]string{
		"postgres://u:p@localhost:5432/tuber":   "pgx5://u:p@localhost:5432/tuber",
		"postgresql://u:p@localhost:5432/tuber": "pgx5://u:p@localhost:5432/tuber",
		"pgx5://u:p@localhost:5432/tuber":       "pgx5://u:p@localhost:5432/tuber",
		"host=localhost dbname=tuber":           "host=localhost dbname=tuber",
	}

	for in, want := range tests {
		assert.Equal(t, want, migration.ToPgx5DSN(in))
	}
}

/*
TestEmbeddedSource verifies the account migration is compiled in.
*/
func TestEmbeddedSource(t *testing.T) {
	driver, err := migration.EmbeddedSource()
	require.NoError(t, err)
	defer driver.Close()

	version, err := driver.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)

	reader, identifier, err := driver.ReadUp(version)
	require.NoError(t, err)
	defer reader.Close()
	assert.Equal(t, "create_accounts", identifier)
}
