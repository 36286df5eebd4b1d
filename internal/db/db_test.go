package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"review-responder-go/internal/config"
	"review-responder-go/internal/model"
)

func TestInitSQLiteMigrates(t *testing.T) {
	gdb, err := Init(config.DatabaseConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "init.sqlite3"),
	})
	require.NoError(t, err)

	for _, m := range []interface{}{&model.User{}, &model.UserSettings{}, &model.Platform{}, &model.Review{}, &model.ReplyTemplate{}} {
		assert.True(t, gdb.Migrator().HasTable(m))
	}
	assert.True(t, gdb.Migrator().HasIndex(&model.Review{}, "ux_reviews_user_external"))
}

func TestInitRejectsUnknownDriver(t *testing.T) {
	_, err := Init(config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}
