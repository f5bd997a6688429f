package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/Fund-NAV-Estimator/internal/testutil"
	"github.com/ndewijer/Fund-NAV-Estimator/internal/version"
)

func TestSystemService(t *testing.T) {
	ctx := context.Background()

	t.Run("healthy database passes", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestSystemService(t, db)

		assert.NoError(t, svc.CheckHealth(ctx))
	})

	t.Run("closed database fails", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestSystemService(t, db)
		db.Close()

		assert.Error(t, svc.CheckHealth(ctx))
	})

	t.Run("version info reports app and schema versions", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestSystemService(t, db)

		info, err := svc.GetVersionInfo(ctx)

		require.NoError(t, err)
		assert.Equal(t, version.Version, info.AppVersion)
		assert.Equal(t, "3", info.DbVersion)
		assert.Contains(t, info.Features, "scheduled_refresh")
	})
}
