package services

import (
	"testing"

	"github.com/kendall-kelly/mill-ops-console/models"
	"github.com/kendall-kelly/mill-ops-console/tests/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var testLogger = zap.NewNop()

func newTestDB(t *testing.T) *gorm.DB {
	return testutil.NewTestDB(t)
}

func activityTypes(t *testing.T, db *gorm.DB) []string {
	t.Helper()

	var logs []models.ActivityLog
	require.NoError(t, db.Order("id").Find(&logs).Error)

	types := make([]string, len(logs))
	for i, l := range logs {
		types[i] = l.ActivityType
	}
	return types
}
