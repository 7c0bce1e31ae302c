package bootstrap

import (
	"testing"

	"anoa.com/plantspeak/internal/entity"
	"anoa.com/plantspeak/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func TestSeedDemoUserIsIdempotent(t *testing.T) {
	db := testutil.NewDB(t)

	require.NoError(t, SeedDemoUser(db, zap.NewNop()))
	require.NoError(t, SeedDemoUser(db, zap.NewNop()))

	var users []entity.User
	require.NoError(t, db.Where("username = ?", demoUsername).Find(&users).Error)
	require.Len(t, users, 1)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(users[0].PasswordHash), []byte(demoPassword)))
	assert.Nil(t, users[0].Email)
}
