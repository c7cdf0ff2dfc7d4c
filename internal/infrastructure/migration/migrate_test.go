package migration

import (
	"errors"
	"strings"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockMigrator - мок для интерфейса Migrator
type MockMigrator struct {
	mock.Mock
}

func (m *MockMigrator) Up() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockMigrator) Close() (error, error) {
	args := m.Called()
	return args.Error(0), args.Error(1)
}

func TestMigration_Up_Success(t *testing.T) {
	mockM := new(MockMigrator)

	// Настраиваем поведение
	mockM.On("Up").Return(nil)
	mockM.On("Close").Return(nil, nil)

	// Инжектим мок через фабрику
	var gotDialect Dialect
	engine := func(dialect Dialect, db string) (Migrator, error) {
		gotDialect = dialect
		return mockM, nil
	}

	mg := NewMigration(DialectSQLite, SQLiteURL("/tmp/catalog.db"), engine)
	err := mg.Up()

	assert.NoError(t, err)
	assert.Equal(t, DialectSQLite, gotDialect)
	mockM.AssertExpectations(t)
}

func TestMigration_Up_NoChange(t *testing.T) {
	mockM := new(MockMigrator)

	// ErrNoChange не должна считаться ошибкой в методе Up()
	mockM.On("Up").Return(migrate.ErrNoChange)
	mockM.On("Close").Return(nil, nil)

	engine := func(Dialect, string) (Migrator, error) {
		return mockM, nil
	}

	err := NewMigration(DialectPostgres, "", engine).Up()

	assert.NoError(t, err)
}

func TestMigration_Up_Failure(t *testing.T) {
	mockM := new(MockMigrator)
	mockM.On("Up").Return(errors.New("dirty database"))
	mockM.On("Close").Return(nil, errors.New("db close"))

	engine := func(Dialect, string) (Migrator, error) {
		return mockM, nil
	}

	err := NewMigration(DialectPostgres, "", engine).Up()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "dirty database")
	assert.Contains(t, err.Error(), "db close")
}

func TestMigration_Up_EngineError(t *testing.T) {
	// Ошибка на этапе создания мигратора (например, неверный драйвер)
	engine := func(Dialect, string) (Migrator, error) {
		return nil, errors.New("engine crash")
	}

	err := NewMigration(DialectPostgres, "", engine).Up()

	assert.Error(t, err)
	assert.Equal(t, "engine crash", err.Error())
}

func TestEmbeddedMigrations(t *testing.T) {
	for _, d := range []Dialect{DialectPostgres, DialectSQLite} {
		entries, err := migrations.ReadDir("sql/" + string(d))
		require.NoError(t, err)

		var up int
		for _, e := range entries {
			if strings.HasSuffix(e.Name(), ".up.sql") {
				up++
			}
		}
		assert.Positive(t, up, string(d))
	}
}
