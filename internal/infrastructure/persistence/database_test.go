package persistence

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	apporder "github.com/boutique/storefront/internal/application/order"
	"github.com/boutique/storefront/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockDatabase creates a Database instance with a mocked SQL connection
func newMockDatabase(t *testing.T) (*Database, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
	})
	require.NoError(t, err)

	return &Database{DB: gormDB}, mock, mockDB
}

func TestDatabase_Ping(t *testing.T) {
	t.Run("successful ping", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectPing()

		assert.NoError(t, db.Ping(context.Background()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ping failure is returned", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectPing().WillReturnError(errors.New("connection refused"))

		assert.Error(t, db.Ping(context.Background()))
	})
}

func TestDatabase_Stats(t *testing.T) {
	db, _, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	stats, err := db.Stats()

	assert.NoError(t, err)
	assert.GreaterOrEqual(t, stats.OpenConnections, 0)
	assert.Equal(t, stats.OpenConnections, stats.InUse+stats.Idle)
}

func TestDatabase_Close(t *testing.T) {
	db, mock, _ := newMockDatabase(t)

	mock.ExpectClose()

	assert.NoError(t, db.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormProductRepository_FindByIDForUpdate_LocksRow(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	rows := sqlmock.NewRows([]string{"id", "name", "price", "stock", "category"}).
		AddRow(1, "Ring", "1500.00", 4, "jewelry")
	mock.ExpectQuery(`SELECT \* FROM "products" WHERE id = \$1 .*FOR UPDATE`).
		WillReturnRows(rows)

	p, err := NewGormProductRepository(db.DB).FindByIDForUpdate(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, 4, p.Stock)
	assert.Equal(t, "1500", p.Price.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormTransactionScope_SQL(t *testing.T) {
	ctx := context.Background()

	t.Run("commit wraps locked read and update", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "products" WHERE id = \$1 .*FOR UPDATE`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "stock"}).AddRow(1, "Ring", 4))
		mock.ExpectExec(`UPDATE "products" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := NewGormTransactionScope(db.DB).Execute(ctx, func(repos apporder.TransactionalRepositories) error {
			p, err := repos.Products().FindByIDForUpdate(ctx, 1)
			if err != nil {
				return err
			}
			if err := p.DecreaseStock(1); err != nil {
				return err
			}
			return repos.Products().UpdateStock(ctx, p.ID, p.Stock)
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insufficient stock rolls back", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "products" WHERE id = \$1 .*FOR UPDATE`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "stock"}).AddRow(1, "Ring", 1))
		mock.ExpectRollback()

		err := NewGormTransactionScope(db.DB).Execute(ctx, func(repos apporder.TransactionalRepositories) error {
			p, err := repos.Products().FindByIDForUpdate(ctx, 1)
			if err != nil {
				return err
			}
			return p.DecreaseStock(2)
		})

		assert.ErrorIs(t, err, shared.ErrInvalidRequest)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
