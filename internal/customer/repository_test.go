package customer

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var customerCols = []string{"id", "phone", "name", "email", "created_at"}

func TestRepository_FindOrCreate(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		mock.ExpectQuery(`(?s)INSERT INTO customers \(id, phone\).*ON CONFLICT \(phone\) DO UPDATE.*RETURNING id, phone, name, email, created_at`).
			WithArgs(sqlmock.AnyArg(), "08123").
			WillReturnRows(sqlmock.NewRows(customerCols).AddRow("c1", "08123", nil, nil, now))

		c, err := repo.FindOrCreate(ctx, "08123")
		require.NoError(t, err)
		assert.Equal(t, "c1", c.ID)
		assert.Equal(t, "08123", c.Phone)
		assert.Nil(t, c.Name)
		assert.Nil(t, c.Email)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Existing customer keeps profile", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		mock.ExpectQuery(`INSERT INTO customers`).
			WithArgs(sqlmock.AnyArg(), "08123").
			WillReturnRows(sqlmock.NewRows(customerCols).AddRow("c1", "08123", "Ana", "ana@mail.com", now))

		c, err := repo.FindOrCreate(ctx, "08123")
		require.NoError(t, err)
		require.NotNil(t, c.Name)
		assert.Equal(t, "Ana", *c.Name)
		assert.Equal(t, "ana@mail.com", *c.Email)
	})

	t.Run("DBError", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		mock.ExpectQuery(`INSERT INTO customers`).WillReturnError(errors.New("db error"))

		c, err := repo.FindOrCreate(ctx, "08123")
		assert.Error(t, err)
		assert.Nil(t, c)
	})
}

func TestRepository_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	name := "Ana"

	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		mock.ExpectQuery(`(?s)UPDATE customers\s+SET name = COALESCE\(\$2, name\).*WHERE id = \$1`).
			WithArgs("c1", "Ana", sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows(customerCols).AddRow("c1", "08123", "Ana", nil, now))

		c, err := repo.UpdateProfile(ctx, "c1", ProfileInput{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, "Ana", *c.Name)
		assert.Nil(t, c.Email)
	})

	t.Run("NotFound", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		mock.ExpectQuery(`UPDATE customers`).WillReturnError(sql.ErrNoRows)

		c, err := repo.UpdateProfile(ctx, "missing", ProfileInput{Name: &name})
		assert.ErrorIs(t, err, ErrCustomerNotFound)
		assert.Nil(t, c)
	})
}

func TestRepository_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		mock.ExpectQuery(`SELECT id, phone, name, email, created_at FROM customers WHERE id = \$1`).
			WithArgs("c1").
			WillReturnRows(sqlmock.NewRows(customerCols).AddRow("c1", "08123", nil, nil, time.Now()))

		c, err := repo.GetByID(ctx, "c1")
		require.NoError(t, err)
		assert.Equal(t, "c1", c.ID)
	})

	t.Run("NotFound", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		mock.ExpectQuery(`SELECT .* FROM customers`).WillReturnRows(sqlmock.NewRows(customerCols))

		_, err = repo.GetByID(ctx, "c1")
		assert.ErrorIs(t, err, ErrCustomerNotFound)
	})
}

func TestRepository_WithinTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO customers`).
		WithArgs(sqlmock.AnyArg(), "08123").
		WillReturnRows(sqlmock.NewRows(customerCols).AddRow("c1", "08123", nil, nil, time.Now()))
	mock.ExpectCommit()

	tx, err := db.Begin()
	require.NoError(t, err)

	c, err := NewRepository(tx).FindOrCreate(context.Background(), "08123")
	require.NoError(t, err)
	assert.Equal(t, "c1", c.ID)
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}
