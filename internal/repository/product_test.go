package repository

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalogweb/internal/apperr"
	"catalogweb/internal/model"
	"catalogweb/pkg/ptr"
)

func newMockRepo(t *testing.T) (pgxmock.PgxPoolIface, ProductRepository) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return mock, NewProductRepository(mock)
}

var productColumns = []string{"id", "external_id", "title", "price", "image_url", "description", "variants", "updated_at"}

func TestSaveReturnsStorageAssignedID(t *testing.T) {
	mock, repo := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery("INSERT INTO products").
		WithArgs(int64(42), "Blue Shirt", pgxmock.AnyArg(), (*string)(nil), (*string)(nil), (*string)(nil)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "updated_at"}).AddRow(int64(7), now))

	saved, err := repo.Save(context.Background(), model.Product{
		ExternalID: 42,
		Title:      "Blue Shirt",
		Price:      19.99,
	})
	require.NoError(t, err)

	assert.EqualValues(t, 7, saved.ID)
	assert.EqualValues(t, 42, saved.ExternalID)
	assert.Equal(t, now, saved.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveKeepsIDStableAcrossUpserts(t *testing.T) {
	mock, repo := newMockRepo(t)
	now := time.Now()

	// Same external id, differing title: the conflict branch fires and the
	// storage id stays the same.
	mock.ExpectQuery("INSERT INTO products").
		WithArgs(int64(42), "Blue Shirt", pgxmock.AnyArg(), (*string)(nil), (*string)(nil), (*string)(nil)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "updated_at"}).AddRow(int64(7), now))
	mock.ExpectQuery("INSERT INTO products").
		WithArgs(int64(42), "Red Shirt", pgxmock.AnyArg(), (*string)(nil), (*string)(nil), (*string)(nil)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "updated_at"}).AddRow(int64(7), now))

	first, err := repo.Save(context.Background(), model.Product{ExternalID: 42, Title: "Blue Shirt"})
	require.NoError(t, err)
	second, err := repo.Save(context.Background(), model.Product{ExternalID: 42, Title: "Red Shirt"})
	require.NoError(t, err)

	require.NotZero(t, first.ID)
	assert.Equal(t, first.ID, second.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindAllOrdersByTitle(t *testing.T) {
	mock, repo := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery("SELECT (.+) FROM products ORDER BY title ASC").
		WillReturnRows(pgxmock.NewRows(productColumns).
			AddRow(int64(1), int64(100), "Blue Pants", "29.99", (*string)(nil), (*string)(nil), (*string)(nil), now).
			AddRow(int64(2), int64(101), "Blue Shirt", "19.99", ptr.New("https://img"), ptr.New("desc"), ptr.New("[]"), now))

	products, err := repo.FindAll(context.Background())
	require.NoError(t, err)

	require.Len(t, products, 2)
	assert.Equal(t, "Blue Pants", products[0].Title)
	assert.Equal(t, 29.99, products[0].Price)
	assert.Nil(t, products[0].ImageURL)
	assert.Equal(t, "Blue Shirt", products[1].Title)
	require.NotNil(t, products[1].ImageURL)
	assert.Equal(t, "https://img", *products[1].ImageURL)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchByTitlePassesQuery(t *testing.T) {
	mock, repo := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery("SELECT (.+) FROM products WHERE title ILIKE").
		WithArgs("shirt").
		WillReturnRows(pgxmock.NewRows(productColumns).
			AddRow(int64(2), int64(101), "Blue Shirt", "19.99", (*string)(nil), (*string)(nil), (*string)(nil), now))

	products, err := repo.SearchByTitle(context.Background(), "shirt")
	require.NoError(t, err)

	require.Len(t, products, 1)
	assert.Equal(t, "Blue Shirt", products[0].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByID(t *testing.T) {
	mock, repo := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery("SELECT (.+) FROM products WHERE id =").
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows(productColumns).
			AddRow(int64(7), int64(42), "Blue Shirt", "19.99", (*string)(nil), (*string)(nil), (*string)(nil), now))

	product, err := repo.FindByID(context.Background(), 7)
	require.NoError(t, err)

	assert.EqualValues(t, 7, product.ID)
	assert.EqualValues(t, 42, product.ExternalID)
	assert.Equal(t, 19.99, product.Price)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByIDMissReturnsNotFound(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM products WHERE id =").
		WithArgs(int64(99)).
		WillReturnRows(pgxmock.NewRows(productColumns))

	_, err := repo.FindByID(context.Background(), 99)
	assert.ErrorIs(t, err, apperr.ProductNotFoundErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectExec("UPDATE products").
		WithArgs("Red Shirt", pgxmock.AnyArg(), (*string)(nil), (*string)(nil), int64(7)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.Update(context.Background(), model.Product{ID: 7, Title: "Red Shirt", Price: 24.99})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateUnknownIDReturnsNotFound(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectExec("UPDATE products").
		WithArgs("Red Shirt", pgxmock.AnyArg(), (*string)(nil), (*string)(nil), int64(99)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Update(context.Background(), model.Product{ID: 99, Title: "Red Shirt"})
	assert.ErrorIs(t, err, apperr.ProductNotFoundErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteByID(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectExec("DELETE FROM products WHERE id =").
		WithArgs(int64(7)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec("DELETE FROM products WHERE id =").
		WithArgs(int64(7)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	deleted, err := repo.DeleteByID(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.DeleteByID(context.Background(), 7)
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}
