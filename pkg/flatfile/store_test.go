package flatfile_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/bazaar/pkg/flatfile"
	"github.com/mesh-intelligence/bazaar/pkg/types"
)

// userWrapper is the shape of the typed wrappers built on the store.
type userWrapper struct {
	store types.Store
}

func (w userWrapper) CreateUser(email, name string) (types.Record, error) {
	return w.store.Create(types.UsersCollection, types.Record{
		"email": types.String(email),
		"name":  types.String(name),
		"role":  types.String("renter"),
	})
}

func (w userWrapper) FindByEmail(email string) (types.Record, error) {
	return w.store.FindUnique(types.UsersCollection, types.Filter{"email": types.String(email)})
}

func (w userWrapper) Rename(id, name string) (types.Record, error) {
	return w.store.Update(types.UsersCollection, types.Filter{"id": types.String(id)}, types.Record{"name": types.String(name)})
}

func TestStoreThroughWrapper(t *testing.T) {
	store, err := flatfile.NewStore(types.DefaultConfig(t.TempDir()), nil)
	require.NoError(t, err)
	require.NoError(t, store.Initialize())

	users := userWrapper{store: store}
	created, err := users.CreateUser("ana@example.com", "Ana")
	require.NoError(t, err)

	found, err := users.FindByEmail("ana@example.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, created.ID(), found.ID())
	assert.True(t, found["phone"].IsNull())

	renamed, err := users.Rename(created.ID(), "Ana B.")
	require.NoError(t, err)
	assert.True(t, renamed["name"].Equal(types.String("Ana B.")))
	assert.True(t, renamed["email"].Equal(types.String("ana@example.com")))

	_, err = users.Rename("missing", "x")
	assert.True(t, errors.Is(err, types.ErrNotFound))

	require.NoError(t, store.Cleanup())
}

func TestNewStoreRejectsInvalidConfig(t *testing.T) {
	_, err := flatfile.NewStore(types.Config{}, nil)
	assert.ErrorIs(t, err, types.ErrDataDirEmpty)
}
