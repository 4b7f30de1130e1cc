package repository_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/stylemail-dev/stylemail/pkg/domain/interfaces"
	"github.com/stylemail-dev/stylemail/pkg/repository/firestore"
	"github.com/stylemail-dev/stylemail/pkg/repository/memory"
	"github.com/stylemail-dev/stylemail/pkg/repository/sqlite"
)

// backends returns a factory per repository backend. Firestore runs
// only when TEST_FIRESTORE_PROJECT is set.
func backends(t *testing.T) map[string]func(t *testing.T) interfaces.Repository {
	t.Helper()

	return map[string]func(t *testing.T) interfaces.Repository{
		"memory": func(t *testing.T) interfaces.Repository {
			return memory.New()
		},
		"sqlite": func(t *testing.T) interfaces.Repository {
			repo, err := sqlite.New(filepath.Join(t.TempDir(), "stylemail.db"))
			gt.NoError(t, err).Required()
			t.Cleanup(func() { _ = repo.Close() })
			return repo
		},
		"firestore": func(t *testing.T) interfaces.Repository {
			projectID := os.Getenv("TEST_FIRESTORE_PROJECT")
			if projectID == "" {
				t.Skip("TEST_FIRESTORE_PROJECT not set")
			}
			repo, err := firestore.New(context.Background(), projectID, os.Getenv("TEST_FIRESTORE_DATABASE"))
			gt.NoError(t, err).Required()
			t.Cleanup(func() { _ = repo.Close() })
			return repo
		},
	}
}
