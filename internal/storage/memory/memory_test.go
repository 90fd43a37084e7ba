package memory

import (
	"testing"

	"expenses/internal/storage"
	"expenses/internal/storage/storetest"
)

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) storage.Store {
		return New()
	})
}
