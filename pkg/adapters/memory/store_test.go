package memory_test

import (
	"testing"

	"github.com/aretw0/autograde/pkg/adapters/memory"
	"github.com/aretw0/autograde/pkg/ports"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunProgressStoreContract(t, store)
}
