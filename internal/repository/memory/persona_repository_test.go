package memory

import (
	"testing"

	"contract-redline-be/internal/entity"
	"contract-redline-be/pkg/playbook"

	"github.com/stretchr/testify/assert"
)

func TestPersonaRepositoryCRUD(t *testing.T) {
	repo := NewPersonaRepository()

	_, found := repo.Get("missing")
	assert.False(t, found)

	repo.Upsert(&entity.Persona{Name: "Buyer Advocate", Instructions: "push risk to seller"})
	p, found := repo.Get("Buyer Advocate")
	assert.True(t, found)
	assert.Equal(t, "push risk to seller", p.Instructions)

	repo.Upsert(&entity.Persona{Name: "Buyer Advocate", Instructions: "updated"})
	p, _ = repo.Get("Buyer Advocate")
	assert.Equal(t, "updated", p.Instructions)

	repo.Delete("Buyer Advocate")
	_, found = repo.Get("Buyer Advocate")
	assert.False(t, found)
}

func TestPersonaRepositoryGetAllSorted(t *testing.T) {
	repo := NewPersonaRepository()
	repo.Upsert(&entity.Persona{Name: "Zeta"})
	repo.Upsert(&entity.Persona{Name: "Alpha"})
	repo.Upsert(&entity.Persona{Name: "Mid"})

	all := repo.GetAll()
	assert.Len(t, all, 3)
	assert.Equal(t, "Alpha", all[0].Name)
	assert.Equal(t, "Mid", all[1].Name)
	assert.Equal(t, "Zeta", all[2].Name)
}

func TestPersonaRepositoryDefaults(t *testing.T) {
	repo := NewPersonaRepositoryWithDefaults(playbook.DefaultPersonas())

	p, found := repo.Get(playbook.DefaultPersonaName)
	assert.True(t, found)
	assert.NotEmpty(t, p.Instructions)

	assert.Len(t, repo.GetAll(), len(playbook.DefaultPersonas()))
}
