package service

import (
	"testing"

	"contract-redline-be/internal/dto"
	"contract-redline-be/internal/repository/memory"
	"contract-redline-be/pkg/playbook"

	"github.com/stretchr/testify/assert"
)

func TestPersonaServiceResolve(t *testing.T) {
	repo := memory.NewPersonaRepositoryWithDefaults(playbook.DefaultPersonas())
	svc := NewPersonaService(repo)

	name, instructions := svc.Resolve("Buyer Advocate")
	assert.Equal(t, "Buyer Advocate", name)
	assert.Contains(t, instructions, "BUYER")

	// Unknown persona falls back to the default.
	name, instructions = svc.Resolve("No Such Persona")
	assert.Equal(t, playbook.DefaultPersonaName, name)
	assert.NotEmpty(t, instructions)

	// Empty name goes straight to the default.
	name, _ = svc.Resolve("")
	assert.Equal(t, playbook.DefaultPersonaName, name)
}

func TestPersonaServiceResolveEmptyStore(t *testing.T) {
	svc := NewPersonaService(memory.NewPersonaRepository())

	// Nothing registered at all: resolution still yields a usable
	// strategy rather than failing the analysis.
	name, instructions := svc.Resolve("anything")
	assert.Equal(t, playbook.DefaultPersonaName, name)
	assert.NotEmpty(t, instructions)
}

func TestPersonaServiceUpsertAndDelete(t *testing.T) {
	svc := NewPersonaService(memory.NewPersonaRepository())

	resp := svc.Upsert(&dto.UpsertPersonaRequest{Name: "Litigator", Instructions: "fight everything"})
	assert.Equal(t, "Litigator", resp.Name)

	all := svc.GetAll()
	assert.Len(t, all, 1)

	name, instructions := svc.Resolve("Litigator")
	assert.Equal(t, "Litigator", name)
	assert.Equal(t, "fight everything", instructions)

	svc.Delete("Litigator")
	assert.Empty(t, svc.GetAll())
}
