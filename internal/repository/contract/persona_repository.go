package contract

import "contract-redline-be/internal/entity"

// PersonaRepository is the injected, explicitly-owned persona store.
// Personas are runtime-mutable; keeping the store behind an interface lets
// tests run with isolated persona sets concurrently instead of sharing a
// process-wide map.
type PersonaRepository interface {
	GetAll() []*entity.Persona
	Get(name string) (*entity.Persona, bool)
	Upsert(persona *entity.Persona)
	Delete(name string)
}
