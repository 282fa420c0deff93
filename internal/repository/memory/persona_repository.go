package memory

import (
	"sort"

	"contract-redline-be/internal/entity"
	"contract-redline-be/internal/repository/contract"

	"github.com/patrickmn/go-cache"
)

type PersonaRepository struct {
	cache *cache.Cache
}

var _ contract.PersonaRepository = (*PersonaRepository)(nil)

// NewPersonaRepository creates an in-memory persona store. Personas never
// expire; they live for the process unless deleted.
func NewPersonaRepository() *PersonaRepository {
	return &PersonaRepository{
		cache: cache.New(cache.NoExpiration, 0),
	}
}

// NewPersonaRepositoryWithDefaults seeds the store with a set of named
// strategies (used at bootstrap with the playbook defaults).
func NewPersonaRepositoryWithDefaults(defaults map[string]string) *PersonaRepository {
	repo := NewPersonaRepository()
	for name, instructions := range defaults {
		repo.Upsert(&entity.Persona{Name: name, Instructions: instructions})
	}
	return repo
}

func (r *PersonaRepository) GetAll() []*entity.Persona {
	items := r.cache.Items()
	personas := make([]*entity.Persona, 0, len(items))
	for _, item := range items {
		personas = append(personas, item.Object.(*entity.Persona))
	}
	sort.Slice(personas, func(i, j int) bool {
		return personas[i].Name < personas[j].Name
	})
	return personas
}

func (r *PersonaRepository) Get(name string) (*entity.Persona, bool) {
	if x, found := r.cache.Get(name); found {
		return x.(*entity.Persona), true
	}
	return nil, false
}

func (r *PersonaRepository) Upsert(persona *entity.Persona) {
	r.cache.Set(persona.Name, persona, cache.NoExpiration)
}

func (r *PersonaRepository) Delete(name string) {
	r.cache.Delete(name)
}
