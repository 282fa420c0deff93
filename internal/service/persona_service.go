package service

import (
	"contract-redline-be/internal/dto"
	"contract-redline-be/internal/entity"
	"contract-redline-be/internal/repository/contract"
	"contract-redline-be/pkg/playbook"
)

type IPersonaService interface {
	GetAll() []*dto.PersonaResponse
	Upsert(req *dto.UpsertPersonaRequest) *dto.PersonaResponse
	Delete(name string)
	// Resolve returns the instructions for a named persona, falling back
	// to the default persona, then to a minimal neutral strategy. It
	// never fails: every analysis must run with some strategy.
	Resolve(name string) (string, string)
}

type personaService struct {
	repo contract.PersonaRepository
}

func NewPersonaService(repo contract.PersonaRepository) IPersonaService {
	return &personaService{repo: repo}
}

func (s *personaService) GetAll() []*dto.PersonaResponse {
	personas := s.repo.GetAll()
	out := make([]*dto.PersonaResponse, len(personas))
	for i, p := range personas {
		out[i] = &dto.PersonaResponse{Name: p.Name, Instructions: p.Instructions}
	}
	return out
}

func (s *personaService) Upsert(req *dto.UpsertPersonaRequest) *dto.PersonaResponse {
	s.repo.Upsert(&entity.Persona{Name: req.Name, Instructions: req.Instructions})
	return &dto.PersonaResponse{Name: req.Name, Instructions: req.Instructions}
}

func (s *personaService) Delete(name string) {
	s.repo.Delete(name)
}

func (s *personaService) Resolve(name string) (string, string) {
	if name != "" {
		if p, ok := s.repo.Get(name); ok {
			return p.Name, p.Instructions
		}
	}
	if p, ok := s.repo.Get(playbook.DefaultPersonaName); ok {
		return p.Name, p.Instructions
	}
	return playbook.DefaultPersonaName, "Act as a prudent, balanced legal counsel."
}
