package repository

import (
	"context"
	"sync"

	"github.com/jovas-007/Olap-practica-jovas/internal/domain"
)

// MemoryWarehouse guarda el esquema estrella en memoria. Asigna ids
// sustitutos igual que el almacén real y reemplaza hechos por periodo/plan.
type MemoryWarehouse struct {
	mu    sync.Mutex
	keys  domain.KeyMaps
	next  int
	Facts []domain.FactRow
	Runs  []LoadRequest
	Fail  error
}

func NewMemoryWarehouse() *MemoryWarehouse {
	return &MemoryWarehouse{keys: domain.NewKeyMaps()}
}

func (m *MemoryWarehouse) Ping(context.Context) error {
	return m.Fail
}

func (m *MemoryWarehouse) Load(_ context.Context, req LoadRequest) (LoadResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Fail != nil {
		return LoadResult{}, m.Fail
	}

	keys := m.snapshot()
	for _, d := range domain.Weekdays() {
		assign(keys.Days, d.Code, &m.next)
	}
	for _, t := range req.Dims.Teachers {
		assign(keys.Teachers, t, &m.next)
	}
	for _, s := range req.Dims.Subjects {
		assign(keys.Subjects, s.Clave, &m.next)
	}
	for _, g := range req.Dims.Groups {
		assign(keys.Groups, g.NRC, &m.next)
	}
	for _, s := range req.Dims.Spaces {
		assign(keys.Spaces, s, &m.next)
	}

	facts, err := domain.BuildFacts(req.Records, keys)
	if err != nil {
		return LoadResult{}, err
	}

	scopes := factScopes(facts)
	replace := make(map[Scope]bool, len(scopes))
	for _, s := range scopes {
		replace[s] = true
	}
	var (
		kept     []domain.FactRow
		replaced int64
	)
	for _, f := range m.Facts {
		if replace[Scope{Periodo: f.Periodo, Plan: f.Plan}] {
			replaced++
			continue
		}
		kept = append(kept, f)
	}

	m.keys = keys
	m.Facts = append(kept, facts...)
	m.Runs = append(m.Runs, req)
	return LoadResult{Keys: keys, Facts: len(facts), Replaced: replaced, Scopes: scopes}, nil
}

func (m *MemoryWarehouse) snapshot() domain.KeyMaps {
	out := domain.NewKeyMaps()
	for k, v := range m.keys.Teachers {
		out.Teachers[k] = v
	}
	for k, v := range m.keys.Subjects {
		out.Subjects[k] = v
	}
	for k, v := range m.keys.Groups {
		out.Groups[k] = v
	}
	for k, v := range m.keys.Days {
		out.Days[k] = v
	}
	for k, v := range m.keys.Spaces {
		out.Spaces[k] = v
	}
	return out
}

func assign[K comparable](ids map[K]int, key K, next *int) {
	if _, ok := ids[key]; ok {
		return
	}
	*next++
	ids[key] = *next
}
