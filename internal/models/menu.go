package models

import (
	"sort"
	"strings"
)

type MenuItem struct {
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
}

// Menu est immuable une fois construit; on le partage par pointeur.
type Menu struct {
	items map[string]MenuItem // clé = nom en minuscules
}

func NewMenu(items ...MenuItem) *Menu {
	m := &Menu{items: make(map[string]MenuItem, len(items))}
	for _, it := range items {
		m.items[strings.ToLower(strings.TrimSpace(it.Name))] = it
	}
	return m
}

func DefaultMenu() *Menu {
	return NewMenu(
		MenuItem{Name: "Veg Pizza", Price: 100, Description: "Pizza topped with seasonal vegetables"},
		MenuItem{Name: "Veggie Delight", Price: 150, Description: "Pizza topped with the most exotic veggies"},
		MenuItem{Name: "Tandoori Paneer", Price: 200, Description: "Pizza topped with tandoori fried Paneer"},
	)
}

// Lookup ignore la casse et les espaces autour du nom.
func (m *Menu) Lookup(name string) (MenuItem, bool) {
	it, ok := m.items[strings.ToLower(strings.TrimSpace(name))]
	return it, ok
}

// Items renvoie une copie triée par nom.
func (m *Menu) Items() []MenuItem {
	out := make([]MenuItem, 0, len(m.items))
	for _, it := range m.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ByName est la forme renvoyée au login : nom → article.
func (m *Menu) ByName() map[string]MenuItem {
	out := make(map[string]MenuItem, len(m.items))
	for _, it := range m.items {
		out[it.Name] = it
	}
	return out
}
