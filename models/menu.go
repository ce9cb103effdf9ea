package models

// MenuItem is static, read-only catalog data.
type MenuItem struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Price           int64  `json:"price"`
	PreparationTime int64  `json:"preparationTime"` // millis
	Capacity        int    `json:"capacity"`
}

type Menu map[string]MenuItem

func DefaultMenu() Menu {
	return Menu{
		"WATER":        {ID: "WATER", Name: "水", Price: 0, PreparationTime: 1000, Capacity: 5},
		"BLACK_COFFEE": {ID: "BLACK_COFFEE", Name: "咖啡", Price: 100, PreparationTime: 3000, Capacity: 10},
		"BLACK_TEA":    {ID: "BLACK_TEA", Name: "紅茶", Price: 80, PreparationTime: 2000, Capacity: 8},
	}
}

func (m Menu) Lookup(key string) (MenuItem, bool) {
	item, ok := m[key]
	return item, ok
}
