package models

// Site is a construction project location owning stock ledgers.
type Site struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Material is a catalog entry for a trackable item such as cement or steel.
type Material struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Unit       string   `json:"unit"`
	Categories []string `json:"categories"`
}

// MaterialInfo is the catalog projection embedded in history responses.
type MaterialInfo struct {
	Name       string   `json:"productName"`
	Unit       string   `json:"UnitofMeasurement"`
	Categories []string `json:"category"`
}

const unknownField = "N/A"

// InfoOf projects a material, using "N/A" placeholders for missing fields.
func InfoOf(m *Material) MaterialInfo {
	info := MaterialInfo{Name: unknownField, Unit: unknownField, Categories: []string{}}
	if m == nil {
		return info
	}
	if m.Name != "" {
		info.Name = m.Name
	}
	if m.Unit != "" {
		info.Unit = m.Unit
	}
	if len(m.Categories) > 0 {
		info.Categories = append([]string(nil), m.Categories...)
	}
	return info
}
