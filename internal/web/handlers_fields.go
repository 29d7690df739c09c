package web

import (
	"net/http"

	"github.com/JonMunkholm/facility-export/internal/core"
)

// fieldInfo is one selectable field in the catalog response.
type fieldInfo struct {
	Key   string         `json:"key"`
	Label string         `json:"label"`
	Type  core.ValueType `json:"type"`
}

// fieldGroupInfo is one group of the catalog response.
type fieldGroupInfo struct {
	Group  core.FieldGroup `json:"group"`
	Label  string          `json:"label"`
	Fields []fieldInfo     `json:"fields"`
}

// fieldCatalogResponse lists every exportable field by group.
type fieldCatalogResponse struct {
	Groups        []fieldGroupInfo `json:"groups"`
	TotalFields   int              `json:"total_fields"`
	MaxFacilities int              `json:"max_facilities"`
}

// handleListFields returns the field catalog grouped for the selection UI.
func (s *Server) handleListFields(w http.ResponseWriter, r *http.Request) {
	cat := s.service.Catalog()

	resp := fieldCatalogResponse{
		Groups:        make([]fieldGroupInfo, 0, len(cat.Groups())),
		TotalFields:   cat.TotalFieldCount(),
		MaxFacilities: s.service.MaxFacilities(),
	}
	for _, g := range cat.Groups() {
		descs := cat.ByGroup(g)
		info := fieldGroupInfo{Group: g, Label: cat.GroupLabel(g), Fields: make([]fieldInfo, len(descs))}
		for i, d := range descs {
			info.Fields[i] = fieldInfo{Key: d.Key, Label: d.Label, Type: d.Type}
		}
		resp.Groups = append(resp.Groups, info)
	}

	writeJSON(w, resp)
}
