package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/JonMunkholm/facility-export/internal/core"
)

// One query per relation per call; ids are passed as a bigint array.
const (
	selectFacilities = `
SELECT *
FROM facilities
WHERE id = ANY($1)`

	selectLandInfos = `
SELECT *
FROM facility_land_infos
WHERE facility_id = ANY($1)`

	selectBuildingInfos = `
SELECT *
FROM facility_building_infos
WHERE facility_id = ANY($1)`

	selectLifelineEquipment = `
SELECT facility_id, category, attributes
FROM facility_lifeline_equipment
WHERE facility_id = ANY($1)`

	selectContracts = `
SELECT facility_id, contract_type, attributes
FROM facility_contracts
WHERE facility_id = ANY($1)`

	selectDrawings = `
SELECT facility_id, attributes
FROM facility_drawings
WHERE facility_id = ANY($1)`

	selectMaintenance = `
SELECT *
FROM maintenance_histories
WHERE facility_id = ANY($1)
ORDER BY facility_id, maintenance_date DESC NULLS LAST, id DESC`
)

// FacilityStore loads facility graphs. It implements core.FacilityRepository.
type FacilityStore struct {
	db DBTX
}

// NewFacilityStore creates a store reading through db.
func NewFacilityStore(db DBTX) *FacilityStore {
	return &FacilityStore{db: db}
}

// relationRows holds the raw rows of every relation for one id batch.
type relationRows struct {
	facilities  []map[string]any
	lands       []map[string]any
	buildings   []map[string]any
	lifelines   []map[string]any
	contracts   []map[string]any
	drawings    []map[string]any
	maintenance []map[string]any
}

// LoadGraphs returns the graphs of the ids that exist.
func (s *FacilityStore) LoadGraphs(ctx context.Context, ids []int64) (map[int64]*core.FacilityGraph, error) {
	if len(ids) == 0 {
		return map[int64]*core.FacilityGraph{}, nil
	}

	var rr relationRows
	queries := []struct {
		name string
		sql  string
		dst  *[]map[string]any
	}{
		{"facilities", selectFacilities, &rr.facilities},
		{"land infos", selectLandInfos, &rr.lands},
		{"building infos", selectBuildingInfos, &rr.buildings},
		{"lifeline equipment", selectLifelineEquipment, &rr.lifelines},
		{"contracts", selectContracts, &rr.contracts},
		{"drawings", selectDrawings, &rr.drawings},
		{"maintenance histories", selectMaintenance, &rr.maintenance},
	}

	for _, q := range queries {
		rows, err := s.queryMaps(ctx, q.sql, ids)
		if err != nil {
			return nil, fmt.Errorf("query %s: %w", q.name, err)
		}
		*q.dst = rows
		// Nothing else can match once no facility exists.
		if q.dst == &rr.facilities && len(rows) == 0 {
			return map[int64]*core.FacilityGraph{}, nil
		}
	}

	return assembleGraphs(rr), nil
}

func (s *FacilityStore) queryMaps(ctx context.Context, sql string, ids []int64) ([]map[string]any, error) {
	rows, err := s.db.Query(ctx, sql, ids)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToMap)
}

// assembleGraphs groups relation rows under their facility. Rows whose
// facility is not in the facility set are ignored.
func assembleGraphs(rr relationRows) map[int64]*core.FacilityGraph {
	graphs := make(map[int64]*core.FacilityGraph, len(rr.facilities))
	for _, row := range rr.facilities {
		id, ok := rowID(row, "id")
		if !ok {
			continue
		}
		graphs[id] = &core.FacilityGraph{Facility: core.Record(row)}
	}

	for _, row := range rr.lands {
		if g := graphFor(graphs, row); g != nil && g.Land == nil {
			g.Land = core.Record(row)
		}
	}
	for _, row := range rr.buildings {
		if g := graphFor(graphs, row); g != nil && g.Building == nil {
			g.Building = core.Record(row)
		}
	}
	for _, row := range rr.lifelines {
		g := graphFor(graphs, row)
		category, _ := row["category"].(string)
		if g == nil || category == "" {
			continue
		}
		if g.Lifelines == nil {
			g.Lifelines = make(map[string]core.Record)
		}
		g.Lifelines[category] = mergeAttributes(g.Lifelines[category], row["attributes"])
	}
	for _, row := range rr.contracts {
		g := graphFor(graphs, row)
		section, _ := row["contract_type"].(string)
		if g == nil || section == "" {
			continue
		}
		if g.Contracts == nil {
			g.Contracts = make(map[string]core.Record)
		}
		g.Contracts[section] = mergeAttributes(g.Contracts[section], row["attributes"])
	}
	for _, row := range rr.drawings {
		if g := graphFor(graphs, row); g != nil {
			g.Drawings = mergeAttributes(g.Drawings, row["attributes"])
		}
	}
	// Rows arrive newest first per facility.
	for _, row := range rr.maintenance {
		if g := graphFor(graphs, row); g != nil {
			g.Maintenance = append(g.Maintenance, core.Record(row))
		}
	}

	return graphs
}

func graphFor(graphs map[int64]*core.FacilityGraph, row map[string]any) *core.FacilityGraph {
	id, ok := rowID(row, "facility_id")
	if !ok {
		return nil
	}
	return graphs[id]
}

func rowID(row map[string]any, col string) (int64, bool) {
	switch v := row[col].(type) {
	case int64:
		return v, true
	case int32:
		return int64(v), true
	case int:
		return int64(v), true
	default:
		return 0, false
	}
}

// mergeAttributes folds a jsonb attributes object into rec. Earlier keys
// win so the first row of a category is authoritative.
func mergeAttributes(rec core.Record, attrs any) core.Record {
	if rec == nil {
		rec = core.Record{}
	}
	m, ok := attrs.(map[string]any)
	if !ok {
		return rec
	}
	for k, v := range m {
		if _, exists := rec[k]; !exists {
			rec[k] = v
		}
	}
	return rec
}
