package core

import (
	"time"
)

// Lifeline categories as stored on lifeline equipment rows.
const (
	LifelineElectrical = "electrical"
	LifelineWater      = "water"
	LifelineGas        = "gas"
	LifelineElevator   = "elevator"
	LifelineHVAC       = "hvac_lighting"
	LifelineSecurity   = "security_disaster"
)

// entityAccessor locates the entity a field reads from. section is the
// descriptor's Section.
type entityAccessor func(g *FacilityGraph, section string) (Record, bool)

// BuilderOptions configures row construction.
type BuilderOptions struct {
	// MissingRelationValue is emitted for every field of a group whose
	// related entity does not exist.
	MissingRelationValue string
}

// Builder turns facility graphs into ordered export rows. It holds no
// per-call state and is safe for concurrent use.
type Builder struct {
	catalog   *Catalog
	formatter *Formatter
	opts      BuilderOptions
	accessors map[FieldGroup]entityAccessor
}

// NewBuilder creates a builder over catalog using formatter for values.
func NewBuilder(catalog *Catalog, formatter *Formatter, opts BuilderOptions) *Builder {
	return &Builder{
		catalog:   catalog,
		formatter: formatter,
		opts:      opts,
		accessors: map[FieldGroup]entityAccessor{
			GroupFacility:    func(g *FacilityGraph, _ string) (Record, bool) { return g.Facility, g.Facility != nil },
			GroupLand:        func(g *FacilityGraph, _ string) (Record, bool) { return g.Land, g.Land != nil },
			GroupBuilding:    func(g *FacilityGraph, _ string) (Record, bool) { return g.Building, g.Building != nil },
			GroupElectrical:  lifelineAccessor(LifelineElectrical),
			GroupWater:       lifelineAccessor(LifelineWater),
			GroupGas:         lifelineAccessor(LifelineGas),
			GroupElevator:    lifelineAccessor(LifelineElevator),
			GroupHVAC:        lifelineAccessor(LifelineHVAC),
			GroupLighting:    lifelineAccessor(LifelineHVAC),
			GroupSecurity:    lifelineAccessor(LifelineSecurity),
			GroupContract:    contractAccessor,
			GroupDrawing:     func(g *FacilityGraph, _ string) (Record, bool) { return g.Drawings, g.Drawings != nil },
			GroupMaintenance: maintenanceAccessor,
		},
	}
}

func lifelineAccessor(category string) entityAccessor {
	return func(g *FacilityGraph, _ string) (Record, bool) {
		rec, ok := g.Lifelines[category]
		return rec, ok && rec != nil
	}
}

func contractAccessor(g *FacilityGraph, section string) (Record, bool) {
	rec, ok := g.Contracts[section]
	return rec, ok && rec != nil
}

// maintenanceAccessor exposes the most recent maintenance record together
// with the number of records on file.
func maintenanceAccessor(g *FacilityGraph, _ string) (Record, bool) {
	if len(g.Maintenance) == 0 {
		return nil, false
	}
	latest := make(Record, len(g.Maintenance[0])+1)
	for k, v := range g.Maintenance[0] {
		latest[k] = v
	}
	latest["record_count"] = int64(len(g.Maintenance))
	return latest, true
}

// Catalog returns the builder's field catalog.
func (b *Builder) Catalog() *Catalog {
	return b.catalog
}

// Headers returns the labels for keys, in the same order and with the same
// skipping rules as Build.
func (b *Builder) Headers(keys []string) []FieldLabel {
	return b.catalog.LabelsFor(keys)
}

// Build formats the fields named by keys for one facility. Cells follow the
// order of keys. Unknown and repeated keys are skipped, matching Headers.
func (b *Builder) Build(g *FacilityGraph, keys []string) ExportRow {
	row := ExportRow{
		FacilityID: g.ID(),
		Cells:      make([]RowCell, 0, len(keys)),
	}

	cache := make(map[string]entityLookup)
	seen := make(map[string]bool, len(keys))
	for _, key := range keys {
		if seen[key] {
			continue
		}
		d, ok := b.catalog.Resolve(key)
		if !ok {
			continue
		}
		seen[key] = true
		row.Cells = append(row.Cells, RowCell{Key: key, Value: b.value(g, d, cache)})
	}
	return row
}

type entityLookup struct {
	rec Record
	ok  bool
}

func (b *Builder) value(g *FacilityGraph, d FieldDescriptor, cache map[string]entityLookup) string {
	cacheKey := string(d.Group) + "/" + d.Section
	lookup, hit := cache[cacheKey]
	if !hit {
		if access, ok := b.accessors[d.Group]; ok {
			lookup.rec, lookup.ok = access(g, d.Section)
		}
		cache[cacheKey] = lookup
	}

	if !lookup.ok {
		return b.opts.MissingRelationValue
	}
	return b.formatter.Format(d, lookup.rec)
}

// BuildDocument lays out the selected fields of one facility as titled
// sections in catalog group order.
func (b *Builder) BuildDocument(g *FacilityGraph, keys []string, generatedAt time.Time) FacilityDocument {
	row := b.Build(g, keys)

	values := make(map[string]string, len(row.Cells))
	for _, c := range row.Cells {
		values[c.Key] = c.Value
	}

	doc := FacilityDocument{
		FacilityID:  g.ID(),
		OfficeCode:  g.OfficeCode(),
		Title:       documentTitle(g),
		GeneratedAt: generatedAt,
	}

	for _, group := range b.catalog.Groups() {
		var section DocumentSection
		for _, d := range b.catalog.ByGroup(group) {
			v, ok := values[d.Key]
			if !ok {
				continue
			}
			section.Entries = append(section.Entries, DocumentEntry{Label: d.Label, Value: v})
		}
		if len(section.Entries) == 0 {
			continue
		}
		section.Group = group
		section.Title = group.Label()
		doc.Sections = append(doc.Sections, section)
	}

	return doc
}

func documentTitle(g *FacilityGraph) string {
	name := g.Name()
	if name == "" {
		return "施設情報"
	}
	return name + " 施設情報"
}
