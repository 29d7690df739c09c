package core

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// FieldGroup is the category a field belongs to. Every group maps to one
// related entity of a facility (or the facility itself).
type FieldGroup string

const (
	GroupFacility    FieldGroup = "facility"
	GroupLand        FieldGroup = "land"
	GroupBuilding    FieldGroup = "building"
	GroupElectrical  FieldGroup = "lifeline-electrical"
	GroupWater       FieldGroup = "lifeline-water"
	GroupGas         FieldGroup = "lifeline-gas"
	GroupElevator    FieldGroup = "lifeline-elevator"
	GroupHVAC        FieldGroup = "lifeline-hvac"
	GroupLighting    FieldGroup = "lifeline-lighting"
	GroupSecurity    FieldGroup = "security"
	GroupContract    FieldGroup = "contract"
	GroupDrawing     FieldGroup = "drawing"
	GroupMaintenance FieldGroup = "maintenance"
)

// groupOrder is the display order of groups in catalogs and documents.
var groupOrder = []FieldGroup{
	GroupFacility,
	GroupLand,
	GroupBuilding,
	GroupElectrical,
	GroupWater,
	GroupGas,
	GroupElevator,
	GroupHVAC,
	GroupLighting,
	GroupSecurity,
	GroupContract,
	GroupDrawing,
	GroupMaintenance,
}

var groupLabels = map[FieldGroup]string{
	GroupFacility:    "施設基本情報",
	GroupLand:        "土地情報",
	GroupBuilding:    "建物情報",
	GroupElectrical:  "電気設備",
	GroupWater:       "水道設備",
	GroupGas:         "ガス設備",
	GroupElevator:    "エレベーター設備",
	GroupHVAC:        "空調設備",
	GroupLighting:    "照明設備",
	GroupSecurity:    "防犯・防災",
	GroupContract:    "契約書",
	GroupDrawing:     "図面",
	GroupMaintenance: "修繕履歴",
}

// Label returns the display name of the group.
func (g FieldGroup) Label() string {
	if l, ok := groupLabels[g]; ok {
		return l
	}
	return string(g)
}

// Valid reports whether g is one of the known groups.
func (g FieldGroup) Valid() bool {
	_, ok := groupLabels[g]
	return ok
}

// AllGroups returns every known group in display order.
func AllGroups() []FieldGroup {
	out := make([]FieldGroup, len(groupOrder))
	copy(out, groupOrder)
	return out
}

// ValueType selects the formatter applied to a field.
type ValueType int

const (
	ValueText ValueType = iota
	ValueDate
	ValueCurrency
	ValueInteger
	ValueEnum
	ValuePeriod
)

func (t ValueType) String() string {
	switch t {
	case ValueText:
		return "text"
	case ValueDate:
		return "date"
	case ValueCurrency:
		return "currency"
	case ValueInteger:
		return "integer"
	case ValueEnum:
		return "enum"
	case ValuePeriod:
		return "period"
	default:
		return fmt.Sprintf("ValueType(%d)", int(t))
	}
}

// MarshalJSON encodes the type by name.
func (t ValueType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// FieldDescriptor describes one exportable attribute.
type FieldDescriptor struct {
	Key     string            // Unique identifier: "land_ownership_type"
	Label   string            // Display label: "土地所有形態"
	Group   FieldGroup        // Related entity the value lives on
	Type    ValueType         // Formatter variant
	Section string            // Sub-entity within the group (contract type); empty otherwise
	Attr    string            // Attribute name on the entity; period start for ValuePeriod
	EndAttr string            // Period end attribute (ValuePeriod only)
	Enum    map[string]string // Code to label table (ValueEnum only)
	Order   int               // Position in the catalog, assigned by NewCatalog
}

// FieldLabel is one entry of an ordered key to label mapping.
type FieldLabel struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Record is a single entity row keyed by attribute name. Values are whatever
// the driver decoded: string, time.Time, pgtype values, integers, bool, or
// JSON-decoded values from attribute documents.
type Record map[string]any

// FacilityGraph is a facility with all of its related entities. A nil
// Record means the related entity does not exist.
type FacilityGraph struct {
	Facility    Record
	Land        Record
	Building    Record
	Lifelines   map[string]Record // keyed by lifeline category
	Contracts   map[string]Record // keyed by contract type
	Drawings    Record
	Maintenance []Record // newest first
}

// ID returns the facility id, or 0 when it cannot be determined.
func (g *FacilityGraph) ID() int64 {
	if g == nil {
		return 0
	}
	id, _ := asInt64(g.Facility["id"])
	return id
}

// OfficeCode returns the facility's office code.
func (g *FacilityGraph) OfficeCode() string {
	if g == nil {
		return ""
	}
	return strings.TrimSpace(asString(g.Facility["office_code"]))
}

// Name returns the facility name.
func (g *FacilityGraph) Name() string {
	if g == nil {
		return ""
	}
	return strings.TrimSpace(asString(g.Facility["facility_name"]))
}

// ExportSelection is a validated export request.
type ExportSelection struct {
	OwnerUserID int64
	FacilityIDs []int64  // de-duplicated, first occurrence order
	FieldKeys   []string // caller order, determines column order
}

// RowCell is one formatted value of an ExportRow.
type RowCell struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ExportRow is the ordered, formatted output for one facility.
type ExportRow struct {
	FacilityID int64     `json:"facility_id"`
	Cells      []RowCell `json:"cells"`
}

// Values returns the formatted values in column order.
func (r ExportRow) Values() []string {
	out := make([]string, len(r.Cells))
	for i, c := range r.Cells {
		out[i] = c.Value
	}
	return out
}

// Value returns the formatted value for key.
func (r ExportRow) Value(key string) (string, bool) {
	for _, c := range r.Cells {
		if c.Key == key {
			return c.Value, true
		}
	}
	return "", false
}

// Favorite is a named, saved selection owned by one user.
type Favorite struct {
	ID          int64     `json:"id"`
	OwnerUserID int64     `json:"owner_user_id"`
	Name        string    `json:"name"`
	FacilityIDs []int64   `json:"facility_ids"`
	FieldKeys   []string  `json:"field_keys"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// FacilityDocument is the renderer-neutral content of one facility report.
type FacilityDocument struct {
	FacilityID  int64
	OfficeCode  string
	Title       string
	GeneratedAt time.Time
	Sections    []DocumentSection
}

// DocumentSection is one titled block of a facility document.
type DocumentSection struct {
	Group   FieldGroup
	Title   string
	Entries []DocumentEntry
}

// DocumentEntry is one label/value line of a section.
type DocumentEntry struct {
	Label string
	Value string
}
