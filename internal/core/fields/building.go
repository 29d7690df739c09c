package fields

import "github.com/JonMunkholm/facility-export/internal/core"

func init() {
	registerBuilding()
}

// registerBuilding covers facility_building_infos.
func registerBuilding() {
	g := core.GroupBuilding
	core.Register(
		core.FieldDescriptor{Key: "building_ownership_type", Label: "建物所有形態", Group: g, Type: core.ValueEnum, Attr: "ownership_type", Enum: ownershipTypes},
		core.FieldDescriptor{Key: "building_structure", Label: "構造", Group: g, Type: core.ValueEnum, Attr: "structure", Enum: structureTypes},
		core.FieldDescriptor{Key: "building_floors", Label: "地上階数", Group: g, Type: core.ValueInteger, Attr: "floors"},
		core.FieldDescriptor{Key: "building_basement_floors", Label: "地下階数", Group: g, Type: core.ValueInteger, Attr: "basement_floors"},
		core.FieldDescriptor{Key: "building_total_floor_area", Label: "延床面積（㎡）", Group: g, Type: core.ValueText, Attr: "total_floor_area"},
		core.FieldDescriptor{Key: "building_usage_type", Label: "建物用途", Group: g, Type: core.ValueText, Attr: "usage_type"},
		core.FieldDescriptor{Key: "building_construction_date", Label: "建築年月日", Group: g, Type: core.ValueDate, Attr: "construction_date"},
		core.FieldDescriptor{Key: "building_completion_date", Label: "竣工日", Group: g, Type: core.ValueDate, Attr: "completion_date"},
		core.FieldDescriptor{Key: "building_inspection_certificate", Label: "検査済証", Group: g, Type: core.ValueEnum, Attr: "inspection_certificate", Enum: yesNo},
		core.FieldDescriptor{Key: "building_fire_resistance", Label: "耐火構造", Group: g, Type: core.ValueEnum, Attr: "fire_resistance", Enum: fireResistance},
		core.FieldDescriptor{Key: "building_earthquake_standard", Label: "耐震基準", Group: g, Type: core.ValueEnum, Attr: "earthquake_standard", Enum: earthquakeStandards},
		core.FieldDescriptor{Key: "building_purchase_price", Label: "建物購入金額", Group: g, Type: core.ValueCurrency, Attr: "purchase_price"},
		core.FieldDescriptor{Key: "building_monthly_rent", Label: "建物月額賃料", Group: g, Type: core.ValueCurrency, Attr: "monthly_rent"},
		core.FieldDescriptor{
			Key: "building_lease_period", Label: "建物賃貸借期間", Group: g, Type: core.ValuePeriod,
			Attr: "lease_start_date", EndAttr: "lease_end_date",
		},
		core.FieldDescriptor{Key: "building_owner_name", Label: "建物所有者", Group: g, Type: core.ValueText, Attr: "owner_name"},
		core.FieldDescriptor{Key: "building_constructor", Label: "施工会社", Group: g, Type: core.ValueText, Attr: "constructor"},
		core.FieldDescriptor{Key: "building_designer", Label: "設計事務所", Group: g, Type: core.ValueText, Attr: "designer"},
		core.FieldDescriptor{Key: "building_notes", Label: "建物備考", Group: g, Type: core.ValueText, Attr: "notes"},
	)
}
