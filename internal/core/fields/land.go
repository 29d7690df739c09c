package fields

import "github.com/JonMunkholm/facility-export/internal/core"

func init() {
	registerLand()
}

// registerLand covers facility_land_infos. Attributes are column names.
func registerLand() {
	g := core.GroupLand
	core.Register(
		core.FieldDescriptor{Key: "land_ownership_type", Label: "土地所有形態", Group: g, Type: core.ValueEnum, Attr: "ownership_type", Enum: ownershipTypes},
		core.FieldDescriptor{Key: "land_parcel_number", Label: "地番", Group: g, Type: core.ValueText, Attr: "parcel_number"},
		core.FieldDescriptor{Key: "land_site_area", Label: "敷地面積（㎡）", Group: g, Type: core.ValueText, Attr: "site_area"},
		core.FieldDescriptor{Key: "land_zoning", Label: "用途地域", Group: g, Type: core.ValueText, Attr: "zoning"},
		core.FieldDescriptor{Key: "land_building_coverage_ratio", Label: "建ぺい率（％）", Group: g, Type: core.ValueText, Attr: "building_coverage_ratio"},
		core.FieldDescriptor{Key: "land_floor_area_ratio", Label: "容積率（％）", Group: g, Type: core.ValueText, Attr: "floor_area_ratio"},
		core.FieldDescriptor{Key: "land_purchase_price", Label: "土地購入金額", Group: g, Type: core.ValueCurrency, Attr: "purchase_price"},
		core.FieldDescriptor{Key: "land_purchase_date", Label: "土地購入日", Group: g, Type: core.ValueDate, Attr: "purchase_date"},
		core.FieldDescriptor{Key: "land_appraisal_value", Label: "固定資産税評価額", Group: g, Type: core.ValueCurrency, Attr: "appraisal_value"},
		core.FieldDescriptor{Key: "land_monthly_rent", Label: "土地月額賃料", Group: g, Type: core.ValueCurrency, Attr: "monthly_rent"},
		core.FieldDescriptor{Key: "land_deposit", Label: "土地敷金", Group: g, Type: core.ValueCurrency, Attr: "deposit"},
		core.FieldDescriptor{
			Key: "land_contract_period", Label: "土地賃貸借契約期間", Group: g, Type: core.ValuePeriod,
			Attr: "contract_start_date", EndAttr: "contract_end_date",
		},
		core.FieldDescriptor{Key: "land_auto_renewal", Label: "土地契約自動更新", Group: g, Type: core.ValueEnum, Attr: "auto_renewal", Enum: yesNo},
		core.FieldDescriptor{Key: "land_landlord_name", Label: "地主名", Group: g, Type: core.ValueText, Attr: "landlord_name"},
		core.FieldDescriptor{Key: "land_landlord_address", Label: "地主住所", Group: g, Type: core.ValueText, Attr: "landlord_address"},
		core.FieldDescriptor{Key: "land_landlord_phone", Label: "地主連絡先", Group: g, Type: core.ValueText, Attr: "landlord_phone"},
		core.FieldDescriptor{Key: "land_management_company", Label: "土地管理会社", Group: g, Type: core.ValueText, Attr: "management_company"},
		core.FieldDescriptor{Key: "land_notes", Label: "土地備考", Group: g, Type: core.ValueText, Attr: "notes"},
	)
}
