package fields

import "github.com/JonMunkholm/facility-export/internal/core"

func init() {
	registerElectrical()
	registerWater()
	registerGas()
	registerElevator()
	registerHVAC()
	registerLighting()
	registerSecurity()
}

// Lifeline attributes live in the jsonb attributes column of
// facility_lifeline_equipment, one row per category. HVAC and lighting share
// the hvac_lighting row, so their attribute names are prefixed.

func registerElectrical() {
	g := core.GroupElectrical
	core.Register(
		core.FieldDescriptor{Key: "electrical_contractor", Label: "電力会社", Group: g, Type: core.ValueText, Attr: "electric_contractor"},
		core.FieldDescriptor{Key: "electrical_contract_type", Label: "電力契約種別", Group: g, Type: core.ValueEnum, Attr: "contract_type", Enum: electricalContractTypes},
		core.FieldDescriptor{Key: "electrical_contract_capacity", Label: "契約電力（kW）", Group: g, Type: core.ValueText, Attr: "contract_capacity"},
		core.FieldDescriptor{Key: "electrical_customer_number", Label: "電力お客様番号", Group: g, Type: core.ValueText, Attr: "customer_number"},
		core.FieldDescriptor{Key: "electrical_cubicle", Label: "キュービクル", Group: g, Type: core.ValueEnum, Attr: "has_cubicle", Enum: yesNo},
		core.FieldDescriptor{Key: "electrical_chief_engineer", Label: "電気主任技術者", Group: g, Type: core.ValueText, Attr: "chief_engineer"},
		core.FieldDescriptor{Key: "electrical_inspection_company", Label: "電気保安点検会社", Group: g, Type: core.ValueText, Attr: "inspection_company"},
		core.FieldDescriptor{Key: "electrical_last_inspection_date", Label: "電気設備最終点検日", Group: g, Type: core.ValueDate, Attr: "last_inspection_date"},
		core.FieldDescriptor{Key: "electrical_emergency_generator", Label: "非常用発電機", Group: g, Type: core.ValueEnum, Attr: "emergency_generator", Enum: yesNo},
		core.FieldDescriptor{Key: "electrical_solar_panels", Label: "太陽光発電設備", Group: g, Type: core.ValueEnum, Attr: "solar_panels", Enum: yesNo},
	)
}

func registerWater() {
	g := core.GroupWater
	core.Register(
		core.FieldDescriptor{Key: "water_supplier", Label: "水道事業者", Group: g, Type: core.ValueText, Attr: "supplier"},
		core.FieldDescriptor{Key: "water_customer_number", Label: "水道お客様番号", Group: g, Type: core.ValueText, Attr: "customer_number"},
		core.FieldDescriptor{Key: "water_supply_type", Label: "給水方式", Group: g, Type: core.ValueEnum, Attr: "supply_type", Enum: waterSupplyTypes},
		core.FieldDescriptor{Key: "water_tank_capacity", Label: "受水槽容量（㎥）", Group: g, Type: core.ValueText, Attr: "tank_capacity"},
		core.FieldDescriptor{Key: "water_tank_cleaning_date", Label: "受水槽清掃日", Group: g, Type: core.ValueDate, Attr: "tank_cleaning_date"},
		core.FieldDescriptor{Key: "water_sewer_type", Label: "排水方式", Group: g, Type: core.ValueEnum, Attr: "sewer_type", Enum: sewerTypes},
		core.FieldDescriptor{Key: "water_hot_water_system", Label: "給湯設備", Group: g, Type: core.ValueText, Attr: "hot_water_system"},
		core.FieldDescriptor{Key: "water_inspection_company", Label: "給排水点検会社", Group: g, Type: core.ValueText, Attr: "inspection_company"},
	)
}

func registerGas() {
	g := core.GroupGas
	core.Register(
		core.FieldDescriptor{Key: "gas_supplier", Label: "ガス会社", Group: g, Type: core.ValueText, Attr: "supplier"},
		core.FieldDescriptor{Key: "gas_type", Label: "ガス種別", Group: g, Type: core.ValueEnum, Enum: gasTypes},
		core.FieldDescriptor{Key: "gas_customer_number", Label: "ガスお客様番号", Group: g, Type: core.ValueText, Attr: "customer_number"},
		core.FieldDescriptor{Key: "gas_meter_location", Label: "ガスメーター設置場所", Group: g, Type: core.ValueText, Attr: "meter_location"},
		core.FieldDescriptor{Key: "gas_safety_inspection_date", Label: "ガス保安点検日", Group: g, Type: core.ValueDate, Attr: "safety_inspection_date"},
		core.FieldDescriptor{Key: "gas_shutoff_valve", Label: "緊急遮断弁", Group: g, Type: core.ValueEnum, Attr: "shutoff_valve", Enum: yesNo},
		core.FieldDescriptor{Key: "gas_monthly_cost", Label: "月額ガス料金", Group: g, Type: core.ValueCurrency, Attr: "monthly_cost"},
	)
}

func registerElevator() {
	g := core.GroupElevator
	core.Register(
		core.FieldDescriptor{Key: "elevator_count", Label: "エレベーター台数", Group: g, Type: core.ValueInteger, Attr: "unit_count"},
		core.FieldDescriptor{Key: "elevator_manufacturer", Label: "エレベーターメーカー", Group: g, Type: core.ValueText, Attr: "manufacturer"},
		core.FieldDescriptor{Key: "elevator_model", Label: "エレベーター機種", Group: g, Type: core.ValueText, Attr: "model"},
		core.FieldDescriptor{Key: "elevator_capacity", Label: "積載量（kg）", Group: g, Type: core.ValueInteger, Attr: "capacity_kg"},
		core.FieldDescriptor{Key: "elevator_installation_date", Label: "エレベーター設置日", Group: g, Type: core.ValueDate, Attr: "installation_date"},
		core.FieldDescriptor{Key: "elevator_maintenance_company", Label: "エレベーター保守会社", Group: g, Type: core.ValueText, Attr: "maintenance_company"},
		core.FieldDescriptor{Key: "elevator_inspection_date", Label: "エレベーター法定検査日", Group: g, Type: core.ValueDate, Attr: "inspection_date"},
		core.FieldDescriptor{Key: "elevator_stretcher_compatible", Label: "ストレッチャー対応", Group: g, Type: core.ValueEnum, Attr: "stretcher_compatible", Enum: yesNo},
	)
}

func registerHVAC() {
	g := core.GroupHVAC
	core.Register(
		core.FieldDescriptor{Key: "hvac_system_type", Label: "空調方式", Group: g, Type: core.ValueEnum, Enum: hvacSystemTypes},
		core.FieldDescriptor{Key: "hvac_manufacturer", Label: "空調メーカー", Group: g, Type: core.ValueText},
		core.FieldDescriptor{Key: "hvac_unit_count", Label: "空調台数", Group: g, Type: core.ValueInteger},
		core.FieldDescriptor{Key: "hvac_installation_date", Label: "空調設置日", Group: g, Type: core.ValueDate},
		core.FieldDescriptor{Key: "hvac_maintenance_company", Label: "空調保守会社", Group: g, Type: core.ValueText},
		core.FieldDescriptor{Key: "hvac_filter_cleaning_date", Label: "フィルター清掃日", Group: g, Type: core.ValueDate},
		core.FieldDescriptor{Key: "hvac_freon_inspection_date", Label: "フロン点検日", Group: g, Type: core.ValueDate},
		core.FieldDescriptor{Key: "hvac_ventilation_type", Label: "換気方式", Group: g, Type: core.ValueText},
	)
}

func registerLighting() {
	g := core.GroupLighting
	core.Register(
		core.FieldDescriptor{Key: "lighting_manufacturer", Label: "照明メーカー", Group: g, Type: core.ValueText},
		core.FieldDescriptor{Key: "lighting_led_conversion", Label: "LED化状況", Group: g, Type: core.ValueEnum, Enum: ledConversion},
		core.FieldDescriptor{Key: "lighting_fixture_count", Label: "照明器具数", Group: g, Type: core.ValueInteger},
		core.FieldDescriptor{Key: "lighting_emergency_lights", Label: "非常照明", Group: g, Type: core.ValueEnum, Enum: yesNo},
		core.FieldDescriptor{Key: "lighting_replacement_date", Label: "照明最終交換日", Group: g, Type: core.ValueDate},
		core.FieldDescriptor{Key: "lighting_maintenance_company", Label: "照明保守会社", Group: g, Type: core.ValueText},
	)
}

func registerSecurity() {
	g := core.GroupSecurity
	core.Register(
		core.FieldDescriptor{Key: "security_company", Label: "警備会社", Group: g, Type: core.ValueText},
		core.FieldDescriptor{Key: "security_system_type", Label: "警備方式", Group: g, Type: core.ValueEnum, Attr: "system_type", Enum: securitySystemTypes},
		core.FieldDescriptor{Key: "security_camera_count", Label: "防犯カメラ台数", Group: g, Type: core.ValueInteger, Attr: "camera_count"},
		core.FieldDescriptor{Key: "security_fire_alarm", Label: "自動火災報知設備", Group: g, Type: core.ValueEnum, Attr: "fire_alarm", Enum: yesNo},
		core.FieldDescriptor{Key: "security_sprinkler", Label: "スプリンクラー設備", Group: g, Type: core.ValueEnum, Attr: "sprinkler", Enum: yesNo},
		core.FieldDescriptor{Key: "security_fire_inspection_date", Label: "消防設備点検日", Group: g, Type: core.ValueDate, Attr: "fire_inspection_date"},
		core.FieldDescriptor{Key: "security_fire_drill_date", Label: "避難訓練実施日", Group: g, Type: core.ValueDate, Attr: "fire_drill_date"},
		core.FieldDescriptor{Key: "security_evacuation_site", Label: "指定避難場所", Group: g, Type: core.ValueText, Attr: "evacuation_site"},
		core.FieldDescriptor{Key: "security_hazard_area", Label: "ハザード区域", Group: g, Type: core.ValueEnum, Attr: "hazard_area", Enum: hazardAreas},
		core.FieldDescriptor{Key: "security_emergency_stock", Label: "非常用備蓄品", Group: g, Type: core.ValueText, Attr: "emergency_stock"},
	)
}
