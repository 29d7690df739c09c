package fields

import "github.com/JonMunkholm/facility-export/internal/core"

func init() {
	registerDrawings()
	registerMaintenance()
}

func registerDrawings() {
	g := core.GroupDrawing
	core.Register(
		core.FieldDescriptor{Key: "drawing_floor_plan", Label: "平面図", Group: g, Type: core.ValueEnum, Attr: "floor_plan", Enum: availability},
		core.FieldDescriptor{Key: "drawing_elevation", Label: "立面図", Group: g, Type: core.ValueEnum, Attr: "elevation", Enum: availability},
		core.FieldDescriptor{Key: "drawing_cross_section", Label: "断面図", Group: g, Type: core.ValueEnum, Attr: "cross_section", Enum: availability},
		core.FieldDescriptor{Key: "drawing_site_plan", Label: "配置図", Group: g, Type: core.ValueEnum, Attr: "site_plan", Enum: availability},
		core.FieldDescriptor{Key: "drawing_equipment", Label: "設備図", Group: g, Type: core.ValueEnum, Attr: "equipment_drawings", Enum: availability},
		core.FieldDescriptor{Key: "drawing_storage_location", Label: "図面保管場所", Group: g, Type: core.ValueText, Attr: "storage_location"},
		core.FieldDescriptor{Key: "drawing_updated_date", Label: "図面更新日", Group: g, Type: core.ValueDate, Attr: "updated_date"},
		core.FieldDescriptor{Key: "drawing_notes", Label: "図面備考", Group: g, Type: core.ValueText, Attr: "notes"},
	)
}

// registerMaintenance reads the newest maintenance_histories row, plus the
// derived record_count.
func registerMaintenance() {
	g := core.GroupMaintenance
	core.Register(
		core.FieldDescriptor{Key: "maintenance_latest_date", Label: "最新修繕日", Group: g, Type: core.ValueDate, Attr: "maintenance_date"},
		core.FieldDescriptor{Key: "maintenance_latest_category", Label: "修繕区分", Group: g, Type: core.ValueEnum, Attr: "category", Enum: maintenanceCategories},
		core.FieldDescriptor{Key: "maintenance_latest_subject", Label: "修繕内容", Group: g, Type: core.ValueText, Attr: "subject"},
		core.FieldDescriptor{Key: "maintenance_latest_contractor", Label: "修繕業者", Group: g, Type: core.ValueText, Attr: "contractor"},
		core.FieldDescriptor{Key: "maintenance_latest_cost", Label: "修繕費用", Group: g, Type: core.ValueCurrency, Attr: "cost"},
		core.FieldDescriptor{Key: "maintenance_latest_notes", Label: "修繕備考", Group: g, Type: core.ValueText, Attr: "notes"},
		core.FieldDescriptor{Key: "maintenance_record_count", Label: "修繕件数", Group: g, Type: core.ValueInteger, Attr: "record_count"},
	)
}
