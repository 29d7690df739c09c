package fields

import "github.com/JonMunkholm/facility-export/internal/core"

func init() {
	registerFacility()
}

func registerFacility() {
	g := core.GroupFacility
	core.Register(
		core.FieldDescriptor{Key: "facility_name", Label: "施設名", Group: g, Type: core.ValueText},
		core.FieldDescriptor{Key: "facility_name_kana", Label: "施設名（カナ）", Group: g, Type: core.ValueText},
		core.FieldDescriptor{Key: "office_code", Label: "事業所番号", Group: g, Type: core.ValueText},
		core.FieldDescriptor{Key: "corporation_name", Label: "法人名", Group: g, Type: core.ValueText},
		core.FieldDescriptor{Key: "service_type", Label: "サービス種別", Group: g, Type: core.ValueEnum, Enum: serviceTypes},
		core.FieldDescriptor{Key: "facility_status", Label: "運営状況", Group: g, Type: core.ValueEnum, Enum: facilityStatuses},
		core.FieldDescriptor{Key: "postal_code", Label: "郵便番号", Group: g, Type: core.ValueText},
		core.FieldDescriptor{Key: "address", Label: "所在地", Group: g, Type: core.ValueText},
		core.FieldDescriptor{Key: "phone_number", Label: "電話番号", Group: g, Type: core.ValueText},
		core.FieldDescriptor{Key: "fax_number", Label: "FAX番号", Group: g, Type: core.ValueText},
		core.FieldDescriptor{Key: "email", Label: "メールアドレス", Group: g, Type: core.ValueText},
		core.FieldDescriptor{Key: "manager_name", Label: "管理者名", Group: g, Type: core.ValueText},
		core.FieldDescriptor{Key: "section_name", Label: "部門", Group: g, Type: core.ValueText},
		core.FieldDescriptor{Key: "area_name", Label: "エリア", Group: g, Type: core.ValueText},
		core.FieldDescriptor{Key: "opening_date", Label: "開設日", Group: g, Type: core.ValueDate},
		core.FieldDescriptor{Key: "designation_date", Label: "指定日", Group: g, Type: core.ValueDate},
		core.FieldDescriptor{
			Key: "designation_validity_period", Label: "指定有効期間", Group: g, Type: core.ValuePeriod,
			Attr: "designation_valid_from", EndAttr: "designation_valid_until",
		},
		core.FieldDescriptor{Key: "capacity", Label: "定員", Group: g, Type: core.ValueInteger},
		core.FieldDescriptor{Key: "building_count", Label: "棟数", Group: g, Type: core.ValueInteger},
		core.FieldDescriptor{Key: "facility_notes", Label: "施設備考", Group: g, Type: core.ValueText, Attr: "notes"},
	)
}
