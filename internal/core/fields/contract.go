package fields

import (
	"fmt"

	"github.com/JonMunkholm/facility-export/internal/core"
)

func init() {
	registerContracts()
}

// contractSection is one contract_type in facility_contracts.
type contractSection struct {
	section string
	name    string
}

var contractSections = []contractSection{
	{"service", "サービス"},
	{"cleaning", "清掃"},
	{"meal", "給食"},
	{"waste", "廃棄物処理"},
	{"fire_equipment", "消防設備点検"},
}

// registerContracts adds the same four fields for each contract section.
// Keys are <section>_contract_<field>.
func registerContracts() {
	g := core.GroupContract
	for _, cs := range contractSections {
		core.Register(
			core.FieldDescriptor{
				Key: cs.section + "_contract_company", Label: cs.name + "契約会社",
				Group: g, Section: cs.section, Type: core.ValueText, Attr: "company_name",
			},
			core.FieldDescriptor{
				Key: cs.section + "_contract_amount", Label: fmt.Sprintf("%s契約金額（月額）", cs.name),
				Group: g, Section: cs.section, Type: core.ValueCurrency, Attr: "monthly_amount",
			},
			core.FieldDescriptor{
				Key: cs.section + "_contract_period", Label: cs.name + "契約期間",
				Group: g, Section: cs.section, Type: core.ValuePeriod, Attr: "start_date", EndAttr: "end_date",
			},
			core.FieldDescriptor{
				Key: cs.section + "_contract_contact", Label: cs.name + "契約担当者",
				Group: g, Section: cs.section, Type: core.ValueText, Attr: "contact_person",
			},
		)
	}
}
