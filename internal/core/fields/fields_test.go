package fields

import (
	"testing"

	"github.com/JonMunkholm/facility-export/internal/core"
)

func TestDefaultCatalog_Loads(t *testing.T) {
	cat := core.DefaultCatalog()

	if got := cat.TotalFieldCount(); got != 148 {
		t.Errorf("TotalFieldCount() = %d, want 148", got)
	}
	if got := len(cat.AllKeys()); got != cat.TotalFieldCount() {
		t.Errorf("AllKeys() has %d keys, TotalFieldCount() = %d", got, cat.TotalFieldCount())
	}
}

func TestDefaultCatalog_Labels(t *testing.T) {
	cat := core.DefaultCatalog()

	tests := []struct {
		key       string
		wantLabel string
		wantGroup core.FieldGroup
	}{
		{"facility_name", "施設名", core.GroupFacility},
		{"land_ownership_type", "土地所有形態", core.GroupLand},
		{"building_floors", "地上階数", core.GroupBuilding},
		{"electrical_contractor", "電力会社", core.GroupElectrical},
		{"lighting_manufacturer", "照明メーカー", core.GroupLighting},
		{"service_contract_company", "サービス契約会社", core.GroupContract},
		{"maintenance_record_count", "修繕件数", core.GroupMaintenance},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			d, ok := cat.Resolve(tt.key)
			if !ok {
				t.Fatalf("Resolve(%q) not found", tt.key)
			}
			if d.Label != tt.wantLabel || d.Group != tt.wantGroup {
				t.Errorf("Resolve(%q) = %s/%s, want %s/%s", tt.key, d.Label, d.Group, tt.wantLabel, tt.wantGroup)
			}
		})
	}
}

func TestDefaultCatalog_EveryGroupPopulated(t *testing.T) {
	cat := core.DefaultCatalog()

	for _, g := range core.AllGroups() {
		if len(cat.ByGroup(g)) == 0 {
			t.Errorf("group %s has no fields", g)
		}
	}
}

func TestDefaultCatalog_ContractSections(t *testing.T) {
	cat := core.DefaultCatalog()

	for _, cs := range contractSections {
		d, ok := cat.Resolve(cs.section + "_contract_period")
		if !ok {
			t.Errorf("missing period field for section %s", cs.section)
			continue
		}
		if d.Section != cs.section || d.Type != core.ValuePeriod || d.EndAttr == "" {
			t.Errorf("period field for %s = %+v", cs.section, d)
		}
	}
}

func TestEnumTables_NoBlankLabels(t *testing.T) {
	for _, d := range core.DefaultCatalog().All() {
		if d.Type != core.ValueEnum {
			continue
		}
		for code, label := range d.Enum {
			if code == "" || label == "" {
				t.Errorf("%s has blank enum entry %q=%q", d.Key, code, label)
			}
		}
	}
}
