package auth

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Console modules gated by the permission map. The coarse role and the
// fine-grained map are orthogonal: ADMIN overrides, then the map is
// consulted, and an absent entry denies.
const (
	ModulePatients      = "patients"
	ModuleRecords       = "records"
	ModuleOccurrences   = "occurrences"
	ModuleAgenda        = "agenda"
	ModuleMedications   = "medications"
	ModuleFinance       = "finance"
	ModuleDocuments     = "documents"
	ModuleInventory     = "inventory"
	ModulePTI           = "pti_goals"
	ModuleHealthRecords = "health_records"
	ModuleUsers         = "users"
	ModuleSettings      = "settings"
)

// Modules lists every gated module.
func Modules() []string {
	return []string{
		ModulePatients, ModuleRecords, ModuleOccurrences, ModuleAgenda,
		ModuleMedications, ModuleFinance, ModuleDocuments, ModuleInventory,
		ModulePTI, ModuleHealthRecords, ModuleUsers, ModuleSettings,
	}
}

// HasModule evaluates the permission gate: role override first, then
// capability lookup, default deny.
func HasModule(pr *Principal, module string) bool {
	if pr == nil {
		return false
	}
	if pr.Role == RoleAdmin {
		return true
	}
	return pr.Permissions[module]
}

// Presets maps role -> default permission map, used when a membership row
// carries no explicit map.
type Presets map[string]map[string]bool

type presetsFile struct {
	Roles map[string]map[string]bool `yaml:"roles"`
}

// LoadPresets loads a permissions.yml file with per-role defaults.
func LoadPresets(path string) (Presets, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var pf presetsFile
	if err := yaml.Unmarshal(b, &pf); err != nil {
		return nil, err
	}
	return Presets(pf.Roles), nil
}

// For returns the preset map for a role, empty (deny-all) when the role is
// unknown.
func (p Presets) For(role string) map[string]bool {
	preset, ok := p[role]
	if !ok {
		return map[string]bool{}
	}
	out := make(map[string]bool, len(preset))
	for k, v := range preset {
		out[k] = v
	}
	return out
}
