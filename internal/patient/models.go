package patient

// Patient status lifecycle. A soft delete moves a patient to an inactive
// status; the record itself stays until the cleanup job purges it.
const (
	StatusActive     = "active"
	StatusDischarged = "discharged"
	StatusWaiting    = "waiting"
	StatusInactive   = "inactive"
	StatusEvaded     = "evaded"
	StatusDeceased   = "deceased"
)

// ValidStatus reports whether s is a known patient status.
func ValidStatus(s string) bool {
	switch s {
	case StatusActive, StatusDischarged, StatusWaiting, StatusInactive, StatusEvaded, StatusDeceased:
		return true
	}
	return false
}

type CreatePatientRequest struct {
	Name        string `json:"name"`
	BirthDate   string `json:"birth_date,omitempty"`
	Document    string `json:"document,omitempty"`
	Guardian    string `json:"guardian,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Address     string `json:"address,omitempty"`
	HealthPlan  string `json:"health_plan,omitempty"`
	Status      string `json:"status,omitempty"`
	Observation string `json:"observation,omitempty"`
}

type UpdatePatientRequest struct {
	Name        *string `json:"name,omitempty"`
	BirthDate   *string `json:"birth_date,omitempty"`
	Document    *string `json:"document,omitempty"`
	Guardian    *string `json:"guardian,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Address     *string `json:"address,omitempty"`
	HealthPlan  *string `json:"health_plan,omitempty"`
	Status      *string `json:"status,omitempty"`
	Observation *string `json:"observation,omitempty"`
}

// Patch returns the spread-merge payload for the fields that were set.
func (r UpdatePatientRequest) Patch() map[string]interface{} {
	patch := map[string]interface{}{}
	if r.Name != nil {
		patch["name"] = *r.Name
	}
	if r.BirthDate != nil {
		patch["birth_date"] = *r.BirthDate
	}
	if r.Document != nil {
		patch["document"] = *r.Document
	}
	if r.Guardian != nil {
		patch["guardian"] = *r.Guardian
	}
	if r.Phone != nil {
		patch["phone"] = *r.Phone
	}
	if r.Address != nil {
		patch["address"] = *r.Address
	}
	if r.HealthPlan != nil {
		patch["health_plan"] = *r.HealthPlan
	}
	if r.Status != nil {
		patch["status"] = *r.Status
	}
	if r.Observation != nil {
		patch["observation"] = *r.Observation
	}
	return patch
}
