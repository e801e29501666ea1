package registration

// Kind is the registration type selected on the form.
type Kind string

const (
	KindIndividual Kind = "individual"
	KindTeam       Kind = "team"
)

// Valid reports whether k is a known registration kind.
func (k Kind) Valid() bool {
	return k == KindIndividual || k == KindTeam
}

// Team size bounds, inclusive.
const (
	MinTeamMembers = 2
	MaxTeamMembers = 5
)

// MemberSeparator joins member entries in a persisted record.
const MemberSeparator = " | "

// Request is a single form submission. The member fields carry
// comma-separated entries and are only meaningful for team registrations.
type Request struct {
	Kind         Kind   `json:"type" validate:"required,oneof=individual team"`
	LeaderName   string `json:"name" validate:"required"`
	LeaderRoll   string `json:"roll" validate:"required"`
	LeaderEmail  string `json:"email" validate:"required"`
	LeaderPhone  string `json:"phone" validate:"required"`
	MemberNames  string `json:"memberNames,omitempty"`
	MemberRolls  string `json:"memberRolls,omitempty"`
	MemberPhones string `json:"memberPhones,omitempty"`
}

// Member is one additional team participant. Missing values are empty strings.
type Member struct {
	Name  string `json:"name"`
	Roll  string `json:"roll"`
	Phone string `json:"phone"`
}

// WithMembers returns a copy of r whose comma-separated member fields are
// built from members. It accepts the array payload of older form clients.
// Commas inside an entry are replaced by spaces so each member stays one entry.
func (r Request) WithMembers(members []Member) Request {
	names := make([]string, 0, len(members))
	rolls := make([]string, 0, len(members))
	phones := make([]string, 0, len(members))
	for _, m := range members {
		names = append(names, stripCommas(m.Name))
		rolls = append(rolls, stripCommas(m.Roll))
		phones = append(phones, stripCommas(m.Phone))
	}
	r.MemberNames = joinComma(names)
	r.MemberRolls = joinComma(rolls)
	r.MemberPhones = joinComma(phones)
	return r
}

// HasMemberFields reports whether any comma-separated member field is set.
func (r Request) HasMemberFields() bool {
	return r.MemberNames != "" || r.MemberRolls != "" || r.MemberPhones != ""
}

// Record is the normalized row appended to the sink.
type Record struct {
	Kind         Kind
	LeaderName   string
	LeaderRoll   string
	LeaderEmail  string
	LeaderPhone  string
	MemberNames  string
	MemberRolls  string
	MemberPhones string
}

// Row returns the record cells in column order.
func (r Record) Row() []any {
	return []any{
		string(r.Kind),
		r.LeaderName,
		r.LeaderRoll,
		r.LeaderEmail,
		r.LeaderPhone,
		r.MemberNames,
		r.MemberRolls,
		r.MemberPhones,
	}
}
