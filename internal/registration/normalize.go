package registration

import "strings"

// CountMembers returns the number of non-blank comma-separated entries in raw.
func CountMembers(raw string) int {
	n := 0
	for _, entry := range strings.Split(raw, ",") {
		if strings.TrimSpace(entry) != "" {
			n++
		}
	}
	return n
}

// JoinMembers trims each comma-separated entry of raw and rejoins them with
// MemberSeparator. An empty input yields an empty string. Blank entries are
// kept so that positions line up across the member columns.
func JoinMembers(raw string) string {
	if raw == "" {
		return ""
	}
	return strings.Join(splitMembers(raw), MemberSeparator)
}

// Normalize converts a validated request into the record persisted by the
// sink. Member fields are dropped for individual registrations.
func Normalize(req Request) Record {
	rec := Record{
		Kind:        req.Kind,
		LeaderName:  req.LeaderName,
		LeaderRoll:  req.LeaderRoll,
		LeaderEmail: req.LeaderEmail,
		LeaderPhone: req.LeaderPhone,
	}
	if req.Kind == KindTeam {
		rec.MemberNames = JoinMembers(req.MemberNames)
		rec.MemberRolls = JoinMembers(req.MemberRolls)
		rec.MemberPhones = JoinMembers(req.MemberPhones)
	}
	return rec
}

func splitMembers(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

func joinComma(values []string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.Join(values, ",")
		}
	}
	return ""
}

func stripCommas(v string) string {
	if !strings.Contains(v, ",") {
		return v
	}
	return strings.Join(strings.Fields(strings.ReplaceAll(v, ",", " ")), " ")
}
