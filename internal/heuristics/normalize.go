package heuristics

import (
	"regexp"
	"strings"

	"github.com/fairyhunter13/cv-autofill/internal/domain"
)

var emailLocalSplit = regexp.MustCompile(`[._-]`)

// Normalize proper-cases every free-text field, lower-cases the email,
// removes duplicate list entries and, when no name was found, derives one
// from the email's local part. Normalize(Normalize(p)) == Normalize(p).
//
// Responsibilities are kept as written apart from trimming; they are prose,
// not a title.
func Normalize(p domain.StructuredProfile) domain.StructuredProfile {
	out := domain.StructuredProfile{
		FirstName: ProperCase(strings.TrimSpace(p.FirstName)),
		LastName:  ProperCase(strings.TrimSpace(p.LastName)),
		FullName:  ProperCase(strings.TrimSpace(p.FullName)),
		Email:     strings.ToLower(strings.TrimSpace(p.Email)),
		Phone:     ProperCase(strings.TrimSpace(p.Phone)),
		Location:  ProperCase(strings.TrimSpace(p.Location)),
	}

	if out.FullName == "" && out.Email != "" {
		out.FirstName, out.LastName, out.FullName = nameFromEmail(out.Email)
	}

	seenSkill := map[string]bool{}
	for _, s := range p.Skills {
		s = ProperCase(strings.TrimSpace(s))
		if s == "" || seenSkill[s] {
			continue
		}
		seenSkill[s] = true
		out.Skills = append(out.Skills, s)
	}

	seenEdu := map[domain.Education]bool{}
	for _, e := range p.Education {
		e = domain.Education{
			Institution: ProperCase(strings.TrimSpace(e.Institution)),
			Degree:      ProperCase(strings.TrimSpace(e.Degree)),
			Year:        strings.TrimSpace(e.Year),
		}
		if seenEdu[e] {
			continue
		}
		seenEdu[e] = true
		out.Education = append(out.Education, e)
	}

	seenExp := map[domain.Experience]bool{}
	for _, e := range p.Experience {
		e = domain.Experience{
			Company:          ProperCase(strings.TrimSpace(e.Company)),
			Position:         ProperCase(strings.TrimSpace(e.Position)),
			Duration:         ProperCase(strings.TrimSpace(e.Duration)),
			Location:         ProperCase(strings.TrimSpace(e.Location)),
			Responsibilities: strings.TrimSpace(e.Responsibilities),
		}
		if seenExp[e] {
			continue
		}
		seenExp[e] = true
		out.Experience = append(out.Experience, e)
	}
	return out
}

func nameFromEmail(email string) (first, last, full string) {
	local := email
	if i := strings.IndexByte(email, '@'); i >= 0 {
		local = email[:i]
	}
	var parts []string
	for _, seg := range emailLocalSplit.Split(local, -1) {
		if seg != "" {
			parts = append(parts, ProperCase(seg))
		}
	}
	if len(parts) == 0 {
		return "", "", ""
	}
	full = strings.Join(parts, " ")
	first, last = SplitName(full)
	return first, last, full
}
