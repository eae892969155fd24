package heuristics_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/cv-autofill/internal/domain"
	"github.com/fairyhunter13/cv-autofill/internal/heuristics"
)

func TestEmail(t *testing.T) {
	ex := heuristics.NewDefault()
	tests := []struct {
		name  string
		lines []string
		want  string
	}{
		{"keyword line wins", []string{"a@gmail.com", "Email: Work@Company.com"}, "work@company.com"},
		{"e-mail keyword", []string{"E-mail - x@corp.io"}, "x@corp.io"},
		{"consumer domain beats first", []string{"hr@acme.com", "me@Gmail.com"}, "me@gmail.com"},
		{"first match lower-cased", []string{"John.Doe@ConsultGroup.com"}, "john.doe@consultgroup.com"},
		{"none", []string{"no address here"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ex.Email(heuristics.LineCorpus(tt.lines)))
		})
	}
}

func TestPhone(t *testing.T) {
	ex := heuristics.NewDefault()
	tests := []struct {
		name  string
		lines []string
		want  string
	}{
		{"keyword line longest token", []string{"Mobile: +63 912 345 6789 / (02) 8123-4567"}, "+63 912 345 6789"},
		{"keyword needs three digits", []string{"Contact me anytime", "0917 123 4567"}, "0917 123 4567"},
		{"ten digit candidate preferred", []string{"ID 123 4567", "09171234567"}, "09171234567"},
		{"first raw match fallback", []string{"Ref 123 4567"}, "123 4567"},
		{"none", []string{"nothing"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ex.Phone(heuristics.LineCorpus(tt.lines)))
		})
	}
}

func TestLocation(t *testing.T) {
	ex := heuristics.NewDefault()
	assert.Equal(t, "123 Rizal Street", ex.Location(heuristics.LineCorpus{"Juan Dela Cruz", "123 Rizal Street"}))
	assert.Equal(t, "Based in Cebu", ex.Location(heuristics.LineCorpus{"Juan Dela Cruz", "Based in Cebu"}))
	// keywords match anywhere in the line, case-insensitively
	assert.Equal(t, "Blk 4 Lot 2 Greenfield Subdivision, Cityville",
		ex.Location(heuristics.LineCorpus{"Jane Roe", "Blk 4 Lot 2 Greenfield Subdivision, Cityville"}))
	assert.Equal(t, "Strong first impressions", ex.Location(heuristics.LineCorpus{"Strong first impressions"}))
	assert.Equal(t, "", ex.Location(heuristics.LineCorpus{"Jane Roe", "Software Developer"}))
}

func TestName(t *testing.T) {
	ex := heuristics.NewDefault()

	first, last, full := ex.Name(heuristics.LineCorpus{"FULL NAME: maria clara SANTOS"})
	assert.Equal(t, "Maria Clara", first)
	assert.Equal(t, "Santos", last)
	assert.Equal(t, "Maria Clara Santos", full)

	_, _, full = ex.Name(heuristics.LineCorpus{"Name:", "Curriculum Vitae", "Dr. Jose Rizal"})
	assert.Equal(t, "Jose Rizal", full)

	_, _, full = ex.Name(heuristics.LineCorpus{"Software Developer", "Makati City"})
	assert.Empty(t, full)
}

func TestSplitName(t *testing.T) {
	f, l := heuristics.SplitName("Madonna")
	assert.Equal(t, "Madonna", f)
	assert.Empty(t, l)

	f, l = heuristics.SplitName("")
	assert.Empty(t, f)
	assert.Empty(t, l)
}

func TestSkills(t *testing.T) {
	ex := heuristics.NewDefault()

	got := ex.Skills(heuristics.LineCorpus{"Skills: communication, Python, team player"})
	assert.Equal(t, []string{"communication", "team player"}, got)

	got = ex.Skills(heuristics.LineCorpus{
		"Skills: communication, Python, team player",
		"Strong leadership and communication",
	})
	assert.Equal(t, []string{"communication", "team player", "leadership"}, got)

	assert.Empty(t, ex.Skills(heuristics.LineCorpus{"Go, Kubernetes, Postgres"}))
}

func TestEducation(t *testing.T) {
	ex := heuristics.NewDefault()

	text := "Summary\nACADEMIC BACKGROUND\nUniversity of the Philippines\nBachelor of Science in Computer Science, 2015 - 2019\nManila Science High School\n2011\n"
	got := ex.Education(text)
	assert.Equal(t, []domain.Education{
		{Institution: "University", Degree: "Bachelor", Year: "2015"},
		{Institution: "School", Degree: "High School", Year: "2011"},
	}, got)

	assert.Nil(t, ex.Education("no header here\nUniversity 2015"))

	// keywords match inside words; a missing one leaves its field empty
	got = ex.Education("Education\nGraduated 2010\nWith honors\n")
	assert.Equal(t, []domain.Education{{Degree: "Graduate", Year: "2010"}}, got)
}

func TestExperience_NoDescriptionSkipped(t *testing.T) {
	ex := heuristics.NewDefault()
	assert.Empty(t, ex.Experience("ACME CORP, Manila, PHILIPPINES 2019 - 2021\n"))
	assert.Empty(t, ex.Experience("ACME CORP, Manila, PHILIPPINES 2019 - 2021"))
}

func TestExperience_PositionWithoutTitleKeyword(t *testing.T) {
	ex := heuristics.NewDefault()
	got := ex.Experience("INITECH, Pasig, PHILIPPINES 2018 - 2019\nBuilt reporting tools\nand dashboards.\n")
	assert.Equal(t, []domain.Experience{{
		Company:          "Initech",
		Position:         "",
		Duration:         "2018 - 2019",
		Location:         "Pasig, Philippines",
		Responsibilities: "and dashboards.",
	}}, got)
}

func TestExperience_ResponsibilitiesOnlyTrimWhitespace(t *testing.T) {
	ex := heuristics.NewDefault()
	got := ex.Experience("ACME CORP, Manila, PHILIPPINES 2019 - 2021\nQA Analyst;   wrote   test plans\n")
	require.Len(t, got, 1)
	assert.Equal(t, "Qa Analyst;   Wrote   Test Plans", got[0].Position)
	assert.Equal(t, "", got[0].Responsibilities)

	got = ex.Experience("ACME CORP, Manila, PHILIPPINES 2019 - 2021\nSupport Engineer. - Kept   uptime high.\n")
	require.Len(t, got, 1)
	assert.Equal(t, "Support Engineer", got[0].Position)
	assert.Equal(t, ". - Kept uptime high.", got[0].Responsibilities)
}

func TestNormalize(t *testing.T) {
	in := domain.StructuredProfile{
		FullName: "  maria SANTOS ",
		Email:    " Maria.Santos@Gmail.COM ",
		Location: "makati city",
		Skills:   []string{"communication", "Communication", "team player"},
		Education: []domain.Education{
			{Institution: "up diliman", Year: "2015"},
			{Institution: "UP DILIMAN", Year: "2015"},
		},
		Experience: []domain.Experience{
			{Company: "ACME", Responsibilities: " Built APIs. "},
			{Company: "acme", Responsibilities: "Built APIs."},
		},
	}
	got := heuristics.Normalize(in)

	assert.Equal(t, "Maria Santos", got.FullName)
	assert.Equal(t, "maria.santos@gmail.com", got.Email)
	assert.Equal(t, "Makati City", got.Location)
	assert.Equal(t, []string{"Communication", "Team Player"}, got.Skills)
	assert.Equal(t, []domain.Education{{Institution: "Up Diliman", Year: "2015"}}, got.Education)
	assert.Equal(t, []domain.Experience{{Company: "Acme", Responsibilities: "Built APIs."}}, got.Experience)

	assert.Equal(t, got, heuristics.Normalize(got))
}

func TestNormalize_NameFromEmail(t *testing.T) {
	tests := []struct {
		email           string
		first, last, fn string
	}{
		{"jane.developer@gmail.com", "Jane", "Developer", "Jane Developer"},
		{"mary_ann-lee@x.com", "Mary Ann", "Lee", "Mary Ann Lee"},
		{"solo@x.com", "Solo", "", "Solo"},
		{"..@x.com", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			got := heuristics.Normalize(domain.StructuredProfile{Email: tt.email})
			assert.Equal(t, tt.first, got.FirstName)
			assert.Equal(t, tt.last, got.LastName)
			assert.Equal(t, tt.fn, got.FullName)
		})
	}
}

func TestNormalize_KeepsExtractedName(t *testing.T) {
	got := heuristics.Normalize(domain.StructuredProfile{FirstName: "juan", FullName: "juan", Email: "other.person@x.com"})
	assert.Equal(t, "Juan", got.FullName)
	assert.Equal(t, "Juan", got.FirstName)
}

func TestProperCase(t *testing.T) {
	assert.Equal(t, "Team Player", heuristics.ProperCase("tEAM pLAYER"))
	assert.Equal(t, "Self-motivated", heuristics.ProperCase("SELF-MOTIVATED"))
	assert.Equal(t, "+63 912", heuristics.ProperCase("+63 912"))
	assert.Equal(t, "Ñoño Ávila", heuristics.ProperCase("ñOÑO ávila"))
}
