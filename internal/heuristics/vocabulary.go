package heuristics

// Vocabulary holds the keyword lists the field heuristics match against.
// Every list can be replaced from a YAML file, see config.LoadVocabulary.
type Vocabulary struct {
	ConsumerEmailDomains []string `yaml:"consumer_email_domains"`
	AddressKeywords      []string `yaml:"address_keywords"`
	SoftSkills           []string `yaml:"soft_skills"`
	SkillSectionKeywords []string `yaml:"skill_section_keywords"`
	DegreeKeywords       []string `yaml:"degree_keywords"`
	InstitutionKeywords  []string `yaml:"institution_keywords"`
	JobTitleKeywords     []string `yaml:"job_title_keywords"`
	Places               []string `yaml:"places"`
	NonNameWords         []string `yaml:"non_name_words"`
}

// DefaultVocabulary returns the built-in keyword lists.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		ConsumerEmailDomains: []string{
			"gmail.com", "yahoo.com", "ymail.com", "outlook.com", "hotmail.com",
			"live.com", "icloud.com", "me.com", "mac.com", "aol.com", "zoho.com",
			"protonmail.com", "pm.me", "gmx.com", "gmx.us", "mail.com",
			"email.com", "consultant.com",
		},
		AddressKeywords: []string{
			"street", "st", "road", "rd", "avenue", "ave", "lane", "ln", "blvd",
			"drive", "dr", "court", "ct", "square", "sq", "block", "building",
			"unit", "suite", "floor", "apt", "village", "town", "city",
			"district", "region", "state", "province", "zipcode", "zip",
			"postal", "country",
		},
		SoftSkills: []string{
			"adaptable", "adaptability", "communication", "team player",
			"collaboration", "leadership", "problem solving", "critical thinking",
			"work under pressure", "attention to detail", "time management",
			"creativity", "organized", "fast learner", "multitasking",
			"initiative", "self-motivated", "decision making",
			"interpersonal skills", "empathy", "flexibility", "resilience",
			"reliability", "punctual", "integrity", "accountability",
		},
		SkillSectionKeywords: []string{
			"skills", "core skills", "soft skills", "personal skills",
			"key strengths", "strengths",
		},
		DegreeKeywords:      []string{"Bachelor", "Master", "High School", "College", "Associate", "Graduate"},
		InstitutionKeywords: []string{"University", "College", "Institute", "School"},
		JobTitleKeywords: []string{
			"Developer", "Engineer", "Manager", "Designer", "Analyst", "Lead",
			"Support", "Assistant", "Intern",
		},
		Places: []string{
			"Philippines", "Manila", "Metro Manila", "Quezon City", "Makati",
			"Pasig", "Taguig", "Mandaluyong", "Cebu", "Davao", "Iloilo",
			"Baguio", "Cavite", "Laguna", "Pampanga", "Bulacan",
			"Singapore", "Malaysia", "Kuala Lumpur", "Indonesia", "Jakarta",
			"Vietnam", "Thailand", "Bangkok", "Japan", "Tokyo", "China",
			"Hong Kong", "Taiwan", "Korea", "Seoul", "India", "Bangalore",
			"Mumbai", "Australia", "Sydney", "Melbourne", "New Zealand",
			"United States", "USA", "New York", "California", "San Francisco",
			"Los Angeles", "Seattle", "Texas", "Chicago", "Boston", "Canada",
			"Toronto", "Vancouver", "United Kingdom", "UK", "London",
			"Ireland", "Dublin", "Germany", "Berlin", "France", "Paris",
			"Netherlands", "Amsterdam", "Spain", "Madrid", "Italy",
			"United Arab Emirates", "Dubai", "Saudi Arabia", "Qatar",
		},
		NonNameWords: []string{
			"resume", "curriculum", "vitae", "cv", "profile", "summary",
			"objective", "experience", "education", "contact", "references",
			"work", "professional", "career", "personal", "information",
			"details", "languages", "certifications", "certification",
			"projects", "achievements", "awards", "interests", "hobbies",
			"employment", "history", "background", "academic", "qualifications",
			"technical", "page", "email", "phone", "mobile", "address", "name",
			"full", "inc", "corp", "corporation", "company", "ltd", "llc",
			"senior", "junior", "present", "january", "february", "march",
			"april", "may", "june", "july", "august", "september", "october",
			"november", "december", "the", "and", "of", "for", "in", "at",
		},
	}
}

// Merge returns v with every non-empty list of o replacing the corresponding list.
func (v Vocabulary) Merge(o Vocabulary) Vocabulary {
	pick := func(base, over []string) []string {
		if len(over) > 0 {
			return over
		}
		return base
	}
	return Vocabulary{
		ConsumerEmailDomains: pick(v.ConsumerEmailDomains, o.ConsumerEmailDomains),
		AddressKeywords:      pick(v.AddressKeywords, o.AddressKeywords),
		SoftSkills:           pick(v.SoftSkills, o.SoftSkills),
		SkillSectionKeywords: pick(v.SkillSectionKeywords, o.SkillSectionKeywords),
		DegreeKeywords:       pick(v.DegreeKeywords, o.DegreeKeywords),
		InstitutionKeywords:  pick(v.InstitutionKeywords, o.InstitutionKeywords),
		JobTitleKeywords:     pick(v.JobTitleKeywords, o.JobTitleKeywords),
		Places:               pick(v.Places, o.Places),
		NonNameWords:         pick(v.NonNameWords, o.NonNameWords),
	}
}
