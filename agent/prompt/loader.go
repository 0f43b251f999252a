package prompt

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	//go:embed template/persona.txt
	personaRaw string

	//go:embed template/company.yaml
	companyRaw []byte
)

// CompanyProfile is the static company-facts half of the system prompt.
// Compiled in at build time; not mutable at runtime.
type CompanyProfile struct {
	Name       string `yaml:"name"`
	Founded    string `yaml:"founded"`
	Location   string `yaml:"location"`
	Tagline    string `yaml:"tagline"`
	Philosophy string `yaml:"philosophy"`

	CoreValues []struct {
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
	} `yaml:"core_values"`

	Mission struct {
		Statement   string   `yaml:"statement"`
		Commitments []string `yaml:"commitments"`
	} `yaml:"mission"`

	Services []struct {
		Category    string `yaml:"category"`
		Description string `yaml:"description"`
	} `yaml:"services"`

	NotableClients  []string `yaml:"notable_clients"`
	Differentiators []string `yaml:"differentiators"`

	Contact struct {
		Phone       string `yaml:"phone"`
		Website     string `yaml:"website"`
		Email       string `yaml:"email"`
		ServiceArea string `yaml:"service_area"`
	} `yaml:"contact"`
}

// LoadCompanyProfile decodes the embedded company profile.
func LoadCompanyProfile() (CompanyProfile, error) {
	var profile CompanyProfile
	if err := yaml.Unmarshal(companyRaw, &profile); err != nil {
		return CompanyProfile{}, fmt.Errorf("decode company profile: %w", err)
	}
	return profile, nil
}

// BuildSystemPrompt renders the persona plus company facts into the single
// system prompt used for every completion of every session.
func BuildSystemPrompt(profile CompanyProfile) string {
	var b strings.Builder

	b.WriteString(strings.TrimSpace(personaRaw))
	b.WriteString("\n\nCOMPANY DETAILS:\n\n")

	fmt.Fprintf(&b, "Founded: %s\n", profile.Founded)
	fmt.Fprintf(&b, "Location: %s\n", profile.Location)
	fmt.Fprintf(&b, "Tagline: %s\n\n", profile.Tagline)

	b.WriteString("Core Values:\n")
	for _, v := range profile.CoreValues {
		fmt.Fprintf(&b, "- %s: %s\n", v.Name, v.Description)
	}

	fmt.Fprintf(&b, "\nMission Statement: %s\n", profile.Mission.Statement)
	b.WriteString("Our Commitments:\n")
	for _, c := range profile.Mission.Commitments {
		fmt.Fprintf(&b, "- %s\n", c)
	}

	fmt.Fprintf(&b, "\nCompany Philosophy: %s\n\n", profile.Philosophy)

	b.WriteString("Services We Provide:\n")
	for _, s := range profile.Services {
		fmt.Fprintf(&b, "- %s: %s\n", s.Category, s.Description)
	}

	fmt.Fprintf(&b, "\nNotable Clients Include: %s\n\n", strings.Join(profile.NotableClients, ", "))

	b.WriteString("What Makes Us Different:\n")
	for _, d := range profile.Differentiators {
		fmt.Fprintf(&b, "- %s\n", d)
	}

	b.WriteString("\nContact Information:\n")
	fmt.Fprintf(&b, "- Website: %s\n", profile.Contact.Website)
	fmt.Fprintf(&b, "- Service Area: %s\n", profile.Contact.ServiceArea)
	fmt.Fprintf(&b, "- Phone: %s\n", profile.Contact.Phone)
	fmt.Fprintf(&b, "- Email: %s\n", profile.Contact.Email)

	b.WriteString("\nIMPORTANT: When customers express interest in scheduling service or getting a quote, you can help them directly using the available tools. Always offer to help schedule or get a quote when appropriate.\n")

	return b.String()
}
