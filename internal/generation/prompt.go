package generation

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// PromptProfile describes the candidate and the writing rules the prompt is built from
type PromptProfile struct {
	Role      string   `yaml:"role"`
	Candidate string   `yaml:"candidate"`
	Position  string   `yaml:"position"`
	Language  string   `yaml:"language"`
	Profile   []string `yaml:"profile"`
	Style     []string `yaml:"style"`
	Closing   string   `yaml:"closing"`
}

// DefaultPromptProfile returns the built-in profile
func DefaultPromptProfile() PromptProfile {
	return PromptProfile{
		Role:      "an expert career copywriter specializing in creating persuasive, warm, and personal one-sentence pitches for junior frontend developers",
		Candidate: "Hai Ho",
		Position:  "Junior Frontend Developer",
		Language:  "English",
		Profile: []string{
			"Finishing the final year of a Frontend Developer program at IT-Högskolan in Stockholm; graduating June 2026.",
			"Skilled in HTML, CSS, JavaScript, React, Next.js, TypeScript, Tailwind, Git, and API integration.",
			"Passionate about creative projects, UI design, and improving user experience.",
			"Experience building full projects from idea to completion (e.g., an AI-powered recorder app with transcription).",
			"Reliable, responsible, honest, and someone others can depend on.",
			"Strong soft skills: problem-solving, communication, creativity, accountability, adaptability.",
			"Team player who listens, contributes ideas, and supports others; experienced with Agile teamwork.",
			"Motivated by growth, curiosity, and creating meaningful digital experiences.",
			"Comfortable with Figma, VSCode, Jira, and modern development tools.",
			"Targeting product companies, startups, and agencies.",
		},
		Style: []string{
			"One single sentence.",
			"Highly personal and human, not generic.",
			"Persuasive and confidence-building, yet humble and sincere.",
			"Should make the recruiter feel: \"This is a junior developer we want on our team.\"",
			"Reflect the candidate's personality, passion, responsibility, and drive.",
			"Tailored to what companies commonly look for in junior frontend developers today.",
		},
		Closing: "Do NOT write an example. Generate one new, original sentence each time the prompt is used.",
	}
}

// LoadPromptProfile reads a YAML profile. Fields left empty keep their default values.
func LoadPromptProfile(path string) (PromptProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return PromptProfile{}, fmt.Errorf("failed to read prompt file: %w", err)
	}

	profile := DefaultPromptProfile()
	var override PromptProfile
	if err := yaml.Unmarshal(data, &override); err != nil {
		return PromptProfile{}, fmt.Errorf("failed to parse prompt file %s: %w", path, err)
	}
	profile.merge(override)

	if err := profile.Validate(); err != nil {
		return PromptProfile{}, fmt.Errorf("invalid prompt file %s: %w", path, err)
	}
	return profile, nil
}

func (p *PromptProfile) merge(o PromptProfile) {
	if o.Role != "" {
		p.Role = o.Role
	}
	if o.Candidate != "" {
		p.Candidate = o.Candidate
	}
	if o.Position != "" {
		p.Position = o.Position
	}
	if o.Language != "" {
		p.Language = o.Language
	}
	if len(o.Profile) > 0 {
		p.Profile = o.Profile
	}
	if len(o.Style) > 0 {
		p.Style = o.Style
	}
	if o.Closing != "" {
		p.Closing = o.Closing
	}
}

// Validate checks that the profile can produce a usable prompt
func (p PromptProfile) Validate() error {
	var errs []error
	if strings.TrimSpace(p.Candidate) == "" {
		errs = append(errs, errors.New("candidate is required"))
	}
	if strings.TrimSpace(p.Position) == "" {
		errs = append(errs, errors.New("position is required"))
	}
	if len(p.Profile) == 0 {
		errs = append(errs, errors.New("profile must list at least one item"))
	}
	return errors.Join(errs...)
}

// Render builds the prompt text
func (p PromptProfile) Render() string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are %s.\n\n", p.Role)
	fmt.Fprintf(&b, "Your task is to generate ONE unique, concise sentence in %s explaining why a recruiter should hire %s as a %s.\n\n",
		p.Language, p.Candidate, p.Position)

	b.WriteString("Use the following personal profile to shape the tone and content:\n\n")
	for _, item := range p.Profile {
		fmt.Fprintf(&b, "- %s\n", item)
	}

	if len(p.Style) > 0 {
		b.WriteString("\nTone & style requirements:\n")
		for i, rule := range p.Style {
			fmt.Fprintf(&b, "%d. %s\n", i+1, rule)
		}
	}

	if p.Closing != "" {
		fmt.Fprintf(&b, "\n%s\n", p.Closing)
	}
	return b.String()
}

// ResolvePrompt renders the profile at path, or the default profile when path is empty
func ResolvePrompt(path string) (string, error) {
	if path == "" {
		return DefaultPromptProfile().Render(), nil
	}
	profile, err := LoadPromptProfile(path)
	if err != nil {
		return "", err
	}
	return profile.Render(), nil
}
