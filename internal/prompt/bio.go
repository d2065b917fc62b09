package prompt

import (
	"fmt"
	"strings"
)

// BioPromptBuilder builds prompts for biography generation.
// Construction is deterministic and side-effect-free: the same input and
// style always produce the same prompt, and the user's information is
// embedded verbatim.
type BioPromptBuilder struct{}

// NewBioPromptBuilder creates a new biography prompt builder
func NewBioPromptBuilder() *BioPromptBuilder {
	return &BioPromptBuilder{}
}

// Build builds the user prompt for the given information and style
func (b *BioPromptBuilder) Build(rawInfo string, style Style) (string, error) {
	instruction, err := b.styleInstruction(style)
	if err != nil {
		return "", err
	}

	sections := []string{
		instruction,
		b.getInformationSection(rawInfo),
	}

	return strings.Join(sections, "\n\n"), nil
}

// System returns the system instruction sent alongside every request
func (b *BioPromptBuilder) System(style Style) (string, error) {
	if !style.Valid() {
		return "", fmt.Errorf("unknown style: %q (allowed: professional, social)", style)
	}
	return systemPersona, nil
}

// styleInstruction returns the instruction block for the requested style
func (b *BioPromptBuilder) styleInstruction(style Style) (string, error) {
	switch style {
	case StyleProfessional:
		return b.getProfessionalInstructions(), nil
	case StyleSocial:
		return b.getSocialInstructions(), nil
	default:
		return "", fmt.Errorf("unknown style: %q (allowed: professional, social)", style)
	}
}

// getProfessionalInstructions returns the instruction block for formal biographies
func (b *BioPromptBuilder) getProfessionalInstructions() string {
	return `Write a professional biography based on the information provided below.

Requirements:
- Formal, polished tone suitable for professional platforms such as LinkedIn, company pages, and conference programs
- Between 150-300 words
- Written in third person
- Emphasize achievements, experience, and expertise
- Use only facts present in the provided information; never invent employers, titles, dates, or credentials
- Return only the biography text, with no headings or commentary`
}

// getSocialInstructions returns the instruction block for social media bios
func (b *BioPromptBuilder) getSocialInstructions() string {
	return `Write a social media bio based on the information provided below.

Requirements:
- Concise and catchy, strictly under 160 characters
- Suitable for social platforms such as X and Instagram
- Capture what makes this person distinctive
- Use only facts present in the provided information; never invent details
- Return only the bio text, with no quotes, hashtag padding, or commentary`
}

// getInformationSection wraps the user's raw information.
// The text is embedded verbatim: no trimming, escaping, or reflowing, so the
// model sees exactly what the user typed.
func (b *BioPromptBuilder) getInformationSection(rawInfo string) string {
	return "Information about the person:\n" + rawInfo
}

const systemPersona = `You are an expert biography writer. You turn raw facts about a person into polished biography copy. You write strictly from the facts you are given and never fabricate credentials, employers, dates, or achievements. You respond with the requested biography text only.`
