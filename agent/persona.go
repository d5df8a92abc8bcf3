package agent

// Persona selects the system instructions used for a chat request
type Persona string

const (
	PersonaOnboarding Persona = "onboarding"
	PersonaLearning   Persona = "learning"
	PersonaCareer     Persona = "career"
	PersonaFAQ        Persona = "faq"
)

// DefaultPersona is used whenever a request names no persona or an unknown one
const DefaultPersona = PersonaFAQ

// AllPersonas returns all personas in display order
func AllPersonas() []Persona {
	return []Persona{
		PersonaOnboarding,
		PersonaLearning,
		PersonaCareer,
		PersonaFAQ,
	}
}

// ParsePersona returns the persona for key and whether it is known. Keys
// match exactly; surrounding whitespace makes a key unknown.
func ParsePersona(key string) (Persona, bool) {
	p := Persona(key)
	switch p {
	case PersonaOnboarding, PersonaLearning, PersonaCareer, PersonaFAQ:
		return p, true
	default:
		return "", false
	}
}

// ResolvePersona never fails: unknown keys resolve to DefaultPersona
func ResolvePersona(key string) Persona {
	if p, ok := ParsePersona(key); ok {
		return p
	}
	return DefaultPersona
}

// Instructions returns the system-level guidance for the persona
func (p Persona) Instructions() string {
	switch p {
	case PersonaOnboarding:
		return "You are an Onboarding Agent. Give concise, actionable steps for a brand-new employee. " +
			"Refer to tasks like email setup, VPN/MFA, dev env, policies, timesheets. " +
			"If user asks 'where do I submit timesheet', answer plainly and suggest next step."
	case PersonaLearning:
		return "You are a Learning & Skills Agent. Recommend concrete courses, tutorials, videos, or articles. " +
			"Tailor by role/skill level. Suggest next steps and small practice tasks. " +
			"Keep each suggestion with a 1-line why."
	case PersonaCareer:
		return "You are a Career Guidance Agent. Provide role ladders, skills for next level, " +
			"internal mobility ideas, and mentor/buddy guidance. Offer simple 'what-if' planning and timelines."
	case PersonaFAQ:
		return "You are an FAQ/Support Agent. Answer HR/IT/policy questions succinctly; " +
			"when likely internal doc paths exist, say 'Check: /docs/hr/timesheets or HR portal'. " +
			"Escalate to human when needed."
	default:
		return DefaultPersona.Instructions()
	}
}

// PersonaInfo describes a persona for listings
type PersonaInfo struct {
	Key          Persona `json:"key"`
	Instructions string  `json:"instructions"`
	Default      bool    `json:"default"`
}

// Personas returns the persona table in display order
func Personas() []PersonaInfo {
	all := AllPersonas()
	infos := make([]PersonaInfo, 0, len(all))
	for _, p := range all {
		infos = append(infos, PersonaInfo{
			Key:          p,
			Instructions: p.Instructions(),
			Default:      p == DefaultPersona,
		})
	}
	return infos
}
