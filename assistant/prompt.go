package assistant

import (
	"strconv"
	"strings"
	"text/template"

	"github.com/padraicbc/thunderbolt/ballistics"
)

// PromptContext is everything the assistant is told about the current shot.
type PromptContext struct {
	Profile     ballistics.RifleProfile
	Environment ballistics.EnvironmentalData
	Question    string

	// User is recorded with the exchange but never sent to the provider.
	User string
}

var promptTmpl = template.Must(template.New("prompt").Funcs(template.FuncMap{
	"num": func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) },
}).Parse(`You are the SC-76 Thunderbolt Ballistic Assistant.
Current Context:
Rifle: {{.Profile.Variant}} ({{.Profile.Name}})
Muzzle Velocity: {{num .Profile.MuzzleVelocity}} fps
Bullet: {{num .Profile.BulletWeight}}gr, BC: {{num .Profile.BallisticCoefficient}} ({{.Profile.BCType}})
Conditions: {{num .Environment.Temperature}}°F, {{num .Environment.Pressure}} inHg, {{num .Environment.WindSpeed}}mph wind at {{num .Environment.WindAngle}}°.

User Query: {{.Question}}

Provide a professional, precise, and concise response focused on ballistic solutions or shooting advice.
`))

// BuildPrompt renders the prompt sent to the provider.
func BuildPrompt(pc PromptContext) string {
	pc.Question = strings.TrimSpace(pc.Question)
	var sb strings.Builder
	// Only fails on writer errors, which strings.Builder never returns.
	_ = promptTmpl.Execute(&sb, pc)
	return sb.String()
}
