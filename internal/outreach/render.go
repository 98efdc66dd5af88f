package outreach

import (
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	"text/template"

	"github.com/jonathan/family-activities/internal/types"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var (
	textTemplate = template.Must(template.ParseFS(templateFS, "templates/email.txt.tmpl"))
	htmlTemplate = htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/email.html.tmpl"))
)

// TemplateData is the data passed to the plain-text email template
type TemplateData struct {
	Greeting       string
	SenderName     string
	ActivityName   string
	FamilySentence string
	Reasons        string
	Needs          string
	Closing        string
	Signoff        string
}

type toneStyle struct {
	greeting string
	closing  string
	signoff  string
	subject  string
}

var toneStyles = map[types.EmailTone]toneStyle{
	types.ToneProfessional: {
		greeting: "Hello,",
		closing:  "Thank you for your time.",
		signoff:  "Best regards",
		subject:  "Enrollment inquiry: %s",
	},
	types.ToneCasual: {
		greeting: "Hi there!",
		closing:  "Thanks so much, looking forward to hearing from you!",
		signoff:  "Cheers",
		subject:  "Question about %s",
	},
	types.ToneUrgent: {
		greeting: "Hello,",
		closing:  "We are hoping to enroll soon, so a reply within the next few days would be greatly appreciated.",
		signoff:  "Thank you",
		subject:  "Time-sensitive: enrollment in %s",
	},
}

// renderTemplateEmail builds an email without a model
func renderTemplateEmail(profile *types.FamilyProfile, rec *types.Recommendation, tone types.EmailTone, priority types.EmailPriority, sender string) (*types.GeneratedEmail, error) {
	style, ok := toneStyles[tone]
	if !ok {
		style = toneStyles[types.ToneProfessional]
	}

	name := activityName(rec)
	data := TemplateData{
		Greeting:       style.greeting,
		SenderName:     sender,
		ActivityName:   name,
		FamilySentence: familySentence(profile),
		Reasons:        strings.Join(reasonsFor(rec), "; "),
		Needs:          needsSentence(profile),
		Closing:        style.closing,
		Signoff:        style.signoff,
	}

	var body strings.Builder
	if err := textTemplate.Execute(&body, data); err != nil {
		return nil, &TemplateError{Message: "failed to execute text template", Cause: err}
	}

	subject := fmt.Sprintf(style.subject, name)
	if priority == types.PriorityHigh && tone != types.ToneUrgent {
		subject = "[Priority] " + subject
	}

	return &types.GeneratedEmail{
		Subject: truncate(subject, 200),
		Body:    strings.TrimSpace(body.String()),
		Metadata: types.EmailMetadata{
			Tone:             tone,
			Priority:         priority,
			ExpectedResponse: expectedResponseFor(tone),
		},
	}, nil
}

// renderHTML converts a plain-text body into a minimal HTML document, one <p> per paragraph
func renderHTML(body string) (string, error) {
	var paragraphs [][]string
	for _, block := range strings.Split(body, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		paragraphs = append(paragraphs, strings.Split(block, "\n"))
	}

	var out strings.Builder
	if err := htmlTemplate.Execute(&out, struct{ Paragraphs [][]string }{paragraphs}); err != nil {
		return "", &TemplateError{Message: "failed to execute html template", Cause: err}
	}
	return out.String(), nil
}

func expectedResponseFor(tone types.EmailTone) types.ExpectedResponse {
	if tone == types.ToneUrgent {
		return types.ResponseActionRequired
	}
	return types.ResponseAcknowledgment
}

// activityName prefers the resolved catalog name carried in the recommendation metadata
func activityName(rec *types.Recommendation) string {
	if name, ok := rec.Metadata["name"].(string); ok && strings.TrimSpace(name) != "" {
		return strings.TrimSpace(name)
	}
	if rec.ProgramID != "" {
		return fmt.Sprintf("program %s (provider %s)", rec.ProgramID, rec.ProviderID)
	}
	return "your program (provider " + rec.ProviderID + ")"
}

func reasonsFor(rec *types.Recommendation) []string {
	var reasons []string
	for _, r := range rec.MatchReasons {
		if r = strings.TrimSpace(r); r != "" {
			reasons = append(reasons, lowerFirst(r))
		}
		if len(reasons) == 3 {
			break
		}
	}
	return reasons
}

// familySentence describes the children, e.g. "I have two children: Maya (7) and Leo (5)."
func familySentence(profile *types.FamilyProfile) string {
	if profile == nil || len(profile.Children) == 0 {
		return ""
	}

	kids := make([]string, len(profile.Children))
	for i, c := range profile.Children {
		kids[i] = fmt.Sprintf("%s (%d)", c.Name, c.Age)
	}

	var sentence string
	if len(kids) == 1 {
		sentence = "I am looking for an activity for my child " + kids[0]
	} else {
		sentence = fmt.Sprintf("I am looking for activities for my %d children: %s", len(kids), joinList(kids))
	}
	if n := profile.Location.Neighborhood; n != "" {
		sentence += ", and we live in " + n
	}
	return sentence + "."
}

// needsSentence mentions allergies and special needs so the provider can plan for them
func needsSentence(profile *types.FamilyProfile) string {
	if profile == nil {
		return ""
	}
	var notes []string
	for _, c := range profile.Children {
		if c.SpecialNeeds != "" {
			notes = append(notes, fmt.Sprintf("%s has %s", c.Name, c.SpecialNeeds))
		}
		if len(c.Allergies) > 0 {
			notes = append(notes, fmt.Sprintf("%s is allergic to %s", c.Name, joinList(c.Allergies)))
		}
	}
	if len(notes) == 0 {
		return ""
	}
	return "Please note that " + joinList(notes) + "."
}

func joinList(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
