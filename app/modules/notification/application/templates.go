package notificationservice

import (
	"strings"

	rounddomain "github.com/Black-And-White-Club/debate-rounds/app/modules/round/domain"
)

// Template is a message and link with {placeholders}.
type Template struct {
	Message string
	Link    string
}

var (
	joinTemplate = Template{
		Message: "{username} has joined round {round_code}",
		Link:    "/admin/rounds/{round_id}/waiting-room/",
	}
	roleAssignedTemplate = Template{
		Message: "You have been assigned as {role} in round {round_code} ({format})",
		Link:    "/round/{round_id}",
	}
	roundStartTemplate = Template{
		Message: "Round #{round_id} is now starting! ({format})",
		Link:    "/round/{round_id}",
	}
	roundEndTemplate = Template{
		Message: "Round #{round_id} has been terminated. ({format})",
		Link:    "/round/{round_id}",
	}
	resultsTemplate = Template{
		Message: "Results for {format} round are now available!",
		Link:    "/round/{round_id}",
	}
)

// RoundVars are the placeholders every round template may use.
func RoundVars(round rounddomain.Round) map[string]string {
	return map[string]string{
		"round_id":   round.ID.String(),
		"format":     round.Format.Display(),
		"round_code": round.Code.String(),
	}
}

// Render substitutes {key} for each entry in vars. Unknown placeholders are
// left as written.
func Render(text string, vars map[string]string) string {
	if len(vars) == 0 {
		return text
	}
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(text)
}

func (t Template) render(vars map[string]string) (string, string) {
	return Render(t.Message, vars), Render(t.Link, vars)
}
