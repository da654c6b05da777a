package stage

import (
	"github.com/hirevox/prescreen/pkg/core/flow"
	"github.com/hirevox/prescreen/pkg/core/session"
)

// ForName resolves a stage by its name, used by the start-stage
// override for isolated manual testing. Unknown names fall back to the
// greeting.
func ForName(name string, in session.Input) flow.Agent {
	switch name {
	case "screening":
		return NewScreening(in)
	case "open_questions":
		return NewOpenQuestions(in)
	case "scheduling":
		return NewScheduling(in)
	case "alternative":
		failed := ""
		if len(in.KnockoutQuestions) > 0 {
			failed = in.KnockoutQuestions[0].Text
		}
		return NewAlternative(in, failed)
	case "recruiter":
		return NewRecruiter(in)
	default:
		return NewGreeting(in)
	}
}
