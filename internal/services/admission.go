package services

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/snapform/snapform-api/internal/models"
	"github.com/snapform/snapform-api/internal/plans"
	"github.com/snapform/snapform-api/internal/types"
)

// RejectCode identifies why a submission was not admitted. Values are part
// of the public API.
type RejectCode string

const (
	RejectFormNotPublished     RejectCode = "FORM_NOT_PUBLISHED"
	RejectInvalidResponseData  RejectCode = "INVALID_RESPONSE_DATA"
	RejectEmailRequired        RejectCode = "EMAIL_REQUIRED"
	RejectResponseLimitReached RejectCode = "RESPONSE_LIMIT_REACHED"
)

// Submission is the public payload for one response.
type Submission struct {
	Email string                      `json:"email,omitempty"`
	Data  map[string]types.FieldValue `json:"data"`
}

// Decision is the admission verdict. When Admitted, Data and Email hold the
// validated values to commit.
type Decision struct {
	Admitted    bool
	Code        RejectCode
	Message     string
	FieldErrors map[string]string
	Data        models.ResponseData
	Email       *string
}

func reject(code RejectCode, msg string) Decision {
	return Decision{Code: code, Message: msg}
}

// AdmissionGate decides whether a submission may be committed.
type AdmissionGate struct {
	Usage UsageCounter
	Now   func() time.Time
}

func (g *AdmissionGate) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now()
}

// Evaluate runs the admission checks in order and stops at the first
// rejection: published, field data, email, then monthly usage. The usage
// counter is only consulted when the tier has a finite response limit. An
// error is returned only when usage could not be counted; callers must not
// admit in that case.
func (g *AdmissionGate) Evaluate(ctx context.Context, form *models.Form, tier plans.Tier, payload Submission) (Decision, error) {
	if !form.Published {
		return reject(RejectFormNotPublished, "This form is not accepting responses"), nil
	}

	data, problems := ValidateResponseData(form.Fields, payload.Data)

	email := strings.TrimSpace(payload.Email)
	emailValid := email != "" && isEmail(email)
	if email != "" && !emailValid && !form.RequireEmail {
		problems["email"] = "Invalid email address"
	}
	if len(problems) > 0 {
		d := reject(RejectInvalidResponseData, "Invalid response data")
		d.FieldErrors = problems
		return d, nil
	}

	if form.RequireEmail && !emailValid {
		return reject(RejectEmailRequired, "Email is required for this form"), nil
	}

	limits := plans.LimitsFor(tier)
	if limits.MaxResponsesPerMonth != plans.Unlimited {
		used, err := g.Usage.MonthlyResponseCount(ctx, form.UserID, g.now())
		if err != nil {
			return Decision{}, err
		}
		if !plans.Within(used, limits.MaxResponsesPerMonth) {
			return reject(RejectResponseLimitReached, "This form has reached its monthly response limit"), nil
		}
	}

	d := Decision{Admitted: true, Data: data}
	if emailValid {
		d.Email = &email
	}
	return d, nil
}

// isEmail accepts a bare address with a dotted domain.
func isEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	at := strings.LastIndex(s, "@")
	return at > 0 && strings.Contains(s[at+1:], ".")
}
