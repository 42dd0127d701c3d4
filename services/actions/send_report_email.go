package actions

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/workmate-ai/workmate/core/types"
	"github.com/workmate-ai/workmate/pkg/mailer"
)

func NewSendReportEmail(m *mailer.Mailer) *SendReportEmailAction {
	return &SendReportEmailAction{mailer: m}
}

// SendReportEmailAction submits a report over SMTP.
type SendReportEmailAction struct {
	mailer *mailer.Mailer
}

func (a *SendReportEmailAction) Run(ctx context.Context, params types.ActionParams) (types.ActionResult, error) {
	request := struct {
		ReportContent  string `json:"report_content"`
		RecipientEmail string `json:"recipient_email"`
		Subject        string `json:"subject"`
	}{}
	if err := params.Unmarshal(&request); err != nil {
		return types.ActionResult{}, err
	}

	if a.mailer == nil || !a.mailer.Configured() {
		return errorResult("Error: email delivery is not configured"), nil
	}

	if err := a.mailer.Send(request.RecipientEmail, request.Subject, request.ReportContent); err != nil {
		return errorResult("Error sending report email: %v", err), nil
	}

	return types.ActionResult{Result: fmt.Sprintf("Report '%s' sent successfully to %s", request.Subject, request.RecipientEmail)}, nil
}

func (a *SendReportEmailAction) Definition() types.ActionDefinition {
	return types.ActionDefinition{
		Name:        "send_report_email",
		Description: "Send a report via email.",
		Properties: map[string]jsonschema.Definition{
			"report_content": {
				Type:        jsonschema.String,
				Description: "The report content to send",
			},
			"recipient_email": {
				Type:        jsonschema.String,
				Description: "Email address to send to",
			},
			"subject": {
				Type:        jsonschema.String,
				Description: "Email subject line",
			},
		},
		Required: []string{"report_content", "recipient_email", "subject"},
	}
}
