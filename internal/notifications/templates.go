package notifications

import (
	"fmt"

	"github.com/flosch/pongo2/v6"
)

// Email bodies are rendered from pongo2 templates so deployments can keep the
// wording in one place. Subjects stay as plain format strings.
var (
	tplApprovalRequested = pongo2.Must(pongo2.FromString(`<p>Hi {{ approver_name }},</p>
<p>The request <strong>{{ subject }}</strong> ({{ request_id }}) from {{ requester_name }} is awaiting your approval at stage <strong>{{ level_name }}</strong>.</p>
<p>Please review it in the helpdesk portal.</p>`))

	tplClarification = pongo2.Must(pongo2.FromString(`<p>Hi {{ requester_name }},</p>
<p>{{ approver_name }} needs clarification on your request <strong>{{ subject }}</strong> ({{ request_id }}):</p>
<blockquote>{{ question }}</blockquote>
<p>Reply in the approval conversation thread.</p>`))

	tplApproved = pongo2.Must(pongo2.FromString(`<p>Hi {{ requester_name }},</p>
<p>Your request <strong>{{ subject }}</strong> ({{ request_id }}) has been fully approved and will now be processed.</p>`))

	tplRejected = pongo2.Must(pongo2.FromString(`<p>Hi {{ requester_name }},</p>
<p>Your request <strong>{{ subject }}</strong> ({{ request_id }}) was rejected by {{ approver_name }} at stage {{ level_name }}.</p>
{% if reason %}<blockquote>{{ reason }}</blockquote>{% endif %}`))
)

func render(tpl *pongo2.Template, ctx pongo2.Context) (string, error) {
	body, err := tpl.Execute(ctx)
	if err != nil {
		return "", fmt.Errorf("render notification template: %w", err)
	}
	return body, nil
}
