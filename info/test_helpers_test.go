package info

import (
	"encoding/json"
	"testing"

	"github.com/drblury/dishweaver/responder"
)

func decodeHealthPayload(t *testing.T, body []byte) healthPayload {
	t.Helper()

	var payload healthPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("failed to decode health payload: %v (body: %s)", err, string(body))
	}
	return payload
}

func decodeProblemDetails(t *testing.T, body []byte) responder.ProblemDetails {
	t.Helper()

	var problem responder.ProblemDetails
	if err := json.Unmarshal(body, &problem); err != nil {
		t.Fatalf("failed to decode problem details: %v (body: %s)", err, string(body))
	}
	return problem
}
