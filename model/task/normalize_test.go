package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	type testCase struct {
		name     string
		raw      map[string]interface{}
		expected *Task
	}

	tests := []testCase{
		{
			name: "camelCase passthrough",
			raw: map[string]interface{}{
				"taskId":           "t1",
				"originAgent":      "a",
				"destinationAgent": "b",
				"taskType":         "send",
				"prompt":           "hello",
				"replyTo":          "http://x/reply",
				"manualApproval":   false,
			},
			expected: &Task{
				ID:               "t1",
				OriginAgent:      "a",
				DestinationAgent: "b",
				Type:             TypeSend,
				Prompt:           "hello",
				ReplyTo:          "http://x/reply",
			},
		},
		{
			name: "snake_case aliases",
			raw: map[string]interface{}{
				"task_id":           "t1",
				"origin_agent":      "a",
				"destination_agent": "b",
				"task_type":         "send",
				"prompt":            "hello",
				"reply_to":          "http://x/reply",
				"manual_approval":   true,
			},
			expected: &Task{
				ID:               "t1",
				OriginAgent:      "a",
				DestinationAgent: "b",
				Type:             TypeSend,
				Prompt:           "hello",
				ReplyTo:          "http://x/reply",
				ManualApproval:   true,
			},
		},
		{
			name: "canonical wins over alias",
			raw: map[string]interface{}{
				"taskId":   "canonical",
				"task_id":  "alias",
				"taskType": "log",
			},
			expected: &Task{ID: "canonical", Type: TypeLog},
		},
		{
			name: "non-string values degrade to zero values",
			raw: map[string]interface{}{
				"taskId":         42,
				"taskType":       "log",
				"manualApproval": "yes",
			},
			expected: &Task{Type: TypeLog},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.EqualValues(t, tc.expected, Normalize(tc.raw))
		})
	}
}

// Both spellings of the same submission must normalize identically.
func TestNormalize_AliasRoundTrip(t *testing.T) {
	camel := Normalize(map[string]interface{}{
		"taskId":         "t1",
		"taskType":       "send",
		"replyTo":        "http://x/reply",
		"manualApproval": true,
	})
	snake := Normalize(map[string]interface{}{
		"task_id":         "t1",
		"task_type":       "send",
		"reply_to":        "http://x/reply",
		"manual_approval": true,
	})
	assert.EqualValues(t, camel, snake)
}
