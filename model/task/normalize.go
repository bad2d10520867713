package task

// aliases maps each canonical camelCase field name to its snake_case
// spelling. A canonical value, when present, always wins over the alias.
var aliases = map[string]string{
	"taskId":           "task_id",
	"originAgent":      "origin_agent",
	"destinationAgent": "destination_agent",
	"taskType":         "task_type",
	"replyTo":          "reply_to",
	"manualApproval":   "manual_approval",
}

// Normalize canonicalizes a raw, untyped task object into a Task. It merges
// aliased field spellings into the canonical names; no validation happens
// here - pass the result to Validate.
func Normalize(raw map[string]interface{}) *Task {
	merged := make(map[string]interface{}, len(raw))
	for k, v := range raw {
		merged[k] = v
	}
	for canonical, alias := range aliases {
		if _, ok := merged[canonical]; ok {
			continue
		}
		if v, ok := raw[alias]; ok {
			merged[canonical] = v
		}
	}
	return &Task{
		ID:               asString(merged["taskId"]),
		OriginAgent:      asString(merged["originAgent"]),
		DestinationAgent: asString(merged["destinationAgent"]),
		Type:             Type(asString(merged["taskType"])),
		Prompt:           asString(merged["prompt"]),
		Filename:         asString(merged["filename"]),
		ReplyTo:          asString(merged["replyTo"]),
		ManualApproval:   asBool(merged["manualApproval"]),
	}
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func asBool(v interface{}) bool {
	b, _ := v.(bool)
	return b
}
