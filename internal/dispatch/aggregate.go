package dispatch

// Response is the external shape of a completed task: the ordered entry
// outcomes plus the overall status.
type Response struct {
	TaskID  string          `json:"task_id"`
	Status  Status          `json:"status"`
	Results []ResponseEntry `json:"results"`
}

// ResponseEntry serializes one plan entry outcome.
type ResponseEntry struct {
	Name    string `json:"name"`
	Status  Status `json:"status"`
	Payload any    `json:"payload,omitempty"`
	Message string `json:"message,omitempty"`
}

// Aggregate transforms a TaskResult into the response returned to the
// caller. It is a pure transform and never mutates its input.
func Aggregate(result TaskResult) Response {
	resp := Response{
		TaskID:  result.TaskID,
		Status:  result.Status,
		Results: make([]ResponseEntry, 0, len(result.Results)),
	}
	for _, r := range result.Results {
		resp.Results = append(resp.Results, ResponseEntry{
			Name:    r.Name,
			Status:  r.Status,
			Payload: r.Payload,
			Message: r.Message,
		})
	}
	return resp
}
