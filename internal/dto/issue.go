package dto

// PublishIssuePayload is the input for a publish_issue job. Title is allowed
// to be empty; the processor derives one from the prompt in that case.
type PublishIssuePayload struct {
	Title            string `json:"title" validate:"omitempty,max=256"`
	Prompt           string `json:"prompt" validate:"required"`
	Repository       string `json:"repository" validate:"required,contains=/"`
	GeneratedContent string `json:"generated_content,omitempty"`
}

// IssueResult is stored in Job.Result when a publish_issue job completes.
type IssueResult struct {
	Number     int    `json:"number"`
	URL        string `json:"url"`
	Repository string `json:"repository"`
	Title      string `json:"title"`
}

// EnhanceRequestDTO drives the synchronous title/body generation endpoint
// used by the form flow before a job is ever created.
type EnhanceRequestDTO struct {
	Prompt string `json:"prompt" validate:"required"`
	Title  string `json:"title" validate:"omitempty,max=256"`
}

type EnhanceResponseDTO struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}
