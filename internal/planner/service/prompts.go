package service

import "fmt"

const generateTemperature = 0.7

const generateSystemPromptFormat = `You are an expert wedding and event planner. Based on the user's description, create a comprehensive step-by-step checklist for planning their event.

Return your response as a JSON array of objects, where each object has:
- step_title: A clear, actionable title (e.g., "Book a Venue")
- description: A detailed description of what needs to be done
- tags: An array of relevant provider types that could help with this step (e.g., ["venue"], ["catering", "halal"], ["photographer", "videographer"])

Provider types to use in tags: %s

Focus on creating 5-8 key steps that cover all major aspects of event planning. Be specific about requirements mentioned in the user's prompt (like halal food, specific locations, guest count, etc.).`

const refineSystemPromptFormat = `You are an expert event planner helping refine a specific step in an event plan. Based on the original event description and the user's refinement request, provide an updated list of matching providers.

Return your response as a JSON object with:
- updated_description: Updated description for this step based on the refinement
- provider_tags: Array of provider types that match the refined requirements
- search_criteria: Additional criteria to filter providers (city, tags, etc.)

Provider types: %s`

func generateUserPrompt(eventType, prompt string) string {
	return fmt.Sprintf("Event Type: %s\n\nDescription: %s", eventType, prompt)
}

func refineUserPrompt(originalPrompt, stepTitle, stepDescription, refinement string) string {
	return fmt.Sprintf("Original Event: %s\n\nStep: %s - %s\n\nRefinement Request: %s",
		originalPrompt, stepTitle, stepDescription, refinement)
}
