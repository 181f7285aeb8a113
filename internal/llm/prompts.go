package llm

import (
	"fmt"
	"strings"
)

// MemberReplyPrefix marks a trigger as a reply request. The member process
// prefixes the inbound message with it so prompt construction can switch
// to the reply schema.
const MemberReplyPrefix = "Reply to this message: "

// PromptFor builds the full prompt sent to a backend for one Generate
// call. Care-team personas are asked for a message/action JSON object;
// the member persona is asked for a bare question or reply.
func PromptFor(persona Persona, simContext, trigger string) string {
	if persona.Role == "member" {
		if strings.HasPrefix(trigger, MemberReplyPrefix) {
			return memberReplyPrompt(persona, simContext, strings.TrimPrefix(trigger, MemberReplyPrefix))
		}
		return memberQuestionPrompt(persona, simContext)
	}
	return responsePrompt(persona, simContext, trigger)
}

// responsePrompt asks a care-team persona for a concise in-character
// message plus an optional structured action.
func responsePrompt(persona Persona, simContext, trigger string) string {
	return fmt.Sprintf(`You are %s, a member of a concierge health-coaching team.

## Persona
%s

## Context
%s

## Trigger
%s

## Task
Write a CONCISE, conversational, in-character response, like a WhatsApp
message: brief and to the point, typically under 50 words. Review your own
message history in the context and do not repeat yourself.

## Response Format
Respond with ONLY a JSON object (no markdown code blocks, no additional text):
{
  "message": "<your message to the member>",
  "action": {
    "type": "<'UPDATE_NARRATIVE_FLAG', 'INITIATE_SICK_DAY_PROTOCOL', 'FLAG_FOR_EXPERT', or 'NONE'>",
    "payload": {}
  }
}`, persona.Name, persona.Voice, simContext, trigger)
}

// memberQuestionPrompt asks the member persona to start a conversation.
func memberQuestionPrompt(persona Persona, simContext string) string {
	return fmt.Sprintf(`You are %s, the client of a concierge health-coaching team.

## Persona
%s

## Context
%s

## Task
Start a conversation with the team: a diverse, in-character question or
comment between 5 and 50 words. Avoid repeating earlier questions.

## Response Format
Respond with ONLY a JSON object (no markdown code blocks, no additional text):
{"question": "<your question or comment>"}`, persona.Name, persona.Voice, simContext)
}

// memberReplyPrompt asks the member persona to answer the last inbound
// message.
func memberReplyPrompt(persona Persona, simContext, lastMessage string) string {
	return fmt.Sprintf(`You are %s, the client of a concierge health-coaching team.

## Persona
%s

## Context
%s

## Last Message Received
%s

## Task
Write a direct, concise, in-character reply to the last message.

## Response Format
Respond with ONLY a JSON object (no markdown code blocks, no additional text):
{"reply": "<your reply>"}`, persona.Name, persona.Voice, simContext, lastMessage)
}

// RoutingPrompt asks the backend to pick the best specialist for a member
// question. The roster lists each specialist with their role description.
func RoutingPrompt(question, history string, specialists []Persona) string {
	var roles strings.Builder
	for _, p := range specialists {
		fmt.Fprintf(&roles, "- %s: %s\n", p.Name, p.Voice)
	}
	return fmt.Sprintf(`You are routing a client question to the right specialist on a health-coaching team.

## Question
%s

## Recent Conversation
%s

## Specialists
%s
## Task
Choose the single best specialist for this question.

## Response Format
Respond with ONLY the specialist's name, exactly as listed above. No other text.`,
		question, history, roles.String())
}
