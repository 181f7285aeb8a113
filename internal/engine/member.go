package engine

import (
	"fmt"

	"github.com/venkat299/healthsim/internal/llm"
	"github.com/venkat299/healthsim/internal/models"
	"github.com/venkat299/healthsim/internal/sim"
)

// memberProcess models the client's agency. Activations arrive on an
// exponential cadence; each one either replies to an unanswered inbound
// message or initiates a new question that gets routed to a specialist.
func (e *Engine) memberProcess(p *sim.Process) {
	member, ok := e.cfg.Team.MemberPersona()
	if !ok {
		return
	}
	if !p.Sleep(0.1) {
		return
	}

	for {
		delay := e.rng.ExpFloat64() * e.cfg.Simulation.AvgDaysPerQuestion
		if !p.Sleep(delay) {
			return
		}

		if last, ok := e.state.LastEvent(); ok && last.Type == models.EventMessage && last.Source != member.Name {
			e.memberReply(member, last)
			continue
		}
		if !e.memberInitiate(p, member) {
			return
		}
	}
}

// memberReply answers the most recent inbound message.
func (e *Engine) memberReply(member llm.Persona, last models.Event) {
	distilled := Distill(e.state, member.Name)
	raw, err := e.client.Generate(e.ctx, member, distilled, llm.MemberReplyPrefix+last.Content())
	if err != nil {
		e.logMemberError(err)
		return
	}

	message, _ := ParseResponse(raw)
	if message == "" {
		return
	}
	e.state.LogEvent(models.EventMessage, member.Name, map[string]any{
		"content":     message,
		"in_reply_to": last.Content(),
	})
	e.state.RecordAuthored(member.Name, message)
}

// memberInitiate generates a fresh question, routes it, and has the chosen
// specialist respond. It returns false only when the scheduler shut down
// during the think-pause between asking and routing.
func (e *Engine) memberInitiate(p *sim.Process, member llm.Persona) bool {
	distilled := Distill(e.state, member.Name)
	raw, err := e.client.Generate(e.ctx, member, distilled, "Start a new conversation with the care team.")
	if err != nil {
		e.logMemberError(err)
		return true
	}

	question, _ := ParseResponse(raw)
	if question == "" {
		return true
	}
	e.state.LogEvent(models.EventMessage, member.Name, map[string]any{
		"content": question,
	})
	e.state.RecordAuthored(member.Name, question)

	// Short pause before routing; other processes may run in between.
	if !p.Sleep(e.uniform(0.01, 0.1)) {
		return false
	}

	history := Distill(e.state, member.Name)
	routed, err := e.client.Route(e.ctx, question, history)
	if err != nil {
		e.log.Warn("routing failed", "error", err)
		e.state.LogEvent(models.EventError, "ROUTER", map[string]any{
			"error": err.Error(),
		})
		return true
	}

	responder := e.validateResponder(routed)
	e.state.LogEvent(models.EventRouting, models.SourceCore, map[string]any{
		"question":  question,
		"routed_to": responder.Name,
		"method":    "semantic_llm",
	})

	e.respond(responder, fmt.Sprintf("%s asked: %s", member.Name, question))
	return true
}

// validateResponder resolves a routed identity against the roster,
// substituting the default responder for unknown names or attempts to
// route back to the member. This shields the engine from an unreliable
// external classifier.
func (e *Engine) validateResponder(name string) llm.Persona {
	if persona, ok := e.cfg.Team.PersonaByName(name); ok && persona.Role != "member" {
		return persona
	}
	fallback, _ := e.cfg.Team.PersonaByName(e.cfg.Team.DefaultResponder)
	return fallback
}

func (e *Engine) logMemberError(err error) {
	e.log.Warn("member generation failed", "error", err)
	e.state.LogEvent(models.EventError, "MEMBER_AGENT", map[string]any{
		"error": err.Error(),
	})
}
