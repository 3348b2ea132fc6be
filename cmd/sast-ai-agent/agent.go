package main

import (
	"context"
	"regexp"
	"strings"

	"github.com/Ankitchan/sast-ai-agent/agents"
	"github.com/Ankitchan/sast-ai-agent/types"
)

// expressionPattern matches a run of arithmetic text starting and
// ending on a digit or parenthesis; candidates without an operator are
// discarded afterwards.
var expressionPattern = regexp.MustCompile(`[\d(][\d\s.+\-*/%()]*[\d)]`)

// keywordToolAgent is a rule-based tool agent: it extracts arithmetic
// expressions for the calculator and date/time keywords for the clock,
// then answers from the tool result on its next turn. It stands in
// until an LLM-backed agent supplies real reasoning.
type keywordToolAgent struct{}

// Decide implements the tool agent contract.
func (keywordToolAgent) Decide(ctx context.Context, messages []types.Message) (agents.ToolDecision, error) {
	if len(messages) > 0 {
		last := messages[len(messages)-1]
		if last.Role == types.RoleTool {
			return agents.ToolDecision{Answer: last.Content}, nil
		}
	}

	query := types.LastUserMessage(messages)
	lower := strings.ToLower(query)

	if expr := strings.TrimSpace(expressionPattern.FindString(query)); expr != "" &&
		strings.ContainsAny(expr, "+-*/%") {
		return agents.ToolDecision{Tool: "calculator", Input: expr}, nil
	}

	switch {
	case strings.Contains(lower, "what time"):
		return agents.ToolDecision{Tool: "datetime", Input: "time"}, nil
	case strings.Contains(lower, "what date") || strings.Contains(lower, "today"):
		return agents.ToolDecision{Tool: "datetime", Input: "date"}, nil
	case strings.Contains(lower, "what year"):
		return agents.ToolDecision{Tool: "datetime", Input: "year"}, nil
	case strings.Contains(lower, "day of the week") || strings.Contains(lower, "weekday"):
		return agents.ToolDecision{Tool: "datetime", Input: "weekday"}, nil
	}

	return agents.ToolDecision{Answer: "I couldn't find a tool for that. Try a calculation or a date/time question."}, nil
}

// generalPipeline is the fallback for queries no specialized pipeline
// claims.
type generalPipeline struct{}

func (generalPipeline) Name() string { return "general" }

func (generalPipeline) Process(ctx context.Context, message string, history []types.Message) (string, error) {
	return "I can help with calculations, date and time questions, and basic code scanning. " +
		"Ask me something like \"calculate 12 * 9\" or \"scan this code\".", nil
}
