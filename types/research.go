package types

// ResearchQuestion is a single planned question with a title and a
// description of what to investigate for that section.
type ResearchQuestion struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

// ResearchPlan is the ordered list of questions produced by the planner.
// CurrentQuestionIndex advances by exactly one per completed research
// step and never exceeds len(Questions).
type ResearchPlan struct {
	Topic                string             `json:"topic"`
	Questions            []ResearchQuestion `json:"questions"`
	CurrentQuestionIndex int                `json:"current_question_index"`
}

// Done reports whether every planned question has been researched.
func (p *ResearchPlan) Done() bool {
	return p.CurrentQuestionIndex >= len(p.Questions)
}

// Clone returns a deep copy of the plan. Nodes clone before modifying
// so that state transitions stay explicit: the engine's merge step is
// the only place a state change becomes visible.
func (p *ResearchPlan) Clone() *ResearchPlan {
	if p == nil {
		return nil
	}
	out := &ResearchPlan{
		Topic:                p.Topic,
		CurrentQuestionIndex: p.CurrentQuestionIndex,
		Questions:            make([]ResearchQuestion, len(p.Questions)),
	}
	copy(out.Questions, p.Questions)
	return out
}

// ReportSection is one detailed-analysis section of the final report.
// Sections are created empty at plan time, one per planned question,
// and each is filled exactly once.
type ReportSection struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Sources []string `json:"sources"`
}

// Report is the structured research report assembled by the finalizer.
// Summary, findings, and limitations stay empty when the finalizer
// delegate's output cannot be split into the expected parts; the
// formatter shows a placeholder instead of failing the run.
type Report struct {
	ExecutiveSummary string          `json:"executive_summary,omitempty"`
	KeyFindings      string          `json:"key_findings,omitempty"`
	DetailedAnalysis []ReportSection `json:"detailed_analysis"`
	Limitations      string          `json:"limitations,omitempty"`
}

// Clone returns a deep copy of the report.
func (r *Report) Clone() *Report {
	if r == nil {
		return nil
	}
	out := &Report{
		ExecutiveSummary: r.ExecutiveSummary,
		KeyFindings:      r.KeyFindings,
		Limitations:      r.Limitations,
		DetailedAnalysis: make([]ReportSection, len(r.DetailedAnalysis)),
	}
	for i, s := range r.DetailedAnalysis {
		out.DetailedAnalysis[i] = ReportSection{
			Title:   s.Title,
			Content: s.Content,
			Sources: append([]string(nil), s.Sources...),
		}
	}
	return out
}
